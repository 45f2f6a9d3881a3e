package audit

import (
	"github.com/andreasgmg/fornet/internal/audit/repository"
	"github.com/andreasgmg/fornet/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
