package form

import (
	"github.com/andreasgmg/fornet/internal/form/domain"
	"github.com/andreasgmg/fornet/internal/form/service"
	"github.com/andreasgmg/fornet/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("form.service",
	fx.Provide(repository.ProvideStore[domain.Submission]),
	fx.Provide(service.NewService),
)
