package newsletter

import (
	"github.com/andreasgmg/fornet/internal/newsletter/domain"
	"github.com/andreasgmg/fornet/internal/newsletter/service"
	"github.com/andreasgmg/fornet/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("newsletter.service",
	fx.Provide(repository.ProvideStore[domain.Newsletter]),
	fx.Provide(service.NewService),
)
