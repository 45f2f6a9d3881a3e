package document

import (
	"github.com/andreasgmg/fornet/internal/document/domain"
	"github.com/andreasgmg/fornet/internal/document/service"
	"github.com/andreasgmg/fornet/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.ProvideStore[domain.Document]),
	fx.Provide(service.NewService),
)
