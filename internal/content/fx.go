package content

import (
	"github.com/andreasgmg/fornet/internal/content/domain"
	"github.com/andreasgmg/fornet/internal/content/service"
	"github.com/andreasgmg/fornet/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("content.service",
	fx.Provide(repository.ProvideStore[domain.Post]),
	fx.Provide(repository.ProvideStore[domain.Page]),
	fx.Provide(repository.ProvideStore[domain.Event]),
	fx.Provide(repository.ProvideStore[domain.BoardMember]),
	fx.Provide(repository.ProvideStore[domain.Sponsor]),
	fx.Provide(service.NewService),
)
