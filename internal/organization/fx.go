package organization

import (
	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/internal/organization/repository"
	"github.com/andreasgmg/fornet/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(repository.NewMembershipReader),
	fx.Provide(service.NewService),
	fx.Provide(newInviteClaimer),
)

func newInviteClaimer(svc domain.Service) authdomain.InviteClaimer {
	return svc
}
