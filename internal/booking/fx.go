package booking

import (
	"github.com/andreasgmg/fornet/internal/booking/locker"
	"github.com/andreasgmg/fornet/internal/booking/repository"
	"github.com/andreasgmg/fornet/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	locker.Module,
)
