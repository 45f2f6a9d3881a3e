package auth

import (
	"github.com/andreasgmg/fornet/internal/auth/repository"
	"github.com/andreasgmg/fornet/internal/auth/service"
	"github.com/andreasgmg/fornet/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	session.Module,
)
