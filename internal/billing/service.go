package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/config"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("billing.webhook",
	fx.Provide(NewService),
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Auth   authdomain.Service
	Clock  clock.Clock
}

type Service struct {
	verifier *Verifier
	auth     authdomain.Service
	log      *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		verifier: NewVerifier(p.Config.StripeWebhookSecret, p.Clock.Now),
		auth:     p.Auth,
		log:      p.Log.Named("billing.webhook"),
	}
}

// HandleWebhook verifies and applies one Stripe event. Events fornet does not
// act on are acknowledged without error.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.verifier.Verify(payload, headers); err != nil {
		return err
	}

	checkout, err := ParseCheckoutCompleted(payload)
	if errors.Is(err, ErrEventIgnored) {
		return nil
	}
	if err != nil {
		return err
	}

	userID, err := snowflake.ParseString(checkout.UserID)
	if err != nil {
		s.log.Warn("checkout with malformed user id", zap.String("event_id", checkout.EventID))
		return ErrInvalidPayload
	}
	if err := s.auth.MarkPro(ctx, userID, checkout.CustomerID); err != nil {
		return fmt.Errorf("mark user pro: %w", err)
	}

	s.log.Info("user upgraded to pro",
		zap.String("event_id", checkout.EventID),
		zap.String("user_id", userID.String()),
	)
	return nil
}
