package service

import (
	"context"
	"errors"
	"strings"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/newsletter/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/pkg/db/option"
	"github.com/andreasgmg/fornet/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  repository.Repository[domain.Newsletter]
	Orgs  orgdomain.Repository
	Guard authorization.Guard
	GenID *snowflake.Node
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  repository.Repository[domain.Newsletter]
	orgs  orgdomain.Repository
	guard authorization.Guard
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("newsletter.service"),
		repo:  p.Repo,
		orgs:  p.Orgs,
		guard: p.Guard,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *service) SaveDraft(ctx context.Context, orgID, id snowflake.ID, req domain.DraftRequest) (*domain.Newsletter, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, domain.ErrSubjectRequired
	}
	now := s.clock.Now()

	if id == 0 {
		letter := &domain.Newsletter{
			ID:        s.genID.Generate(),
			OrgID:     orgID,
			Subject:   subject,
			Content:   req.Content,
			Status:    domain.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, letter); err != nil {
			return nil, err
		}
		return letter, nil
	}

	letter, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if letter.OrgID != orgID {
		return nil, domain.ErrNotFound
	}
	if letter.Status == domain.StatusSent {
		return nil, domain.ErrAlreadySent
	}

	letter.Subject = subject
	letter.Content = req.Content
	letter.UpdatedAt = now
	err = s.repo.Update(ctx, letter.ID, map[string]any{
		"subject":    letter.Subject,
		"content":    letter.Content,
		"updated_at": letter.UpdatedAt,
	}, unsent())
	if err != nil {
		return nil, mapSendRace(err)
	}
	return letter, nil
}

func (s *service) Delete(ctx context.Context, id snowflake.ID) error {
	letter, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, letter.OrgID); err != nil {
		return err
	}
	return mapNotFound(s.repo.Delete(ctx, letter.ID))
}

func (s *service) List(ctx context.Context, orgID snowflake.ID) ([]*domain.Newsletter, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, &domain.Newsletter{OrgID: orgID}, option.ApplyOrder("created_at", true))
}

func (s *service) MarkSent(ctx context.Context, id snowflake.ID) (int64, error) {
	letter, err := s.get(ctx, id)
	if err != nil {
		return 0, err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, letter.OrgID); err != nil {
		return 0, err
	}

	// Only the caller whose update flips the status sends.
	var recipients int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.orgs.WithTx(tx).CountActiveMembers(ctx, letter.OrgID)
		if err != nil {
			return err
		}
		recipients = count
		now := s.clock.Now()
		return s.repo.WithTx(tx).Update(ctx, letter.ID, map[string]any{
			"status":          domain.StatusSent,
			"sent_at":         now,
			"recipient_count": count,
			"updated_at":      now,
		}, unsent())
	})
	if err != nil {
		return 0, mapSendRace(err)
	}

	s.log.Info("newsletter marked as sent",
		zap.String("newsletter_id", letter.ID.String()),
		zap.Int64("recipients", recipients),
	)
	return recipients, nil
}

func (s *service) get(ctx context.Context, id snowflake.ID) (*domain.Newsletter, error) {
	letter, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return letter, nil
}

func unsent() option.QueryOption {
	return option.ApplyWhere("status <> ?", domain.StatusSent)
}

// mapSendRace treats a conditional update that matched nothing as a lost
// race with a send. The row was read just before, so it exists.
func mapSendRace(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrAlreadySent
	}
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
