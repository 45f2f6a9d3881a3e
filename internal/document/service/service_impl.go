package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/document/domain"
	"github.com/andreasgmg/fornet/internal/observability/metrics"
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

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    repository.Repository[domain.Document]
	Orgs    orgdomain.Repository
	Guard   authorization.Guard
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    repository.Repository[domain.Document]
	orgs    orgdomain.Repository
	guard   authorization.Guard
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("document.service"),
		repo:    p.Repo,
		orgs:    p.Orgs,
		guard:   p.Guard,
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

// Upload records a document and charges its size to the organization's quota
// in the same transaction.
func (s *service) Upload(ctx context.Context, orgID snowflake.ID, req domain.UploadRequest) (*domain.Document, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	fileName := strings.TrimSpace(req.FileName)
	if title == "" || fileName == "" {
		return nil, domain.ErrMissingFields
	}
	if req.Size < 0 {
		return nil, domain.ErrInvalidSize
	}

	doc := &domain.Document{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Title:     title,
		FileName:  fileName,
		Size:      req.Size,
		URL:       strings.TrimSpace(req.URL),
		CreatedAt: s.clock.Now(),
	}
	if doc.URL == "" {
		doc.URL = fmt.Sprintf("/dokument/%s/%s", doc.ID, url.PathEscape(fileName))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orgs.WithTx(tx).ReserveStorage(ctx, orgID, doc.Size); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Create(ctx, doc)
	})
	if err != nil {
		if !errors.Is(err, orgdomain.ErrStorageFull) {
			s.log.Error("failed to upload document", zap.String("org_id", orgID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.RecordStorageDelta(ctx, orgID.String(), doc.Size)
	return doc, nil
}

func (s *service) Delete(ctx context.Context, documentID snowflake.ID) error {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, doc.OrgID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, doc.ID); err != nil {
			return err
		}
		return s.orgs.WithTx(tx).ReleaseStorage(ctx, doc.OrgID, doc.Size)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	s.metrics.RecordStorageDelta(ctx, doc.OrgID.String(), -doc.Size)
	return nil
}

func (s *service) List(ctx context.Context, orgID snowflake.ID) ([]*domain.Document, error) {
	return s.repo.Find(ctx, &domain.Document{OrgID: orgID},
		option.ApplyOrder("created_at", true),
		option.ApplyOrder("id", true),
	)
}
