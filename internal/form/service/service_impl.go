package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/form/domain"
	"github.com/andreasgmg/fornet/internal/observability/metrics"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/pkg/db/option"
	"github.com/andreasgmg/fornet/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const personalNumberField = "personal_number"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    repository.Repository[domain.Submission]
	Orgs    orgdomain.Service
	Members orgdomain.Repository
	Guard   authorization.Guard
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    repository.Repository[domain.Submission]
	orgs    orgdomain.Service
	members orgdomain.Repository
	guard   authorization.Guard
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("form.service"),
		repo:    p.Repo,
		orgs:    p.Orgs,
		members: p.Members,
		guard:   p.Guard,
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

// Submit stores a public form post. It needs no session.
func (s *service) Submit(ctx context.Context, orgID snowflake.ID, formType string, data map[string]any) (*domain.Submission, error) {
	formType = strings.ToLower(strings.TrimSpace(formType))
	if !domain.ValidType(formType) {
		return nil, domain.ErrInvalidType
	}
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}

	fields := cleanFields(data)
	if len(fields) == 0 {
		return nil, domain.ErrEmptySubmission
	}
	email := strings.ToLower(stringField(fields, "email"))
	if formType == domain.TypeMembership && email == "" {
		return nil, domain.ErrEmailRequired
	}

	submission := &domain.Submission{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Type:      formType,
		Email:     email,
		Data:      datatypes.JSONMap(fields),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, err
	}

	s.metrics.RecordFormSubmission(ctx, formType)
	return submission, nil
}

func (s *service) List(ctx context.Context, orgID snowflake.ID, formType string) ([]*domain.Submission, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	filter := &domain.Submission{OrgID: orgID}
	if formType != "" {
		if !domain.ValidType(formType) {
			return nil, domain.ErrInvalidType
		}
		filter.Type = formType
	}
	return s.repo.Find(ctx, filter, option.ApplyOrder("created_at", true))
}

// ApproveMembershipApplication invites the applicant as a member and clears
// every membership application with the same email in one transaction.
func (s *service) ApproveMembershipApplication(ctx context.Context, submissionID snowflake.ID) error {
	caller, submission, err := s.loadApplication(ctx, submissionID)
	if err != nil {
		return err
	}
	if submission.Email != "" {
		if _, err := mail.ParseAddress(submission.Email); err != nil {
			return orgdomain.ErrInvalidEmail
		}
	}

	var removed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if submission.Email != "" {
			now := s.clock.Now()
			invitedBy := caller.UserID
			_, err := s.members.WithTx(tx).AddInvite(ctx, &orgdomain.Membership{
				ID:        s.genID.Generate(),
				OrgID:     submission.OrgID,
				Email:     submission.Email,
				Role:      authorization.RoleMember,
				Status:    orgdomain.MembershipPending,
				InvitedBy: &invitedBy,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("invite applicant: %w", err)
			}
		}

		if err := repo.Delete(ctx, submission.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if submission.Email == "" {
			return nil
		}
		n, err := repo.DeleteWhere(ctx, &domain.Submission{
			OrgID: submission.OrgID,
			Type:  domain.TypeMembership,
			Email: submission.Email,
		})
		removed = n
		return err
	})
	if err != nil {
		return err
	}

	if removed > 0 {
		s.log.Info("removed duplicate membership applications",
			zap.String("org_id", submission.OrgID.String()),
			zap.Int64("count", removed),
		)
	}
	return nil
}

func (s *service) RejectMembershipApplication(ctx context.Context, submissionID snowflake.ID) error {
	_, submission, err := s.loadApplication(ctx, submissionID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, submission.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) loadApplication(ctx context.Context, submissionID snowflake.ID) (authorization.Identity, *domain.Submission, error) {
	submission, err := s.repo.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return authorization.Identity{}, nil, domain.ErrNotFound
		}
		return authorization.Identity{}, nil, err
	}
	caller, err := s.guard.RequireOrgAdmin(ctx, submission.OrgID)
	if err != nil {
		return authorization.Identity{}, nil, err
	}
	if submission.Type != domain.TypeMembership {
		return authorization.Identity{}, nil, domain.ErrNotAnApplication
	}
	return caller, submission, nil
}

// cleanFields trims string values and drops an empty personal number.
func cleanFields(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if str, ok := v.(string); ok {
			v = strings.TrimSpace(str)
		}
		out[k] = v
	}
	if v, ok := out[personalNumberField]; ok && isEmpty(v) {
		delete(out, personalNumberField)
	}
	return out
}

func stringField(data map[string]any, key string) string {
	v, ok := data[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}
