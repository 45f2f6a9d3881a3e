package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	"github.com/andreasgmg/fornet/internal/audit/masking"
	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
	Guard authorization.Guard
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
	guard authorization.Guard
	clock clock.Clock
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
		guard: p.Guard,
		clock: p.Clock,
	}
}

func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	if entry.OrgID == 0 {
		return auditdomain.ErrInvalidOrganization
	}

	targetType := strings.TrimSpace(entry.TargetType)
	if targetType == "" {
		targetType = "organization"
	}

	log := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		OrgID:      entry.OrgID,
		Action:     action,
		TargetType: targetType,
		TargetID:   optional(entry.TargetID),
		IPAddress:  optional(entry.IPAddress),
		UserAgent:  optional(entry.UserAgent),
		CreatedAt:  s.clock.Now(),
	}
	if metadata := masking.MaskMetadata(entry.Metadata); metadata != nil {
		log.Metadata = datatypes.JSONMap(metadata)
	}
	if caller, ok := authorization.IdentityFromContext(ctx); ok && caller.UserID != 0 {
		actorID := caller.UserID
		log.ActorID = &actorID
		log.ActorEmail = caller.Email
	}

	if err := s.repo.Insert(ctx, &log); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, req auditdomain.ListAuditLogRequest) (*auditdomain.ListAuditLogResponse, error) {
	if orgID == 0 {
		return nil, auditdomain.ErrInvalidOrganization
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}

	var cursor *auditdomain.AuditCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, err
		}
		id, err := decoded.SnowflakeID()
		if err != nil {
			return nil, err
		}
		createdAt, err := decoded.Time()
		if err != nil {
			return nil, err
		}
		cursor = &auditdomain.AuditCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.Size(defaultPageSize, maxPageSize)
	items, err := s.repo.List(ctx, auditdomain.ListFilter{
		OrgID:  orgID,
		Action: strings.TrimSpace(req.Action),
		Cursor: cursor,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *auditdomain.AuditLog) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			s.log.Warn("encode audit cursor", zap.Error(err))
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		logs = append(logs, *item)
	}

	return &auditdomain.ListAuditLogResponse{PageInfo: *pageInfo, AuditLogs: logs}, nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
