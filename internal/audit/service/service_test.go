package service

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	"github.com/andreasgmg/fornet/internal/audit/repository"
	"github.com/andreasgmg/fornet/internal/authorization"
	authmock "github.com/andreasgmg/fornet/internal/authorization/mock"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   auditdomain.Service
	guard *authmock.MockGuard
	clock *clock.FakeClock
	orgID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 20, 6, 0, 0, 0, time.UTC))
	guard := authmock.NewMockGuard(gomock.NewController(t))

	svc := NewService(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(conn),
		Guard: guard,
		Clock: clk,
	})
	return &fixture{svc: svc, guard: guard, clock: clk, orgID: node.Generate()}
}

func TestRecordCapturesActorAndMasksSecrets(t *testing.T) {
	f := newFixture(t)
	ctx := authorization.WithIdentity(context.Background(), authorization.Identity{UserID: 7, Email: "styrelsen@larkan.se"})

	require.NoError(t, f.svc.Record(ctx, auditdomain.Entry{
		OrgID:      f.orgID,
		Action:     auditdomain.ActionApplicationApproved,
		TargetType: "form_submission",
		TargetID:   "123",
		Metadata:   map[string]any{"email": "anna@example.se", "personal_number": "19800101-6789"},
		IPAddress:  "203.0.113.9",
	}))

	f.guard.EXPECT().RequireOrgAdmin(gomock.Any(), f.orgID).Return(authorization.Identity{}, nil)
	resp, err := f.svc.List(ctx, f.orgID, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, snowflake.ID(7), *entry.ActorID)
	assert.Equal(t, "styrelsen@larkan.se", entry.ActorEmail)
	assert.Equal(t, "anna@example.se", entry.Metadata["email"])
	assert.Equal(t, "****6789", entry.Metadata["personal_number"])
	require.NotNil(t, entry.IPAddress)
	assert.Nil(t, entry.UserAgent)
	assert.False(t, resp.HasMore)
}

func TestRecordRejectsIncompleteEntries(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Record(context.Background(), auditdomain.Entry{OrgID: f.orgID})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = f.svc.Record(context.Background(), auditdomain.Entry{Action: auditdomain.ActionMemberInvited})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidOrganization)
}

func TestListPagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, action := range []string{
		auditdomain.ActionMemberInvited,
		auditdomain.ActionModuleToggled,
		auditdomain.ActionNewsletterSent,
	} {
		require.NoError(t, f.svc.Record(ctx, auditdomain.Entry{OrgID: f.orgID, Action: action}))
		f.clock.Advance(time.Minute)
	}

	f.guard.EXPECT().RequireOrgAdmin(gomock.Any(), f.orgID).Return(authorization.Identity{}, nil).Times(3)

	first, err := f.svc.List(ctx, f.orgID, auditdomain.ListAuditLogRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 2)
	assert.Equal(t, auditdomain.ActionNewsletterSent, first.AuditLogs[0].Action)
	assert.True(t, first.HasMore)

	second, err := f.svc.List(ctx, f.orgID, auditdomain.ListAuditLogRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.AuditLogs, 1)
	assert.Equal(t, auditdomain.ActionMemberInvited, second.AuditLogs[0].Action)
	assert.False(t, second.HasMore)

	filtered, err := f.svc.List(ctx, f.orgID, auditdomain.ListAuditLogRequest{Action: auditdomain.ActionModuleToggled})
	require.NoError(t, err)
	assert.Len(t, filtered.AuditLogs, 1)
}

func TestListRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	f.guard.EXPECT().RequireOrgAdmin(gomock.Any(), f.orgID).Return(authorization.Identity{}, authorization.ErrForbidden)
	_, err := f.svc.List(context.Background(), f.orgID, auditdomain.ListAuditLogRequest{})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	f.guard.EXPECT().RequireOrgAdmin(gomock.Any(), f.orgID).Return(authorization.Identity{}, nil)
	_, err = f.svc.List(context.Background(), f.orgID, auditdomain.ListAuditLogRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
}
