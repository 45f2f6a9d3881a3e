package authorization_test

import (
	"context"
	"errors"
	"testing"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/authorization/mock"
	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	orgID  snowflake.ID = 100
	userID snowflake.ID = 7
)

func newGuard(t *testing.T) (authorization.Guard, *mock.MockMembershipReader) {
	t.Helper()

	ctrl := gomock.NewController(t)
	members := mock.NewMockMembershipReader(ctrl)
	enforcer, err := authorization.NewMemoryEnforcer()
	require.NoError(t, err)

	return authorization.NewGuard(authorization.GuardParams{
		Log:      zap.NewNop(),
		Members:  members,
		Enforcer: enforcer,
	}), members
}

func callerCtx() context.Context {
	return authorization.WithIdentity(context.Background(), authorization.Identity{
		UserID: userID,
		Email:  "styrelsen@example.se",
	})
}

func TestRequireOrgAdminUnauthenticated(t *testing.T) {
	guard, _ := newGuard(t)

	_, err := guard.RequireOrgAdmin(context.Background(), orgID)
	assert.ErrorIs(t, err, authorization.ErrUnauthenticated)
}

func TestRequireOrgAdminNoMembership(t *testing.T) {
	guard, members := newGuard(t)
	members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return("", false, nil)

	_, err := guard.RequireOrgAdmin(callerCtx(), orgID)
	assert.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestRequireOrgAdminRoles(t *testing.T) {
	cases := []struct {
		role    string
		wantErr error
	}{
		{role: authorization.RoleOwner},
		{role: authorization.RoleAdmin},
		{role: "ADMIN"},
		{role: authorization.RoleMember, wantErr: authorization.ErrForbidden},
		{role: "kassör", wantErr: authorization.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			guard, members := newGuard(t)
			members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return(tc.role, true, nil)

			identity, err := guard.RequireOrgAdmin(callerCtx(), orgID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, identity.UserID)
			assert.Equal(t, "styrelsen@example.se", identity.Email)
		})
	}
}

func TestRequireOrgOwner(t *testing.T) {
	guard, members := newGuard(t)
	members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return(authorization.RoleAdmin, true, nil)

	_, err := guard.RequireOrgOwner(callerCtx(), orgID)
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return(authorization.RoleOwner, true, nil)
	identity, err := guard.RequireOrgOwner(callerCtx(), orgID)
	require.NoError(t, err)
	assert.Equal(t, authorization.RoleOwner, identity.Role)
}

func TestRequireOrgMemberAllowsMembers(t *testing.T) {
	guard, members := newGuard(t)
	members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return(authorization.RoleMember, true, nil)

	identity, err := guard.RequireOrgMember(callerCtx(), orgID)
	require.NoError(t, err)
	assert.Equal(t, authorization.RoleMember, identity.Role)
}

func TestGuardRereadsMembershipEveryCall(t *testing.T) {
	guard, members := newGuard(t)
	gomock.InOrder(
		members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return(authorization.RoleAdmin, true, nil),
		members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return(authorization.RoleMember, true, nil),
	)

	_, err := guard.RequireOrgAdmin(callerCtx(), orgID)
	require.NoError(t, err)

	_, err = guard.RequireOrgAdmin(callerCtx(), orgID)
	assert.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestGuardPropagatesLookupErrors(t *testing.T) {
	guard, members := newGuard(t)
	boom := errors.New("connection reset")
	members.EXPECT().MembershipRole(gomock.Any(), orgID, userID).Return("", false, boom)

	_, err := guard.RequireOrgAdmin(callerCtx(), orgID)
	assert.ErrorIs(t, err, boom)
}
