package authorization

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Guard checks the caller's role in an organization. Every call re-reads the
// membership; nothing is cached between calls.
type Guard interface {
	RequireOrgMember(ctx context.Context, orgID snowflake.ID) (Identity, error)
	RequireOrgAdmin(ctx context.Context, orgID snowflake.ID) (Identity, error)
	RequireOrgOwner(ctx context.Context, orgID snowflake.ID) (Identity, error)
}

// MembershipReader returns the role of an active membership. found is false
// when the user has no membership in the organization.
type MembershipReader interface {
	MembershipRole(ctx context.Context, orgID, userID snowflake.ID) (role string, found bool, err error)
}

type GuardParams struct {
	fx.In

	Log      *zap.Logger
	Members  MembershipReader
	Enforcer *casbin.SyncedEnforcer
}

type guard struct {
	log      *zap.Logger
	members  MembershipReader
	enforcer *casbin.SyncedEnforcer
}

func NewGuard(p GuardParams) Guard {
	return &guard{
		log:      p.Log.Named("authorization.guard"),
		members:  p.Members,
		enforcer: p.Enforcer,
	}
}

func (g *guard) RequireOrgMember(ctx context.Context, orgID snowflake.ID) (Identity, error) {
	return g.require(ctx, orgID, ActionRead)
}

func (g *guard) RequireOrgAdmin(ctx context.Context, orgID snowflake.ID) (Identity, error) {
	return g.require(ctx, orgID, ActionManage)
}

func (g *guard) RequireOrgOwner(ctx context.Context, orgID snowflake.ID) (Identity, error) {
	return g.require(ctx, orgID, ActionDelete)
}

func (g *guard) require(ctx context.Context, orgID snowflake.ID, action string) (Identity, error) {
	caller, err := RequireIdentity(ctx)
	if err != nil {
		return Identity{}, err
	}
	if orgID == 0 {
		return Identity{}, ErrForbidden
	}

	role, found, err := g.members.MembershipRole(ctx, orgID, caller.UserID)
	if err != nil {
		return Identity{}, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if !found || role == "" {
		g.denied(caller, orgID, action, "no_membership")
		return Identity{}, ErrForbidden
	}

	allowed, err := g.enforcer.Enforce(roleSubject(role), ObjectOrganization, action)
	if err != nil {
		return Identity{}, err
	}
	if !allowed {
		g.denied(caller, orgID, action, "role_"+role)
		return Identity{}, ErrForbidden
	}

	caller.Role = role
	return caller, nil
}

func (g *guard) denied(caller Identity, orgID snowflake.ID, action, reason string) {
	g.log.Info("authorization denied",
		zap.String("user_id", caller.UserID.String()),
		zap.String("org_id", orgID.String()),
		zap.String("action", action),
		zap.String("reason", reason),
	)
}
