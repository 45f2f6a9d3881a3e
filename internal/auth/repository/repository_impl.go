package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type store struct {
	db *gorm.DB
}

// New returns the account and session stores, both backed by conn.
func New(conn *gorm.DB) (domain.Repository, domain.SessionRepository) {
	s := &store{db: conn}
	return s, s
}

func (s *store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.firstUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *store) UserByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *store) firstUser(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where(cond, arg).Take(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrUserNotFound
	case err != nil:
		return nil, err
	}
	return &user, nil
}

// MarkPro upgrades the account. A blank customer id keeps the stored one.
func (s *store) MarkPro(ctx context.Context, id snowflake.ID, stripeCustomerID string, at time.Time) error {
	fields := map[string]any{"is_pro": true, "updated_at": at}
	if customer := strings.TrimSpace(stripeCustomerID); customer != "" {
		fields["stripe_customer_id"] = customer
	}

	tx := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *store) CreateSession(ctx context.Context, session *domain.Session) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *store) SessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.WithContext(ctx).Where("session_token_hash = ?", tokenHash).Take(&session).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrSessionNotFound
	case err != nil:
		return nil, err
	}
	return &session, nil
}

func (s *store) TouchSession(ctx context.Context, sessionID snowflake.ID, at, staleBefore time.Time) error {
	return s.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND last_seen_at < ?", sessionID, staleBefore).
		Update("last_seen_at", at).Error
}

func (s *store) RevokeSession(ctx context.Context, sessionID snowflake.ID, at time.Time) error {
	tx := s.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", at)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *store) PruneUserSessions(ctx context.Context, userID snowflake.ID, now time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).
		Where("user_id = ? AND (expires_at < ? OR revoked_at IS NOT NULL)", userID, now).
		Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}
