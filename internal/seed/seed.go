// Package seed creates a demo association for local development.
package seed

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/andreasgmg/fornet/internal/auth/password"
	"github.com/andreasgmg/fornet/internal/authorization"
	bookingdomain "github.com/andreasgmg/fornet/internal/booking/domain"
	"github.com/andreasgmg/fornet/internal/config"
	contentdomain "github.com/andreasgmg/fornet/internal/content/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DemoSubdomain     = "larkan"
	DemoAdminEmail    = "admin@larkan.se"
	DemoAdminPassword = "larkan-admin"

	demoOrgName      = "BRF Lärkan"
	demoAdminDisplay = "Styrelsen BRF Lärkan"
	demoResourceName = "Tvättstuga"
)

// EnsureDemo creates the demo association, its pro admin, one bookable
// laundry room and a welcome post. It does nothing when the subdomain exists.
func EnsureDemo(db *gorm.DB, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	created := false
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing orgdomain.Organization
		err := tx.Where("subdomain = ?", DemoSubdomain).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		user, err := ensureAdminTx(tx, node, now)
		if err != nil {
			return err
		}

		org := orgdomain.Organization{
			ID:           node.Generate(),
			Name:         demoOrgName,
			Subdomain:    DemoSubdomain,
			Type:         orgdomain.TypeBRF,
			OwnerID:      user.ID,
			Config:       datatypes.NewJSONType(orgdomain.InitialConfig(orgdomain.TypeBRF)),
			StorageLimit: config.DefaultStorageLimit,
			TimezoneName: config.DefaultTenancyConfig().DefaultTimezone,
			HeaderText:   demoOrgName,
			AlertLevel:   "none",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		userID := user.ID
		member := orgdomain.Membership{
			ID:        node.Generate(),
			OrgID:     org.ID,
			UserID:    &userID,
			Email:     user.Email,
			Role:      authorization.RoleOwner,
			Status:    orgdomain.MembershipActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		resource := bookingdomain.Resource{
			ID:          node.Generate(),
			OrgID:       org.ID,
			Name:        demoResourceName,
			Description: "Källaren, hus B",
			Type:        bookingdomain.ResourceTypeHourly,
			CreatedAt:   now,
		}
		if err := tx.Create(&resource).Error; err != nil {
			return err
		}

		post := contentdomain.Post{
			ID:        node.Generate(),
			OrgID:     org.ID,
			Title:     "Välkommen till föreningens nya hemsida",
			Content:   "Här hittar du nyheter, dokument och bokning av tvättstugan.",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		log.Info("demo association seeded",
			zap.String("subdomain", DemoSubdomain),
			zap.String("admin_email", DemoAdminEmail),
		)
	}
	return nil
}

func ensureAdminTx(tx *gorm.DB, node *snowflake.Node, now time.Time) (*authdomain.User, error) {
	var user authdomain.User
	err := tx.Where("email = ?", DemoAdminEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(DemoAdminPassword)
	if err != nil {
		return nil, err
	}
	user = authdomain.User{
		ID:                  node.Generate(),
		Email:               DemoAdminEmail,
		DisplayName:         demoAdminDisplay,
		PasswordHash:        &hashed,
		IsPro:               true,
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
