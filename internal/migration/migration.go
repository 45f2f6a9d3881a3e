package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	bookingdomain "github.com/andreasgmg/fornet/internal/booking/domain"
	contentdomain "github.com/andreasgmg/fornet/internal/content/domain"
	documentdomain "github.com/andreasgmg/fornet/internal/document/domain"
	formdomain "github.com/andreasgmg/fornet/internal/form/domain"
	newsletterdomain "github.com/andreasgmg/fornet/internal/newsletter/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// Models lists every table the application owns, parents first.
func Models() []any {
	return []any{
		&authdomain.User{},
		&authdomain.Session{},
		&orgdomain.Organization{},
		&orgdomain.Membership{},
		&bookingdomain.Resource{},
		&bookingdomain.Booking{},
		&contentdomain.Post{},
		&contentdomain.Page{},
		&contentdomain.Event{},
		&contentdomain.BoardMember{},
		&contentdomain.Sponsor{},
		&documentdomain.Document{},
		&formdomain.Submission{},
		&newsletterdomain.Newsletter{},
		&auditdomain.AuditLog{},
	}
}

// Run brings the schema up to date. Postgres gets the versioned SQL
// migrations, including the booking exclusion constraint; other dialects
// fall back to AutoMigrate.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if !db.IsPostgres(conn) {
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

// AutoMigrate creates the tables from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
