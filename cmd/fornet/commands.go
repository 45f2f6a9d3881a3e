package main

import (
	"context"
	"time"

	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/config"
	"github.com/andreasgmg/fornet/internal/migration"
	"github.com/andreasgmg/fornet/internal/observability"
	"github.com/andreasgmg/fornet/internal/seed"
	"github.com/andreasgmg/fornet/internal/server"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const oneShotTimeout = 2 * time.Minute

type ServeCmd struct{}

func (ServeCmd) Run() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

type MigrateCmd struct{}

func (MigrateCmd) Run(ctx context.Context) error {
	return runOnce(ctx, func(conn *gorm.DB, log *zap.Logger) error {
		if err := migration.Run(conn); err != nil {
			return err
		}
		log.Info("database schema up to date")
		return nil
	})
}

type SeedCmd struct {
	SkipMigrate bool `help:"Do not apply migrations before seeding."`
}

func (c SeedCmd) Run(ctx context.Context) error {
	return runOnce(ctx, func(conn *gorm.DB, log *zap.Logger) error {
		if !c.SkipMigrate {
			if err := migration.Run(conn); err != nil {
				return err
			}
		}
		return seed.EnsureDemo(conn, log)
	})
}

// runOnce opens the database through the regular modules, runs fn and shuts
// the app down again.
func runOnce(ctx context.Context, fn func(conn *gorm.DB, log *zap.Logger) error) error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		fx.Invoke(fn),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, oneShotTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	return app.Stop(startCtx)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
