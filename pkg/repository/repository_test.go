package repository

import (
	"context"
	"testing"

	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/andreasgmg/fornet/pkg/db/option"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	Status string
}

func TestUpdateHonoursConditions(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&note{}))

	ctx := context.Background()
	repo := ProvideStore[note](conn)
	require.NoError(t, repo.Create(ctx, &note{ID: 1, Status: "draft"}))

	onlyDrafts := option.ApplyWhere("status = ?", "draft")
	require.NoError(t, repo.Update(ctx, 1, map[string]any{"status": "sent"}, onlyDrafts))

	err = repo.Update(ctx, 1, map[string]any{"status": "sent"}, onlyDrafts)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Update(ctx, 2, map[string]any{"status": "sent"})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "sent", got.Status)
}
