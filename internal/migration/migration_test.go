package migration

import (
	"io/fs"
	"testing"

	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFallsBackToAutoMigrate(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Run(conn))
	require.NoError(t, Run(conn))

	for _, table := range []string{
		"users", "sessions", "organizations", "organization_members",
		"resources", "bookings", "posts", "pages", "events",
		"board_members", "sponsors", "documents", "form_submissions", "newsletters",
		"audit_logs",
	} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups, err := fs.Glob(sub, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(sub, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))

	schema, err := fs.ReadFile(sub, "000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "EXCLUDE USING gist")
}

func TestRunRejectsNilHandle(t *testing.T) {
	assert.Error(t, Run(nil))
	assert.Error(t, RunMigrations(nil))
}
