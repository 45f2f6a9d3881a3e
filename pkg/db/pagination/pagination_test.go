package pagination

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id int }

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	at := time.Date(2024, 5, 20, 6, 0, 0, 123, time.UTC)
	token, err := EncodeCursor(Cursor{ID: "1790000000000000000", CreatedAt: at.Format(time.RFC3339Nano)})
	require.NoError(t, err)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	id, err := cursor.SnowflakeID()
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(1790000000000000000), id)
	got, err := cursor.Time()
	require.NoError(t, err)
	assert.True(t, at.Equal(got))
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidPageToken)

	cursor, err := DecodeCursor("e30") // {}
	require.NoError(t, err)
	_, err = cursor.SnowflakeID()
	assert.ErrorIs(t, err, ErrInvalidPageToken)
	_, err = cursor.Time()
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestBuildCursorPageInfo(t *testing.T) {
	last := func(r *row) string { return string(rune('a' + r.id)) }

	info := BuildCursorPageInfo([]*row{{0}, {1}, {2}}, 2, last)
	assert.True(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)

	info = BuildCursorPageInfo([]*row{{0}, {1}}, 2, last)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestPaginationSize(t *testing.T) {
	assert.Equal(t, 50, Pagination{}.Size(50, 250))
	assert.Equal(t, 250, Pagination{PageSize: 1000}.Size(50, 250))
	assert.Equal(t, 7, Pagination{PageSize: 7}.Size(50, 250))
}
