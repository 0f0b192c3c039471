package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"griefingcounter/internal/models"
)

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &d
}

func TestQuerySelect(t *testing.T) {
	q := NewQuery().KillerIs("Test_Player").VictimNot("Test_Player").Limit(5)
	sqlText, args := q.Select("COUNT(*)")
	assert.Equal(t,
		"SELECT COUNT(*) FROM kills WHERE LOWER(killer) = ? AND LOWER(killed_player) <> ? LIMIT ?",
		sqlText)
	assert.Equal(t, []any{"test_player", "test_player", 5}, args)
}

func TestDateWindowBoundaries(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	_, err := st.InsertEvents(ctx, []models.KillEvent{
		event("2025-02-28 23:59:59", "before", "test_player"),
		event("2025-03-01 00:00:00", "first", "test_player"),
		event("2025-03-02 23:59:59", "last", "test_player"),
		event("2025-03-03 00:00:00", "after", "test_player"),
	})
	require.NoError(t, err)

	rows, err := st.Events(ctx, NewQuery().DateWindow(day(t, "2025-03-01"), day(t, "2025-03-02")))
	require.NoError(t, err)

	var victims []string
	for _, ev := range rows {
		victims = append(victims, ev.Victim)
	}
	// The start day is included from its midnight; the end day through its
	// last second. Midnight of the next day is out.
	assert.ElementsMatch(t, []string{"first", "last"}, victims)
}

func TestInvolvesExcludesSuicides(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	_, err := st.InsertEvents(ctx, []models.KillEvent{
		event("2025-03-01 12:00:00", "victim1", "test_player"),
		event("2025-03-01 12:01:00", "test_player", "enemy1"),
		event("2025-03-01 12:02:00", "test_player", "test_player"),
		event("2025-03-01 12:03:00", "other1", "other2"),
	})
	require.NoError(t, err)

	rows, err := st.Events(ctx, NewQuery().Involves("test_player").NewestFirst())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-01 12:01:00", rows[0].Timestamp)
	assert.Equal(t, "2025-03-01 12:00:00", rows[1].Timestamp)
}
