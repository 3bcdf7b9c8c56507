package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/steamnoodles/internal/models"
)

func sampleRecords() []models.ReviewRecord {
	base := time.Date(2024, 12, 1, 9, 30, 0, 0, time.UTC)
	return []models.ReviewRecord{
		{ID: "r3", Timestamp: base.Add(48 * time.Hour), Text: "Cold soup", Sentiment: models.SentimentNegative, Reply: "Sorry!"},
		{ID: "r1", Timestamp: base, Text: "Loved it", Sentiment: models.SentimentPositive, Reply: "Thanks!"},
		{ID: "r2", Timestamp: base.Add(24 * time.Hour), Text: "It was fine", Sentiment: models.SentimentNeutral},
	}
}

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestSQLiteStore_AppendAndReadAll(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleRecords()...))

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"r1", "r2", "r3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.True(t, got[0].Timestamp.Equal(time.Date(2024, 12, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, models.SentimentPositive, got[0].Sentiment)
	assert.Equal(t, "Thanks!", got[0].Reply)
	assert.False(t, got[1].HasReply())
}

func TestSQLiteStore_AppendIgnoresDuplicates(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	records := sampleRecords()
	require.NoError(t, store.Append(ctx, records...))

	dup := records[0]
	dup.Text = "changed"
	require.NoError(t, store.Append(ctx, dup))

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Cold soup", got[2].Text)
}

func TestSQLiteStore_ReadRangeIsHalfOpen(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, sampleRecords()...))

	start := time.Date(2024, 12, 1, 9, 30, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	got, err := store.ReadRange(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)
}

func TestOpenSQLite_ReopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, sampleRecords()...))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
