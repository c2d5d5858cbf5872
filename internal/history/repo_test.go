package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/pkg/database"
	"productcatalog/pkg/models"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db)
}

func TestRecordAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	stored, err := repo.Record(ctx, Run{
		CatalogPath: "products.json",
		BackupPath:  "products.json.bak",
		Products:    2,
		Fallbacks:   1,
		Entries: []models.ReportEntry{
			{ID: 1, Name: "Mug", Before: "mug.png", After: "mug.png"},
			{ID: 2, Name: "Lamp", Before: "lamp.jpg", After: "placeholder.png", Note: "fallback"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	require.False(t, stored.StartedAt.IsZero())

	got, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "products.json", got.CatalogPath)
	assert.Equal(t, "products.json.bak", got.BackupPath)
	assert.Equal(t, 2, got.Products)
	assert.Equal(t, 1, got.Fallbacks)
	assert.False(t, got.DryRun)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "Mug", got.Entries[0].Name)
	assert.Equal(t, "fallback", got.Entries[1].Note)
	assert.WithinDuration(t, stored.StartedAt, got.StartedAt, time.Second)
}

func TestGetMissing(t *testing.T) {
	repo := newRepo(t)

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListNewestFirst(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, path := range []string{"a.json", "b.json", "c.json"} {
		_, err := repo.Record(ctx, Run{CatalogPath: path, StartedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c.json", runs[0].CatalogPath)
	assert.Equal(t, "b.json", runs[1].CatalogPath)
	assert.Empty(t, runs[0].Entries)
}

func TestListEmpty(t *testing.T) {
	runs, err := newRepo(t).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)
}
