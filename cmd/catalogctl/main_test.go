package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/internal/catalog"
	"productcatalog/internal/history"
	"productcatalog/internal/resolver"
)

const testCatalog = `[
  {"id": 1, "name": "Mug", "type": "kitchen", "price": 8, "description": "", "image": "mug.png"},
  {"id": 2, "name": "Lamp", "type": "office", "price": 30, "description": "", "image": "lamp.jpg"},
  {"id": 0, "name": "", "type": "", "price": 0, "description": "", "image": "ghost.png"}
]`

type env struct {
	dir     string
	catalog string
	images  string
	history string
}

func newEnv(t *testing.T, images ...string) env {
	t.Helper()
	dir := t.TempDir()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)

	e := env{
		dir:     dir,
		catalog: filepath.Join(dir, "products.json"),
		images:  filepath.Join(dir, "images"),
		history: filepath.Join(dir, "history.db"),
	}
	require.NoError(t, os.WriteFile(e.catalog, []byte(testCatalog), 0o644))
	require.NoError(t, os.Mkdir(e.images, 0o755))
	for _, name := range images {
		require.NoError(t, os.WriteFile(filepath.Join(e.images, name), []byte(name), 0o644))
	}
	return e
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{
		"--catalog", e.catalog,
		"--images", e.images,
		"--history-db", e.history,
		"--log-level", "error",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAuditText(t *testing.T) {
	e := newEnv(t, "Mug.PNG", "placeholder.png")

	out, err := e.run(t, "audit", "-o", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "Files in images folder:\nmug.png\nplaceholder.png\n")
	assert.Contains(t, out, "Products with missing images:\n")
	assert.Contains(t, out, "- id:2 name:Lamp image field:lamp.jpg\n")
	assert.Contains(t, out, "- id:? name:? image field:ghost.png\n")
	assert.NotContains(t, out, "All product image fields match files.")
}

func TestAuditAllMatched(t *testing.T) {
	e := newEnv(t, "mug.png", "lamp.jpg", "ghost.png")

	out, err := e.run(t, "audit", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "All product image fields match files.")
}

func TestAuditJSON(t *testing.T) {
	e := newEnv(t, "mug.png")

	out, err := e.run(t, "audit", "-o", "json")
	require.NoError(t, err)

	var rep resolver.AuditReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Count)
	assert.False(t, rep.AllMatched)
}

func TestAuditFatalErrors(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.RemoveAll(e.images))

	_, err := e.run(t, "audit")
	require.Error(t, err)

	require.NoError(t, os.Remove(e.catalog))
	_, err = e.run(t, "audit")
	require.ErrorIs(t, err, catalog.ErrCatalogNotFound)
}

func TestRepairWritesBackup(t *testing.T) {
	e := newEnv(t, "Mug.png", "placeholder.png")

	out, err := e.run(t, "repair", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 3 products. Backup at "+e.catalog+".bak")
	assert.Contains(t, out, "fallback")

	backup, err := os.ReadFile(e.catalog + ".bak")
	require.NoError(t, err)
	assert.Equal(t, testCatalog, string(backup))

	products, _, err := catalog.LoadFile(e.catalog)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "mug.png", products[0].Image)
	assert.Equal(t, resolver.Placeholder, products[1].Image)
	assert.Equal(t, resolver.Placeholder, products[2].Image)
}

func TestRepairMissingImagesDirMutatesNothing(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.RemoveAll(e.images))

	_, err := e.run(t, "repair")
	require.Error(t, err)

	b, err := os.ReadFile(e.catalog)
	require.NoError(t, err)
	assert.Equal(t, testCatalog, string(b))
	assert.NoFileExists(t, e.catalog+".bak")
}

func TestRepairDryRunWithHistory(t *testing.T) {
	e := newEnv(t, "mug.png")

	out, err := e.run(t, "repair", "--dry-run", "--history", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: 3 products checked, 2 would fall back.")
	assert.Contains(t, out, "Recorded run ")
	assert.NoFileExists(t, e.catalog+".bak")

	out, err = e.run(t, "history", "-o", "json")
	require.NoError(t, err)
	var runs []history.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
	assert.Equal(t, 2, runs[0].Fallbacks)

	out, err = e.run(t, "history", "show", runs[0].ID, "-o", "json")
	require.NoError(t, err)
	var run history.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.Len(t, run.Entries, 3)
	assert.Equal(t, "mug.png", run.Entries[0].After)

	_, err = e.run(t, "history", "show", "nope")
	require.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	e := newEnv(t)
	csvPath := filepath.Join(e.dir, "products.csv")

	out, err := e.run(t, "export", "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 products")

	// only rows with an id and a name survive the import
	out, err = e.run(t, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 products")

	products, _, err := catalog.LoadFile(e.catalog)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Lamp", products[1].Name)

	backup, err := os.ReadFile(e.catalog + ".bak")
	require.NoError(t, err)
	assert.Equal(t, testCatalog, string(backup))
}

func TestInvalidOutputFormat(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "audit", "-o", "xml")
	require.Error(t, err)
}
