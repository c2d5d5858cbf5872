package images

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCachedListerInvalidates(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFiles(t, dir, "a.png")

	var changes atomic.Int32
	l := NewCachedLister(dir, nil)
	l.OnChange(func() { changes.Add(1) })
	require.NoError(t, l.Start(context.Background()))

	names, err := l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, names)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("b"), 0o644))

	require.Eventually(t, func() bool {
		names, err := l.List()
		return err == nil && len(names) == 2
	}, 2*time.Second, 20*time.Millisecond)
	assert.Positive(t, changes.Load())

	l.Stop()
	l.Stop()
}

func TestCachedListerWithoutWatcher(t *testing.T) {
	dir := t.TempDir()
	l := NewCachedLister(dir, nil)

	names, err := l.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	writeFiles(t, dir, "c.png")
	names, err = l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"c.png"}, names)
}

func TestCachedListerStartMissingDir(t *testing.T) {
	l := NewCachedLister(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, l.Start(context.Background()))
	l.Stop()
}
