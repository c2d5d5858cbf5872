package images

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CachedLister keeps the directory listing in memory and drops it whenever
// fsnotify reports a change in the directory. Until Start succeeds it lists
// the directory on every call.
type CachedLister struct {
	dir    string
	logger *zap.Logger

	mu       sync.RWMutex
	names    []string
	valid    bool
	gen      uint64 // bumped on every invalidation
	watching bool
	onChange func()

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewCachedLister(dir string, logger *zap.Logger) *CachedLister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLister{dir: dir, logger: logger}
}

// OnChange registers fn to run after every invalidation. It runs on the
// watcher goroutine.
func (c *CachedLister) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start begins watching the directory. It is non-blocking.
func (c *CachedLister) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	if err := w.Add(c.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", c.dir, err)
	}

	c.watcher = w
	c.watching = true
	c.valid = false
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})

	go c.run(ctx, w, c.stopCh, c.doneCh)
	c.logger.Info("watching image directory", zap.String("dir", c.dir))
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (c *CachedLister) Stop() {
	c.mu.Lock()
	w, stopCh, doneCh := c.watcher, c.stopCh, c.doneCh
	c.watcher = nil
	c.watching = false
	c.valid = false
	c.mu.Unlock()

	if w == nil {
		return
	}

	close(stopCh)
	<-doneCh

	if err := w.Close(); err != nil {
		c.logger.Warn("close image watcher", zap.Error(err))
	}
}

func (c *CachedLister) List() ([]string, error) {
	c.mu.RLock()
	if c.watching && c.valid {
		out := append([]string(nil), c.names...)
		c.mu.RUnlock()
		return out, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	names, err := ListDir(c.dir)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// a change seen while listing means names may already be stale
	if c.watching && c.gen == gen {
		c.names = names
		c.valid = true
	}
	c.mu.Unlock()
	return append([]string(nil), names...), nil
}

// Invalidate drops the cached listing.
func (c *CachedLister) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.names = nil
	c.gen++
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (c *CachedLister) run(ctx context.Context, w *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		// Without a watcher the cache can no longer be trusted.
		c.mu.Lock()
		c.watching = false
		c.valid = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			c.logger.Debug("image directory changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			c.Invalidate()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.logger.Warn("image watcher error", zap.Error(err))
			c.Invalidate()
		}
	}
}
