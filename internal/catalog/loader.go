package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/fandex/internal/metrics"
	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/watcher"
)

// Source produces the full item list of one domain.
type Source interface {
	Domain() models.Domain
	Load(ctx context.Context) ([]models.CatalogItem, error)
	String() string
}

// Loader fills a Store from sources and reloads them on change.
type Loader struct {
	store   *Store
	sources map[models.Domain]Source
	logger  *zap.Logger
	mu      sync.Mutex // serializes reloads
	watcher *watcher.Watcher
}

// NewLoader creates a loader. At most one source per domain is allowed.
func NewLoader(store *Store, sources []Source, logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{store: store, sources: make(map[models.Domain]Source, len(sources)), logger: logger}
	for _, src := range sources {
		if prev, dup := l.sources[src.Domain()]; dup {
			return nil, fmt.Errorf("domain %s has two sources: %s and %s", src.Domain(), prev, src)
		}
		l.sources[src.Domain()] = src
	}
	return l, nil
}

// Store returns the loader's store.
func (l *Loader) Store() *Store {
	return l.store
}

// LoadAll loads every source. Any failure is returned: a server should not
// start on a broken catalog.
func (l *Loader) LoadAll(ctx context.Context) error {
	for _, d := range models.Domains() {
		if _, ok := l.sources[d]; !ok {
			continue
		}
		if err := l.Reload(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Reload loads one domain and swaps its snapshot. On failure the previous
// snapshot stays in place.
func (l *Loader) Reload(ctx context.Context, d models.Domain) error {
	src, ok := l.sources[d]
	if !ok {
		return fmt.Errorf("%w: no source for %q", ErrUnknownDomain, d)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := src.Load(ctx)
	if err != nil {
		metrics.IncCatalogReload(string(d), "error")
		l.logger.Error("Failed to load catalog",
			zap.String("domain", string(d)),
			zap.Stringer("source", src),
			zap.Error(err))
		return fmt.Errorf("load %s catalog: %w", d, err)
	}
	snap := l.store.Set(d, items, src.String())
	metrics.IncCatalogReload(string(d), "ok")
	metrics.SetCatalogItems(string(d), len(snap.Items))
	l.logger.Info("Catalog loaded",
		zap.String("domain", string(d)),
		zap.Stringer("source", src),
		zap.Int("items", len(snap.Items)))
	return nil
}

// Watch reloads file-backed domains when their file changes, until ctx is
// done. Domains backed by SQLite are not watched.
func (l *Loader) Watch(ctx context.Context) error {
	byPath := make(map[string]models.Domain)
	var paths []string
	for d, src := range l.sources {
		fs, ok := src.(*FileSource)
		if !ok {
			continue
		}
		abs, err := filepath.Abs(fs.Path())
		if err != nil {
			return err
		}
		byPath[filepath.Clean(abs)] = d
		paths = append(paths, abs)
	}
	if len(paths) == 0 {
		return nil
	}

	w, err := watcher.NewWatcher(paths, func(path string) {
		d, ok := byPath[path]
		if !ok {
			return
		}
		// errors are logged by Reload and the old snapshot keeps serving
		_ = l.Reload(ctx, d)
	}, watcher.WithLogger(l.logger))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch catalogs: %w", err)
	}
	l.watcher = w
	l.logger.Info("Watching catalog files", zap.Strings("files", w.Files()))
	return nil
}

// Close stops watching.
func (l *Loader) Close() {
	if l.watcher != nil {
		l.watcher.Stop()
	}
}
