package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/scriptforge/internal/domain"
	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
)

// appender is the part of Store the watcher writes through.
type appender interface {
	Has(id string) bool
	Append(doc domcorpus.Document) (int, error)
}

// dirAdder registers directories for notifications.
type dirAdder interface {
	Add(name string) error
}

// DefaultSettle is how long a file must go without Create or Write events before it is read.
const DefaultSettle = 500 * time.Millisecond

// Watcher appends screenplay files that appear under the corpus root after startup.
// A file is read only once it has settled, so content written in several chunks is
// stored whole. Removals and edits of already stored files are ignored; the corpus only grows.
type Watcher struct {
	root   string
	store  appender
	logger *zap.Logger
	settle time.Duration
	now    func() time.Time

	// pending maps a file path to its last Create/Write event. Only the Run goroutine touches it.
	pending map[string]time.Time
}

// NewWatcher creates a watcher for root that appends into store.
func NewWatcher(root string, store appender, logger *zap.Logger) *Watcher {
	return &Watcher{
		root:    root,
		store:   store,
		logger:  logger,
		settle:  DefaultSettle,
		now:     time.Now,
		pending: make(map[string]time.Time),
	}
}

// WithSettle sets the quiet period a file needs before it is ingested.
func (w *Watcher) WithSettle(d time.Duration) *Watcher {
	if d > 0 {
		w.settle = d
	}
	return w
}

// Run watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("Watching corpus directory", zap.String("root", w.root))

	tick := time.NewTicker(w.settle / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-tick.C:
			w.flush(t)
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Corpus watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(fw dirAdder, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) {
			if err := w.addTree(fw, ev.Name); err != nil {
				w.logger.Warn("Failed to watch new corpus directory", zap.String("dir", ev.Name), zap.Error(err))
			}
		}
		return
	}

	w.mark(ev.Name)
}

// mark queues a candidate file, restarting its quiet period.
func (w *Watcher) mark(path string) {
	name := filepath.Base(path)
	if isHidden(name) || !strings.HasSuffix(name, scriptExt) {
		return
	}
	w.pending[path] = w.now()
}

// flush ingests every pending file that has been quiet for the settle period, in path order.
func (w *Watcher) flush(now time.Time) {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	for _, path := range ready {
		delete(w.pending, path)
		w.ingest(path)
	}
}

// addTree watches dir and every directory below it, queueing files already present.
// Files dropped together with a new directory exist before the watch does.
func (w *Watcher) addTree(fw dirAdder, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Skipping corpus path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			if dir != w.root {
				w.mark(path)
			}
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ingest(path string) {
	doc, err := ReadFile(w.root, path)
	if err != nil {
		w.logger.Warn("Skipping corpus file", zap.String("path", path), zap.Error(err))
		return
	}
	// An empty file is queued again by its next Write.
	if doc.Content == "" || w.store.Has(doc.ID) {
		return
	}

	count, err := w.store.Append(doc)
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			w.logger.Warn("Failed to append corpus file", zap.String("id", doc.ID), zap.Error(err))
		}
		return
	}
	w.logger.Info("Corpus file added", zap.String("id", doc.ID), zap.Int("corpus_size", count))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
