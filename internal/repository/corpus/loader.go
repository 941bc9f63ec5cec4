package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
)

// scriptExt is the only file extension picked up from corpus directories.
const scriptExt = ".txt"

var errNotUTF8 = errors.New("not valid UTF-8")

// Loader reads screenplay files from the first existing candidate directory.
type Loader struct {
	candidates []string
	logger     *zap.Logger
}

// NewLoader creates a loader over candidate directories in priority order.
func NewLoader(candidates []string, logger *zap.Logger) *Loader {
	return &Loader{candidates: candidates, logger: logger}
}

// Root returns the first candidate that exists as a directory, or "" if none does.
func (l *Loader) Root() string {
	for _, dir := range l.candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// Load walks the chosen root and returns one document per readable .txt file.
// Files in a directory come before its subdirectories, both in name order.
// Unreadable or non-UTF-8 files are logged and skipped.
func (l *Loader) Load() (string, []domcorpus.Document, error) {
	root := l.Root()
	if root == "" {
		l.logger.Warn("No corpus directory found, starting with an empty corpus",
			zap.Strings("candidates", l.candidates),
		)
		return "", nil, nil
	}

	l.logger.Info("Loading corpus", zap.String("root", root))

	var docs []domcorpus.Document
	if err := l.walk(root, root, &docs); err != nil {
		return root, docs, err
	}

	l.logger.Info("Corpus loaded", zap.String("root", root), zap.Int("documents", len(docs)))
	return root, docs, nil
}

func (l *Loader) walk(root, dir string, docs *[]domcorpus.Document) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir == root {
			return fmt.Errorf("read corpus root %s: %w", root, err)
		}
		l.logger.Warn("Skipping unreadable corpus directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	var subdirs []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if !strings.HasSuffix(e.Name(), scriptExt) {
			continue
		}

		doc, err := ReadFile(root, path)
		if err != nil {
			l.logger.Warn("Skipping corpus file", zap.String("path", path), zap.Error(err))
			continue
		}
		l.logger.Debug("Loaded corpus file", zap.String("id", doc.ID))
		*docs = append(*docs, doc)
	}

	for _, sub := range subdirs {
		if err := l.walk(root, sub, docs); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads one screenplay file into a document identified by its root-relative path.
func ReadFile(root, path string) (domcorpus.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domcorpus.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return domcorpus.Document{}, fmt.Errorf("read %s: %w", path, errNotUTF8)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return domcorpus.Document{}, fmt.Errorf("relative path for %s: %w", path, err)
	}
	return domcorpus.NewFile(filepath.ToSlash(rel), string(data)), nil
}
