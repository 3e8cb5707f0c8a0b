package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/dagkit/logger"
	"github.com/kbukum/dagkit/observability"
)

// FileStore reads and writes one document at a fixed path.
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a store for path, creating parent directories as
// needed. The path is resolved to an absolute path up front.
func NewFileStore(path string, log *logger.Logger) (*FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("persist: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return nil, fmt.Errorf("persist: create directory: %w", err)
	}
	if log == nil {
		log = logger.NewDefault("persist")
	}
	return &FileStore{path: abs, log: log}, nil
}

// Path returns the absolute path the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether a document has been saved at the store's path.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save writes the document atomically. The document is written to a temp
// file in the target directory and renamed into place, so a reader never
// observes a partial write.
func (s *FileStore) Save(doc Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("persist: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: replace document: %w", err)
	}

	s.log.Debug("document saved", logger.Fields(
		"path", s.path,
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
	))
	return nil
}

// CheckHealth reports whether the store's directory is still accessible.
// It implements observability.HealthChecker.
func (s *FileStore) CheckHealth(ctx context.Context) observability.Health {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return observability.Down("persistence", err)
	}
	h := observability.Up("persistence")
	h.Details = map[string]string{"path": s.path}
	return h
}

// Load reads and validates the stored document.
func (s *FileStore) Load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, fmt.Errorf("persist: document not found: %s", s.path)
		}
		return Document{}, fmt.Errorf("persist: read document: %w", err)
	}

	doc, err := Unmarshal(data)
	if err != nil {
		return Document{}, err
	}

	s.log.Debug("document loaded", logger.Fields(
		"path", s.path,
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
	))
	return doc, nil
}
