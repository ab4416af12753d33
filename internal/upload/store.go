// Package upload keeps user photos on local disk under generated names.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPath = errors.New("invalid upload path")
	ErrEmptyUpload = errors.New("empty upload")
)

type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes r under a unique name derived from the original filename
// and returns the absolute path of the stored file.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s_%s", s.now().Format("20060102_150405"), uuid.NewString()[:8], sanitize(filename))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n == 0 {
		err = ErrEmptyUpload
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	slog.Debug("stored upload", "path", path, "bytes", n)
	return filepath.Abs(path)
}

// Resolve maps a client supplied path onto a file inside the store.
// Paths pointing outside the store directory are rejected.
func (s *Store) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}

	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", err
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, filepath.Base(candidate))
	}
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(root, candidate)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return candidate, nil
}

func (s *Store) Remove(path string) error {
	resolved, err := s.Resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(resolved)
}

func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "photo"
	}
	return base
}
