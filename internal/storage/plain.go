package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Plain keeps one file per key in a directory
type Plain struct {
	datadir string
	mu      sync.Mutex
}

// NewPlain returns a file backed store rooted at datadir
func NewPlain(datadir string) (*Plain, error) {
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Plain{datadir: datadir}, nil
}

func (p *Plain) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(p.datadir, key+".dat"), nil
}

func (p *Plain) Get(key string) ([]byte, error) {
	path, err := p.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.L.Err(err).Str("key", key).Msg("failed to load file")
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes to a temporary file first, then renames it over the old one
func (p *Plain) Set(key string, value []byte) error {
	path, err := p.path(key)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, value, 0600); err != nil {
		return fmt.Errorf("failed to write %s temp file: %w", key, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename %s file: %w", key, err)
	}
	return nil
}
