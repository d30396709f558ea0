package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// TOML is an Engine that keeps every namespace as a table in one TOML file.
// Commits rewrite the file through a temporary file and a rename.
type TOML struct {
	path string
	mu   sync.Mutex
}

// NewTOML creates a TOML engine for the file at path. The file is created on
// the first commit.
func NewTOML(path string) *TOML {
	return &TOML{path: path}
}

type tomlDocument map[string]map[string]int64

// Open implements Engine.
func (t *TOML) Open(namespace string, mode Mode) (Handle, error) {
	t.mu.Lock()
	doc, err := t.read()
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	ns := doc[namespace]

	return &stagedHandle{
		mode: mode,
		read: func(key string) (uint8, bool) {
			v, ok := ns[key]
			if !ok {
				return 0, false
			}
			u, err := checkU8(key, v)
			return u, err == nil
		},
		commit: func(staged map[string]*uint8) error {
			return t.commit(namespace, staged)
		},
	}, nil
}

// Close implements Engine.
func (t *TOML) Close() error { return nil }

func (t *TOML) read() (tomlDocument, error) {
	doc := make(tomlDocument)

	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	return doc, nil
}

func (t *TOML) commit(namespace string, staged map[string]*uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.read()
	if err != nil {
		return err
	}

	current := make(map[string]uint8)
	for k, v := range doc[namespace] {
		if u, err := checkU8(k, v); err == nil {
			current[k] = u
		}
	}
	applyStaged(current, staged)

	ns := make(map[string]int64, len(current))
	for k, v := range current {
		ns[k] = int64(v)
	}
	doc[namespace] = ns

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal store file: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
