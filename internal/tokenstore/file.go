package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File keeps the token in <dir>/token, readable only by the owner.
type File struct {
	path string

	// mu orders writers within this process
	mu sync.Mutex
}

func NewFile(dir string) *File {
	return &File{path: filepath.Join(dir, Key)}
}

// NewFileAt stores the token at an explicit path.
func NewFileAt(path string) *File {
	return &File{path: path}
}

// DefaultDir is the per-user config directory for the CLI.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("tokenstore: locate config dir: %w", err)
	}
	return filepath.Join(base, "jobportal"), nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: read %s: %w", f.path, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Save writes through a temp file so a crash never leaves a torn token.
func (f *File) Save(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("tokenstore: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("tokenstore: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenstore: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("tokenstore: %w", err)
	}
	return nil
}

func (f *File) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remove()
}

func (f *File) ClearIf(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.load()
	if err != nil {
		return err
	}
	if cur != token {
		return nil
	}
	return f.remove()
}

func (f *File) remove() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenstore: remove %s: %w", f.path, err)
	}
	return nil
}
