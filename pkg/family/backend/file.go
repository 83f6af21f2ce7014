package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/kintree/pkg/family"
)

// FileBackend stores people as an indented JSON array in a single file.
// Writes go to a temporary file that is renamed over the target, so a
// failed save never leaves a truncated file behind.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for the JSON file at path.
// The file does not need to exist yet.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the file location.
func (b *FileBackend) Path() string { return b.path }

// Load reads the file. A missing file yields an empty collection.
func (b *FileBackend) Load(ctx context.Context) ([]family.Person, error) {
	f, err := os.Open(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	people, err := family.ReadPeople(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	return people, nil
}

// Save replaces the file contents with people.
func (b *FileBackend) Save(ctx context.Context, people []family.Person) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := family.WritePeople(people, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("rename into %s: %w", b.path, err)
	}
	return nil
}

// Close does nothing for the file backend.
func (b *FileBackend) Close() error { return nil }

var _ family.Backend = (*FileBackend)(nil)
