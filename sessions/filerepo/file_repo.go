package filerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/evangelism-tracker/sessions"
)

const fileName = "session.json"

var _ sessions.Repo = (*FileRepo)(nil)

// FileRepo stores the persisted record as one JSON object in dir/session.json.
// Writes go to a temp file that is renamed into place, so a crash never leaves
// a half-written record.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

func New(dir string) (*FileRepo, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[filerepo New] create %s: %w", dir, err)
	}
	return &FileRepo{path: filepath.Join(dir, fileName)}, nil
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	values, err := r.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (r *FileRepo) SetAll(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.load()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return r.save(current)
}

func (r *FileRepo) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(current, k)
	}
	if len(current) == 0 {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("[filerepo Delete] %w", err)
		}
		return nil
	}
	return r.save(current)
}

func (r *FileRepo) load() (map[string]string, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filerepo load] %w", err)
	}
	values := make(map[string]string)
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("[filerepo load] decode %s: %w", r.path, err)
	}
	return values, nil
}

func (r *FileRepo) save(values map[string]string) error {
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("[filerepo save] encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), fileName+".*")
	if err != nil {
		return fmt.Errorf("[filerepo save] %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("[filerepo save] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filerepo save] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filerepo save] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("[filerepo save] rename: %w", err)
	}
	return nil
}
