package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV keeps every key in a single JSON object file.
// The file is re-read on every Get so that changes made by another process
// are visible; Set rewrites the whole file through a temp file and rename.
type FileKV struct {
	mu             sync.Mutex
	path           string
	discardCorrupt bool
}

// FileOption configures a FileKV.
type FileOption func(*FileKV)

// DiscardCorruptFile makes Set replace an unparseable file instead of
// failing. The old file is kept next to it with a ".corrupt" suffix.
func DiscardCorruptFile(discard bool) FileOption {
	return func(f *FileKV) { f.discardCorrupt = discard }
}

// NewFileKV returns a FileKV backed by path. The parent directory is created
// with mode 0700 if needed; the file itself is created on first Set.
func NewFileKV(path string, opts ...FileOption) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	f := &FileKV{path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CorruptPath is where an unparseable file is moved by Set.
func (f *FileKV) CorruptPath() string {
	return f.path + ".corrupt"
}

// Path returns the backing file path.
func (f *FileKV) Path() string {
	return f.path
}

// Get implements KV.
func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// Set implements KV.
func (f *FileKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.readLocked()
	if errors.Is(err, ErrCorrupt) && f.discardCorrupt {
		if rerr := os.Rename(f.path, f.CorruptPath()); rerr != nil {
			return fmt.Errorf("move corrupt storage file: %w", rerr)
		}
		m, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	m[key] = value
	return f.writeLocked(m)
}

func (f *FileKV) readLocked() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if len(b) == 0 {
		return map[string]string{}, nil
	}

	m := map[string]string{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: storage file %s: %w", ErrCorrupt, f.path, err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func (f *FileKV) writeLocked(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	return nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

// Get implements KV.
func (k *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.m[key]
	return v, ok, nil
}

// Set implements KV.
func (k *MemoryKV) Set(ctx context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	return nil
}
