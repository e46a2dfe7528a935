package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"taskman/internal/task"
)

// TaskStore implements Store on top of a KV.
type TaskStore struct {
	kv      KV
	key     string
	lenient bool
	logger  *log.Logger
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *TaskStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLenientDecode makes GetAll treat a corrupt collection or an
// unparseable backing store as empty instead of failing. The corruption is
// logged at warn level.
func WithLenientDecode(lenient bool) Option {
	return func(s *TaskStore) { s.lenient = lenient }
}

// WithLogger sets the logger used for warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *TaskStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewTaskStore creates a TaskStore over kv.
func NewTaskStore(kv KV, opts ...Option) *TaskStore {
	s := &TaskStore{
		kv:     kv,
		key:    DefaultKey,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key in use.
func (s *TaskStore) Key() string {
	return s.key
}

// GetAll implements Store.
func (s *TaskStore) GetAll(ctx context.Context) ([]task.Task, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if s.lenient && errors.Is(err, ErrCorrupt) {
			s.logger.Warn("discarding unreadable storage", "key", s.key, "err", err)
			return []task.Task{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !ok || raw == "" {
		return []task.Task{}, nil
	}

	tasks, err := decodeTasks(raw)
	if err != nil {
		if s.lenient {
			s.logger.Warn("discarding unreadable task collection", "key", s.key, "err", err)
			return []task.Task{}, nil
		}
		return nil, fmt.Errorf("%w: key %q: %w", ErrCorrupt, s.key, err)
	}
	return tasks, nil
}

// SaveAll implements Store.
func (s *TaskStore) SaveAll(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	s.logger.Debug("saved tasks", "key", s.key, "count", len(tasks))
	return nil
}

func decodeTasks(raw string) ([]task.Task, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if doc == nil {
		return []task.Task{}, nil
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var tasks []task.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}
