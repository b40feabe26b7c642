package store

import (
	"context"
	"errors"
	"strings"

	"outreach/internal/types"
)

const (
	BackendFile  = "file"
	BackendBbolt = "bbolt"
)

// TaskRepository persists the local task queue. Save replaces the whole
// queue; List returns it in saved order.
type TaskRepository interface {
	List(ctx context.Context) ([]types.Task, error)
	Save(ctx context.Context, tasks []types.Task) error
	Backend() string
	Close() error
}

type Paths struct {
	TasksFile string
	DBPath    string
}

func Open(paths Paths, backend string) (TaskRepository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	case BackendFile:
		if strings.TrimSpace(paths.TasksFile) == "" {
			return nil, errors.New("tasks file path is required for file repository")
		}
		return NewFileRepository(paths.TasksFile), nil
	default:
		return nil, errors.New("unsupported repository backend: " + backend)
	}
}

// seedTracker remembers that a file import happened so it never repeats.
type seedTracker interface {
	Seeded(ctx context.Context) (bool, error)
	MarkSeeded(ctx context.Context) error
}

// SeedFromFile copies tasks from the file store into dst the first time dst
// is opened empty. Later opens never import again, so a queue emptied by
// removals stays empty.
func SeedFromFile(ctx context.Context, dst TaskRepository, path string) (int, error) {
	if dst == nil || dst.Backend() == BackendFile || strings.TrimSpace(path) == "" {
		return 0, nil
	}
	tracker, ok := dst.(seedTracker)
	if !ok {
		return 0, nil
	}
	seeded, err := tracker.Seeded(ctx)
	if err != nil || seeded {
		return 0, err
	}
	current, err := dst.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(current) > 0 {
		return 0, tracker.MarkSeeded(ctx)
	}
	legacy, err := NewFileRepository(path).List(ctx)
	if err != nil {
		return 0, err
	}
	if len(legacy) > 0 {
		if err := dst.Save(ctx, legacy); err != nil {
			return 0, err
		}
	}
	return len(legacy), tracker.MarkSeeded(ctx)
}
