package store

import (
	"context"
	"errors"
	"os"
	"sync"

	"outreach/internal/types"
)

const tasksSchemaVersion = 1

type tasksFile struct {
	Version int          `json:"version"`
	Tasks   []types.Task `json:"tasks"`
}

type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) List(ctx context.Context) ([]types.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var file tasksFile
	if err := readJSON(r.path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Task{}, nil
		}
		return nil, err
	}
	if file.Tasks == nil {
		return []types.Task{}, nil
	}
	return types.CloneTasks(file.Tasks), nil
}

func (r *FileRepository) Save(ctx context.Context, tasks []types.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	file := tasksFile{Version: tasksSchemaVersion, Tasks: types.CloneTasks(tasks)}
	if file.Tasks == nil {
		file.Tasks = []types.Task{}
	}
	return writeJSONAtomic(r.path, file)
}

func (r *FileRepository) Backend() string {
	return BackendFile
}

func (r *FileRepository) Close() error {
	return nil
}
