package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"outreach/internal/types"
)

var (
	bucketTasks = []byte("tasks")
	bucketMeta  = []byte("meta")
	keySeeded   = []byte("seeded")
)

// taskRecord wraps a task with its queue position; bbolt iterates keys in
// byte order, which is not insertion order.
type taskRecord struct {
	Position int        `json:"position"`
	Task     types.Task `json:"task"`
}

type BboltRepository struct {
	db *bolt.DB
}

func NewBboltRepository(path string) (*BboltRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTasks, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BboltRepository{db: db}, nil
}

func (r *BboltRepository) List(ctx context.Context) ([]types.Task, error) {
	records := make([]taskRecord, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var rec taskRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Position < records[j].Position
	})
	out := make([]types.Task, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Task)
	}
	return out, nil
}

// Save replaces the stored queue in one transaction.
func (r *BboltRepository) Save(ctx context.Context, tasks []types.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketTasks) != nil {
			if err := tx.DeleteBucket(bucketTasks); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketTasks)
		if err != nil {
			return err
		}
		for i, task := range tasks {
			if strings.TrimSpace(task.TaskID) == "" {
				return errors.New("task id is required")
			}
			data, err := json.Marshal(taskRecord{Position: i, Task: task})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(task.TaskID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Seeded reports whether the one-time import from the file store already ran.
func (r *BboltRepository) Seeded(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	seeded := false
	err := r.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketMeta); b != nil {
			seeded = b.Get(keySeeded) != nil
		}
		return nil
	})
	return seeded, err
}

func (r *BboltRepository) MarkSeeded(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		return b.Put(keySeeded, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

func (r *BboltRepository) Backend() string {
	return BackendBbolt
}

func (r *BboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
