package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"outreach/internal/types"
)

func sampleTasks() []types.Task {
	bound := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []types.Task{
		{TaskID: "zz", Link: "https://x.com/a", Comments: []string{"one"}, SocialMedia: types.PlatformX, BoundAt: bound},
		{TaskID: "aa", Link: "https://youtube.com/b", Comments: []string{"two", "three"}, CommentIndex: 1, SocialMedia: types.PlatformYoutube,
			RelatedBriefcases: []types.Briefcase{{ID: "b1", SocialMedia: types.PlatformYoutube, ProfileID: "p1"}}},
		{TaskID: "mm", Link: "https://instagram.com/c", SocialMedia: types.PlatformInstagram},
	}
}

func checkRoundTrip(t *testing.T, repo TaskRepository) {
	t.Helper()
	ctx := context.Background()

	empty, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty queue, got %d", len(empty))
	}

	if err := repo.Save(ctx, sampleTasks()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].TaskID != "zz" || got[1].TaskID != "aa" || got[2].TaskID != "mm" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].CommentIndex != 1 || len(got[1].RelatedBriefcases) != 1 {
		t.Fatalf("task fields lost: %+v", got[1])
	}
	if !got[0].BoundAt.Equal(sampleTasks()[0].BoundAt) {
		t.Fatalf("bound time lost: %v", got[0].BoundAt)
	}

	if err := repo.Save(ctx, sampleTasks()[2:]); err != nil {
		t.Fatalf("save shrink: %v", err)
	}
	got, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("list after shrink: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "mm" {
		t.Fatalf("expected removed tasks gone, got %+v", got)
	}
}

func TestBboltRepositoryRoundTrip(t *testing.T) {
	repo, err := NewBboltRepository(filepath.Join(t.TempDir(), "outreach.db"))
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	defer repo.Close()
	checkRoundTrip(t, repo)
}

func TestBboltRepositoryRejectsMissingID(t *testing.T) {
	repo, err := NewBboltRepository(filepath.Join(t.TempDir(), "outreach.db"))
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	defer repo.Close()
	if err := repo.Save(context.Background(), []types.Task{{Link: "https://x.com"}}); err == nil {
		t.Fatalf("expected error for task without id")
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	checkRoundTrip(t, NewFileRepository(filepath.Join(t.TempDir(), "nested", "tasks.json")))
}

func TestFileRepositoryRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileRepository(path).List(context.Background()); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{TasksFile: filepath.Join(dir, "tasks.json"), DBPath: filepath.Join(dir, "outreach.db")}

	repo, err := Open(paths, "")
	if err != nil {
		t.Fatalf("Open default: %v", err)
	}
	if repo.Backend() != BackendBbolt {
		t.Fatalf("expected bbolt default, got %s", repo.Backend())
	}
	_ = repo.Close()

	repo, err = Open(paths, " FILE ")
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	if repo.Backend() != BackendFile {
		t.Fatalf("expected file backend, got %s", repo.Backend())
	}

	if _, err := Open(paths, "sqlite"); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
	if _, err := Open(Paths{}, BackendBbolt); err == nil {
		t.Fatalf("expected missing db path error")
	}
}

func TestSeedFromFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	filePath := filepath.Join(dir, "tasks.json")
	if err := NewFileRepository(filePath).Save(ctx, sampleTasks()); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	repo, err := NewBboltRepository(filepath.Join(dir, "outreach.db"))
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	defer repo.Close()

	n, err := SeedFromFile(ctx, repo, filePath)
	if err != nil {
		t.Fatalf("SeedFromFile: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 seeded tasks, got %d", n)
	}
	n, err = SeedFromFile(ctx, repo, filePath)
	if err != nil || n != 0 {
		t.Fatalf("expected no reseed, got n=%d err=%v", n, err)
	}
}

func TestSeedFromFileRunsOnce(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	filePath := filepath.Join(dir, "tasks.json")
	if err := NewFileRepository(filePath).Save(ctx, sampleTasks()[:1]); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	dbPath := filepath.Join(dir, "outreach.db")
	repo, err := NewBboltRepository(dbPath)
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	if n, err := SeedFromFile(ctx, repo, filePath); err != nil || n != 1 {
		t.Fatalf("expected first seed, got n=%d err=%v", n, err)
	}
	if err := repo.Save(ctx, nil); err != nil {
		t.Fatalf("empty queue: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	repo, err = NewBboltRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	n, err := SeedFromFile(ctx, repo, filePath)
	if err != nil || n != 0 {
		t.Fatalf("expected no reseed, got n=%d err=%v", n, err)
	}
	tasks, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("removed tasks came back: %+v", tasks)
	}
}

func TestSeedFromFileMarksExistingQueue(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	filePath := filepath.Join(dir, "tasks.json")
	repo, err := NewBboltRepository(filepath.Join(dir, "outreach.db"))
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	defer repo.Close()
	if n, err := SeedFromFile(ctx, repo, filePath); err != nil || n != 0 {
		t.Fatalf("expected nothing to seed, got n=%d err=%v", n, err)
	}
	seeded, err := repo.Seeded(ctx)
	if err != nil || !seeded {
		t.Fatalf("expected seed marker after first open, got %v err=%v", seeded, err)
	}

	if err := NewFileRepository(filePath).Save(ctx, sampleTasks()); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if n, err := SeedFromFile(ctx, repo, filePath); err != nil || n != 0 {
		t.Fatalf("expected marker to block import, got n=%d err=%v", n, err)
	}
}
