package panel

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"outreach/internal/client"
	"outreach/internal/types"
)

type fakeBackend struct {
	mu sync.Mutex

	snapshots  []types.PanelSnapshot
	polls      int
	pollErr    error
	streamErr  error
	stream     chan types.PanelSnapshot
	nextErr    error
	nextCalls  int
	selectArgs [][2]int
	closeNames []string
}

func (f *fakeBackend) PanelSnapshot(context.Context) (*types.PanelSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if len(f.snapshots) == 0 {
		return &types.PanelSnapshot{}, nil
	}
	snap := f.snapshots[0]
	if len(f.snapshots) > 1 {
		f.snapshots = f.snapshots[1:]
	}
	return &snap, nil
}

func (f *fakeBackend) PanelStream(context.Context) (<-chan types.PanelSnapshot, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.streamErr != nil {
		return nil, nil, f.streamErr
	}
	if f.stream == nil {
		return nil, nil, &client.APIError{StatusCode: http.StatusNotFound, Message: "not found"}
	}
	return f.stream, func() {}, nil
}

func (f *fakeBackend) NextItem(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCalls++
	return f.nextErr
}

func (f *fakeBackend) SetCommentIndex(_ context.Context, taskIndex, commentIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectArgs = append(f.selectArgs, [2]int{taskIndex, commentIndex})
	return nil
}

func (f *fakeBackend) CloseWorkspace(_ context.Context, profileName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeNames = append(f.closeNames, profileName)
	return nil
}

func (f *fakeBackend) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

type recordingCopier struct {
	mu     sync.Mutex
	copies []string
}

func (r *recordingCopier) Copy(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.copies = append(r.copies, text)
	return nil
}

func (r *recordingCopier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.copies)
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (m *manualTimer) afterFunc(_ time.Duration, fn func()) func() bool {
	m.fn = fn
	m.stopped = false
	return func() bool {
		m.stopped = true
		return true
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func fastConfig() Config {
	return Config{
		PollInterval: time.Millisecond,
		MaxBackoff:   4 * time.Millisecond,
		NextTimeout:  time.Second,
		Push:         true,
	}
}

func TestIsComplete(t *testing.T) {
	cases := []struct {
		progress [2]int
		want     bool
	}{
		{progress: [2]int{3, 5}, want: false},
		{progress: [2]int{5, 5}, want: true},
		{progress: [2]int{0, 0}, want: false},
		{progress: [2]int{6, 5}, want: true},
	}
	for _, tc := range cases {
		e := NewEngine(&fakeBackend{}, nil, fastConfig())
		e.Apply(types.PanelSnapshot{OverallProgress: tc.progress})
		if got := e.View().IsComplete; got != tc.want {
			t.Fatalf("progress %v: expected complete=%v, got %v", tc.progress, tc.want, got)
		}
	}
}

func TestTaskProgressFromSnapshot(t *testing.T) {
	e := NewEngine(&fakeBackend{}, nil, fastConfig())
	e.Apply(types.PanelSnapshot{
		CurrentTask:      &types.Task{TaskID: "t1", RelatedBriefcases: []types.Briefcase{{ID: "b1"}}},
		CurrentTaskIndex: intPtr(1),
		TaskProgress:     [][3]int{{0, 2, 2}, {1, 1, 4}},
		OverallProgress:  [2]int{3, 6},
	})
	v := e.View()
	if v.TaskVisited != 1 || v.TaskTotal != 4 || v.TaskDisplay != 2 {
		t.Fatalf("unexpected task progress %+v", v)
	}
	if v.TaskPercent != 25 || v.OverallPercent != 50 {
		t.Fatalf("unexpected percents task=%v overall=%v", v.TaskPercent, v.OverallPercent)
	}
	if !v.HasBriefcases {
		t.Fatalf("expected HasBriefcases")
	}
}

func TestTaskProgressFallback(t *testing.T) {
	e := NewEngine(&fakeBackend{}, nil, fastConfig())
	e.Apply(types.PanelSnapshot{
		CurrentTask: &types.Task{TaskID: "t1", RelatedBriefcases: []types.Briefcase{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}},
	})
	v := e.View()
	if v.TaskVisited != 0 || v.TaskTotal != 3 || v.TaskDisplay != 1 {
		t.Fatalf("unexpected fallback progress %+v", v)
	}

	e.Apply(types.PanelSnapshot{CurrentTask: &types.Task{TaskID: "t2"}, CurrentTaskIndex: intPtr(7)})
	v = e.View()
	if v.TaskTotal != 1 || v.TaskDisplay != 1 || v.HasBriefcases {
		t.Fatalf("unexpected fallback for task without briefcases %+v", v)
	}
}

func TestTaskDisplayCapsAtTotal(t *testing.T) {
	e := NewEngine(&fakeBackend{}, nil, fastConfig())
	e.Apply(types.PanelSnapshot{
		CurrentTask:      &types.Task{TaskID: "t1"},
		CurrentTaskIndex: intPtr(0),
		TaskProgress:     [][3]int{{0, 2, 2}},
	})
	if got := e.View().TaskDisplay; got != 2 {
		t.Fatalf("expected display capped at 2, got %d", got)
	}
}

func TestCommentCopiedOnceAcrossTicks(t *testing.T) {
	copier := &recordingCopier{}
	e := NewEngine(&fakeBackend{}, copier, fastConfig())
	snap := types.PanelSnapshot{
		CurrentTask:    &types.Task{TaskID: "t1", Comments: []string{"a", "b"}, CommentIndex: 0},
		CurrentComment: strPtr("a"),
	}
	for i := 0; i < 5; i++ {
		e.Apply(snap)
	}
	if copier.count() != 1 || copier.copies[0] != "a" {
		t.Fatalf("expected one copy of a, got %v", copier.copies)
	}
	if e.View().Copied != "a" {
		t.Fatalf("expected copied marker, got %q", e.View().Copied)
	}

	snap.CurrentTask = &types.Task{TaskID: "t1", Comments: []string{"a", "b"}, CommentIndex: 1}
	snap.CurrentComment = strPtr("b")
	e.Apply(snap)
	e.Apply(snap)
	if copier.count() != 2 || copier.copies[1] != "b" {
		t.Fatalf("expected advanced comment copied once, got %v", copier.copies)
	}

	snap.CurrentTask = &types.Task{TaskID: "t2", Comments: []string{"c"}}
	snap.CurrentComment = strPtr("c")
	e.Apply(snap)
	if copier.count() != 3 || copier.copies[2] != "c" {
		t.Fatalf("expected new task comment copied, got %v", copier.copies)
	}
}

func TestSelectedCommentNotCopiedTwice(t *testing.T) {
	copier := &recordingCopier{}
	e := NewEngine(&fakeBackend{}, copier, fastConfig())
	e.Apply(types.PanelSnapshot{
		CurrentTask:      &types.Task{TaskID: "t1", Comments: []string{"a", "b", "c"}, CommentIndex: 0},
		CurrentTaskIndex: intPtr(0),
		CurrentComment:   strPtr("a"),
	})
	if err := e.HandleCommentSelect(context.Background(), 2); err != nil {
		t.Fatalf("HandleCommentSelect: %v", err)
	}
	if copier.count() != 2 || copier.copies[1] != "c" {
		t.Fatalf("expected selection copied, got %v", copier.copies)
	}

	e.Apply(types.PanelSnapshot{
		CurrentTask:      &types.Task{TaskID: "t1", Comments: []string{"a", "b", "c"}, CommentIndex: 2},
		CurrentTaskIndex: intPtr(0),
		CurrentComment:   strPtr("c"),
	})
	if copier.count() != 2 {
		t.Fatalf("selected comment copied again: %v", copier.copies)
	}
	if e.View().Copied != "c" {
		t.Fatalf("expected selection recorded as copied, got %q", e.View().Copied)
	}

	e.Apply(types.PanelSnapshot{
		CurrentTask:      &types.Task{TaskID: "t1", Comments: []string{"a", "b", "c"}, CommentIndex: 1},
		CurrentTaskIndex: intPtr(0),
		CurrentComment:   strPtr("b"),
	})
	if copier.count() != 3 || copier.copies[2] != "b" {
		t.Fatalf("expected later comment copied, got %v", copier.copies)
	}
}

func TestNoCopyWithoutComment(t *testing.T) {
	copier := &recordingCopier{}
	e := NewEngine(&fakeBackend{}, copier, fastConfig())
	e.Apply(types.PanelSnapshot{CurrentComment: strPtr("")})
	e.Apply(types.PanelSnapshot{})
	if copier.count() != 0 {
		t.Fatalf("expected no copies, got %d", copier.count())
	}
}

func TestHandleNextLoadingLifecycle(t *testing.T) {
	backend := &fakeBackend{}
	timer := &manualTimer{}
	e := NewEngine(backend, nil, fastConfig(), WithAfterFunc(timer.afterFunc))
	e.Apply(types.PanelSnapshot{CurrentTask: &types.Task{TaskID: "t1"}})

	if err := e.HandleNext(context.Background()); err != nil {
		t.Fatalf("HandleNext: %v", err)
	}
	if !e.View().Loading {
		t.Fatalf("expected loading")
	}
	if err := e.HandleNext(context.Background()); err != nil {
		t.Fatalf("HandleNext while loading: %v", err)
	}
	if backend.nextCalls != 1 {
		t.Fatalf("expected next to be ignored while loading, got %d calls", backend.nextCalls)
	}

	e.Apply(types.PanelSnapshot{CurrentTask: &types.Task{TaskID: "t1"}})
	if !e.View().Loading {
		t.Fatalf("unchanged task must keep loading")
	}
	e.Apply(types.PanelSnapshot{CurrentTask: &types.Task{TaskID: "t2"}})
	if e.View().Loading {
		t.Fatalf("expected loading cleared on task change")
	}
	if !timer.stopped {
		t.Fatalf("expected safety timer stopped")
	}
}

func TestHandleNextSafetyTimeout(t *testing.T) {
	timer := &manualTimer{}
	e := NewEngine(&fakeBackend{}, nil, fastConfig(), WithAfterFunc(timer.afterFunc))
	if err := e.HandleNext(context.Background()); err != nil {
		t.Fatalf("HandleNext: %v", err)
	}
	timer.fn()
	if e.View().Loading {
		t.Fatalf("expected loading cleared by timeout")
	}
}

func TestHandleNextFailureClearsLoading(t *testing.T) {
	backend := &fakeBackend{nextErr: errors.New("boom")}
	timer := &manualTimer{}
	e := NewEngine(backend, nil, fastConfig(), WithAfterFunc(timer.afterFunc))
	if err := e.HandleNext(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if e.View().Loading {
		t.Fatalf("expected loading cleared")
	}
	if !timer.stopped {
		t.Fatalf("expected timer cancelled")
	}
}

func TestHandleCommentSelect(t *testing.T) {
	backend := &fakeBackend{}
	e := NewEngine(backend, nil, fastConfig())
	if err := e.HandleCommentSelect(context.Background(), 0); !errors.Is(err, ErrNoActiveTask) {
		t.Fatalf("expected ErrNoActiveTask, got %v", err)
	}

	e.Apply(types.PanelSnapshot{
		CurrentTask:      &types.Task{TaskID: "t1", Comments: []string{"a", "b"}, CommentIndex: 0},
		CurrentTaskIndex: intPtr(2),
	})
	if err := e.HandleCommentSelect(context.Background(), 1); err != nil {
		t.Fatalf("HandleCommentSelect: %v", err)
	}
	if err := e.HandleCommentSelect(context.Background(), 2); err == nil {
		t.Fatalf("expected out of range error")
	}
	if len(backend.selectArgs) != 1 || backend.selectArgs[0] != [2]int{2, 1} {
		t.Fatalf("unexpected select calls %v", backend.selectArgs)
	}
	if e.View().Task.CommentIndex != 0 {
		t.Fatalf("selection must not update the view optimistically")
	}
}

func TestHandleQuitPassesProfileName(t *testing.T) {
	backend := &fakeBackend{}
	e := NewEngine(backend, nil, fastConfig())
	if err := e.HandleQuit(context.Background()); err != nil {
		t.Fatalf("HandleQuit: %v", err)
	}
	e.Apply(types.PanelSnapshot{CurrentProfile: &types.Profile{ProfileID: "p1", ProfileName: "main"}})
	if err := e.HandleQuit(context.Background()); err != nil {
		t.Fatalf("HandleQuit: %v", err)
	}
	if len(backend.closeNames) != 2 || backend.closeNames[0] != "" || backend.closeNames[1] != "main" {
		t.Fatalf("unexpected close calls %v", backend.closeNames)
	}
}

func TestRunFallsBackToPolling(t *testing.T) {
	copier := &recordingCopier{}
	backend := &fakeBackend{snapshots: []types.PanelSnapshot{{
		CurrentTask:     &types.Task{TaskID: "t1", Comments: []string{"hi"}, CommentIndex: 0},
		CurrentComment:  strPtr("hello"),
		OverallProgress: [2]int{1, 2},
	}}}
	e := NewEngine(backend, copier, fastConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for backend.pollCount() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	e.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if backend.pollCount() < 5 {
		t.Fatalf("expected at least five polls, got %d", backend.pollCount())
	}
	if copier.count() != 1 {
		t.Fatalf("expected exactly one copy, got %d", copier.count())
	}
	if v := e.View(); v.Source != SourcePoll || v.Visited != 1 {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestRunFollowsPushStream(t *testing.T) {
	stream := make(chan types.PanelSnapshot, 1)
	backend := &fakeBackend{stream: stream}
	e := NewEngine(backend, nil, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	stream <- types.PanelSnapshot{OverallProgress: [2]int{2, 2}}
	deadline := time.After(2 * time.Second)
	for !e.View().IsComplete {
		select {
		case <-e.Updates():
		case <-deadline:
			t.Fatalf("pushed snapshot not applied")
		}
	}
	if e.View().Source != SourcePush {
		t.Fatalf("expected push source, got %q", e.View().Source)
	}
	if backend.pollCount() != 0 {
		t.Fatalf("expected no polling while streaming, got %d", backend.pollCount())
	}
	e.Close()
}

func TestNextDelayBacksOff(t *testing.T) {
	e := NewEngine(&fakeBackend{}, nil, Config{PollInterval: time.Second, MaxBackoff: 8 * time.Second})
	cases := map[int]time.Duration{0: time.Second, 1: 2 * time.Second, 3: 8 * time.Second, 10: 8 * time.Second}
	for failures, want := range cases {
		if got := e.nextDelay(failures); got != want {
			t.Fatalf("failures=%d: expected %v, got %v", failures, want, got)
		}
	}
}

func TestNextDelayJitter(t *testing.T) {
	e := NewEngine(&fakeBackend{}, nil, Config{PollInterval: time.Second, PollJitter: 100 * time.Millisecond})
	e.jitter = func(n int64) int64 { return n - 1 }
	if got := e.nextDelay(0); got != 1100*time.Millisecond {
		t.Fatalf("expected upper jitter bound, got %v", got)
	}
	e.jitter = func(int64) int64 { return 0 }
	if got := e.nextDelay(0); got != 900*time.Millisecond {
		t.Fatalf("expected lower jitter bound, got %v", got)
	}
}
