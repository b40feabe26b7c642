package panel

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"outreach/internal/clipboard"
	"outreach/internal/logging"
	"outreach/internal/types"
)

var (
	ErrClosed       = errors.New("panel engine closed")
	ErrNoActiveTask = errors.New("no active task")
)

const (
	copyTimeout    = 2 * time.Second
	commandTimeout = 10 * time.Second
	// pushRetryAfter is how long polling runs before the stream is tried
	// again. Unused once the daemon has reported push as unsupported.
	pushRetryAfter = 30 * time.Second
)

// Backend is the daemon surface the panel drives.
type Backend interface {
	PanelSnapshot(ctx context.Context) (*types.PanelSnapshot, error)
	PanelStream(ctx context.Context) (<-chan types.PanelSnapshot, func(), error)
	NextItem(ctx context.Context) error
	SetCommentIndex(ctx context.Context, taskIndex, commentIndex int) error
	CloseWorkspace(ctx context.Context, profileName string) error
}

type Config struct {
	PollInterval time.Duration
	PollJitter   time.Duration
	MaxBackoff   time.Duration
	NextTimeout  time.Duration
	Push         bool
}

func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		PollJitter:   150 * time.Millisecond,
		MaxBackoff:   8 * time.Second,
		NextTimeout:  3 * time.Second,
		Push:         true,
	}
}

type Option func(*Engine)

func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithAfterFunc replaces time.AfterFunc for the next-item safety timeout.
func WithAfterFunc(fn func(time.Duration, func()) func() bool) Option {
	return func(e *Engine) {
		if fn != nil {
			e.afterFunc = fn
		}
	}
}

// Engine turns panel snapshots into a View, copies each new comment to the
// clipboard once and issues the panel commands.
type Engine struct {
	backend Backend
	copier  clipboard.Copier
	logger  logging.Logger
	cfg     Config

	afterFunc func(time.Duration, func()) func() bool
	jitter    func(n int64) int64
	now       func() time.Time

	mu          sync.Mutex
	view        View
	lastCopied  string
	selected    selection
	loadingGen  int
	stopLoading func() bool
	cancel      context.CancelFunc
	closed      bool

	updates chan struct{}
}

func NewEngine(backend Backend, copier clipboard.Copier, cfg Config, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.MaxBackoff < cfg.PollInterval {
		cfg.MaxBackoff = cfg.PollInterval
	}
	if cfg.NextTimeout <= 0 {
		cfg.NextTimeout = defaults.NextTimeout
	}
	if cfg.PollJitter < 0 || cfg.PollJitter > cfg.PollInterval/2 {
		cfg.PollJitter = cfg.PollInterval / 2
	}
	e := &Engine{
		backend: backend,
		copier:  copier,
		logger:  logging.Nop(),
		cfg:     cfg,
		afterFunc: func(d time.Duration, fn func()) func() bool {
			return time.AfterFunc(d, fn).Stop
		},
		jitter:  rand.Int64N,
		now:     time.Now,
		updates: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logging.F("component", "panel"))
	return e
}

// Updates signals after every view change. Signals coalesce.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}

// Apply folds one snapshot into the view. Pushed and polled snapshots go
// through the same path.
func (e *Engine) Apply(snapshot types.PanelSnapshot) {
	next := derive(snapshot)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	prev := e.view
	next.Loading = prev.Loading
	next.Source = prev.Source
	if taskID(prev.Task) != taskID(next.Task) || profileID(prev.Profile) != profileID(next.Profile) {
		e.clearLoadingLocked()
		next.Loading = false
	}

	var toCopy string
	if next.HasComment && next.Comment != e.lastCopied {
		e.lastCopied = next.Comment
		if !e.selected.matches(next.Task, next.Comment) {
			toCopy = next.Comment
		}
		e.selected = selection{}
	}
	next.Copied = e.lastCopied
	e.view = next
	e.mu.Unlock()

	if toCopy != "" {
		e.copy(toCopy)
	}
	e.notify()
}

func (e *Engine) copy(text string) {
	if e.copier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), copyTimeout)
	defer cancel()
	if err := e.copier.Copy(ctx, text); err != nil {
		e.logger.Warn("copy comment failed", logging.Err(err))
		return
	}
	e.logger.Debug("comment copied", logging.F("chars", len(text)))
}

// HandleNext advances the automation. It is a no-op while a previous
// advance is still loading. The loading flag clears when the task or
// profile changes, when the safety timeout fires or when the command fails.
func (e *Engine) HandleNext(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.view.Loading {
		e.mu.Unlock()
		return nil
	}
	e.view.Loading = true
	e.loadingGen++
	gen := e.loadingGen
	e.stopLoading = e.afterFunc(e.cfg.NextTimeout, func() { e.expireLoading(gen) })
	e.mu.Unlock()
	e.notify()

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := e.backend.NextItem(ctx); err != nil {
		e.logger.Warn("next item failed", logging.Err(err))
		e.mu.Lock()
		if e.loadingGen == gen {
			e.clearLoadingLocked()
		}
		e.mu.Unlock()
		e.notify()
		return err
	}
	return nil
}

func (e *Engine) expireLoading(gen int) {
	e.mu.Lock()
	if e.loadingGen != gen || !e.view.Loading {
		e.mu.Unlock()
		return
	}
	e.view.Loading = false
	e.stopLoading = nil
	e.mu.Unlock()
	e.logger.Debug("next item timed out waiting for change")
	e.notify()
}

func (e *Engine) clearLoadingLocked() {
	e.view.Loading = false
	if e.stopLoading != nil {
		e.stopLoading()
		e.stopLoading = nil
	}
}

// HandleCommentSelect makes index the active comment of the current task
// and copies it. The view is not updated until the next snapshot reflects
// the change.
func (e *Engine) HandleCommentSelect(ctx context.Context, index int) error {
	e.mu.Lock()
	task, taskIndex := e.view.Task, e.view.TaskIndex
	e.mu.Unlock()
	if task == nil || taskIndex == nil {
		return ErrNoActiveTask
	}
	if index < 0 || index >= len(task.Comments) {
		return fmt.Errorf("comment %d out of range (task has %d)", index+1, len(task.Comments))
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := e.backend.SetCommentIndex(ctx, *taskIndex, index); err != nil {
		e.logger.Warn("set comment index failed", logging.F("task_index", *taskIndex), logging.F("comment_index", index), logging.Err(err))
		return err
	}
	comment := task.Comments[index]
	e.mu.Lock()
	e.selected = selection{taskID: task.TaskID, comment: comment}
	e.mu.Unlock()
	e.copy(comment)
	return nil
}

// HandleQuit closes the automation workspace for the active profile.
func (e *Engine) HandleQuit(ctx context.Context) error {
	e.mu.Lock()
	name := ""
	if e.view.Profile != nil {
		name = e.view.Profile.ProfileName
	}
	e.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := e.backend.CloseWorkspace(ctx, name); err != nil {
		e.logger.Warn("close workspace failed", logging.Err(err))
		return err
	}
	return nil
}

// Refresh fetches and applies a single snapshot.
func (e *Engine) Refresh(ctx context.Context) error {
	snapshot, err := e.backend.PanelSnapshot(ctx)
	if err != nil {
		return err
	}
	e.Apply(*snapshot)
	return nil
}

// Close stops Run and cancels the safety timer.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
	e.clearLoadingLocked()
}
