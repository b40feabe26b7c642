package events

import (
	"context"
	"sync"
	"time"

	"outreach/internal/logging"
	"outreach/internal/types"
)

const (
	defaultMinBackoff    = 500 * time.Millisecond
	defaultMaxBackoff    = 15 * time.Second
	defaultReloadTimeout = 10 * time.Second
)

// Source is the daemon side of the subscription.
type Source interface {
	Notifications(ctx context.Context) (<-chan types.Notification, func(), error)
	LoadProfiles(ctx context.Context) ([]types.Profile, error)
	LoadBriefcases(ctx context.Context) ([]types.Briefcase, error)
}

// Sink receives reloaded collections. *state.Store satisfies it.
type Sink interface {
	ReplaceProfiles(profiles []types.Profile)
	ReplaceBriefcases(briefcases []types.Briefcase)
}

type Option func(*Subscriber)

func WithLogger(logger logging.Logger) Option {
	return func(s *Subscriber) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBackoff sets the reconnect delay bounds.
func WithBackoff(floor, ceiling time.Duration) Option {
	return func(s *Subscriber) {
		if floor > 0 {
			s.minBackoff = floor
		}
		if ceiling >= s.minBackoff {
			s.maxBackoff = ceiling
		}
	}
}

// OnOther receives notifications that do not name a collection.
func OnOther(fn func(types.Notification)) Option {
	return func(s *Subscriber) {
		s.onOther = fn
	}
}

// Subscriber keeps the local profile and briefcase collections in step with
// backend change notifications.
type Subscriber struct {
	source  Source
	sink    Sink
	logger  logging.Logger
	onOther func(types.Notification)

	minBackoff time.Duration
	maxBackoff time.Duration

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSubscriber(source Source, sink Sink, opts ...Option) *Subscriber {
	s := &Subscriber{
		source:     source,
		sink:       sink,
		logger:     logging.Nop(),
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.F("component", "events"))
	return s
}

// Setup subscribes once; later calls are no-ops. When the first connection
// attempt fails its error is returned and the subscriber keeps retrying in
// the background until ctx is done or Close is called.
func (s *Subscriber) Setup(ctx context.Context) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	ch, stop, err := s.source.Notifications(ctx)
	if err != nil {
		s.logger.Warn("subscribe failed", logging.Err(err))
		ch, stop = nil, nil
	}
	s.wg.Add(1)
	go s.run(ctx, ch, stop)
	return err
}

// Close cancels the subscription and waits for in-flight reloads.
func (s *Subscriber) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Subscriber) run(ctx context.Context, ch <-chan types.Notification, stop func()) {
	defer s.wg.Done()
	delay := s.minBackoff
	for {
		if ch != nil {
			s.consume(ctx, ch)
			stop()
			delay = s.minBackoff
			s.logger.Info("notification stream ended")
		}
		if !sleep(ctx, delay) {
			return
		}
		var err error
		ch, stop, err = s.source.Notifications(ctx)
		if err != nil {
			ch = nil
			s.logger.Warn("resubscribe failed", logging.F("retry_in", delay), logging.Err(err))
			delay = min(delay*2, s.maxBackoff)
			continue
		}
		s.logger.Info("notification stream reconnected")
	}
}

func (s *Subscriber) consume(ctx context.Context, ch <-chan types.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			s.handle(ctx, n)
		}
	}
}

// handle starts one reload per notification. Reloads are not coalesced and
// the last one to finish wins.
func (s *Subscriber) handle(ctx context.Context, n types.Notification) {
	switch n.Type {
	case types.NotificationProfilesChanged:
		s.reload(ctx, "profiles", func(ctx context.Context) error {
			profiles, err := s.source.LoadProfiles(ctx)
			if err != nil {
				return err
			}
			s.sink.ReplaceProfiles(profiles)
			return nil
		})
	case types.NotificationBriefcasesChanged:
		s.reload(ctx, "briefcases", func(ctx context.Context) error {
			briefcases, err := s.source.LoadBriefcases(ctx)
			if err != nil {
				return err
			}
			s.sink.ReplaceBriefcases(briefcases)
			return nil
		})
	default:
		if s.onOther != nil {
			s.onOther(n)
			return
		}
		s.logger.Debug("notification ignored", logging.F("type", string(n.Type)))
	}
}

func (s *Subscriber) reload(ctx context.Context, what string, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, defaultReloadTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn("reload failed", logging.F("collection", what), logging.Err(err))
		}
	}()
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
