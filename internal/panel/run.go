package panel

import (
	"context"
	"time"

	"outreach/internal/client"
	"outreach/internal/logging"
)

// Run follows pushed snapshots when the daemon offers them and polls
// otherwise. It returns when ctx is done or Close is called.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.cancel = cancel
	e.mu.Unlock()

	push := e.cfg.Push
	for ctx.Err() == nil {
		window := time.Duration(0)
		if push {
			err := e.follow(ctx)
			if ctx.Err() != nil {
				return nil
			}
			switch {
			case err == nil:
				e.logger.Info("panel stream ended; polling")
				window = pushRetryAfter
			case client.IsNotFound(err):
				e.logger.Info("panel push unsupported; polling")
				push = false
			default:
				e.logger.Warn("panel stream failed; polling", logging.Err(err))
				window = pushRetryAfter
			}
		}
		e.poll(ctx, window)
	}
	return nil
}

func (e *Engine) follow(ctx context.Context) error {
	ch, stop, err := e.backend.PanelStream(ctx)
	if err != nil {
		return err
	}
	defer stop()
	e.setSource(SourcePush)
	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, ok := <-ch:
			if !ok {
				return nil
			}
			e.Apply(snapshot)
		}
	}
}

// poll fetches snapshots until ctx is done or, when window is positive,
// window has elapsed. Consecutive failures stretch the interval.
func (e *Engine) poll(ctx context.Context, window time.Duration) {
	e.setSource(SourcePoll)
	start := e.now()
	failures := 0
	delay := time.Duration(0)
	for {
		if !sleep(ctx, delay) {
			return
		}
		snapshot, err := e.backend.PanelSnapshot(ctx)
		switch {
		case err == nil:
			if failures > 0 {
				e.logger.Info("panel poll recovered", logging.F("failures", failures))
			}
			failures = 0
			e.Apply(*snapshot)
		case ctx.Err() != nil:
			return
		default:
			failures++
			if failures == 1 {
				e.logger.Warn("panel poll failed", logging.Err(err))
			} else {
				e.logger.Debug("panel poll failed", logging.F("failures", failures), logging.Err(err))
			}
		}
		if window > 0 && e.now().Sub(start) >= window {
			return
		}
		delay = e.nextDelay(failures)
	}
}

func (e *Engine) nextDelay(failures int) time.Duration {
	d := e.cfg.PollInterval
	for i := 0; i < failures && d < e.cfg.MaxBackoff; i++ {
		d *= 2
	}
	d = min(d, e.cfg.MaxBackoff)
	if j := e.cfg.PollJitter; j > 0 {
		d += time.Duration(e.jitter(int64(2*j)+1)) - j
	}
	if d <= 0 {
		return e.cfg.PollInterval
	}
	return d
}

func (e *Engine) setSource(source string) {
	e.mu.Lock()
	changed := e.view.Source != source
	e.view.Source = source
	e.mu.Unlock()
	if changed {
		e.notify()
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
