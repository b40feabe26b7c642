package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"outreach/internal/app"
	"outreach/internal/events"
	"outreach/internal/logging"
	"outreach/internal/types"
)

type UICommand struct {
	wiring commandWiring
}

func NewUICommand(wiring commandWiring) *UICommand {
	return &UICommand{wiring: wiring}
}

func (c *UICommand) Run(args []string) error {
	fs := pflag.NewFlagSet("ui", pflag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	noEvents := fs.Bool("no-events", false, "do not follow daemon change notifications")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, c.wiring, true)
	if err != nil {
		return err
	}
	defer s.Close()

	checkHealth(ctx, s.client, s.logger)

	if !*noEvents {
		sub := events.NewSubscriber(s.client, s.store,
			events.WithLogger(s.logger),
			events.OnOther(logNotification(s.logger)),
		)
		if err := sub.Setup(ctx); err != nil {
			s.logger.Warn("event stream not connected; retrying in background", logging.Err(err))
		}
		defer sub.Close()
	}

	s.logger.Info("ui started", logging.F("daemon", s.cfg.DaemonBaseURL()), logging.F("tasks", s.tasks.Backend()))
	return c.wiring.runManager(ctx, s.store, s.client, app.WithToastDuration(s.cfg.ToastDuration()))
}

func logNotification(logger logging.Logger) func(types.Notification) {
	return func(n types.Notification) {
		if n.Type != types.NotificationScreenshotCaptured {
			logger.Debug("notification ignored", logging.F("type", n.Type))
			return
		}
		shot, err := n.Screenshot()
		if err != nil {
			logger.Warn("screenshot payload invalid", logging.Err(err))
			return
		}
		logger.Info("screenshot captured",
			logging.F("id", shot.ID),
			logging.F("profile_id", shot.ProfileID),
			logging.F("briefcase_id", shot.BriefcaseID),
			logging.F("size", fmt.Sprintf("%dx%d", shot.Width, shot.Height)),
			logging.F("annotations", len(shot.Annotations)),
		)
	}
}

// checkHealth logs whether the daemon answers. The UI still starts when it
// does not; loads surface their own errors.
func checkHealth(ctx context.Context, cl daemonClient, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	health, err := cl.Health(ctx)
	if err != nil {
		logger.Warn("daemon not reachable", logging.Err(err))
		return
	}
	logger.Info("daemon reachable", logging.F("version", health.Version), logging.F("running", health.Running))
}
