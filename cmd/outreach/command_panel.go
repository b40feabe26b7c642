package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"outreach/internal/app"
	"outreach/internal/clipboard"
	"outreach/internal/logging"
	"outreach/internal/panel"
)

type PanelCommand struct {
	wiring commandWiring
}

func NewPanelCommand(wiring commandWiring) *PanelCommand {
	return &PanelCommand{wiring: wiring}
}

func (c *PanelCommand) Run(args []string) error {
	fs := pflag.NewFlagSet("panel", pflag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	once := fs.Bool("once", false, "print the current snapshot and exit")
	noPush := fs.Bool("no-push", false, "poll only, never open the panel stream")
	interval := fs.Duration("interval", 0, "poll interval (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.wiring.loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := c.wiring.newLogger(cfg, c.wiring.stderr, !*once)
	if err != nil {
		return err
	}
	defer closer.Close()
	cl, err := c.wiring.newClient(cfg, logger)
	if err != nil {
		return err
	}

	engineCfg := panel.Config{
		PollInterval: cfg.PollInterval(),
		PollJitter:   cfg.PollJitter(),
		MaxBackoff:   cfg.PollMaxBackoff(),
		NextTimeout:  cfg.NextTimeout(),
		Push:         cfg.PushEnabled() && !*noPush,
	}
	if *interval > 0 {
		engineCfg.PollInterval = *interval
	}

	if *once {
		// No clipboard side effect for a one-shot print.
		engine := panel.NewEngine(cl, nil, engineCfg, panel.WithLogger(logger))
		defer engine.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := engine.Refresh(ctx); err != nil {
			return err
		}
		printPanel(c.wiring.stdout, engine.View())
		return nil
	}

	var copier clipboard.Copier
	if c.wiring.newCopier != nil {
		copier = c.wiring.newCopier(logger)
	}
	engine := panel.NewEngine(cl, copier, engineCfg, panel.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("panel started", logging.F("push", engineCfg.Push), logging.F("interval", engineCfg.PollInterval))
	return c.wiring.runPanel(ctx, engine, logger, app.WithPanelToastDuration(cfg.ToastDuration()))
}

func printPanel(out io.Writer, view panel.View) {
	if view.Task == nil {
		fmt.Fprintln(out, "no active task")
	} else {
		fmt.Fprintf(out, "task:     %s %s\n", view.Task.SocialMedia, view.Task.Link)
	}
	if view.Profile != nil {
		fmt.Fprintf(out, "profile:  %s\n", view.Profile.ProfileName)
	}
	if view.HasBriefcases {
		fmt.Fprintf(out, "current:  %d/%d (%.0f%%)\n", view.TaskDisplay, view.TaskTotal, view.TaskPercent)
	}
	fmt.Fprintf(out, "overall:  %d/%d (%.0f%%)\n", view.Visited, view.Total, view.OverallPercent)
	if view.HasComment {
		fmt.Fprintf(out, "comment:  %s\n", view.Comment)
	}
	if view.IsComplete {
		fmt.Fprintln(out, "complete: yes")
	}
}
