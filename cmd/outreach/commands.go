package main

import (
	"context"
	"io"
	"os"

	"outreach/internal/app"
	"outreach/internal/client"
	"outreach/internal/clipboard"
	"outreach/internal/config"
	"outreach/internal/events"
	"outreach/internal/logging"
	"outreach/internal/panel"
	"outreach/internal/state"
	"outreach/internal/store"
)

type commandRunner interface {
	Run(args []string) error
}

// daemonClient is everything the commands need from the daemon.
// *client.Client satisfies it.
type daemonClient interface {
	state.Gateway
	panel.Backend
	events.Source
	ChangeWebviewURL(ctx context.Context, url string) error
	Health(ctx context.Context) (*client.HealthResponse, error)
}

type clientFactory func(cfg config.CoreConfig, logger logging.Logger) (daemonClient, error)

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.CoreConfig, error)
	newClient  clientFactory
	openTasks  func(ctx context.Context, cfg config.CoreConfig, logger logging.Logger) (store.TaskRepository, error)
	newLogger  func(cfg config.CoreConfig, stderr io.Writer, toFile bool) (logging.Logger, io.Closer, error)
	newCopier  func(logging.Logger) clipboard.Copier
	runManager func(ctx context.Context, store app.EntityStore, webview app.WebviewNavigator, opts ...app.ManagerOption) error
	runPanel   func(ctx context.Context, engine *panel.Engine, logger logging.Logger, opts ...app.PanelOption) error
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.LoadCoreConfig,
		newClient:  newDaemonClient,
		openTasks:  openTaskRepository,
		newLogger:  newLogger,
		newCopier:  newClipboard,
		runManager: app.RunManager,
		runPanel:   app.RunPanel,
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":       NewUICommand(wiring),
		"panel":    NewPanelCommand(wiring),
		"profiles": NewProfilesCommand(wiring),
		"tasks":    NewTasksCommand(wiring),
		"config":   NewConfigCommand(wiring.stdout, wiring.stderr, wiring.loadConfig),
	}
}
