package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"outreach/internal/client"
	"outreach/internal/clipboard"
	"outreach/internal/config"
	"outreach/internal/logging"
	"outreach/internal/state"
	"outreach/internal/store"
	"outreach/internal/types"
)

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newDaemonClient(cfg config.CoreConfig, logger logging.Logger) (daemonClient, error) {
	return client.New(cfg, logger)
}

// newLogger writes to the UI log file when the terminal is owned by a
// bubbletea program and to stderr otherwise.
// newClipboard logs which clipboard path each panel copy took; OSC52 means
// no system clipboard was reachable.
func newClipboard(logger logging.Logger) clipboard.Copier {
	c := clipboard.New()
	c.OnCopy = func(method clipboard.Method) {
		logger.Debug("clipboard write", logging.F("method", method.String()))
	}
	return c
}

func newLogger(cfg config.CoreConfig, stderr io.Writer, toFile bool) (logging.Logger, io.Closer, error) {
	level := logging.ParseLevel(cfg.LogLevel())
	if !toFile {
		return logging.New(stderr, level), nopCloser{}, nil
	}
	path, err := config.UILogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.NewFile(path, level)
}

// openTaskRepository opens the configured task store. A bbolt store that
// is still empty is seeded from the JSON queue written by the file backend.
func openTaskRepository(ctx context.Context, cfg config.CoreConfig, logger logging.Logger) (store.TaskRepository, error) {
	dbPath, err := config.TasksDBPath()
	if err != nil {
		return nil, err
	}
	tasksFile, err := config.TasksFilePath()
	if err != nil {
		return nil, err
	}
	repo, err := store.Open(store.Paths{TasksFile: tasksFile, DBPath: dbPath}, cfg.StorageBackend())
	if err != nil {
		return nil, err
	}
	seeded, err := store.SeedFromFile(ctx, repo, tasksFile)
	if err != nil {
		logger.Warn("seed tasks from file failed", logging.Err(err))
	} else if seeded > 0 {
		logger.Info("tasks seeded from file", logging.F("count", seeded))
	}
	return repo, nil
}

// session bundles the pieces a store-backed command needs.
type session struct {
	cfg    config.CoreConfig
	logger logging.Logger
	client daemonClient
	tasks  store.TaskRepository
	store  *state.Store
	closer io.Closer
}

func openSession(ctx context.Context, wiring commandWiring, toFile bool) (*session, error) {
	cfg, err := wiring.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closer, err := wiring.newLogger(cfg, wiring.stderr, toFile)
	if err != nil {
		return nil, err
	}
	cl, err := wiring.newClient(cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	repo, err := wiring.openTasks(ctx, cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	st := state.New(cl,
		state.WithLogger(logger),
		state.WithTaskRepository(repo),
		state.WithPersistTimeout(cfg.PersistTimeout()),
	)
	if err := st.RestoreTasks(ctx); err != nil {
		logger.Warn("task queue not restored", logging.Err(err))
	}
	return &session{cfg: cfg, logger: logger, client: cl, tasks: repo, store: st, closer: closer}, nil
}

func (s *session) Close() {
	s.store.Wait()
	if err := s.tasks.Close(); err != nil {
		s.logger.Warn("close task store failed", logging.Err(err))
	}
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// storeError turns a message left in the store's error slot into an error.
func storeError(st *state.Store) error {
	if msg := st.Snapshot().Error; msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func printProfiles(output io.Writer, profiles []types.Profile, briefcases []types.Briefcase) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	header := []string{"ID", "NAME"}
	for _, platform := range types.Platforms() {
		header = append(header, strings.ToUpper(platform.String()))
	}
	fmt.Fprintln(writer, strings.Join(header, "\t"))
	for _, profile := range profiles {
		row := []string{profile.ProfileID, profile.ProfileName}
		owned := filterByProfile(briefcases, profile.ProfileID)
		for _, platform := range types.Platforms() {
			row = append(row, fmt.Sprintf("%d", len(types.FilterBriefcases(owned, platform))))
		}
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}
	_ = writer.Flush()
}

func filterByProfile(in []types.Briefcase, profileID string) []types.Briefcase {
	out := make([]types.Briefcase, 0, len(in))
	for _, bc := range in {
		if bc.ProfileID == profileID {
			out = append(out, bc)
		}
	}
	return out
}

func truncateComment(comment string, limit int) string {
	comment = strings.Join(strings.Fields(comment), " ")
	runes := []rune(comment)
	if len(runes) <= limit {
		return comment
	}
	return string(runes[:limit-1]) + "…"
}

func printTasks(output io.Writer, tasks []types.Task) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tPLATFORM\tPROGRESS\tCOMMENTS\tNEXT COMMENT\tLINK")
	for _, task := range tasks {
		next, _ := task.CurrentComment()
		fmt.Fprintf(writer, "%s\t%s\t%d/%d\t%d\t%s\t%s\n",
			task.TaskID, task.SocialMedia, task.ClampProgress(), len(task.RelatedBriefcases),
			len(task.Comments), truncateComment(next, 32), task.Link)
	}
	_ = writer.Flush()
}
