package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"outreach/internal/binder"
	"outreach/internal/logging"
	"outreach/internal/types"
)

var (
	ErrEmptyProfileName = errors.New("Profile name cannot be empty")
	ErrEmptyUsername    = errors.New("Username cannot be empty")
	ErrNoTasks          = errors.New("No tasks to execute")
	ErrNoProfiles       = errors.New("No profiles available for any tasks. Please add profiles and briefcases first.")
)

// Gateway is the subset of the daemon API the store needs.
type Gateway interface {
	CreateProfile(ctx context.Context, name string) (types.Profile, error)
	LoadProfiles(ctx context.Context) ([]types.Profile, error)
	LoadBriefcases(ctx context.Context) ([]types.Briefcase, error)
	SaveProfiles(ctx context.Context, profiles []types.Profile) error
	SaveBriefcases(ctx context.Context, briefcases []types.Briefcase) error
	SaveAllData(ctx context.Context, profiles []types.Profile, briefcases []types.Briefcase) error
	StartAutomation(ctx context.Context, tasksJSON string) (*types.AutomationAck, error)
}

// TaskRepository keeps the pending task queue across restarts.
type TaskRepository interface {
	List(ctx context.Context) ([]types.Task, error)
	Save(ctx context.Context, tasks []types.Task) error
}

type collection int

const (
	collectionProfiles collection = 1 << iota
	collectionBriefcases

	collectionNone collection = 0
	collectionAll             = collectionProfiles | collectionBriefcases
)

const (
	defaultPersistTimeout = 10 * time.Second
	taskSaveTimeout       = 2 * time.Second
)

type Option func(*Store)

func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

func WithTaskRepository(repo TaskRepository) Option {
	return func(s *Store) {
		s.tasks = repo
	}
}

func WithPersistTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.persistTimeout = timeout
		}
	}
}

// Store owns the client view of profiles, briefcases and tasks. Local
// changes are applied immediately; backend persistence runs in the
// background and is tracked in the mutation ledger.
type Store struct {
	mu    sync.Mutex
	state State

	gateway        Gateway
	logger         logging.Logger
	newID          func() string
	now            func() time.Time
	tasks          TaskRepository
	persistTimeout time.Duration

	taskSaveMu sync.Mutex
	inflight   sync.WaitGroup
	changes    chan struct{}
}

func New(gateway Gateway, opts ...Option) *Store {
	s := &Store{
		gateway:        gateway,
		logger:         logging.Nop(),
		newID:          uuid.NewString,
		now:            time.Now,
		persistTimeout: defaultPersistTimeout,
		changes:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.F("component", "store"))
	return s
}

// Changes signals after every state change. Signals coalesce: a reader that
// falls behind sees one pending signal and should read Snapshot.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Wait blocks until background persistence calls have finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) dispatch(actions ...Action) State {
	s.mu.Lock()
	next := s.state
	for _, action := range actions {
		next = Reduce(next, action)
	}
	s.state = next
	s.mu.Unlock()
	s.notify()
	return next
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Store) SetError(message string) {
	s.dispatch(errorSet{message: message})
}

func (s *Store) ClearError() {
	s.dispatch(errorSet{})
}

func (s *Store) SetAddProfileOpen(open bool) {
	s.dispatch(addProfileDialogSet{open: open})
}

func (s *Store) SetAddBriefcaseOpen(open bool, profileID string, platform types.Platform) {
	s.dispatch(addBriefcaseDialogSet{dialog: BriefcaseDialog{Open: open, ProfileID: profileID, Platform: platform}})
}

func (s *Store) ReplaceProfiles(profiles []types.Profile) {
	s.dispatch(profilesReplaced{profiles: profiles})
}

func (s *Store) ReplaceBriefcases(briefcases []types.Briefcase) {
	s.dispatch(briefcasesReplaced{briefcases: briefcases})
}

func (s *Store) BriefcaseCount(platform types.Platform) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.BriefcaseCount(platform)
}

func (s *Store) BriefcaseCounts() map[types.Platform]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[types.Platform]int, len(types.Platforms()))
	for _, platform := range types.Platforms() {
		counts[platform] = s.state.BriefcaseCount(platform)
	}
	return counts
}

// AddProfile creates the profile on the backend first; the returned record
// is appended as-is. Nothing is inserted when creation fails.
func (s *Store) AddProfile(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		s.SetError(ErrEmptyProfileName.Error())
		return ErrEmptyProfileName
	}
	var created types.Profile
	err := s.record(ctx, MutationCreateProfile, "", collectionNone, func(ctx context.Context) error {
		profile, err := s.gateway.CreateProfile(ctx, name)
		if err != nil {
			return err
		}
		created = profile
		return nil
	})
	if err != nil {
		return err
	}
	s.dispatch(profileAdded{profile: created})
	return nil
}

func (s *Store) RemoveProfile(id string) {
	next := s.dispatch(profileRemoved{id: id})
	s.persist(MutationSyncData, id, collectionAll, s.syncCall(next.Profiles, next.Briefcases))
}

func (s *Store) AddBriefcase(profileID string, platform types.Platform, username string) error {
	if strings.TrimSpace(username) == "" {
		s.SetError(ErrEmptyUsername.Error())
		return ErrEmptyUsername
	}
	bc := types.Briefcase{
		ID:          s.newID(),
		SocialMedia: platform,
		ProfileID:   profileID,
		UserName:    username,
		IsActive:    false,
	}
	next := s.dispatch(briefcaseAdded{briefcase: bc})
	s.persist(MutationSaveBriefcases, bc.ID, collectionBriefcases, s.saveBriefcasesCall(next.Briefcases))
	return nil
}

func (s *Store) RemoveBriefcase(id string) {
	next := s.dispatch(briefcaseRemoved{id: id})
	s.persist(MutationSaveBriefcases, id, collectionBriefcases, s.saveBriefcasesCall(next.Briefcases))
}

func (s *Store) ToggleBriefcaseActive(id string) {
	next := s.dispatch(briefcaseToggled{id: id})
	s.persist(MutationSaveBriefcases, id, collectionBriefcases, s.saveBriefcasesCall(next.Briefcases))
}

// AddTask validates link, detects its platform and queues a task bound to
// the briefcases of that platform.
func (s *Store) AddTask(link, comment string) (types.Task, error) {
	platform, err := binder.Classify(link)
	if err != nil {
		s.SetError(err.Error())
		return types.Task{}, err
	}
	return s.addTask(link, comment, platform), nil
}

// AddTaskForPlatform queues a task for an explicitly chosen platform. The
// link must still be an https URL.
func (s *Store) AddTaskForPlatform(link, comment string, platform types.Platform) (types.Task, error) {
	if _, err := binder.Classify(link); errors.Is(err, binder.ErrInvalidLink) {
		s.SetError(err.Error())
		return types.Task{}, err
	}
	if !platform.Valid() {
		s.SetError(binder.ErrUnsupportedPlatform.Error())
		return types.Task{}, binder.ErrUnsupportedPlatform
	}
	return s.addTask(link, comment, platform), nil
}

func (s *Store) addTask(link, comment string, platform types.Platform) types.Task {
	id := s.newID()
	s.mu.Lock()
	task := binder.Bind(link, comment, platform, s.state.Briefcases, s.now(), id)
	s.state = Reduce(s.state, taskAdded{task: task})
	s.mu.Unlock()
	s.notify()
	s.saveTasks()
	return task
}

func (s *Store) RemoveTask(id string) {
	s.dispatch(taskRemoved{id: id})
	s.saveTasks()
}

// RestoreTasks loads the task queue saved by a previous run.
func (s *Store) RestoreTasks(ctx context.Context) error {
	if s.tasks == nil {
		return nil
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		s.logger.Warn("restore tasks failed", logging.Err(err))
		return err
	}
	s.dispatch(tasksReplaced{tasks: tasks})
	s.logger.Debug("tasks restored", logging.F("count", len(tasks)))
	return nil
}

func (s *Store) saveTasks() {
	if s.tasks == nil {
		return
	}
	s.taskSaveMu.Lock()
	defer s.taskSaveMu.Unlock()
	s.mu.Lock()
	tasks := types.CloneTasks(s.state.Tasks)
	s.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), taskSaveTimeout)
	defer cancel()
	if err := s.tasks.Save(ctx, tasks); err != nil {
		s.logger.Warn("save tasks failed", logging.Err(err))
	}
}

// Load replaces profiles and briefcases with the backend copies.
func (s *Store) Load(ctx context.Context) error {
	profiles, briefcases, err := s.fetch(ctx, collectionAll)
	if err != nil {
		s.logger.Error("load failed", logging.Err(err))
		s.SetError(fmt.Sprintf("Failed to load data: %v", err))
		return err
	}
	s.dispatch(profilesReplaced{profiles: profiles}, briefcasesReplaced{briefcases: briefcases})
	return nil
}

// Sync pushes profiles and briefcases with one call each.
func (s *Store) Sync(ctx context.Context) error {
	snap := s.Snapshot()
	return s.record(ctx, MutationSyncData, "", collectionAll, s.syncCall(snap.Profiles, snap.Briefcases))
}

// SaveAll pushes profiles and briefcases in a single call.
func (s *Store) SaveAll(ctx context.Context) error {
	snap := s.Snapshot()
	return s.record(ctx, MutationSaveData, "", collectionAll, func(ctx context.Context) error {
		return s.gateway.SaveAllData(ctx, snap.Profiles, snap.Briefcases)
	})
}

// StartAutomation hands the task queue to the backend.
func (s *Store) StartAutomation(ctx context.Context) (*types.AutomationAck, error) {
	tasks := s.Snapshot().Tasks
	if len(tasks) == 0 {
		s.SetError(ErrNoTasks.Error())
		return nil, ErrNoTasks
	}
	bound := false
	for _, task := range tasks {
		if len(task.RelatedBriefcases) > 0 {
			bound = true
			break
		}
	}
	if !bound {
		s.SetError(ErrNoProfiles.Error())
		return nil, ErrNoProfiles
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return nil, err
	}
	var ack *types.AutomationAck
	err = s.record(ctx, MutationStartAutomation, "", collectionNone, func(ctx context.Context) error {
		res, err := s.gateway.StartAutomation(ctx, string(payload))
		ack = res
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("automation started", logging.F("tasks", len(tasks)))
	return ack, nil
}

func (s *Store) syncCall(profiles []types.Profile, briefcases []types.Briefcase) func(context.Context) error {
	return func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.gateway.SaveProfiles(gctx, profiles) })
		g.Go(func() error { return s.gateway.SaveBriefcases(gctx, briefcases) })
		return g.Wait()
	}
}

func (s *Store) saveBriefcasesCall(briefcases []types.Briefcase) func(context.Context) error {
	return func(ctx context.Context) error {
		return s.gateway.SaveBriefcases(ctx, briefcases)
	}
}

func (s *Store) fetch(ctx context.Context, which collection) ([]types.Profile, []types.Briefcase, error) {
	var (
		profiles   []types.Profile
		briefcases []types.Briefcase
	)
	g, gctx := errgroup.WithContext(ctx)
	if which&collectionProfiles != 0 {
		g.Go(func() error {
			var err error
			profiles, err = s.gateway.LoadProfiles(gctx)
			return err
		})
	}
	if which&collectionBriefcases != 0 {
		g.Go(func() error {
			var err error
			briefcases, err = s.gateway.LoadBriefcases(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return profiles, briefcases, nil
}
