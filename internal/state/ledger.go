package state

import (
	"context"
	"fmt"

	"outreach/internal/logging"
)

// persist runs call in the background. Calls are neither retried nor
// ordered; a later call may land before an earlier one.
func (s *Store) persist(kind MutationKind, entityID string, refetch collection, call func(context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()
		_ = s.record(ctx, kind, entityID, refetch, call)
	}()
}

// record runs call as a ledger entry. On failure the error slot is set and
// the collections named by refetch are reloaded from the backend; when the
// reload fails too the local state is left as it is.
func (s *Store) record(ctx context.Context, kind MutationKind, entityID string, refetch collection, call func(context.Context) error) (err error) {
	m := Mutation{
		ID:       s.newID(),
		Kind:     kind,
		EntityID: entityID,
		Status:   MutationPending,
		Started:  s.now(),
	}
	s.dispatch(mutationStarted{mutation: m})

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in backend call", logging.F("kind", string(kind)), logging.F("panic", r))
			err = fmt.Errorf("panic: %v", r)
			s.dispatch(mutationFinished{id: m.ID, err: err.Error(), at: s.now()})
		}
	}()

	if err = call(ctx); err == nil {
		s.dispatch(mutationFinished{id: m.ID, at: s.now()})
		return nil
	}

	s.logger.Warn("persist failed", logging.F("kind", string(kind)), logging.Err(err))
	s.dispatch(
		mutationFinished{id: m.ID, err: err.Error(), at: s.now()},
		errorSet{message: fmt.Sprintf("Failed to %s: %v", kind, err)},
	)
	s.reconcile(ctx, refetch)
	return err
}

func (s *Store) reconcile(ctx context.Context, which collection) {
	if which == collectionNone {
		return
	}
	profiles, briefcases, err := s.fetch(ctx, which)
	if err != nil {
		s.logger.Warn("re-fetch failed; keeping local state", logging.Err(err))
		return
	}
	var actions []Action
	if which&collectionProfiles != 0 {
		actions = append(actions, profilesReplaced{profiles: profiles})
	}
	if which&collectionBriefcases != 0 {
		actions = append(actions, briefcasesReplaced{briefcases: briefcases})
	}
	s.dispatch(actions...)
}
