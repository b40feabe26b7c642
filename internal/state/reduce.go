package state

import (
	"time"

	"outreach/internal/types"
)

// Action is a state transition applied by Reduce.
type Action interface {
	isAction()
}

type profileAdded struct{ profile types.Profile }

// profileRemoved drops the profile together with every briefcase it owns.
type profileRemoved struct{ id string }

type profilesReplaced struct{ profiles []types.Profile }

type briefcaseAdded struct{ briefcase types.Briefcase }

type briefcaseRemoved struct{ id string }

type briefcaseToggled struct{ id string }

type briefcasesReplaced struct{ briefcases []types.Briefcase }

type taskAdded struct{ task types.Task }

type taskRemoved struct{ id string }

type tasksReplaced struct{ tasks []types.Task }

type addProfileDialogSet struct{ open bool }

type addBriefcaseDialogSet struct{ dialog BriefcaseDialog }

type errorSet struct{ message string }

type mutationStarted struct{ mutation Mutation }

type mutationFinished struct {
	id  string
	err string
	at  time.Time
}

func (profileAdded) isAction()          {}
func (profileRemoved) isAction()        {}
func (profilesReplaced) isAction()      {}
func (briefcaseAdded) isAction()        {}
func (briefcaseRemoved) isAction()      {}
func (briefcaseToggled) isAction()      {}
func (briefcasesReplaced) isAction()    {}
func (taskAdded) isAction()             {}
func (taskRemoved) isAction()           {}
func (tasksReplaced) isAction()         {}
func (addProfileDialogSet) isAction()   {}
func (addBriefcaseDialogSet) isAction() {}
func (errorSet) isAction()              {}
func (mutationStarted) isAction()       {}
func (mutationFinished) isAction()      {}

// Reduce returns the state that results from applying action to s. Slices
// of s are never written to; changed collections are rebuilt.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case profileAdded:
		s.Profiles = append(types.CloneProfiles(s.Profiles), a.profile)
		s.AddProfileOpen = false
	case profileRemoved:
		s.Profiles = filter(s.Profiles, func(p types.Profile) bool { return p.ProfileID != a.id })
		s.Briefcases = filter(s.Briefcases, func(b types.Briefcase) bool { return b.ProfileID != a.id })
	case profilesReplaced:
		s.Profiles = types.CloneProfiles(a.profiles)
	case briefcaseAdded:
		s.Briefcases = append(types.CloneBriefcases(s.Briefcases), a.briefcase)
		s.AddBriefcase = BriefcaseDialog{}
	case briefcaseRemoved:
		s.Briefcases = filter(s.Briefcases, func(b types.Briefcase) bool { return b.ID != a.id })
	case briefcaseToggled:
		next := types.CloneBriefcases(s.Briefcases)
		for i := range next {
			if next[i].ID == a.id {
				next[i].IsActive = !next[i].IsActive
			}
		}
		s.Briefcases = next
	case briefcasesReplaced:
		s.Briefcases = types.CloneBriefcases(a.briefcases)
	case taskAdded:
		s.Tasks = append(types.CloneTasks(s.Tasks), types.CloneTask(a.task))
	case taskRemoved:
		s.Tasks = filter(s.Tasks, func(t types.Task) bool { return t.TaskID != a.id })
	case tasksReplaced:
		s.Tasks = types.CloneTasks(a.tasks)
	case addProfileDialogSet:
		s.AddProfileOpen = a.open
	case addBriefcaseDialogSet:
		s.AddBriefcase = a.dialog
		if !a.dialog.Open {
			s.AddBriefcase = BriefcaseDialog{}
		}
	case errorSet:
		s.Error = a.message
	case mutationStarted:
		next := append([]Mutation{}, s.Mutations...)
		next = append(next, a.mutation)
		s.Mutations = trimMutations(next)
	case mutationFinished:
		next := append([]Mutation{}, s.Mutations...)
		for i := range next {
			if next[i].ID != a.id {
				continue
			}
			next[i].Finished = a.at
			if a.err != "" {
				next[i].Status = MutationFailed
				next[i].Err = a.err
			} else {
				next[i].Status = MutationCommitted
			}
		}
		s.Mutations = next
	}
	return s
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, item := range in {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// trimMutations drops the oldest settled entries once the ledger is full.
// Pending entries are always kept.
func trimMutations(in []Mutation) []Mutation {
	excess := len(in) - maxMutations
	if excess <= 0 {
		return in
	}
	out := make([]Mutation, 0, len(in))
	for _, m := range in {
		if excess > 0 && m.Status != MutationPending {
			excess--
			continue
		}
		out = append(out, m)
	}
	return out
}
