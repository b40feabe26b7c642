package state

import (
	"time"

	"outreach/internal/types"
)

// BriefcaseDialog tracks the add-briefcase dialog and the profile and
// platform it was opened for.
type BriefcaseDialog struct {
	Open      bool
	ProfileID string
	Platform  types.Platform
}

type MutationKind string

const (
	MutationCreateProfile   MutationKind = "create profile"
	MutationSyncData        MutationKind = "sync data"
	MutationSaveBriefcases  MutationKind = "save briefcases"
	MutationSaveData        MutationKind = "save data"
	MutationStartAutomation MutationKind = "start automation"
)

type MutationStatus string

const (
	MutationPending   MutationStatus = "pending"
	MutationCommitted MutationStatus = "committed"
	MutationFailed    MutationStatus = "failed"
)

// Mutation is one backend command issued on behalf of a local change.
type Mutation struct {
	ID       string
	Kind     MutationKind
	EntityID string
	Status   MutationStatus
	Err      string
	Started  time.Time
	Finished time.Time
}

const maxMutations = 64

type State struct {
	Profiles       []types.Profile
	Briefcases     []types.Briefcase
	Tasks          []types.Task
	AddProfileOpen bool
	AddBriefcase   BriefcaseDialog
	Error          string
	Mutations      []Mutation
}

func (s State) Clone() State {
	out := s
	out.Profiles = types.CloneProfiles(s.Profiles)
	out.Briefcases = types.CloneBriefcases(s.Briefcases)
	out.Tasks = types.CloneTasks(s.Tasks)
	if s.Mutations != nil {
		out.Mutations = append([]Mutation{}, s.Mutations...)
	}
	return out
}

func (s State) BriefcaseCount(platform types.Platform) int {
	count := 0
	for _, bc := range s.Briefcases {
		if bc.SocialMedia == platform {
			count++
		}
	}
	return count
}

func (s State) ProfileBriefcases(profileID string) []types.Briefcase {
	out := []types.Briefcase{}
	for _, bc := range s.Briefcases {
		if bc.ProfileID == profileID {
			out = append(out, bc)
		}
	}
	return out
}

// Pending reports whether any backend command is still in flight.
func (s State) Pending() bool {
	for _, m := range s.Mutations {
		if m.Status == MutationPending {
			return true
		}
	}
	return false
}

func (s State) mutation(id string) (Mutation, bool) {
	for _, m := range s.Mutations {
		if m.ID == id {
			return m, true
		}
	}
	return Mutation{}, false
}
