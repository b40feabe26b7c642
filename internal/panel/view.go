package panel

import "outreach/internal/types"

// View is the derived panel state for one snapshot.
type View struct {
	Task       *types.Task
	Profile    *types.Profile
	Briefcases []types.Briefcase
	TaskIndex  *int

	Visited    int
	Total      int
	IsComplete bool

	// Current task progress; falls back to (0, related briefcases or 1)
	// when the snapshot carries no entry for the current task.
	TaskVisited int
	TaskTotal   int
	TaskDisplay int

	TaskPercent    float64
	OverallPercent float64
	HasBriefcases  bool

	Comment    string
	HasComment bool
	Copied     string

	Loading bool
	Source  string
}

const (
	SourceNone = ""
	SourcePush = "push"
	SourcePoll = "poll"
)

func derive(snapshot types.PanelSnapshot) View {
	v := View{
		Task:       snapshot.CurrentTask,
		Profile:    snapshot.CurrentProfile,
		Briefcases: snapshot.Briefcases,
		TaskIndex:  snapshot.CurrentTaskIndex,
		Visited:    snapshot.OverallProgress[0],
		Total:      snapshot.OverallProgress[1],
	}
	v.IsComplete = v.Visited >= v.Total && v.Total > 0

	if progress, ok := currentTaskProgress(snapshot); ok {
		v.TaskVisited, v.TaskTotal = progress[1], progress[2]
	} else {
		v.TaskTotal = 1
		if v.Task != nil && len(v.Task.RelatedBriefcases) > 0 {
			v.TaskTotal = len(v.Task.RelatedBriefcases)
		}
	}
	v.TaskDisplay = min(v.TaskVisited+1, v.TaskTotal)
	v.TaskPercent = percent(v.TaskVisited, v.TaskTotal)
	v.OverallPercent = percent(v.Visited, v.Total)
	v.HasBriefcases = v.Task != nil && len(v.Task.RelatedBriefcases) > 0

	if snapshot.CurrentComment != nil && *snapshot.CurrentComment != "" {
		v.Comment = *snapshot.CurrentComment
		v.HasComment = true
	}
	return v
}

func currentTaskProgress(snapshot types.PanelSnapshot) ([3]int, bool) {
	if snapshot.CurrentTaskIndex == nil {
		return [3]int{}, false
	}
	idx := *snapshot.CurrentTaskIndex
	if idx < 0 || idx >= len(snapshot.TaskProgress) {
		return [3]int{}, false
	}
	return snapshot.TaskProgress[idx], true
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func taskID(t *types.Task) string {
	if t == nil {
		return ""
	}
	return t.TaskID
}

func profileID(p *types.Profile) string {
	if p == nil {
		return ""
	}
	return p.ProfileID
}

// selection is a comment the operator picked by hand. The first snapshot
// reporting it is recorded as copied without writing the clipboard again.
type selection struct {
	taskID  string
	comment string
}

func (s selection) matches(t *types.Task, comment string) bool {
	if s.comment == "" || t == nil || t.TaskID != s.taskID || comment != s.comment {
		return false
	}
	return t.CommentIndex >= 0 && t.CommentIndex < len(t.Comments) && t.Comments[t.CommentIndex] == comment
}
