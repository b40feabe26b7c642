package types

import "time"

// Task is a client-local work order. RelatedBriefcases is frozen at BoundAt
// and is not refreshed when the briefcase collection changes.
type Task struct {
	TaskID             string      `json:"task_id"`
	Link               string      `json:"link"`
	Comments           []string    `json:"comments"`
	CommentUnformatted string      `json:"comment_unformatted"`
	CommentIndex       int         `json:"comment_index"`
	Progress           int         `json:"progress"`
	SocialMedia        Platform    `json:"social_media"`
	RelatedBriefcases  []Briefcase `json:"related_brief_cases"`
	BoundAt            time.Time   `json:"bound_at,omitzero"`
}

// CurrentComment returns the comment at CommentIndex after clamping.
func (t Task) CurrentComment() (string, bool) {
	if len(t.Comments) == 0 {
		return "", false
	}
	return t.Comments[ClampCommentIndex(t.CommentIndex, len(t.Comments))], true
}

// ClampCommentIndex keeps idx inside [0, n) for n > 0 and returns 0 otherwise.
func ClampCommentIndex(idx, n int) int {
	if n <= 0 || idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// ClampProgress keeps progress inside [0, len(RelatedBriefcases)].
func (t Task) ClampProgress() int {
	if t.Progress < 0 {
		return 0
	}
	if t.Progress > len(t.RelatedBriefcases) {
		return len(t.RelatedBriefcases)
	}
	return t.Progress
}

func CloneTask(in Task) Task {
	out := in
	if in.Comments != nil {
		out.Comments = append([]string{}, in.Comments...)
	}
	out.RelatedBriefcases = CloneBriefcases(in.RelatedBriefcases)
	return out
}

func CloneTasks(in []Task) []Task {
	if in == nil {
		return nil
	}
	out := make([]Task, 0, len(in))
	for _, t := range in {
		out = append(out, CloneTask(t))
	}
	return out
}
