package client

import "outreach/internal/types"

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
	Running bool   `json:"running"`
}

type CreateProfileRequest struct {
	ProfileName string `json:"profile_name"`
}

type ProfilesResponse struct {
	Profiles []types.Profile `json:"profiles"`
}

type BriefcasesResponse struct {
	Briefcases []types.Briefcase `json:"briefcases"`
}

type SaveAllRequest struct {
	Profiles   []types.Profile   `json:"profiles"`
	Briefcases []types.Briefcase `json:"briefcases"`
}

type CloseWorkspaceRequest struct {
	ProfileName string `json:"profile_name,omitempty"`
}

type SetCommentIndexRequest struct {
	TaskIndex    int `json:"task_index"`
	CommentIndex int `json:"comment_index"`
}

type ChangeURLRequest struct {
	URL string `json:"url"`
}

type StartAutomationRequest struct {
	TasksJSON string `json:"tasks_json"`
}
