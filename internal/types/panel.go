package types

// PanelSnapshot is the consolidated automation state returned by the backend
// for the panel view. OverallProgress is [visited, total]; each TaskProgress
// entry is [task_index, visited, total].
type PanelSnapshot struct {
	CurrentTask      *Task       `json:"current_task"`
	CurrentProfile   *Profile    `json:"current_profile"`
	Briefcases       []Briefcase `json:"briefcases"`
	TotalTasks       int         `json:"total_tasks"`
	CurrentTaskIndex *int        `json:"current_task_index"`
	OverallProgress  [2]int      `json:"overall_progress"`
	TaskProgress     [][3]int    `json:"task_progress"`
	CurrentComment   *string     `json:"current_comment"`
}

// AutomationAck is the backend reply to a start-automation command.
type AutomationAck struct {
	Completed           bool   `json:"completed"`
	ProfileID           string `json:"profile_id"`
	Link                string `json:"link"`
	ShouldChangeProfile bool   `json:"should_change_profile"`
	TaskIndex           int    `json:"task_index"`
	Comment             string `json:"comment"`
}
