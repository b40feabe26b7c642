package types

import "encoding/json"

type NotificationType string

const (
	NotificationProfilesChanged    NotificationType = "profiles-changed"
	NotificationBriefcasesChanged  NotificationType = "briefcases-changed"
	NotificationScreenshotCaptured NotificationType = "screenshot-captured"
)

// Notification is a backend-originated change signal. The collection
// notifications carry no payload.
type Notification struct {
	Type    NotificationType `json:"type"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}

type Screenshot struct {
	ID          string       `json:"id"`
	Base64Data  string       `json:"base64_data"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Timestamp   string       `json:"timestamp"`
	ProfileID   string       `json:"profile_id"`
	BriefcaseID string       `json:"briefcase_id"`
	Annotations []Annotation `json:"annotations"`
}

type Annotation struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	OverlayPath string  `json:"overlay_path"`
}

// Screenshot decodes the payload of a screenshot-captured notification.
func (n Notification) Screenshot() (*Screenshot, error) {
	var shot Screenshot
	if err := json.Unmarshal(n.Payload, &shot); err != nil {
		return nil, err
	}
	return &shot, nil
}
