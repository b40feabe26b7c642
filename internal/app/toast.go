package app

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const defaultToastDuration = 5 * time.Second

type toastLevel int

const (
	toastLevelInfo toastLevel = iota
	toastLevelWarning
	toastLevelError
)

type toast struct {
	text     string
	level    toastLevel
	until    time.Time
	duration time.Duration
}

// toastExpiredMsg fires when a toast shown with the given text should go.
type toastExpiredMsg struct {
	text string
}

func newToast(duration time.Duration) toast {
	if duration <= 0 {
		duration = defaultToastDuration
	}
	return toast{duration: duration}
}

func (t *toast) show(level toastLevel, message string, now time.Time) tea.Cmd {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	t.text = message
	t.level = level
	t.until = now.Add(t.duration)
	return tea.Tick(t.duration, func(time.Time) tea.Msg {
		return toastExpiredMsg{text: message}
	})
}

func (t *toast) clear() {
	t.text = ""
	t.level = toastLevelInfo
	t.until = time.Time{}
}

// expire clears the toast when it still shows text. A newer toast with
// different text is left alone.
func (t *toast) expire(text string) bool {
	if t.text != text {
		return false
	}
	t.clear()
	return true
}

func (t toast) active(at time.Time) bool {
	if strings.TrimSpace(t.text) == "" {
		return false
	}
	if t.until.IsZero() {
		return true
	}
	return at.Before(t.until)
}

func (t toast) line(width int, at time.Time) string {
	if !t.active(at) || width <= 0 {
		return ""
	}
	text := truncateToWidth(t.text, max(1, width-4))
	pill := t.style().Render(" " + text + " ")
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, pill)
}

func (t toast) style() lipgloss.Style {
	switch t.level {
	case toastLevelWarning:
		return toastWarningStyle
	case toastLevelError:
		return toastErrorStyle
	default:
		return toastInfoStyle
	}
}
