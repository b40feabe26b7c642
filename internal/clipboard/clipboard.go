package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// Copier places text on the user's clipboard.
type Copier interface {
	Copy(ctx context.Context, text string) error
}

type Method uint8

const (
	MethodSystem Method = iota
	MethodOSC52
)

func (m Method) String() string {
	if m == MethodOSC52 {
		return "osc52"
	}
	return "system"
}

var (
	writeSystem = clipboard.WriteAll
	writeOSC52  = writeOSC52Clipboard

	openTTYForWrite = func() (io.WriteCloser, error) {
		return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	}
)

// System writes through the OS clipboard and falls back to an OSC52 escape
// sequence on the controlling terminal.
type System struct {
	// OnCopy, when set, is told which method succeeded.
	OnCopy func(Method)
}

func New() *System {
	return &System{}
}

// Copy runs the write in the background so a hung clipboard helper cannot
// outlive ctx.
func (s *System) Copy(ctx context.Context, text string) error {
	type result struct {
		method Method
		err    error
	}
	done := make(chan result, 1)
	go func() {
		method, err := copyText(text)
		done <- result{method: method, err: err}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-done:
		if res.err == nil && s != nil && s.OnCopy != nil {
			s.OnCopy(res.method)
		}
		return res.err
	}
}

func copyText(text string) (Method, error) {
	sysErr := writeSystem(text)
	if sysErr == nil {
		return MethodSystem, nil
	}
	oscErr := writeOSC52(text)
	if oscErr == nil {
		return MethodOSC52, nil
	}
	return MethodSystem, combineErrors(sysErr, oscErr)
}

func writeOSC52Clipboard(text string) error {
	if !osc52Enabled() {
		return errors.New("OSC52 unavailable for this terminal")
	}
	tty, err := openTTYForWrite()
	if err != nil {
		return fmt.Errorf("open /dev/tty: %w", err)
	}
	defer tty.Close()
	return writeSequence(tty, text)
}

func writeSequence(w io.Writer, text string) error {
	termName := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	switch {
	case os.Getenv("TMUX") != "":
		// tmux may or may not pass plain sequences through.
		if _, err := osc52.New(text).WriteTo(w); err != nil {
			return err
		}
		_, err := osc52.New(text).Tmux().WriteTo(w)
		return err
	case strings.HasPrefix(termName, "screen"):
		_, err := osc52.New(text).Screen().WriteTo(w)
		return err
	default:
		_, err := osc52.New(text).WriteTo(w)
		return err
	}
}

func osc52Enabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OUTREACH_DISABLE_OSC52"))) {
	case "1", "true", "yes", "on":
		return false
	}
	termName := strings.TrimSpace(os.Getenv("TERM"))
	return termName != "" && !strings.EqualFold(termName, "dumb")
}

func combineErrors(sysErr, oscErr error) error {
	if missingDisplay() {
		return fmt.Errorf("no GUI clipboard available (DISPLAY/WAYLAND_DISPLAY unset); OSC52 fallback failed: %s", humanize(oscErr))
	}
	return fmt.Errorf("system clipboard failed: %s; OSC52 fallback failed: %s", humanize(sysErr), humanize(oscErr))
}

func humanize(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "exit status 1" {
		if missingDisplay() {
			return "no GUI clipboard available (DISPLAY/WAYLAND_DISPLAY unset)"
		}
		return "clipboard helper exited with status 1"
	}
	return msg
}

func missingDisplay() bool {
	return strings.TrimSpace(os.Getenv("DISPLAY")) == "" && strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) == ""
}
