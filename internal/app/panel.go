package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"outreach/internal/panel"
	"outreach/internal/types"
)

// PanelEngine is the progress engine behind the panel view.
type PanelEngine interface {
	Updates() <-chan struct{}
	View() panel.View
	HandleNext(ctx context.Context) error
	HandleCommentSelect(ctx context.Context, index int) error
	HandleQuit(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// Panel renders automation progress for the active task.
type Panel struct {
	engine PanelEngine
	keys   panelKeyMap
	help   help.Model
	toast  toast
	now    func() time.Time

	taskBar    progress.Model
	overallBar progress.Model

	width  int
	height int
	view   panel.View
}

type PanelOption func(*Panel)

func WithPanelClock(now func() time.Time) PanelOption {
	return func(p *Panel) {
		if now != nil {
			p.now = now
		}
	}
}

func WithPanelToastDuration(d time.Duration) PanelOption {
	return func(p *Panel) {
		p.toast = newToast(d)
	}
}

func NewPanel(engine PanelEngine, opts ...PanelOption) *Panel {
	p := &Panel{
		engine:     engine,
		keys:       defaultPanelKeys(),
		help:       help.New(),
		toast:      newToast(defaultToastDuration),
		now:        time.Now,
		taskBar:    progress.New(progress.WithDefaultBlend(), progress.WithoutPercentage()),
		overallBar: progress.New(progress.WithDefaultBlend(), progress.WithoutPercentage()),
		view:       engine.View(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resize(defaultWidth, defaultHeight)
	return p
}

func (p *Panel) Init() tea.Cmd {
	return tea.Batch(refreshPanelCmd(p.engine), waitForSignalCmd(p.engine.Updates(), panelChangedMsg{}))
}

func (p *Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
		return p, nil
	case panelChangedMsg:
		p.view = p.engine.View()
		return p, waitForSignalCmd(p.engine.Updates(), panelChangedMsg{})
	case toastExpiredMsg:
		p.toast.expire(msg.text)
		return p, nil
	case panelActionMsg:
		if isClosed(msg.err) {
			return p, tea.Quit
		}
		if msg.err != nil {
			return p, p.toast.show(toastLevelError, msg.action+" failed: "+msg.err.Error(), p.now())
		}
		return p, nil
	case closedWorkspaceMsg:
		if msg.err != nil {
			return p, p.toast.show(toastLevelError, "close workspace failed: "+msg.err.Error(), p.now())
		}
		return p, tea.Quit
	case tea.KeyPressMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *Panel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, p.keys.Quit):
		return p, tea.Quit
	case key.Matches(msg, p.keys.Close):
		return p, closeWorkspaceCmd(p.engine)
	case key.Matches(msg, p.keys.Next):
		if p.view.Loading {
			return p, nil
		}
		p.view.Loading = true
		return p, nextItemCmd(p.engine)
	case key.Matches(msg, p.keys.Refresh):
		return p, refreshPanelCmd(p.engine)
	case key.Matches(msg, p.keys.Select):
		index := int(msg.String()[0] - '1')
		if p.view.Task == nil || index >= len(p.view.Task.Comments) {
			return p, nil
		}
		return p, selectCommentCmd(p.engine, index)
	}
	return p, nil
}

func (p *Panel) resize(width, height int) {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	p.width = width
	p.height = height
	barWidth := max(10, width-16)
	p.taskBar.SetWidth(barWidth)
	p.overallBar.SetWidth(barWidth)
	p.help.SetWidth(width)
}

func (p *Panel) View() tea.View {
	view := tea.NewView(p.render())
	view.AltScreen = true
	return view
}

func (p *Panel) render() string {
	v := p.view
	lines := []string{p.header(), divider(p.width)}
	if v.Task == nil {
		lines = append(lines, statusStyle.Render("Waiting for automation…"))
	} else {
		lines = append(lines, linkStyle.Render(truncateToWidth(v.Task.Link, p.width)))
	}
	if v.IsComplete {
		lines = append(lines, completeStyle.Render("All tasks complete"))
	}
	if v.HasBriefcases {
		lines = append(lines, p.bar("Task", p.taskBar, v.TaskPercent, fmt.Sprintf("%d/%d", v.TaskDisplay, v.TaskTotal)))
	}
	lines = append(lines, p.bar("Overall", p.overallBar, v.OverallPercent, fmt.Sprintf("%d/%d", v.Visited, v.Total)))
	if v.Loading {
		lines = append(lines, loadingStyle.Render("Moving to next item…"))
	}
	if comments := p.comments(); comments != "" {
		lines = append(lines, divider(p.width), comments)
	}
	lines = append(lines, divider(p.width))
	if toast := p.toast.line(p.width, p.now()); toast != "" {
		lines = append(lines, toast)
	}
	lines = append(lines, p.help.ShortHelpView(p.keys.shortHelp()))
	return strings.Join(lines, "\n")
}

func (p *Panel) header() string {
	v := p.view
	parts := []string{headerStyle.Render("Automation")}
	if v.Profile != nil {
		parts = append(parts, badgeStyle.Render(v.Profile.ProfileName))
	}
	if v.Task != nil {
		parts = append(parts, v.Task.SocialMedia.String())
	}
	if v.TaskIndex != nil {
		parts = append(parts, statusStyle.Render(fmt.Sprintf("task %d", *v.TaskIndex+1)))
	}
	if v.Source != panel.SourceNone {
		parts = append(parts, helpStyle.Render("("+v.Source+")"))
	}
	return truncateToWidth(strings.Join(parts, "  "), p.width)
}

func (p *Panel) bar(label string, bar progress.Model, percent float64, counts string) string {
	return padCell(label, 8) + bar.ViewAs(percent/100) + " " + statusStyle.Render(counts)
}

func (p *Panel) comments() string {
	task := p.view.Task
	if task == nil || len(task.Comments) == 0 {
		return ""
	}
	active := types.ClampCommentIndex(task.CommentIndex, len(task.Comments))
	lines := make([]string, 0, len(task.Comments)+1)
	for i, comment := range task.Comments {
		prefix := fmt.Sprintf("  %d. ", i+1)
		text := truncateToWidth(comment, max(1, p.width-len(prefix)))
		if i == active {
			lines = append(lines, activeCommentStyle.Render("▸ "+prefix[2:]+text))
			continue
		}
		lines = append(lines, commentStyle.Render(prefix+text))
	}
	if p.view.Copied != "" && p.view.HasComment && p.view.Copied == p.view.Comment {
		lines = append(lines, copiedStyle.Render("Copied to clipboard"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// isClosed reports whether err means the engine is gone.
func isClosed(err error) bool {
	return errors.Is(err, panel.ErrClosed)
}
