package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"outreach/internal/state"
	"outreach/internal/types"
)

// EntityStore is the part of the entity store the manager view drives.
type EntityStore interface {
	Changes() <-chan struct{}
	Snapshot() state.State
	BriefcaseCounts() map[types.Platform]int
	ClearError()
	SetAddProfileOpen(open bool)
	SetAddBriefcaseOpen(open bool, profileID string, platform types.Platform)
	Load(ctx context.Context) error
	AddProfile(ctx context.Context, name string) error
	RemoveProfile(id string)
	AddBriefcase(profileID string, platform types.Platform, username string) error
	RemoveBriefcase(id string)
	ToggleBriefcaseActive(id string)
	AddTask(link, comment string) (types.Task, error)
	RemoveTask(id string)
	Sync(ctx context.Context) error
	SaveAll(ctx context.Context) error
	StartAutomation(ctx context.Context) (*types.AutomationAck, error)
}

// WebviewNavigator points the embedded browser at a URL.
type WebviewNavigator interface {
	ChangeWebviewURL(ctx context.Context, url string) error
}

type pane int

const (
	paneProfiles pane = iota
	paneBriefcases
	paneTasks
	paneCount
)

func (p pane) title() string {
	switch p {
	case paneBriefcases:
		return "Briefcases"
	case paneTasks:
		return "Tasks"
	default:
		return "Profiles"
	}
}

const (
	taskFieldLink = iota
	taskFieldComment
)

const (
	defaultWidth   = 100
	defaultHeight  = 30
	previewLines   = 8
	platformColumn = 10
)

var submitTaskKey = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "add task"))

// Manager is the profile, briefcase and task scheduler view.
type Manager struct {
	store   EntityStore
	webview WebviewNavigator
	keys    managerKeyMap
	help    help.Model
	toast   toast
	now     func() time.Time

	width  int
	height int

	snap      state.State
	counts    map[types.Platform]int
	lastError string
	status    string

	pane   pane
	cursor [paneCount]int

	nameInput     textinput.Model
	usernameInput textinput.Model
	linkInput     textinput.Model
	commentInput  textarea.Model
	taskForm      bool
	taskField     int
}

type ManagerOption func(*Manager)

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithToastDuration(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.toast = newToast(d)
	}
}

func NewManager(store EntityStore, webview WebviewNavigator, opts ...ManagerOption) *Manager {
	name := textinput.New()
	name.Prompt = "Name: "
	name.Placeholder = "profile name"
	name.CharLimit = 64

	username := textinput.New()
	username.Prompt = "Username: "
	username.Placeholder = "account handle"
	username.CharLimit = 128

	link := textinput.New()
	link.Prompt = "Link: "
	link.Placeholder = "https://…"

	comment := textarea.New()
	comment.Placeholder = "One comment per line"
	comment.ShowLineNumbers = false
	comment.SetHeight(5)

	m := &Manager{
		store:         store,
		webview:       webview,
		keys:          defaultManagerKeys(),
		help:          help.New(),
		toast:         newToast(defaultToastDuration),
		now:           time.Now,
		width:         defaultWidth,
		height:        defaultHeight,
		nameInput:     name,
		usernameInput: username,
		linkInput:     link,
		commentInput:  comment,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.resize(m.width, m.height)
	m.snap = store.Snapshot()
	m.counts = store.BriefcaseCounts()
	return m
}

func (m *Manager) Init() tea.Cmd {
	return tea.Batch(m.refresh(), loadCmd(m.store), waitForSignalCmd(m.store.Changes(), storeChangedMsg{}))
}

func (m *Manager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case storeChangedMsg:
		return m, tea.Batch(m.refresh(), waitForSignalCmd(m.store.Changes(), storeChangedMsg{}))
	case toastExpiredMsg:
		if m.toast.expire(msg.text) && m.snap.Error == msg.text {
			m.store.ClearError()
		}
		return m, nil
	case loadMsg:
		if msg.err == nil {
			m.status = "loaded"
		}
		return m, m.refresh()
	case createProfileMsg:
		if msg.err == nil {
			m.nameInput.Reset()
			m.status = "profile added: " + msg.name
		}
		return m, m.refresh()
	case syncMsg:
		if msg.err == nil {
			m.status = msg.label
		}
		return m, m.refresh()
	case startAutomationMsg:
		cmd := m.refresh()
		if msg.err != nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.toast.show(toastLevelInfo, "automation started", m.now()))
	case loginMsg:
		if msg.err != nil {
			return m, m.toast.show(toastLevelError, "login failed: "+msg.err.Error(), m.now())
		}
		m.status = "opened " + msg.platform.String() + " login"
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Manager) resize(width, height int) {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	m.width = width
	m.height = height
	inputWidth := max(10, width-20)
	m.nameInput.SetWidth(inputWidth)
	m.usernameInput.SetWidth(inputWidth)
	m.linkInput.SetWidth(inputWidth)
	m.commentInput.SetWidth(inputWidth)
	m.help.SetWidth(width)
}

// refresh pulls a snapshot from the store and reacts to a new error.
func (m *Manager) refresh() tea.Cmd {
	m.snap = m.store.Snapshot()
	m.counts = m.store.BriefcaseCounts()
	m.clampCursors()
	var cmds []tea.Cmd
	if m.snap.Error != m.lastError {
		m.lastError = m.snap.Error
		if m.snap.Error != "" {
			cmds = append(cmds, m.toast.show(toastLevelError, m.snap.Error, m.now()))
		}
	}
	cmds = append(cmds, m.syncDialogs())
	return tea.Batch(cmds...)
}

// syncDialogs keeps input focus in line with the dialog flags held by the
// store.
func (m *Manager) syncDialogs() tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.snap.AddProfileOpen && !m.nameInput.Focused():
		cmd = m.nameInput.Focus()
	case !m.snap.AddProfileOpen && m.nameInput.Focused():
		m.nameInput.Blur()
	}
	switch {
	case m.snap.AddBriefcase.Open && !m.usernameInput.Focused():
		cmd = tea.Batch(cmd, m.usernameInput.Focus())
	case !m.snap.AddBriefcase.Open && m.usernameInput.Focused():
		m.usernameInput.Blur()
		m.usernameInput.Reset()
	}
	return cmd
}

func (m *Manager) clampCursors() {
	sizes := [paneCount]int{
		paneProfiles:   len(m.snap.Profiles),
		paneBriefcases: len(m.visibleBriefcases()),
		paneTasks:      len(m.snap.Tasks),
	}
	for p, n := range sizes {
		if m.cursor[p] >= n {
			m.cursor[p] = n - 1
		}
		if m.cursor[p] < 0 {
			m.cursor[p] = 0
		}
	}
}

func (m *Manager) selectedProfile() (types.Profile, bool) {
	idx := m.cursor[paneProfiles]
	if idx < 0 || idx >= len(m.snap.Profiles) {
		return types.Profile{}, false
	}
	return m.snap.Profiles[idx], true
}

func (m *Manager) visibleBriefcases() []types.Briefcase {
	profile, ok := m.selectedProfile()
	if !ok {
		return nil
	}
	return m.snap.ProfileBriefcases(profile.ProfileID)
}

func (m *Manager) selectedBriefcase() (types.Briefcase, bool) {
	list := m.visibleBriefcases()
	idx := m.cursor[paneBriefcases]
	if idx < 0 || idx >= len(list) {
		return types.Briefcase{}, false
	}
	return list[idx], true
}

func (m *Manager) selectedTask() (types.Task, bool) {
	idx := m.cursor[paneTasks]
	if idx < 0 || idx >= len(m.snap.Tasks) {
		return types.Task{}, false
	}
	return m.snap.Tasks[idx], true
}

func (m *Manager) move(delta int) {
	m.cursor[m.pane] += delta
	m.clampCursors()
	if m.pane == paneProfiles {
		m.cursor[paneBriefcases] = 0
	}
}

func (m *Manager) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.snap.AddProfileOpen:
		return m.handleAddProfileKey(msg)
	case m.snap.AddBriefcase.Open:
		return m.handleAddBriefcaseKey(msg)
	case m.taskForm:
		return m.handleTaskFormKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pane):
		m.pane = (m.pane + 1) % paneCount
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.status = "loading…"
		return m, loadCmd(m.store)
	}
	switch m.pane {
	case paneProfiles:
		return m.handleProfilesKey(msg)
	case paneBriefcases:
		return m.handleBriefcasesKey(msg)
	case paneTasks:
		return m.handleTasksKey(msg)
	}
	return m, nil
}

func (m *Manager) handleProfilesKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		m.store.SetAddProfileOpen(true)
		return m, m.refresh()
	case key.Matches(msg, m.keys.Remove):
		if profile, ok := m.selectedProfile(); ok {
			m.store.RemoveProfile(profile.ProfileID)
			m.status = "profile removed: " + profile.ProfileName
			return m, m.refresh()
		}
	case key.Matches(msg, m.keys.Sync):
		m.status = "syncing…"
		return m, syncCmd(m.store)
	case key.Matches(msg, m.keys.SaveAll):
		m.status = "saving…"
		return m, saveAllCmd(m.store)
	}
	return m, nil
}

func (m *Manager) handleBriefcasesKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		profile, ok := m.selectedProfile()
		if !ok {
			return m, m.toast.show(toastLevelWarning, "select a profile first", m.now())
		}
		m.store.SetAddBriefcaseOpen(true, profile.ProfileID, types.Platforms()[0])
		return m, m.refresh()
	case key.Matches(msg, m.keys.Remove):
		if bc, ok := m.selectedBriefcase(); ok {
			m.store.RemoveBriefcase(bc.ID)
			return m, m.refresh()
		}
	case key.Matches(msg, m.keys.Toggle):
		if bc, ok := m.selectedBriefcase(); ok {
			m.store.ToggleBriefcaseActive(bc.ID)
			return m, m.refresh()
		}
	case key.Matches(msg, m.keys.Login):
		if bc, ok := m.selectedBriefcase(); ok {
			return m, loginCmd(m.webview, bc.SocialMedia)
		}
	}
	return m, nil
}

func (m *Manager) handleTasksKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewTask):
		m.taskForm = true
		m.taskField = taskFieldLink
		m.commentInput.Blur()
		return m, m.linkInput.Focus()
	case key.Matches(msg, m.keys.Remove):
		if task, ok := m.selectedTask(); ok {
			m.store.RemoveTask(task.TaskID)
			return m, m.refresh()
		}
	case key.Matches(msg, m.keys.Start):
		m.status = "starting automation…"
		return m, startAutomationCmd(m.store)
	}
	return m, nil
}

func (m *Manager) handleAddProfileKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.nameInput.Reset()
		m.store.SetAddProfileOpen(false)
		return m, m.refresh()
	case key.Matches(msg, m.keys.Submit):
		return m, createProfileCmd(m.store, m.nameInput.Value())
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Manager) handleAddBriefcaseKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	dialog := m.snap.AddBriefcase
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.store.SetAddBriefcaseOpen(false, "", "")
		return m, m.refresh()
	case key.Matches(msg, m.keys.NextField):
		m.store.SetAddBriefcaseOpen(true, dialog.ProfileID, nextPlatform(dialog.Platform))
		return m, m.refresh()
	case key.Matches(msg, m.keys.Submit):
		if err := m.store.AddBriefcase(dialog.ProfileID, dialog.Platform, m.usernameInput.Value()); err == nil {
			m.status = fmt.Sprintf("%s briefcase added", dialog.Platform)
		}
		return m, m.refresh()
	}
	var cmd tea.Cmd
	m.usernameInput, cmd = m.usernameInput.Update(msg)
	return m, cmd
}

func (m *Manager) handleTaskFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeTaskForm()
		return m, nil
	case key.Matches(msg, submitTaskKey):
		return m, m.submitTask()
	case key.Matches(msg, m.keys.NextField):
		return m, m.switchTaskField()
	case m.taskField == taskFieldLink && key.Matches(msg, m.keys.Submit):
		return m, m.switchTaskField()
	}
	var cmd tea.Cmd
	if m.taskField == taskFieldLink {
		m.linkInput, cmd = m.linkInput.Update(msg)
	} else {
		m.commentInput, cmd = m.commentInput.Update(msg)
	}
	return m, cmd
}

func (m *Manager) switchTaskField() tea.Cmd {
	if m.taskField == taskFieldLink {
		m.taskField = taskFieldComment
		m.linkInput.Blur()
		return m.commentInput.Focus()
	}
	m.taskField = taskFieldLink
	m.commentInput.Blur()
	return m.linkInput.Focus()
}

func (m *Manager) submitTask() tea.Cmd {
	task, err := m.store.AddTask(m.linkInput.Value(), m.commentInput.Value())
	if err != nil {
		return m.refresh()
	}
	m.closeTaskForm()
	m.status = fmt.Sprintf("%s task added (%d briefcases)", task.SocialMedia, len(task.RelatedBriefcases))
	m.pane = paneTasks
	cmd := m.refresh()
	m.cursor[paneTasks] = len(m.snap.Tasks) - 1
	return cmd
}

func (m *Manager) closeTaskForm() {
	m.taskForm = false
	m.taskField = taskFieldLink
	m.linkInput.Blur()
	m.linkInput.Reset()
	m.commentInput.Blur()
	m.commentInput.Reset()
}

func nextPlatform(current types.Platform) types.Platform {
	platforms := types.Platforms()
	for i, p := range platforms {
		if p == current {
			return platforms[(i+1)%len(platforms)]
		}
	}
	return platforms[0]
}

func (m *Manager) View() tea.View {
	view := tea.NewView(m.render())
	view.AltScreen = true
	return view
}

func (m *Manager) render() string {
	lines := []string{
		headerStyle.Render("Outreach") + "  " + m.badges(),
		divider(m.width),
	}
	switch {
	case m.snap.AddProfileOpen:
		lines = append(lines, m.renderDialog("Add Profile", m.nameInput.View()))
	case m.snap.AddBriefcase.Open:
		lines = append(lines, m.renderBriefcaseDialog())
	case m.taskForm:
		lines = append(lines, m.renderTaskForm())
	default:
		lines = append(lines, m.renderPanes()...)
	}
	lines = append(lines, divider(m.width), m.statusLine())
	if toast := m.toast.line(m.width, m.now()); toast != "" {
		lines = append(lines, toast)
	}
	lines = append(lines, m.helpLine())
	return strings.Join(lines, "\n")
}

func (m *Manager) badges() string {
	parts := make([]string, 0, len(types.Platforms()))
	for _, platform := range types.Platforms() {
		n := m.counts[platform]
		label := fmt.Sprintf("%s %d", platform, n)
		if n == 0 {
			parts = append(parts, badgeEmptyStyle.Render(label))
			continue
		}
		parts = append(parts, badgeStyle.Render(label))
	}
	return strings.Join(parts, "  ")
}

func (m *Manager) renderPanes() []string {
	columnWidth := max(20, (m.width-4)/3)
	columns := []string{
		m.renderProfiles(columnWidth),
		m.renderBriefcases(columnWidth),
		m.renderTasks(columnWidth),
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, columns[0], "  ", columns[1], "  ", columns[2])}
	if task, ok := m.selectedTask(); ok && m.pane == paneTasks {
		lines = append(lines, divider(m.width), m.renderTaskDetail(task))
	}
	return lines
}

func (m *Manager) paneTitle(p pane, count int) string {
	title := fmt.Sprintf("%s (%d)", p.title(), count)
	if m.pane == p {
		return paneTitleStyle.Render(title)
	}
	return paneTitleDimStyle.Render(title)
}

func (m *Manager) row(p pane, idx int, text string, width int) string {
	cell := padCell(text, width)
	if m.pane == p && m.cursor[p] == idx {
		return selectedStyle.Render(cell)
	}
	return cell
}

func (m *Manager) renderProfiles(width int) string {
	lines := []string{m.paneTitle(paneProfiles, len(m.snap.Profiles))}
	if len(m.snap.Profiles) == 0 {
		lines = append(lines, statusStyle.Render("No profiles yet."))
	}
	for i, profile := range m.snap.Profiles {
		n := len(m.snap.ProfileBriefcases(profile.ProfileID))
		text := fmt.Sprintf("%s [%d]", profile.ProfileName, n)
		lines = append(lines, m.row(paneProfiles, i, text, width))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Manager) renderBriefcases(width int) string {
	list := m.visibleBriefcases()
	lines := []string{m.paneTitle(paneBriefcases, len(list))}
	if _, ok := m.selectedProfile(); !ok {
		lines = append(lines, statusStyle.Render("Select a profile."))
	} else if len(list) == 0 {
		lines = append(lines, statusStyle.Render("No briefcases."))
	}
	for i, bc := range list {
		marker := "○"
		if bc.IsActive {
			marker = "●"
		}
		text := marker + " " + padCell(bc.SocialMedia.String(), platformColumn) + bc.UserName
		row := m.row(paneBriefcases, i, text, width)
		if !bc.IsActive && !(m.pane == paneBriefcases && m.cursor[paneBriefcases] == i) {
			row = inactiveStyle.Render(row)
		}
		lines = append(lines, row)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Manager) renderTasks(width int) string {
	lines := []string{m.paneTitle(paneTasks, len(m.snap.Tasks))}
	if len(m.snap.Tasks) == 0 {
		lines = append(lines, statusStyle.Render("No tasks scheduled."))
	}
	for i, task := range m.snap.Tasks {
		text := padCell(task.SocialMedia.String(), platformColumn) + fmt.Sprintf("%d× %s", len(task.RelatedBriefcases), task.Link)
		lines = append(lines, m.row(paneTasks, i, text, width))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Manager) renderTaskDetail(task types.Task) string {
	lines := []string{
		linkStyle.Render(truncateToWidth(task.Link, m.width)),
		statusStyle.Render(fmt.Sprintf("%d comments · %d/%d briefcases done", len(task.Comments), task.ClampProgress(), len(task.RelatedBriefcases))),
	}
	if comment, ok := task.CurrentComment(); ok {
		lines = append(lines, activeCommentStyle.Render(truncateToWidth("Next comment: "+comment, m.width)))
	}
	preview := renderMarkdown(task.CommentUnformatted, max(20, m.width-2))
	if preview != "" {
		rows := strings.Split(preview, "\n")
		if len(rows) > previewLines {
			rows = append(rows[:previewLines], "…")
		}
		lines = append(lines, rows...)
	}
	return strings.Join(lines, "\n")
}

func (m *Manager) renderDialog(title, body string) string {
	return dialogStyle.Render(headerStyle.Render(title) + "\n" + body)
}

func (m *Manager) renderBriefcaseDialog() string {
	dialog := m.snap.AddBriefcase
	profileName := dialog.ProfileID
	for _, p := range m.snap.Profiles {
		if p.ProfileID == dialog.ProfileID {
			profileName = p.ProfileName
			break
		}
	}
	body := strings.Join([]string{
		statusStyle.Render("Profile: " + profileName),
		"Platform: " + badgeStyle.Render(dialog.Platform.String()) + helpStyle.Render("  (tab to change)"),
		m.usernameInput.View(),
	}, "\n")
	return m.renderDialog("Add Briefcase", body)
}

func (m *Manager) renderTaskForm() string {
	body := strings.Join([]string{
		m.linkInput.View(),
		"Comments:",
		m.commentInput.View(),
	}, "\n")
	return m.renderDialog("Schedule Task", body)
}

func (m *Manager) statusLine() string {
	status := m.status
	if m.snap.Pending() {
		status = strings.TrimSpace(status + " · saving")
	}
	return statusStyle.Render(truncateToWidth(status, m.width))
}

func (m *Manager) helpLine() string {
	var bindings []key.Binding
	switch {
	case m.snap.AddProfileOpen:
		bindings = []key.Binding{m.keys.Submit, m.keys.Cancel}
	case m.snap.AddBriefcase.Open:
		bindings = m.keys.dialogHelp()
	case m.taskForm:
		bindings = []key.Binding{submitTaskKey, m.keys.NextField, m.keys.Cancel}
	default:
		bindings = m.keys.paneHelp(m.pane)
	}
	return m.help.ShortHelpView(bindings)
}
