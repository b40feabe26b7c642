package app

import "charm.land/bubbles/v2/key"

type managerKeyMap struct {
	Pane      key.Binding
	Up        key.Binding
	Down      key.Binding
	Add       key.Binding
	Remove    key.Binding
	Toggle    key.Binding
	Login     key.Binding
	NewTask   key.Binding
	Start     key.Binding
	Sync      key.Binding
	SaveAll   key.Binding
	Reload    key.Binding
	Quit      key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	NextField key.Binding
}

func defaultManagerKeys() managerKeyMap {
	return managerKeyMap{
		Pane:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "pane")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Remove:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		Toggle:    key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "active")),
		Login:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		NewTask:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		Start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Sync:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "sync")),
		SaveAll:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save all")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	}
}

func (k managerKeyMap) paneHelp(p pane) []key.Binding {
	switch p {
	case paneBriefcases:
		return []key.Binding{k.Pane, k.Up, k.Down, k.Add, k.Remove, k.Toggle, k.Login, k.Quit}
	case paneTasks:
		return []key.Binding{k.Pane, k.Up, k.Down, k.NewTask, k.Remove, k.Start, k.Quit}
	default:
		return []key.Binding{k.Pane, k.Up, k.Down, k.Add, k.Remove, k.Sync, k.SaveAll, k.Reload, k.Quit}
	}
}

func (k managerKeyMap) dialogHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.Cancel}
}

type panelKeyMap struct {
	Next    key.Binding
	Select  key.Binding
	Refresh key.Binding
	Close   key.Binding
	Quit    key.Binding
}

func defaultPanelKeys() panelKeyMap {
	return panelKeyMap{
		Next:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		Select:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "comment")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Close:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close workspace")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "detach")),
	}
}

func (k panelKeyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Select, k.Refresh, k.Close, k.Quit}
}
