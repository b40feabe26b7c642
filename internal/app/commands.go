package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"outreach/internal/types"
)

const commandTimeout = 4 * time.Second

type storeChangedMsg struct{}

type panelChangedMsg struct{}

type loadMsg struct {
	err error
}

type createProfileMsg struct {
	name string
	err  error
}

type syncMsg struct {
	label string
	err   error
}

type startAutomationMsg struct {
	ack *types.AutomationAck
	err error
}

type loginMsg struct {
	platform types.Platform
	err      error
}

type panelActionMsg struct {
	action string
	err    error
}

type closedWorkspaceMsg struct {
	err error
}

func waitForSignalCmd(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

func loadCmd(store EntityStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return loadMsg{err: store.Load(ctx)}
	}
}

func createProfileCmd(store EntityStore, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return createProfileMsg{name: name, err: store.AddProfile(ctx, name)}
	}
}

func syncCmd(store EntityStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return syncMsg{label: "synced", err: store.Sync(ctx)}
	}
}

func saveAllCmd(store EntityStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return syncMsg{label: "saved", err: store.SaveAll(ctx)}
	}
}

func startAutomationCmd(store EntityStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		ack, err := store.StartAutomation(ctx)
		return startAutomationMsg{ack: ack, err: err}
	}
}

func loginCmd(webview WebviewNavigator, platform types.Platform) tea.Cmd {
	if webview == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return loginMsg{platform: platform, err: webview.ChangeWebviewURL(ctx, platform.LoginURL())}
	}
}

func nextItemCmd(engine PanelEngine) tea.Cmd {
	return func() tea.Msg {
		return panelActionMsg{action: "next", err: engine.HandleNext(context.Background())}
	}
}

func selectCommentCmd(engine PanelEngine, index int) tea.Cmd {
	return func() tea.Msg {
		return panelActionMsg{action: "select comment", err: engine.HandleCommentSelect(context.Background(), index)}
	}
}

func refreshPanelCmd(engine PanelEngine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return panelActionMsg{action: "refresh", err: engine.Refresh(ctx)}
	}
}

func closeWorkspaceCmd(engine PanelEngine) tea.Cmd {
	return func() tea.Msg {
		return closedWorkspaceMsg{err: engine.HandleQuit(context.Background())}
	}
}
