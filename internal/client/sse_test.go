package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"outreach/internal/types"
)

func TestNotificationsParsesEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v1/events" || r.URL.Query().Get("follow") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		_, _ = w.Write([]byte("data: {\"type\":\"profiles-changed\"}\n\n"))
		_, _ = w.Write([]byte("data: not-json\n\n"))
		_, _ = w.Write([]byte(": keepalive\n\n"))
		_, _ = w.Write([]byte("data: {\"type\":\"briefcases-changed\"}\n\n"))
		if flusher != nil {
			flusher.Flush()
		}
	}))
	defer server.Close()

	c := &Client{baseURL: server.URL, token: "token"}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, stop, err := c.Notifications(ctx)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	defer stop()

	var got []types.NotificationType
	for n := range ch {
		got = append(got, n.Type)
	}
	if len(got) != 2 || got[0] != types.NotificationProfilesChanged || got[1] != types.NotificationBriefcasesChanged {
		t.Fatalf("unexpected notifications: %v", got)
	}
}

func TestPanelStreamNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := &Client{baseURL: server.URL, token: "token"}
	_, _, err := c.PanelStream(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestReadEventsJoinsMultilineData(t *testing.T) {
	body := strings.NewReader("data: {\"type\":\ndata: \"profiles-changed\"}\n\n")
	ch := make(chan types.Notification, 1)
	count, err := readEvents(context.Background(), body, ch)
	if err != nil {
		t.Fatalf("readEvents: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one event, got %d", count)
	}
	if n := <-ch; n.Type != types.NotificationProfilesChanged {
		t.Fatalf("unexpected event %+v", n)
	}
}
