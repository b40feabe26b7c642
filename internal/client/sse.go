package client

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"outreach/internal/logging"
	"outreach/internal/types"
)

// Notifications follows the daemon change feed. The channel closes when the
// stream ends or the returned stop func is called.
func (c *Client) Notifications(ctx context.Context) (<-chan types.Notification, func(), error) {
	return openStream[types.Notification](ctx, c, "/v1/events?follow=1", "events")
}

// PanelStream follows pushed panel snapshots. Daemons without push support
// answer 404; see IsNotFound.
func (c *Client) PanelStream(ctx context.Context) (<-chan types.PanelSnapshot, func(), error) {
	return openStream[types.PanelSnapshot](ctx, c, "/v1/panel?follow=1", "panel")
}

func openStream[T any](ctx context.Context, c *Client, path, name string) (<-chan T, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if err := c.authorize(req); err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streams outlive the request timeout of c.http.
	httpClient := &http.Client{}
	if c.http != nil {
		httpClient.Transport = c.http.Transport
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		cancel()
		c.log().Debug("stream rejected", logging.F("stream", name), logging.F("status", resp.StatusCode))
		return nil, nil, decodeAPIError(resp)
	}
	c.log().Debug("stream open", logging.F("stream", name))

	ch := make(chan T, 64)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		start := time.Now()
		count, err := readEvents(ctx, resp.Body, ch)
		if err != nil && ctx.Err() == nil {
			c.log().Warn("stream read failed", logging.F("stream", name), logging.Err(err))
		}
		c.log().Debug("stream closed", logging.F("stream", name), logging.F("count", count), logging.F("dur", time.Since(start)))
	}()
	return ch, cancel, nil
}

// readEvents decodes "data:" frames separated by blank lines. Frames that do
// not decode into T are skipped.
func readEvents[T any](ctx context.Context, body io.Reader, ch chan<- T) (int, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var dataLines []string
	count := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
			}
			continue
		}
		if len(dataLines) == 0 {
			continue
		}
		payload := strings.Join(dataLines, "\n")
		dataLines = dataLines[:0]
		var event T
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		select {
		case ch <- event:
			count++
		case <-ctx.Done():
			return count, nil
		}
	}
	return count, scanner.Err()
}
