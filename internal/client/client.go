package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"outreach/internal/config"
	"outreach/internal/logging"
	"outreach/internal/types"
)

// Client talks to the automation daemon. Every method maps to one remote
// command; notifications and panel snapshots are delivered as SSE streams.
type Client struct {
	baseURL   string
	tokenPath string
	token     string
	http      *http.Client
	logger    logging.Logger
}

func New(cfg config.CoreConfig, logger logging.Logger) (*Client, error) {
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Client{
		baseURL:   cfg.DaemonBaseURL(),
		tokenPath: tokenPath,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logging.Nop(),
	}
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateProfile(ctx context.Context, name string) (types.Profile, error) {
	var profile types.Profile
	if err := c.doJSON(ctx, http.MethodPost, "/v1/profiles", CreateProfileRequest{ProfileName: name}, true, &profile); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

func (c *Client) LoadProfiles(ctx context.Context) ([]types.Profile, error) {
	var resp ProfilesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/profiles", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

func (c *Client) LoadBriefcases(ctx context.Context) ([]types.Briefcase, error) {
	var resp BriefcasesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/briefcases", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Briefcases, nil
}

func (c *Client) SaveProfiles(ctx context.Context, profiles []types.Profile) error {
	return c.doJSON(ctx, http.MethodPut, "/v1/profiles", ProfilesResponse{Profiles: nonNilProfiles(profiles)}, true, nil)
}

func (c *Client) SaveBriefcases(ctx context.Context, briefcases []types.Briefcase) error {
	return c.doJSON(ctx, http.MethodPut, "/v1/briefcases", BriefcasesResponse{Briefcases: nonNilBriefcases(briefcases)}, true, nil)
}

func (c *Client) SaveAllData(ctx context.Context, profiles []types.Profile, briefcases []types.Briefcase) error {
	req := SaveAllRequest{
		Profiles:   nonNilProfiles(profiles),
		Briefcases: nonNilBriefcases(briefcases),
	}
	return c.doJSON(ctx, http.MethodPut, "/v1/data", req, true, nil)
}

func (c *Client) PanelSnapshot(ctx context.Context) (*types.PanelSnapshot, error) {
	var snapshot types.PanelSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/v1/panel", nil, true, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// CloseWorkspace closes the automation windows. profileName is optional.
func (c *Client) CloseWorkspace(ctx context.Context, profileName string) error {
	req := CloseWorkspaceRequest{ProfileName: strings.TrimSpace(profileName)}
	return c.doJSON(ctx, http.MethodPost, "/v1/workspace/close", req, true, nil)
}

func (c *Client) NextItem(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/automation/next", nil, true, nil)
}

func (c *Client) SetCommentIndex(ctx context.Context, taskIndex, commentIndex int) error {
	if taskIndex < 0 || commentIndex < 0 {
		return errors.New("task and comment index must not be negative")
	}
	req := SetCommentIndexRequest{TaskIndex: taskIndex, CommentIndex: commentIndex}
	return c.doJSON(ctx, http.MethodPost, "/v1/automation/comment", req, true, nil)
}

func (c *Client) ChangeWebviewURL(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("url is required")
	}
	return c.doJSON(ctx, http.MethodPost, "/v1/webview/url", ChangeURLRequest{URL: url}, true, nil)
}

// StartAutomation hands the serialized task list to the daemon.
func (c *Client) StartAutomation(ctx context.Context, tasksJSON string) (*types.AutomationAck, error) {
	var ack types.AutomationAck
	if err := c.doJSON(ctx, http.MethodPost, "/v1/automation/start", StartAutomationRequest{TasksJSON: tasksJSON}, true, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		if err := c.authorize(req); err != nil {
			return err
		}
	}

	httpClient := c.http
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) error {
	if strings.TrimSpace(c.token) == "" {
		if err := c.loadToken(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.token) == "" {
		return errors.New("token not found; is the automation daemon running?")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return nil
}

func (c *Client) loadToken() error {
	if c.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the daemon.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func nonNilProfiles(in []types.Profile) []types.Profile {
	if in == nil {
		return []types.Profile{}
	}
	return in
}

func nonNilBriefcases(in []types.Briefcase) []types.Briefcase {
	if in == nil {
		return []types.Briefcase{}
	}
	return in
}

func (c *Client) log() logging.Logger {
	if c.logger == nil {
		return logging.Nop()
	}
	return c.logger
}
