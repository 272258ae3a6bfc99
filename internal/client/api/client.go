package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/xhttp"
)

const (
	notificationsPath = "/api/notifications"
	defaultTimeout    = 30 * time.Second
)

// PollResponse is the body of GET /api/notifications. Both fields are
// optional: a missing notifications array means "no change".
type PollResponse struct {
	Notifications *[]notification.Notification `json:"notifications,omitempty"`
	UnreadCount   *int                        `json:"unread_count,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, tokenSource oauth2.TokenSource, sessionID string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: xhttp.NewHTTPClient(
			xhttp.WithTimeout(defaultTimeout),
			xhttp.WithTokenSource(tokenSource),
			xhttp.WithSessionID(sessionID),
		),
	}
}

// Poll fetches the authoritative notification snapshot.
func (c *Client) Poll(ctx context.Context) (notification.Snapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, notificationsPath, nil)
	if err != nil {
		return notification.Snapshot{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := xhttp.CheckResponse(resp, http.StatusOK); err != nil {
		return notification.Snapshot{}, err
	}

	var result PollResponse
	if err := go_json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return notification.Snapshot{}, fmt.Errorf("decoding response: %w", err)
	}

	snapshot := notification.Snapshot{UnreadCount: result.UnreadCount}
	if result.Notifications != nil {
		now := time.Now()
		snapshot.Notifications = make([]notification.Notification, 0, len(*result.Notifications))
		for _, n := range *result.Notifications {
			n, err := notification.Normalize(n, now)
			if err != nil {
				continue
			}
			snapshot.Notifications = append(snapshot.Notifications, n)
		}
	}
	return snapshot, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPost, notificationsPath+"/"+url.PathEscape(id)+"/read")
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, notificationsPath+"/read")
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, notificationsPath+"/"+url.PathEscape(id))
}

func (c *Client) ClearAll(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, notificationsPath)
}

// CreateRequest is the body of POST /api/notifications.
type CreateRequest struct {
	Kind  notification.Kind `json:"kind"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Link  string            `json:"link,omitempty"`
}

// Create asks the server to issue a notification to the authenticated user.
func (c *Client) Create(ctx context.Context, in CreateRequest) (notification.Notification, error) {
	body, err := go_json.Marshal(in)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, notificationsPath, strings.NewReader(string(body)))
	if err != nil {
		return notification.Notification{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := xhttp.CheckResponse(resp, http.StatusCreated); err != nil {
		return notification.Notification{}, err
	}

	var created notification.Notification
	if err := go_json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return notification.Notification{}, fmt.Errorf("decoding response: %w", err)
	}
	return created, nil
}

func (c *Client) send(ctx context.Context, method, path string) error {
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// a notification the server already forgot is as good as deleted
	if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return xhttp.CheckResponse(resp, http.StatusOK, http.StatusNoContent)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	xhttp.SetRequestHeaderAcceptJSON(req)
	if body != nil {
		req.Header.Set(xhttp.ContentType, "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}
