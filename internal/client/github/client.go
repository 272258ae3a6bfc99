// Package github checks GitHub releases for newer medibook builds.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/garrettladley/medibook/internal/xhttp"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 10 * time.Second

	Owner = "garrettladley"
	Repo  = "medibook"
)

// ErrNoRelease means the repository has not published a release yet.
var ErrNoRelease = errors.New("no published release")

type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	token      string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

func WithBaseURL(url string) Option {
	return func(client *Client) { client.baseURL = url }
}

func WithRepo(owner, repo string) Option {
	return func(client *Client) { client.owner, client.repo = owner, repo }
}

// WithToken authenticates requests, which lifts the anonymous rate limit.
// An empty token is ignored.
func WithToken(token string) Option {
	return func(client *Client) { client.token = token }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		owner:   Owner,
		repo:    Repo,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		httpOpts := []xhttp.ClientOption{xhttp.WithTimeout(defaultTimeout)}
		if c.token != "" {
			httpOpts = append(httpOpts, xhttp.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})))
		}
		c.httpClient = xhttp.NewHTTPClient(httpOpts...)
	}
	return c
}

type Release struct {
	TagName     string    `json:"tag_name"`
	HTMLURL     string    `json:"html_url"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// LatestRelease returns the newest non-prerelease of the configured repo.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(xhttp.Accept, "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s/%s: %w", c.owner, c.repo, ErrNoRelease)
	}
	if err := xhttp.CheckResponse(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("latest release of %s/%s: %w", c.owner, c.repo, err)
	}

	var release Release
	if err := go_json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("%s/%s: %w", c.owner, c.repo, ErrNoRelease)
	}

	return &release, nil
}
