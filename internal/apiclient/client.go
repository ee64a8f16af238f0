// Package apiclient is an HTTP client for the task API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/validate"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 30 * time.Second
	DefaultPageSize = 100

	requestIDHeader = "X-Request-ID"
)

// Client is an HTTP client for the task API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

// WithTimeout sets the per-request timeout on a copy of the current
// http.Client, so a shared client passed to WithHTTPClient is left alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := http.Client{}
		if c.HTTP != nil {
			hc = *c.HTTP
		}
		hc.Timeout = d
		c.HTTP = &hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.Limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.Logger = l
		}
	}
}

// New creates a new API client. baseURL includes the API prefix, e.g.
// http://localhost:8000/api/v1.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: defaultTimeout},
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with token
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

// ListOptions controls pagination of task listing
type ListOptions struct {
	Skip  int
	Limit int
}

// HealthResponse is the response from the server root.
type HealthResponse struct {
	Message string `json:"message"`
}

// --- Auth methods ---

// Register creates a new account. No token required.
func (c *Client) Register(ctx context.Context, in models.NewUser) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	var resp models.User
	if err := c.doNoAuth(ctx, http.MethodPost, "/auth/register", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges email and password for an access token. The body is
// form-encoded as the token endpoint expects.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Token, error) {
	email = strings.TrimSpace(email)
	if err := validate.Struct(models.LoginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp models.Token
	if err := c.send(ctx, http.MethodPost, "/auth/access-token", strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", &resp, false); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: empty access token in response")
	}
	return &resp, nil
}

// --- Task methods ---

// ListTasks returns one page of tasks visible to the current user.
func (c *Client) ListTasks(ctx context.Context, opts ListOptions) ([]models.Task, error) {
	params := url.Values{}
	if opts.Skip > 0 {
		params.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/tasks/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp []models.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []models.Task{}
	}
	return resp, nil
}

// ListAllTasks pages through the task list until a short page is returned.
func (c *Client) ListAllTasks(ctx context.Context, pageSize int) ([]models.Task, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	all := []models.Task{}
	for skip := 0; ; {
		page, err := c.ListTasks(ctx, ListOptions{Skip: skip, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		skip += len(page)
	}
}

// CreateTask creates a task owned by the current user.
func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	in = in.Normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	var resp models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id int) (*models.Task, error) {
	var resp models.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask deletes a task and returns it as it was before deletion.
func (c *Client) DeleteTask(ctx context.Context, id int) (*models.Task, error) {
	var resp models.Task
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health hits the server root, outside the API prefix, to verify reachability.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	root := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}

	var resp HealthResponse
	if err := c.sendURL(ctx, http.MethodGet, root.String(), nil, "", &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- HTTP helpers ---

// do executes an authenticated JSON request.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	return c.doJSON(ctx, method, path, body, result, true)
}

// doNoAuth executes an unauthenticated JSON request.
func (c *Client) doNoAuth(ctx context.Context, method, path string, body, result any) error {
	return c.doJSON(ctx, method, path, body, result, false)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any, auth bool) error {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, bodyReader, contentType, result, auth)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, result any, auth bool) error {
	return c.sendURL(ctx, method, c.BaseURL+path, body, contentType, result, auth)
}

func (c *Client) sendURL(ctx context.Context, method, target string, body io.Reader, contentType string, result any, auth bool) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	hasToken := auth && c.Token != ""
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	log := c.Logger.With("request_id", requestID, "method", method, "url", target)
	log.Debug("api request", "token_present", hasToken)
	if auth && !hasToken {
		log.Warn("api request without token")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error("api request failed", "err", err)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	log.Debug("api response", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		apiErr := newAPIError(resp.StatusCode, respBody, requestID)
		log.Warn("api error", "status", apiErr.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
