package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultBaseURL is the Earth Engine REST API endpoint.
	DefaultBaseURL = "https://earthengine.googleapis.com"

	// Scope is the OAuth2 scope required by Earth Engine.
	Scope = "https://www.googleapis.com/auth/earthengine"

	maxErrorBodySize = 4096
)

var (
	ErrNoProject      = errors.New("no project")
	ErrNotInitialized = errors.New("client not initialized")
)

var (
	computeRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "earthengine_compute_requests_total",
		Help: "The total number of value:compute requests",
	})
	computeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "earthengine_compute_errors_total",
		Help: "The total number of failed value:compute requests",
	})
	computeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "earthengine_compute_duration_seconds",
		Help:    "The duration of value:compute requests",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

// An APIError is an error returned by the Earth Engine REST API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return e.Message
}

// A Client is an Earth Engine REST API client.
type Client struct {
	rawBaseURL  string
	baseURL     *url.URL
	project     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	initialized bool
}

// A ClientOption sets an option on a Client.
type ClientOption func(*Client)

// NewClient returns a new Client. It does not perform any I/O. The returned
// Client must be initialized with [Client.Initialize] before use.
func NewClient(options ...ClientOption) (*Client, error) {
	c := &Client{
		rawBaseURL: DefaultBaseURL,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(c)
	}

	baseURL, err := url.Parse(c.rawBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "base URL")
	}
	switch baseURL.Scheme {
	case "http", "https":
	default:
		return nil, errors.Errorf("%s: unsupported base URL scheme", c.rawBaseURL)
	}
	if baseURL.Host == "" {
		return nil, errors.Errorf("%s: missing base URL host", c.rawBaseURL)
	}
	c.baseURL = baseURL

	return c, nil
}

// WithBaseURL sets the API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.rawBaseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client. The client is used as is, so it must
// add any required credentials itself.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithProject sets the Google Cloud project used for requests.
func WithProject(project string) ClientOption {
	return func(c *Client) {
		c.project = project
	}
}

// WithTokenSource sets the source of OAuth2 tokens.
func WithTokenSource(tokenSource oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokenSource = tokenSource
	}
}

// Initialize resolves c's credentials and project. Without an explicit HTTP
// client or token source, Application Default Credentials are used, which
// must have been set up beforehand, for example with gcloud auth
// application-default login.
func (c *Client) Initialize(ctx context.Context) error {
	switch {
	case c.httpClient != nil:
		c.logger.DebugContext(ctx, "using supplied HTTP client")
	case c.tokenSource != nil:
		c.logger.DebugContext(ctx, "using supplied token source")
		c.httpClient = oauth2.NewClient(ctx, c.tokenSource)
	default:
		credentials, err := google.FindDefaultCredentials(ctx, Scope)
		if err != nil {
			return errors.Wrap(err, "default credentials")
		}
		c.logger.DebugContext(ctx, "using default credentials",
			"projectID", credentials.ProjectID,
		)
		c.httpClient = oauth2.NewClient(ctx, credentials.TokenSource)
		if c.project == "" {
			c.project = credentials.ProjectID
		}
	}
	if c.project == "" {
		return ErrNoProject
	}
	c.initialized = true
	return nil
}

// Project returns c's project.
func (c *Client) Project() string {
	return c.project
}

// ComputeValue evaluates expression and returns its result.
func (c *Client) ComputeValue(ctx context.Context, expression *Expression) (json.RawMessage, error) {
	if !c.initialized {
		return nil, errors.WithStack(ErrNotInitialized)
	}
	computeRequests.Inc()
	start := time.Now()
	result, err := c.computeValue(ctx, expression)
	computeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		computeErrors.Inc()
		return nil, err
	}
	return result, nil
}

func (c *Client) computeValue(ctx context.Context, expression *Expression) (json.RawMessage, error) {
	requestBody, err := json.Marshal(struct {
		Expression *Expression `json:"expression"`
	}{
		Expression: expression,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	computeURL := c.baseURL.JoinPath("v1", "projects", c.project, "value:compute")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, computeURL.String(), bytes.NewReader(requestBody))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugContext(ctx, "computing value",
		"url", computeURL.String(),
		"size", len(requestBody),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		return nil, errors.WithStack(newAPIError(resp))
	}

	var response struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "decoding response")
	}
	if response.Result == nil {
		return json.RawMessage("null"), nil
	}
	return response.Result, nil
}

// newAPIError returns the error described by resp's body, falling back to
// resp's status if the body does not contain one.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var errorResponse struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResponse); err == nil && errorResponse.Error != nil {
		if errorResponse.Error.Code == 0 {
			errorResponse.Error.Code = resp.StatusCode
		}
		return errorResponse.Error
	}
	return &APIError{
		Code:    resp.StatusCode,
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
