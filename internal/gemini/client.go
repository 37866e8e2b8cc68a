package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultModel is the free-tier text generation model.
	DefaultModel = "gemini-1.5-flash"

	// DefaultBaseURL is the Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// EnvAPIKey is the environment variable holding the API key.
	EnvAPIKey = "GEMINI_API_KEY"

	// Free-tier quota, documented by the provider. MinCallInterval is the
	// default pacing between generation calls; the other two feed the run
	// command's preflight warnings.
	DailyQuota      = 1500
	PerMinuteQuota  = 15
	MinCallInterval = 4 * time.Second

	// DefaultMaxRetries bounds retry attempts on transient provider errors.
	DefaultMaxRetries = 3
)

// defaultHTTPClient is a configured HTTP client with proper timeouts.
var defaultHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// Client calls the Generative Language API to produce personalized email
// bodies. The client does not pace itself; the campaign runner owns the
// per-minute rate limiter so pacing and cancellation live in one place.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the default generation model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries bounds the number of retry attempts for transient failures.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient creates a Gemini API client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s is required", EnvAPIKey)
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      DefaultModel,
		httpClient: defaultHTTPClient,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured generation model.
func (c *Client) Model() string {
	return c.model
}

// Generate produces text for the given prompt, retrying transient provider
// failures with exponential backoff up to the configured retry budget.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var text string

	operation := func() error {
		var err error
		text, err = c.generateOnce(ctx, prompt)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), c.maxRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return text, nil
}

// Ping verifies the API key and model are usable. Called once before a
// campaign starts so a bad key fails fast instead of on the first recipient.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.generateOnce(ctx, "Reply with the single word: pong"); err != nil {
		return &GenerationError{Op: "ping", StatusCode: statusCode(err), Err: err}
	}
	return nil
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GenerationError{Op: "generate", Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &GenerationError{Op: "generate", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Op: "generate", Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &GenerationError{Op: "generate", StatusCode: res.StatusCode, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		var apiErr apiError
		msg := strings.TrimSpace(string(body))
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", &GenerationError{
			Op:         "generate",
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("%s", msg),
		}
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &GenerationError{Op: "generate", StatusCode: res.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(parsed.Candidates) == 0 {
		return "", &GenerationError{Op: "generate", StatusCode: res.StatusCode, Err: fmt.Errorf("response contained no candidates")}
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", &GenerationError{Op: "generate", StatusCode: res.StatusCode, Err: fmt.Errorf("response contained no text")}
	}
	return text, nil
}

func statusCode(err error) int {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.StatusCode
	}
	return 0
}
