package extraction

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

	"polilink/internal/classify"
	"polilink/internal/match"
	"polilink/internal/services"
)

const (
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Config captures the runtime settings required to talk to the extraction
// service.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the structured-extraction chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryMaxAttempts = attempts
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an extraction client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name identifies this matcher in logs and persisted match reasons.
func (c *Client) Name() string {
	if c.cfg.Model != "" {
		return "extraction/" + c.cfg.Model
	}
	return "extraction"
}

// Request carries everything the extraction service needs to pick (or
// refuse to pick) one candidate for a speaker.
type Request struct {
	SpeakerName  string
	SpeakerType  string
	SpeakerParty string
	Candidates   []match.Candidate
	// RoleNameMap translates a meeting's role labels to real names, e.g.
	// 議長 to the chair's name. A role label with no mapping is never sent
	// to the service.
	RoleNameMap map[string]string
}

// Match is the structured verdict returned by the extraction service.
type Match struct {
	Matched        bool    `json:"matched"`
	PoliticianID   int64   `json:"politician_id"`
	PoliticianName string  `json:"politician_name"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
}

// FindMatch asks the extraction service to resolve one speaker against the
// supplied candidates. Role-only labels are first translated through the
// request's role name map; an unmapped label short-circuits to an unmatched
// verdict without a service call.
func (c *Client) FindMatch(ctx context.Context, req Request) (Match, error) {
	var empty Match
	name := strings.TrimSpace(req.SpeakerName)
	if name == "" {
		return empty, services.Wrap(services.ErrValidation, "extraction", "find match", "speaker name required", nil)
	}
	if len(req.Candidates) == 0 {
		return Match{Reason: "no candidates supplied"}, nil
	}
	if c.cfg.APIKey == "" {
		return empty, services.Wrap(services.ErrConfiguration, "extraction", "find match", "api key required", nil)
	}

	if classify.ClassifyWithPrefixes(name) != "" {
		resolved, ok := resolveRoleName(name, req.RoleNameMap)
		if !ok {
			return Match{Reason: "role label with no mapped name"}, nil
		}
		name = resolved
	}

	userPrompt, err := buildUserPrompt(name, req)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "extraction", "find match", "encode prompt", err)
	}

	content, err := c.completeWithRetry(ctx, matchPrompt, userPrompt)
	if err != nil {
		return empty, err
	}

	verdict, err := decodeMatch(content)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalService, "extraction", "find match", "parse verdict", err)
	}
	if verdict.Matched && !candidateExists(req.Candidates, verdict.PoliticianID) {
		return empty, services.Wrap(services.ErrExternalService, "extraction", "find match",
			fmt.Sprintf("verdict names politician %d outside candidate set", verdict.PoliticianID), nil)
	}
	return verdict, nil
}

func resolveRoleName(label string, roleNameMap map[string]string) (string, bool) {
	if len(roleNameMap) == 0 {
		return "", false
	}
	resolved, ok := roleNameMap[strings.TrimSpace(label)]
	resolved = strings.TrimSpace(resolved)
	if !ok || resolved == "" {
		return "", false
	}
	return resolved, true
}

func candidateExists(candidates []match.Candidate, politicianID int64) bool {
	for _, candidate := range candidates {
		if candidate.PoliticianID == politicianID {
			return true
		}
	}
	return false
}

func decodeMatch(content string) (Match, error) {
	var verdict Match
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &verdict); err != nil {
		return verdict, err
	}
	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}
	verdict.Reason = strings.TrimSpace(verdict.Reason)
	if !verdict.Matched {
		verdict.PoliticianID = 0
		verdict.PoliticianName = ""
	}
	return verdict, nil
}

// extractJSONObject tolerates models that wrap the payload in code fences or
// prose by slicing from the first '{' to the last '}'.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return content
	}
	return content[start : end+1]
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) completeWithRetry(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		content, retryable, err := c.sendOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable || attempt == c.retryMaxAttempts {
			break
		}
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) sendOnce(ctx context.Context, payload chatCompletionRequest) (string, bool, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", false, services.Wrap(services.ErrValidation, "extraction", "request", "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", false, services.Wrap(services.ErrValidation, "extraction", "request", "new request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		marker := services.ErrExternalService
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return "", true, services.Wrap(marker, "extraction", "request", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, services.Wrap(services.ErrExternalService, "extraction", "request", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		return "", retryable, services.Wrap(services.ErrExternalService, "extraction", "request",
			fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(body)), nil)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", false, services.Wrap(services.ErrExternalService, "extraction", "request", "decode response", err)
	}
	if completion.Error != nil && completion.Error.Message != "" {
		return "", false, services.Wrap(services.ErrExternalService, "extraction", "request", completion.Error.Message, nil)
	}
	for _, choice := range completion.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, false, nil
		}
	}
	return "", true, services.Wrap(services.ErrExternalService, "extraction", "request", "empty completion", nil)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay << (attempt - 1)
	if delay > c.retryMaxDelay {
		delay = c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		return trimmed[:200] + "..."
	}
	return trimmed
}
