package pollclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
	"weaveit-pipeline/infrastructure/adapters"
	"weaveit-pipeline/infrastructure/gin_interface/dto"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 120
)

var (
	ErrGenerationTimedOut = errors.New("generation failed or timed out")
	ErrGenerationFailed   = errors.New("generation failed")
)

// Client submits scripts and waits for the artifacts the way the web client
// does: a fixed poll interval and a bounded number of attempts.
type Client struct {
	baseURL     string
	fetcher     adapters.ContentFetcher
	logger      outbound.LoggerPort
	interval    time.Duration
	maxAttempts int
	token       string
}

type Option func(*Client)

func WithInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.interval = interval
	}
}

func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
	}
}

func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, fetcher adapters.ContentFetcher, logger outbound.LoggerPort, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		fetcher:     fetcher,
		logger:      logger,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Generate(ctx context.Context, req dto.GenerateContentRequest) (*dto.GenerateContentResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	var res dto.GenerateContentResponse
	if err := c.fetchJSON(httpReq, &res); err != nil {
		return nil, fmt.Errorf("failed to submit script: %w", err)
	}
	return &res, nil
}

func (c *Client) Status(ctx context.Context, contentID string) (*domain.ContentStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+url.PathEscape(contentID), nil)
	if err != nil {
		return nil, err
	}

	var status domain.ContentStatus
	if err := c.fetchJSON(httpReq, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Wait polls until the job completes, fails or runs out of attempts. Transport
// errors count as attempts. onStep, when not nil, receives a progress label
// each time it changes.
func (c *Client) Wait(ctx context.Context, contentID string, onStep func(step string)) (*domain.ContentStatus, error) {
	id, err := domain.ParseContentID(contentID)
	if err != nil {
		return nil, err
	}

	steps := StepsFor(id.OutputType)
	lastStep := ""

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		status, err := c.Status(ctx, contentID)
		switch {
		case err != nil:
			c.logger.WarnWithFields("Status poll failed", map[string]interface{}{
				"content_id": contentID,
				"attempt":    attempt,
				"error":      err.Error(),
			})
		case status.Status == domain.StatusCompleted:
			return status, nil
		case status.Status == domain.StatusFailed:
			return status, fmt.Errorf("%w: %s", ErrGenerationFailed, status.Error)
		}

		if step := StepAt(steps, attempt, c.maxAttempts); onStep != nil && step != lastStep {
			lastStep = step
			onStep(step)
		}

		if attempt == c.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.interval):
		}
	}

	return nil, ErrGenerationTimedOut
}

func (c *Client) fetchJSON(req *http.Request, out interface{}) error {
	body, err := c.fetcher.FetchStream(req)
	if err != nil {
		return err
	}
	defer body.Close()

	return json.NewDecoder(body).Decode(out)
}
