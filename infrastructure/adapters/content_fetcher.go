package adapters

import (
	"fmt"
	"io"
	"net/http"
	"time"
	"weaveit-pipeline/application/ports/outbound"
)

// ContentFetcher sends a request and hands back the body of a 2xx response.
// Callers own the returned body.
type ContentFetcher interface {
	FetchStream(req *http.Request) (io.ReadCloser, error)
}

type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP request returned non-2xx status code: %d", e.StatusCode)
}

type contentFetcher struct {
	logger outbound.LoggerPort
	client *http.Client
}

func NewContentFetcher(logger outbound.LoggerPort, timeout time.Duration) ContentFetcher {
	return &contentFetcher{
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *contentFetcher) FetchStream(req *http.Request) (io.ReadCloser, error) {
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, err
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		defer res.Body.Close()
		bodyPayload, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		message := string(bodyPayload)
		c.logger.ErrorWithFields(err, "HTTP request returned non-OK status code", map[string]interface{}{
			"method":  req.Method,
			"URL":     req.URL.String(),
			"status":  res.StatusCode,
			"message": message,
		})
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, Body: message}
	}

	return res.Body, nil
}
