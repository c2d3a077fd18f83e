package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxDispatchRetries = 2

// Sender POSTs JSON payloads to webhook endpoints. Transient failures
// (network errors, 429, 5xx) are retried with exponential backoff within the
// dispatch attempt; 4xx responses are permanent. Failures across cycles are
// never retried, the processor owns that trade-off.
type Sender struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewSender(httpClient *http.Client, userAgent string, timeout time.Duration) *Sender {
	return &Sender{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (s *Sender) Send(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	operation := func() error {
		return s.post(ctx, url, body)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxDispatchRetries), ctx)
	return backoff.Retry(operation, bo)
}

func (s *Sender) post(ctx context.Context, url string, body []byte) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post payload: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	default:
		return backoff.Permanent(fmt.Errorf("webhook rejected payload: %d %s", resp.StatusCode, resp.Status))
	}
}
