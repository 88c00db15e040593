package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig controls the circuit breaker wrapped around backend calls.
type BreakerConfig struct {
	MaxFailures uint32        // consecutive failures before opening
	Interval    time.Duration // closed-state count reset period
	Timeout     time.Duration // open-state duration before a probe
}

// DefaultBreakerConfig mirrors the settings the providers have always used.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	}
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultBreakerConfig().MaxFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return !tripsBreaker(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("INFO: breaker %s: %s -> %s", name, from, to)
		},
	})
}

// tripsBreaker reports whether err counts against the backend. Requests the
// caller abandoned and 4xx answers other than 429 do not.
func tripsBreaker(err error) bool {
	if err == nil {
		return false
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return !netErr.Aborted
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// getJSON performs one GET through the breaker and decodes the body into
// out. There are no retries: a failed call surfaces immediately.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	start := time.Now()
	err := c.doGet(ctx, endpoint, params, out)
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	c.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome(err)).Inc()
	return err
}

func (c *Client) doGet(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &NetworkError{Endpoint: endpoint, Err: ctxErr, Aborted: true}
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			// The client's own timeout leaves ctx alone, so it still counts.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &NetworkError{Endpoint: endpoint, Err: ctxErr, Aborted: true}
			}
			return nil, &NetworkError{Endpoint: endpoint, Err: execErr}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, &StatusError{
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode,
				Message:    upstreamMessage(body),
			}
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A read cut short by the transport is a network failure, not a bad payload.
		if ctx.Err() != nil {
			return &NetworkError{Endpoint: endpoint, Err: ctx.Err(), Aborted: true}
		}
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// upstreamMessage prefers the backend's {"error": "..."} field over raw body text.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func outcome(err error) string {
	var (
		netErr    *NetworkError
		statusErr *StatusError
		decodeErr *DecodeError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &statusErr):
		return "status"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "error"
	}
}
