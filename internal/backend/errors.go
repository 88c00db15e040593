package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("upstream circuit breaker open")
	// ErrMissingStation is returned when an observation query names neither a station nor a location.
	ErrMissingStation = errors.New("observation query needs a station id or location id")
)

// NetworkError is a transport-level failure: DNS, connect, timeout, reset.
type NetworkError struct {
	Endpoint string
	Err      error
	// Aborted is set when the caller's context ended the request.
	Aborted bool
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// DecodeError is a response body that does not have the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UserMessage maps any fetch error to text fit for display. Raw error text
// never reaches the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		netErr    *NetworkError
		statusErr *StatusError
		decodeErr *DecodeError
	)
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return "The weather service is temporarily unavailable. Please try again in a minute."
	case errors.Is(err, weather.ErrNoCoordinates):
		return "Choose a location with coordinates to load this panel."
	case errors.Is(err, ErrMissingStation):
		return "Choose a station or location to load observations."
	case errors.As(err, &netErr):
		return "Could not reach the weather service. Check your connection and try again."
	case errors.As(err, &statusErr):
		switch {
		case statusErr.StatusCode == http.StatusNotFound:
			return "No weather data was found for this request."
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return "The weather service is busy. Please try again shortly."
		case statusErr.StatusCode >= 500:
			return "The weather service is having trouble right now."
		default:
			return "The weather service could not handle this request."
		}
	case errors.As(err, &decodeErr):
		return "The weather service sent data we could not read."
	default:
		return "Something went wrong while loading weather data."
	}
}
