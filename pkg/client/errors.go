package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Sternrassler/biodiv-client/pkg/pagination"
)

// Common errors returned by the client.
var (
	// ErrThrottled is returned when a server cooldown is active for the service.
	ErrThrottled = errors.New("request blocked by server cooldown")

	// ErrCircuitOpen is returned when the service's circuit breaker rejects the request.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses and active cooldowns.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassParse represents malformed response bodies.
	ErrorClassParse ErrorClass = "parse"
)

// TransportError is a request that did not produce a 2xx response.
// StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Status     string
	URL        string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request %s: unexpected status %s", e.URL, e.Status)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Class returns the error's classification.
func (e *TransportError) Class() ErrorClass {
	return classifyStatus(e.StatusCode)
}

// ParseError is a 2xx response whose body could not be decoded.
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Classify returns the ErrorClass of err, or "" if err is nil or unrecognized.
func Classify(err error) ErrorClass {
	var transportErr *TransportError
	var parseErr *ParseError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrThrottled):
		return ErrorClassRateLimit
	case errors.As(err, &transportErr):
		return transportErr.Class()
	case errors.As(err, &parseErr), errors.Is(err, pagination.ErrMissingTotal):
		return ErrorClassParse
	default:
		return ""
	}
}

func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 0:
		return ErrorClassNetwork
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
