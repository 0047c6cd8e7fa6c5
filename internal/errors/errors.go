package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSubscription     = errors.New("subscription failed")
	ErrSinkDelivery     = errors.New("sink delivery failed")
	ErrNotConfigured    = errors.New("sink not configured")
	ErrBufferFull       = errors.New("delivery buffer full")
	ErrSinkClosed       = errors.New("sink closed")
	ErrNetworkError     = errors.New("network error")
	ErrTimeout          = errors.New("request timeout")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// TracklogError wraps an error with a user-friendly suggestion.
type TracklogError struct {
	Err        error
	Suggestion string
}

func (e *TracklogError) Error() string {
	return e.Err.Error()
}

func (e *TracklogError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &TracklogError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// SinkError attributes a failure to the sink that produced it.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Sink, e.Err)
}

// Unwrap exposes both the sink's own error and ErrSinkDelivery.
func (e *SinkError) Unwrap() []error {
	return []error{ErrSinkDelivery, e.Err}
}

// NewSinkError wraps err as a delivery failure of the named sink.
func NewSinkError(sink string, err error) error {
	if err == nil {
		return nil
	}
	return &SinkError{Sink: sink, Err: err}
}

// SubscriptionError wraps a failure to subscribe to a player.
func SubscriptionError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSubscription, err)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var tlErr *TracklogError
	if errors.As(err, &tlErr) && tlErr.Suggestion != "" {
		return tlErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNotAuthenticated) || strings.Contains(errStr, "not authenticated") ||
		strings.Contains(errStr, "invalid access token") || strings.Contains(errStr, "token expired") {
		return "Run 'tracklog auth login' to authenticate with Spotify"
	}

	if errors.Is(err, ErrNotConfigured) {
		return "Check the sink's section in your config file, or run 'tracklog sinks' to see what is missing"
	}

	if errors.Is(err, ErrSubscription) {
		return "Open Spotify and start playing, then send SIGUSR1 or restart to resubscribe"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) {
		return "Run 'tracklog config path' to see which config file is used"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins the collected errors, or returns nil.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
