package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestSinkErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewSinkError("file", cause)

	if !errors.Is(err, ErrSinkDelivery) {
		t.Error("errors.Is(err, ErrSinkDelivery) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := err.Error(); got != "file: disk full" {
		t.Errorf("Error() = %q, want %q", got, "file: disk full")
	}

	var sinkErr *SinkError
	if !errors.As(err, &sinkErr) || sinkErr.Sink != "file" {
		t.Errorf("errors.As did not recover sink name, got %+v", sinkErr)
	}
}

func TestNewSinkErrorNil(t *testing.T) {
	if NewSinkError("file", nil) != nil {
		t.Error("NewSinkError(nil) should return nil")
	}
	if SubscriptionError(nil) != nil {
		t.Error("SubscriptionError(nil) should return nil")
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"explicit", WithSuggestion(errors.New("boom"), "do a thing"), "do a thing"},
		{"auth", ErrNotAuthenticated, "tracklog auth login"},
		{"not configured", NewSinkError("redis", ErrNotConfigured), "config file"},
		{"subscription", SubscriptionError(errors.New("404")), "resubscribe"},
		{"network", errors.New("dial tcp: connection refused"), "internet connection"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("GetSuggestion() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
	got := Format(ErrNotAuthenticated)
	if !strings.HasPrefix(got, "Error: not authenticated") || !strings.Contains(got, "Suggestion:") {
		t.Errorf("Format() = %q", got)
	}
}

func TestPartialResult(t *testing.T) {
	var p PartialResult[int]
	if p.HasErrors() || p.Err() != nil || p.ErrorSummary() != "" {
		t.Fatal("empty result should have no errors")
	}

	p.AddError(nil)
	p.AddError(errors.New("first"))
	if got := p.ErrorSummary(); got != "first" {
		t.Errorf("ErrorSummary() = %q, want %q", got, "first")
	}

	p.AddError(errors.New("second"))
	if !strings.HasPrefix(p.ErrorSummary(), "2 errors occurred") {
		t.Errorf("ErrorSummary() = %q", p.ErrorSummary())
	}
	if p.Err() == nil {
		t.Error("Err() = nil, want joined error")
	}
}
