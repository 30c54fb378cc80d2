package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestScrapeError_Error(t *testing.T) {
	e := NewScrapeError(ErrCodeFetchFailed, "HTTP 500", nil)
	if got := e.Error(); got != "FETCH_FAILED: HTTP 500" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := NewScrapeError(ErrCodeTimeout, "deadline", errors.New("context deadline exceeded"))
	if got := wrapped.Error(); got != "FETCH_TIMEOUT: deadline: context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
}

func TestScrapeError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	e := NewScrapeError(ErrCodeInternal, "wrapped", inner)
	if !errors.Is(e, inner) {
		t.Error("errors.Is does not see the wrapped error")
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"fetch rate limit", NewScrapeError(ErrCodeRateLimited, "429", nil), true},
		{"llm rate limit", NewScrapeError(ErrCodeLLMRateLimited, "429", nil), true},
		{"other scrape error", NewScrapeError(ErrCodeFetchFailed, "500", nil), false},
		{"plain error", errors.New("rate limited"), false},
		{"nil", nil, false},
		{
			"wrapped deep",
			fmt.Errorf("attempt 3: %w", NewScrapeError(ErrCodeLLMRateLimited, "429", nil)),
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimited(tt.err); got != tt.want {
				t.Errorf("IsRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
