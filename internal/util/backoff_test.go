// ABOUTME: Tests for exponential backoff with jitter
// ABOUTME: Validates growth, bounds, and the zero-attempt case
package util

import (
	"testing"
	"time"
)

func TestBackoff_ZeroAttempt(t *testing.T) {
	if got := Backoff(time.Second, 0); got != 0 {
		t.Errorf("Backoff(_, 0) = %v, want 0", got)
	}
	if got := Backoff(time.Second, -3); got != 0 {
		t.Errorf("Backoff(_, -3) = %v, want 0", got)
	}
}

func TestBackoff_ExponentialGrowth(t *testing.T) {
	baseDelay := 100 * time.Millisecond

	for attempt := 1; attempt <= 5; attempt++ {
		expectedBase := baseDelay * time.Duration(1<<uint(attempt))
		minExpected := expectedBase * 3 / 4 // -25% jitter
		maxExpected := expectedBase * 5 / 4 // +25% jitter

		result := Backoff(baseDelay, attempt)
		if result < minExpected || result > maxExpected {
			t.Errorf("attempt %d: backoff = %v, want between %v and %v",
				attempt, result, minExpected, maxExpected)
		}
	}
}

func TestBackoff_CapsAt30Seconds(t *testing.T) {
	// Attempt 10 would give 2^10 * 1s = 1024s without the cap.
	result := Backoff(time.Second, 10)

	maxAllowed := 37500 * time.Millisecond // 30s + 25% jitter
	if result > maxAllowed {
		t.Errorf("backoff = %v, want <= %v", result, maxAllowed)
	}
}

func TestBackoff_LargeAttemptDoesNotOverflow(t *testing.T) {
	result := Backoff(time.Second, 1000)
	if result < 0 {
		t.Errorf("backoff overflowed to %v", result)
	}
	if result > 37500*time.Millisecond {
		t.Errorf("backoff = %v, want capped", result)
	}
}
