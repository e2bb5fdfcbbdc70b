package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayExponentialBase(t *testing.T) {
	policy := NewPolicy(nil)

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{3, 40 * time.Second},
		{4, 60 * time.Second},
		{5, 60 * time.Second},
		{10, 60 * time.Second},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, policy.Delay(tc.attempt, nil), "attempt %d", tc.attempt)
	}
}

func TestDelayUnknownErrorUsesBase(t *testing.T) {
	policy := NewPolicy(nil)
	err := errors.New("something completely different went wrong")

	assert.Equal(t, 10*time.Second, policy.Delay(1, err))
	assert.Equal(t, 20*time.Second, policy.Delay(2, err))
	assert.Equal(t, 60*time.Second, policy.Delay(7, err))
}

func TestDelayClassifiedErrors(t *testing.T) {
	policy := NewPolicy(nil)

	cases := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"rate limit status", errors.New("HTTP Error 429: Too Many Requests"), 60 * time.Second},
		{"rate limit text", errors.New("too many requests from this ip"), 60 * time.Second},
		{"address exhaustion", errors.New("dial tcp: cannot assign requested address"), 30 * time.Second},
		{"forbidden", errors.New("unable to download: HTTP Error 403: Forbidden"), 5 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// classification overrides the exponential value at any attempt
			for _, attempt := range []int{1, 3, 9} {
				assert.Equal(t, tc.want, policy.Delay(attempt, tc.err))
			}
		})
	}
}

func TestHookIgnoresCategory(t *testing.T) {
	policy := NewPolicy(nil)
	hook := policy.Hook()

	err := errors.New("HTTP Error 429")
	for _, category := range []Category{CategoryNetwork, CategoryFragment, CategoryFileAccess, CategoryExtractor} {
		assert.Equal(t, 60*time.Second, hook(category, 1, err))
	}
}
