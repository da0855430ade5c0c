package resilience

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(failureThreshold uint32) *CircuitBreaker {
	config := DefaultCircuitBreakerConfig("test")
	config.FailureThreshold = failureThreshold
	config.Timeout = time.Minute
	return NewCircuitBreaker(config, slog.Default())
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	cb := newTestBreaker(3)

	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.False(t, cb.Open())
}

func TestCircuitBreakerTripsOnConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(3)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	}

	assert.True(t, cb.Open())

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		t.Fatal("must not run while open")
		return nil, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}
