package circuitbreaker_test

import (
	"errors"
	"testing"

	"github.com/nssa-network/nssa-wallet/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTrips(t *testing.T) {
	errFailure := errors.New("failure")
	cb := circuitbreaker.NewCircuitBreaker("test")

	for i := 0; i <= circuitbreaker.MaxNumOfFailingRequests; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, errFailure
		})
		require.ErrorIs(t, err, errFailure)
	}

	_, err := cb.Execute(func() (interface{}, error) {
		return nil, errFailure
	})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreakerStaysClosed(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker("test")

	for i := 0; i <= 2*circuitbreaker.MaxNumOfFailingRequests; i++ {
		res, err := cb.Execute(func() (interface{}, error) {
			return i, nil
		})
		require.NoError(t, err)
		require.Equal(t, i, res)
	}
	require.Equal(t, gobreaker.StateClosed, cb.State())
}
