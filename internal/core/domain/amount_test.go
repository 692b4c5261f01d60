package domain_test

import (
	"math"
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/stretchr/testify/require"
)

const maxU128 = "340282366920938463463374607431768211455"

func TestAmount(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		tests := []struct {
			in  string
			err error
		}{
			{"0", nil},
			{"150", nil},
			{maxU128, nil},
			{"340282366920938463463374607431768211456", domain.ErrAmountOverflow},
			{"", domain.ErrInvalidAmount},
			{"-1", domain.ErrInvalidAmount},
			{"1.5", domain.ErrInvalidAmount},
			{"abc", domain.ErrInvalidAmount},
		}
		for _, tt := range tests {
			a, err := domain.ParseAmount(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err, tt.in)
				continue
			}
			require.NoError(t, err, tt.in)
			require.Equal(t, tt.in, a.String())
		}
	})

	t.Run("checked arithmetic", func(t *testing.T) {
		max, err := domain.ParseAmount(maxU128)
		require.NoError(t, err)

		_, err = max.Add(domain.NewAmount(1))
		require.ErrorIs(t, err, domain.ErrAmountOverflow)

		_, err = domain.NewAmount(29).Sub(domain.NewAmount(30))
		require.ErrorIs(t, err, domain.ErrAmountUnderflow)

		sum, err := domain.NewAmount(math.MaxUint64).Add(domain.NewAmount(1))
		require.NoError(t, err)
		require.Equal(t, "18446744073709551616", sum.String())
		_, fits := sum.Uint64()
		require.False(t, fits)

		diff, err := sum.Sub(domain.NewAmount(1))
		require.NoError(t, err)
		v, fits := diff.Uint64()
		require.True(t, fits)
		require.Equal(t, uint64(math.MaxUint64), v)

		total, err := domain.SumAmounts(
			domain.NewAmount(70), domain.NewAmount(30), domain.NewAmount(0),
		)
		require.NoError(t, err)
		require.Zero(t, total.Cmp(domain.NewAmount(100)))
	})

	t.Run("little endian", func(t *testing.T) {
		a, err := domain.ParseAmount("18446744073709551617")
		require.NoError(t, err)
		le := a.LE16()
		require.Equal(t, byte(1), le[0])
		require.Equal(t, byte(1), le[8])
		require.Zero(t, domain.AmountFromLE16(le).Cmp(a))
	})

	t.Run("text", func(t *testing.T) {
		var a domain.Amount
		require.NoError(t, a.UnmarshalText([]byte("42")))
		text, err := a.MarshalText()
		require.NoError(t, err)
		require.Equal(t, "42", string(text))
		require.Error(t, a.UnmarshalText([]byte("4x2")))
	})
}
