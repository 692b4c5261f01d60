package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/application"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		kind application.Kind
	}{
		{nil, application.KindInternal},
		{errors.New("boom"), application.KindInternal},
		{context.Canceled, application.KindInternal},
		{domain.ErrInvalidAccountId, application.KindInvalidInput},
		{fmt.Errorf("send: %w", application.ErrZeroAmount), application.KindInvalidInput},
		{domain.ErrAccountNotFound, application.KindNotFound},
		{ports.ErrBlockNotFound, application.KindNotFound},
		{application.ErrKeyNotFound, application.KindKeyNotFound},
		{application.ErrInsufficientFunds, application.KindInsufficientFunds},
		{domain.ErrInsufficientSpendableNotes, application.KindInsufficientFunds},
		{fmt.Errorf("get block 3: %w", ports.ErrNetwork), application.KindNetwork},
		{fmt.Errorf("%w: %w", ports.ErrStorage, errors.New("disk full")), application.KindStorage},
		{fmt.Errorf("%w: bad hash", application.ErrSyncFailed), application.KindSync},
		{application.ErrChainMismatch, application.KindSync},
		{application.ErrWalletLocked, application.KindCrypto},
		{domain.ErrNoteDecryption, application.KindCrypto},
		{application.ErrProofFailed, application.KindCrypto},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%v", tt.err), func(t *testing.T) {
			require.Equal(t, tt.kind, application.ErrorKind(tt.err))
		})
	}
}

func TestKindString(t *testing.T) {
	require.Equal(t, "insufficient funds", application.KindInsufficientFunds.String())
	require.Equal(t, "internal", application.Kind(99).String())
}
