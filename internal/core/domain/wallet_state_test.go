package domain_test

import (
	"os"
	"strings"
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
	"github.com/stretchr/testify/require"
)

var testMnemonic = strings.Fields(
	"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
)

func TestMain(m *testing.M) {
	wallet.ScryptN = 1 << 10
	os.Exit(m.Run())
}

func TestWalletState(t *testing.T) {
	_, err := domain.NewWalletState(nil, "pass")
	require.ErrorIs(t, err, domain.ErrNullMnemonicOrPassphrase)
	_, err = domain.NewWalletState(testMnemonic[:3], "pass")
	require.ErrorIs(t, err, wallet.ErrInvalidMnemonic)

	state, err := domain.NewWalletState(testMnemonic, "pass")
	require.NoError(t, err)
	require.True(t, state.IsInitialized())

	mnemonic, err := state.Mnemonic("pass")
	require.NoError(t, err)
	require.Equal(t, testMnemonic, mnemonic)

	_, err = state.Mnemonic("wrong")
	require.ErrorIs(t, err, domain.ErrInvalidPassphrase)

	require.ErrorIs(t, state.ChangePassphrase("wrong", "new"), domain.ErrInvalidPassphrase)
	require.NoError(t, state.ChangePassphrase("pass", "new"))
	mnemonic, err = state.Mnemonic("new")
	require.NoError(t, err)
	require.Equal(t, testMnemonic, mnemonic)

	t.Run("indexes", func(t *testing.T) {
		i, seq, err := state.NextIndex(domain.AccountKindPrivate)
		require.NoError(t, err)
		require.Equal(t, uint32(0), i)
		require.Equal(t, uint64(0), seq)

		i, seq, err = state.NextIndex(domain.AccountKindPublic)
		require.NoError(t, err)
		require.Equal(t, uint32(0), i)
		require.Equal(t, uint64(1), seq)

		i, _, err = state.NextIndex(domain.AccountKindPrivate)
		require.NoError(t, err)
		require.Equal(t, uint32(1), i)
	})

	t.Run("cursor never goes backwards", func(t *testing.T) {
		require.True(t, state.AdvanceCursor(3, domain.Hash{3}))
		require.False(t, state.AdvanceCursor(3, domain.Hash{4}))
		require.False(t, state.AdvanceCursor(2, domain.Hash{2}))
		require.Equal(t, uint64(3), state.LastSyncedBlock)
		require.Equal(t, domain.Hash{3}, state.LastSyncedHash)
	})
}
