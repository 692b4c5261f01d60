package application_test

import (
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/application"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransfers(t *testing.T) {
	ledger := newLedger(t)
	alice := newTestWallet(t, ledger)
	initWallet(t, alice)
	bob := newTestWallet(t, ledger)
	initWallet(t, bob)

	accounts := alice.AccountService()
	transfers := alice.TransferService()
	syncer := alice.SyncService()

	a, err := accounts.CreateAccount(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)
	b, err := accounts.CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	c, err := accounts.CreateAccount(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)
	require.NoError(t, ledger.Fund(b, domain.NewAmount(100)))

	// public -> owned private
	res, err := transfers.SendShieldedTransfer(
		ctx, b, application.NewOwnedRecipient(a), domain.NewAmount(30),
	)
	require.NoError(t, err)
	require.True(t, res.Success)
	requireBalance(t, alice, b, 70)

	cursor, err := syncer.SyncToTip(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), cursor)
	requireBalance(t, alice, a, 30)

	account, err := accounts.GetAccount(ctx, a)
	require.NoError(t, err)
	require.Len(t, account.Notes, 1)
	require.True(t, account.Notes[0].Confirmed)
	require.Equal(t, uint64(1), account.Notes[0].BlockId)

	// private -> owned private
	_, err = transfers.SendPrivateTransfer(
		ctx, a, application.NewOwnedRecipient(c), domain.NewAmount(40),
	)
	require.ErrorIs(t, err, application.ErrInsufficientFunds)
	require.Equal(t, application.KindInsufficientFunds, application.ErrorKind(err))

	res, err = transfers.SendPrivateTransfer(
		ctx, a, application.NewOwnedRecipient(c), domain.NewAmount(30),
	)
	require.NoError(t, err)
	require.True(t, res.Success)
	requireBalance(t, alice, a, 0)
	requireBalance(t, alice, c, 30)

	cursor, err = syncer.SyncToTip(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), cursor)
	requireBalance(t, alice, a, 0)
	requireBalance(t, alice, c, 30)

	account, err = accounts.GetAccount(ctx, a)
	require.NoError(t, err)
	require.True(t, account.Notes[0].Spent)
	require.Equal(t, uint64(2), account.Notes[0].SpentInBlock)

	// private -> public, with change
	res, err = transfers.SendDeshieldedTransfer(ctx, c, b, domain.NewAmount(10))
	require.NoError(t, err)
	require.True(t, res.Success)
	requireBalance(t, alice, b, 80)
	requireBalance(t, alice, c, 20)

	// private -> someone else's private account
	d, err := bob.AccountService().CreateAccount(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)
	npk, vpk, err := bob.AccountService().GetPrivateKeys(ctx, d)
	require.NoError(t, err)

	_, err = transfers.SendPrivateTransfer(
		ctx, c, application.NewKeysRecipient(npk, vpk), domain.NewAmount(5),
	)
	require.ErrorIs(t, err, application.ErrInsufficientFunds)

	_, err = syncer.SyncToTip(ctx)
	require.NoError(t, err)
	res, err = transfers.SendPrivateTransfer(
		ctx, c, application.NewKeysRecipient(npk, vpk), domain.NewAmount(5),
	)
	require.NoError(t, err)
	require.True(t, res.Success)
	requireBalance(t, alice, c, 15)

	cursor, err = syncer.SyncToTip(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(4), cursor)
	requireBalance(t, alice, c, 15)

	cursor, err = bob.SyncService().SyncToTip(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(4), cursor)
	requireBalance(t, bob, d, 5)

	// public -> public
	e, err := bob.AccountService().CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	res, err = transfers.SendPublicTransfer(ctx, b, e, domain.NewAmount(25))
	require.NoError(t, err)
	require.True(t, res.Success)
	requireBalance(t, alice, b, 55)
	requireBalance(t, bob, e, 25)
}

func TestTransferValidation(t *testing.T) {
	ledger := newLedger(t)
	w := newTestWallet(t, ledger)
	initWallet(t, w)

	pub, err := w.AccountService().CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	prv, err := w.AccountService().CreateAccount(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)
	require.NoError(t, ledger.Fund(pub, domain.NewAmount(10)))

	unknown := domain.NewPrivateAccountId(domain.NullifierPublicKey{1})
	transfers := w.TransferService()

	tests := []struct {
		name         string
		send         func() (*application.TransferResult, error)
		expectedErr  error
		expectedKind application.Kind
	}{
		{
			name: "zero amount",
			send: func() (*application.TransferResult, error) {
				return transfers.SendPublicTransfer(ctx, pub, unknown, domain.Amount{})
			},
			expectedErr:  application.ErrZeroAmount,
			expectedKind: application.KindInvalidInput,
		},
		{
			name: "same account",
			send: func() (*application.TransferResult, error) {
				return transfers.SendPublicTransfer(ctx, pub, pub, domain.NewAmount(1))
			},
			expectedErr:  application.ErrSameAccount,
			expectedKind: application.KindInvalidInput,
		},
		{
			name: "public sender not owned",
			send: func() (*application.TransferResult, error) {
				return transfers.SendPublicTransfer(ctx, unknown, pub, domain.NewAmount(1))
			},
			expectedErr:  domain.ErrAccountNotFound,
			expectedKind: application.KindNotFound,
		},
		{
			name: "public sender is private",
			send: func() (*application.TransferResult, error) {
				return transfers.SendPublicTransfer(ctx, prv, pub, domain.NewAmount(1))
			},
			expectedErr:  domain.ErrAccountNotPublic,
			expectedKind: application.KindInvalidInput,
		},
		{
			name: "public overspend",
			send: func() (*application.TransferResult, error) {
				return transfers.SendPublicTransfer(ctx, pub, unknown, domain.NewAmount(11))
			},
			expectedErr:  application.ErrInsufficientFunds,
			expectedKind: application.KindInsufficientFunds,
		},
		{
			name: "shield overspend",
			send: func() (*application.TransferResult, error) {
				return transfers.SendShieldedTransfer(
					ctx, pub, application.NewOwnedRecipient(prv), domain.NewAmount(11),
				)
			},
			expectedErr:  application.ErrInsufficientFunds,
			expectedKind: application.KindInsufficientFunds,
		},
		{
			name: "null recipient",
			send: func() (*application.TransferResult, error) {
				return transfers.SendShieldedTransfer(
					ctx, pub, application.PrivateRecipient{}, domain.NewAmount(1),
				)
			},
			expectedErr:  application.ErrNullRecipient,
			expectedKind: application.KindInvalidInput,
		},
		{
			name: "invalid recipient viewing key",
			send: func() (*application.TransferResult, error) {
				return transfers.SendShieldedTransfer(
					ctx, pub,
					application.NewKeysRecipient(domain.NullifierPublicKey{1}, domain.ViewingPublicKey{}),
					domain.NewAmount(1),
				)
			},
			expectedErr:  domain.ErrInvalidViewingPublicKey,
			expectedKind: application.KindInvalidInput,
		},
		{
			name: "deshield with no notes",
			send: func() (*application.TransferResult, error) {
				return transfers.SendDeshieldedTransfer(ctx, prv, pub, domain.NewAmount(1))
			},
			expectedErr:  application.ErrInsufficientFunds,
			expectedKind: application.KindInsufficientFunds,
		},
		{
			name: "private sender is public",
			send: func() (*application.TransferResult, error) {
				return transfers.SendPrivateTransfer(
					ctx, pub, application.NewOwnedRecipient(prv), domain.NewAmount(1),
				)
			},
			expectedErr:  domain.ErrAccountNotPrivate,
			expectedKind: application.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.send()
			require.ErrorIs(t, err, tt.expectedErr)
			require.Equal(t, tt.expectedKind, application.ErrorKind(err))
			require.Nil(t, res)
		})
	}

	lastBlockId, err := ledger.GetLastBlockId(ctx)
	require.NoError(t, err)
	require.Zero(t, lastBlockId)
}

func TestTransferWithLockedWallet(t *testing.T) {
	ledger := newLedger(t)
	w := newTestWallet(t, ledger)
	initWallet(t, w)

	pub, err := w.AccountService().CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	prv, err := w.AccountService().CreateAccount(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)
	require.NoError(t, ledger.Fund(pub, domain.NewAmount(10)))
	require.NoError(t, w.WalletService().LockWallet(ctx))

	_, err = w.TransferService().SendPublicTransfer(ctx, pub, prv, domain.NewAmount(1))
	require.ErrorIs(t, err, application.ErrWalletLocked)

	_, err = w.TransferService().SendShieldedTransfer(
		ctx, pub, application.NewOwnedRecipient(prv), domain.NewAmount(1),
	)
	require.ErrorIs(t, err, application.ErrWalletLocked)

	require.NoError(t, w.WalletService().UnlockWallet(ctx, password))
	res, err := w.TransferService().SendShieldedTransfer(
		ctx, pub, application.NewOwnedRecipient(prv), domain.NewAmount(1),
	)
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestRejectedTransfer(t *testing.T) {
	sequencer := &mockSequencer{}
	w := newTestWallet(t, sequencer)
	initWallet(t, w)

	pub, err := w.AccountService().CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	to := domain.NewPrivateAccountId(domain.NullifierPublicKey{1})

	sequencer.On("GetAccount", mock.Anything, pub).Return(&ports.AccountState{
		ProgramOwner: domain.NativeTokenProgramId,
		Balance:      domain.NewAmount(100),
		Nonce:        domain.NewAmount(3),
	}, nil)
	sequencer.On("SubmitTransaction", mock.Anything, mock.Anything).Return(
		&ports.SubmitResult{Accepted: false, Reason: "nonce mismatch"}, nil,
	).Once()

	res, err := w.TransferService().SendPublicTransfer(ctx, pub, to, domain.NewAmount(10))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "nonce mismatch", res.Reason)

	account, err := w.AccountService().GetAccount(ctx, pub)
	require.NoError(t, err)
	require.True(t, account.Balance.IsZero())

	submitted := sequencer.Calls[len(sequencer.Calls)-1].Arguments.Get(1).(domain.Transaction)
	require.Equal(t, domain.TxKindPublic, submitted.Kind)
	require.Equal(t, []domain.Amount{domain.NewAmount(3)}, submitted.Public.Message.Nonces)
	require.NoError(t, submitted.Public.Signatures[0].Verify(submitted.Public.Message.Hash()))
	require.Equal(t, pub, submitted.Public.Signatures[0].Signer())

	sequencer.On("SubmitTransaction", mock.Anything, mock.Anything).Return(
		nil, ports.ErrNetwork,
	).Once()
	res, err = w.TransferService().SendPublicTransfer(ctx, pub, to, domain.NewAmount(10))
	require.ErrorIs(t, err, ports.ErrNetwork)
	require.Equal(t, application.KindNetwork, application.ErrorKind(err))
	require.Nil(t, res)
}

func TestRegisterAccount(t *testing.T) {
	ledger := newLedger(t)
	w := newTestWallet(t, ledger)
	initWallet(t, w)

	pub, err := w.AccountService().CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	prv, err := w.AccountService().CreateAccount(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)

	res, err := w.TransferService().RegisterAccount(ctx, pub)
	require.NoError(t, err)
	require.True(t, res.Success)

	state, err := w.AccountService().GetAccountPublic(ctx, pub)
	require.NoError(t, err)
	require.Equal(t, domain.NativeTokenProgramId, state.ProgramOwner)
	require.Equal(t, domain.NewAmount(1), state.Nonce)

	_, err = w.TransferService().RegisterAccount(ctx, pub)
	require.ErrorIs(t, err, application.ErrAccountAlreadyRegistered)

	res, err = w.TransferService().RegisterAccount(ctx, prv)
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = w.SyncService().SyncToTip(ctx)
	require.NoError(t, err)

	account, err := w.AccountService().GetAccount(ctx, prv)
	require.NoError(t, err)
	require.True(t, account.Initialized)
	require.Len(t, account.Notes, 1)
	require.True(t, account.Notes[0].Confirmed)
	require.True(t, account.Balance.IsZero())

	_, err = w.TransferService().RegisterAccount(ctx, prv)
	require.ErrorIs(t, err, application.ErrAccountAlreadyRegistered)
}
