package application_test

import (
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/application"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestAccounts(t *testing.T) {
	ledger := newLedger(t)
	w := newTestWallet(t, ledger)
	mnemonic := initWallet(t, w)
	svc := w.AccountService()

	_, err := svc.CreateAccount(ctx, domain.AccountKind(7))
	require.ErrorIs(t, err, domain.ErrUnknownAccountKind)

	pub, err := svc.CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	prv, err := svc.CreateAccount(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)
	pub2, err := svc.CreateAccount(ctx, domain.AccountKindPublic)
	require.NoError(t, err)
	require.NotEqual(t, pub, pub2)

	require.NoError(t, svc.SetLabel(ctx, pub2, "spending"))

	list, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []application.AccountInfo{
		{AccountId: pub, Kind: domain.AccountKindPublic},
		{AccountId: prv, Kind: domain.AccountKindPrivate},
		{AccountId: pub2, Kind: domain.AccountKindPublic, Label: "spending"},
	}, list)

	pubkey, err := svc.GetPublicKey(ctx, pub)
	require.NoError(t, err)
	require.Equal(t, pub, domain.NewPublicAccountId(pubkey))

	_, err = svc.GetPublicKey(ctx, prv)
	require.ErrorIs(t, err, application.ErrKeyNotFound)
	require.Equal(t, application.KindKeyNotFound, application.ErrorKind(err))

	npk, vpk, err := svc.GetPrivateKeys(ctx, prv)
	require.NoError(t, err)
	require.Equal(t, prv, domain.NewPrivateAccountId(npk))
	_, err = vpk.Parse()
	require.NoError(t, err)

	_, _, err = svc.GetPrivateKeys(ctx, pub)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	require.Equal(t, application.KindNotFound, application.ErrorKind(err))

	_, err = svc.GetAccount(ctx, domain.NewPrivateAccountId(domain.NullifierPublicKey{1}))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	// Public balances are read from the network and cached.
	requireBalance(t, w, pub, 0)
	require.NoError(t, ledger.Fund(pub, domain.NewAmount(42)))
	requireBalance(t, w, pub, 42)
	account, err := svc.GetAccount(ctx, pub)
	require.NoError(t, err)
	require.Equal(t, domain.NewAmount(42), account.Balance)

	require.NoError(t, svc.UpdateBalance(ctx, pub, domain.NewAmount(7)))
	err = svc.UpdateBalance(ctx, prv, domain.NewAmount(7))
	require.ErrorIs(t, err, domain.ErrAccountNotPublic)
	requireBalance(t, w, prv, 0)

	state, err := svc.GetAccountPublic(ctx, pub)
	require.NoError(t, err)
	require.Equal(t, domain.NewAmount(42), state.Balance)

	// Same seed, same accounts.
	other := newTestWallet(t, ledger)
	initWalletWithMnemonic(t, other, mnemonic)
	for _, kind := range []domain.AccountKind{
		domain.AccountKindPublic, domain.AccountKindPrivate, domain.AccountKindPublic,
	} {
		_, err := other.AccountService().CreateAccount(ctx, kind)
		require.NoError(t, err)
	}
	otherList, err := other.AccountService().ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, otherList, 3)
	for i := range list {
		require.Equal(t, list[i].AccountId, otherList[i].AccountId)
		require.Equal(t, list[i].Kind, otherList[i].Kind)
	}
}
