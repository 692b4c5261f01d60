package dbbadger

import (
	"context"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const walletStateKey = "wallet_state"

type walletStateRepositoryImpl struct {
	store *badgerhold.Store
}

func newWalletStateRepositoryImpl(
	store *badgerhold.Store,
) domain.WalletStateRepository {
	return &walletStateRepositoryImpl{store}
}

func (r *walletStateRepositoryImpl) InitWalletState(
	ctx context.Context, state *domain.WalletState,
) error {
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, walletStateKey, *state)
	} else {
		err = r.store.Insert(walletStateKey, *state)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrWalletAlreadyInitialized
		}
		return storageError(err)
	}
	return nil
}

func (r *walletStateRepositoryImpl) GetWalletState(
	ctx context.Context,
) (*domain.WalletState, error) {
	var state domain.WalletState
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, walletStateKey, &state)
	} else {
		err = r.store.Get(walletStateKey, &state)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrWalletNotInitialized
		}
		return nil, storageError(err)
	}
	return &state, nil
}

func (r *walletStateRepositoryImpl) UpdateWalletState(
	ctx context.Context,
	updateFn func(s *domain.WalletState) (*domain.WalletState, error),
) error {
	state, err := r.GetWalletState(ctx)
	if err != nil {
		return err
	}

	updatedState, err := updateFn(state)
	if err != nil {
		return err
	}

	if tx := txFromContext(ctx); tx != nil {
		return storageError(r.store.TxUpdate(tx, walletStateKey, *updatedState))
	}
	return storageError(r.store.Update(walletStateKey, *updatedState))
}
