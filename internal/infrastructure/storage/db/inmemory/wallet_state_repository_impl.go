package inmemory

import (
	"context"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
)

type walletStateRepositoryImpl struct {
	store *store
}

func (r *walletStateRepositoryImpl) InitWalletState(
	_ context.Context, state *domain.WalletState,
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if r.store.state != nil {
		return domain.ErrWalletAlreadyInitialized
	}
	st := *state
	r.store.state = &st
	return nil
}

func (r *walletStateRepositoryImpl) GetWalletState(
	_ context.Context,
) (*domain.WalletState, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	if r.store.state == nil {
		return nil, domain.ErrWalletNotInitialized
	}
	st := *r.store.state
	return &st, nil
}

func (r *walletStateRepositoryImpl) UpdateWalletState(
	_ context.Context,
	updateFn func(s *domain.WalletState) (*domain.WalletState, error),
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if r.store.state == nil {
		return domain.ErrWalletNotInitialized
	}
	st := *r.store.state
	updatedState, err := updateFn(&st)
	if err != nil {
		return err
	}
	newState := *updatedState
	r.store.state = &newState
	return nil
}
