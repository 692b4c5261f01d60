package inmemory

import (
	"context"
	"sync"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
)

type txKey struct{}

type store struct {
	lock     *sync.RWMutex
	accounts map[domain.AccountId]*domain.Account
	state    *domain.WalletState
}

func (s *store) snapshot() *store {
	accounts := make(map[domain.AccountId]*domain.Account, len(s.accounts))
	for id, a := range s.accounts {
		accounts[id] = a.Copy()
	}
	var state *domain.WalletState
	if s.state != nil {
		st := *s.state
		state = &st
	}
	return &store{accounts: accounts, state: state}
}

type repoManager struct {
	txLock *sync.Mutex
	store  *store

	accountRepository     domain.AccountRepository
	walletStateRepository domain.WalletStateRepository
}

// NewRepoManager returns a RepoManager keeping everything in memory.
func NewRepoManager() ports.RepoManager {
	s := &store{
		lock:     &sync.RWMutex{},
		accounts: make(map[domain.AccountId]*domain.Account),
	}
	return &repoManager{
		txLock:                &sync.Mutex{},
		store:                 s,
		accountRepository:     &accountRepositoryImpl{s},
		walletStateRepository: &walletStateRepositoryImpl{s},
	}
}

func (r *repoManager) AccountRepository() domain.AccountRepository {
	return r.accountRepository
}

func (r *repoManager) WalletStateRepository() domain.WalletStateRepository {
	return r.walletStateRepository
}

// RunTransaction serializes transactions and restores the state preceding
// the call if handler fails. Nested calls join the outer transaction.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return handler(ctx)
	}

	r.txLock.Lock()
	defer r.txLock.Unlock()

	r.store.lock.RLock()
	backup := r.store.snapshot()
	r.store.lock.RUnlock()

	res, err := handler(context.WithValue(ctx, txKey{}, true))
	if err != nil {
		if !readOnly {
			r.store.lock.Lock()
			r.store.accounts = backup.accounts
			r.store.state = backup.state
			r.store.lock.Unlock()
		}
		return nil, err
	}
	return res, nil
}

func (r *repoManager) Flush() error { return nil }

func (r *repoManager) Close() {}
