package inmemory

import (
	"context"
	"sort"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
)

type accountRepositoryImpl struct {
	store *store
}

func (r *accountRepositoryImpl) AddAccount(
	_ context.Context, account *domain.Account,
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if _, ok := r.store.accounts[account.AccountId]; ok {
		return domain.ErrAccountAlreadyExists
	}
	r.store.accounts[account.AccountId] = account.Copy()
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	_ context.Context, id domain.AccountId,
) (*domain.Account, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Copy(), nil
}

func (r *accountRepositoryImpl) ListAccounts(
	_ context.Context,
) ([]*domain.Account, error) {
	return r.list(nil), nil
}

func (r *accountRepositoryImpl) ListAccountsByKind(
	_ context.Context, kind domain.AccountKind,
) ([]*domain.Account, error) {
	return r.list(func(a *domain.Account) bool { return a.Kind == kind }), nil
}

func (r *accountRepositoryImpl) UpdateAccount(
	_ context.Context,
	id domain.AccountId,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	updatedAccount, err := updateFn(account.Copy())
	if err != nil {
		return err
	}
	if updatedAccount.AccountId != id {
		return domain.ErrAccountNotFound
	}

	r.store.accounts[id] = updatedAccount.Copy()
	return nil
}

func (r *accountRepositoryImpl) list(
	filter func(a *domain.Account) bool,
) []*domain.Account {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		if filter == nil || filter(a) {
			accounts = append(accounts, a.Copy())
		}
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Sequence < accounts[j].Sequence
	})
	return accounts
}
