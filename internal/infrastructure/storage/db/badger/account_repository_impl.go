package dbbadger

import (
	"context"
	"sort"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type accountRepositoryImpl struct {
	store *badgerhold.Store
}

func newAccountRepositoryImpl(store *badgerhold.Store) domain.AccountRepository {
	return &accountRepositoryImpl{store}
}

func (r *accountRepositoryImpl) AddAccount(
	ctx context.Context, account *domain.Account,
) error {
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, account.AccountId, *account)
	} else {
		err = r.store.Insert(account.AccountId, *account)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrAccountAlreadyExists
		}
		return storageError(err)
	}
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	ctx context.Context, id domain.AccountId,
) (*domain.Account, error) {
	var account domain.Account
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, id, &account)
	} else {
		err = r.store.Get(id, &account)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storageError(err)
	}
	return &account, nil
}

func (r *accountRepositoryImpl) ListAccounts(
	ctx context.Context,
) ([]*domain.Account, error) {
	return r.findAccounts(ctx, nil)
}

func (r *accountRepositoryImpl) ListAccountsByKind(
	ctx context.Context, kind domain.AccountKind,
) ([]*domain.Account, error) {
	return r.findAccounts(ctx, badgerhold.Where("Kind").Eq(kind))
}

func (r *accountRepositoryImpl) UpdateAccount(
	ctx context.Context,
	id domain.AccountId,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	account, err := r.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	updatedAccount, err := updateFn(account)
	if err != nil {
		return err
	}
	if updatedAccount.AccountId != id {
		return domain.ErrAccountNotFound
	}

	if tx := txFromContext(ctx); tx != nil {
		return storageError(r.store.TxUpdate(tx, id, *updatedAccount))
	}
	return storageError(r.store.Update(id, *updatedAccount))
}

func (r *accountRepositoryImpl) findAccounts(
	ctx context.Context, query *badgerhold.Query,
) ([]*domain.Account, error) {
	var accounts []domain.Account
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &accounts, query)
	} else {
		err = r.store.Find(&accounts, query)
	}
	if err != nil {
		return nil, storageError(err)
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Sequence < accounts[j].Sequence
	})
	res := make([]*domain.Account, 0, len(accounts))
	for i := range accounts {
		res = append(res, &accounts[i])
	}
	return res, nil
}
