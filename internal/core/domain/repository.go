package domain

import "context"

// AccountRepository is the durable store of owned accounts.
type AccountRepository interface {
	// AddAccount fails with ErrAccountAlreadyExists if the id is known.
	AddAccount(ctx context.Context, account *Account) error
	// GetAccount fails with ErrAccountNotFound if the id is unknown.
	GetAccount(ctx context.Context, id AccountId) (*Account, error)
	// ListAccounts returns all accounts in creation order.
	ListAccounts(ctx context.Context) ([]*Account, error)
	// ListAccountsByKind returns accounts of the kind in creation order.
	ListAccountsByKind(ctx context.Context, kind AccountKind) ([]*Account, error)
	// UpdateAccount applies updateFn to the stored account and persists the
	// result, nothing is written if updateFn fails.
	UpdateAccount(
		ctx context.Context,
		id AccountId,
		updateFn func(a *Account) (*Account, error),
	) error
}

// WalletStateRepository stores the singleton wallet state.
type WalletStateRepository interface {
	// InitWalletState fails with ErrWalletAlreadyInitialized if a state
	// exists.
	InitWalletState(ctx context.Context, state *WalletState) error
	// GetWalletState fails with ErrWalletNotInitialized if no state exists.
	GetWalletState(ctx context.Context) (*WalletState, error)
	UpdateWalletState(
		ctx context.Context,
		updateFn func(s *WalletState) (*WalletState, error),
	) error
}
