package ports

import (
	"context"
	"errors"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
)

// ErrStorage wraps every failure of the underlying durable store.
var ErrStorage = errors.New("storage failure")

// RepoManager holds the wallet repositories and runs atomic units of work
// spanning both of them.
type RepoManager interface {
	AccountRepository() domain.AccountRepository
	WalletStateRepository() domain.WalletStateRepository

	// RunTransaction executes handler within a single storage transaction:
	// either every write made through the ctx passed to handler is persisted
	// or none is.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	// Flush makes every committed write durable.
	Flush() error
	Close()
}
