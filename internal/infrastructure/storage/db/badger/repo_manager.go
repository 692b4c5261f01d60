package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const (
	walletDir       = "wallet"
	maxTxRetries    = 5
	valueLogGCEvery = 30 * time.Minute
)

type txKey struct{}

type repoManager struct {
	store  *badgerhold.Store
	stopGC chan struct{}

	accountRepository     domain.AccountRepository
	walletStateRepository domain.WalletStateRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// An empty baseDbDir opens an in-memory store.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, walletDir)
	}

	stopGC := make(chan struct{})
	store, err := createDb(dbDir, logger, stopGC)
	if err != nil {
		return nil, fmt.Errorf("opening wallet db: %w", err)
	}

	return &repoManager{
		store:                 store,
		stopGC:                stopGC,
		accountRepository:     newAccountRepositoryImpl(store),
		walletStateRepository: newWalletStateRepositoryImpl(store),
	}, nil
}

func (r *repoManager) AccountRepository() domain.AccountRepository {
	return r.accountRepository
}

func (r *repoManager) WalletStateRepository() domain.WalletStateRepository {
	return r.walletStateRepository
}

// RunTransaction runs handler within a badger transaction and commits it
// if handler succeeds. Nested calls join the outer transaction. Conflicting
// commits are retried.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if _, ok := ctx.Value(txKey{}).(*badger.Txn); ok {
		return handler(ctx)
	}

	for i := 0; ; i++ {
		res, err := r.runTransaction(ctx, readOnly, handler)
		if err != nil {
			if errors.Is(err, badger.ErrConflict) && i < maxTxRetries {
				log.Debugf("db: transaction conflict, retrying (%d)", i+1)
				continue
			}
			return nil, err
		}
		return res, nil
	}
}

func (r *repoManager) Flush() error {
	if r.store.Badger().Opts().InMemory {
		return nil
	}
	return storageError(r.store.Badger().Sync())
}

func (r *repoManager) Close() {
	close(r.stopGC)
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("db: failed to close store")
	}
}

func (r *repoManager) runTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	tx := r.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return nil, err
	}
	if !readOnly {
		if err := tx.Commit(); err != nil {
			return nil, storageError(err)
		}
	}
	return res, nil
}

func storageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ports.ErrStorage, err)
}

func txFromContext(ctx context.Context) *badger.Txn {
	tx, _ := ctx.Value(txKey{}).(*badger.Txn)
	return tx
}

func createDb(
	dbDir string, logger badger.Logger, stopGC chan struct{},
) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(valueLogGCEvery)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-stopGC:
					return
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(0.5); err != nil &&
						err != badger.ErrNoRewrite {
						log.Error(err)
					}
				}
			}
		}()
	}

	return db, nil
}
