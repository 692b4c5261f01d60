package application

import (
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	dbbadger "github.com/nssa-network/nssa-wallet/internal/infrastructure/storage/db/badger"
	dbinmemory "github.com/nssa-network/nssa-wallet/internal/infrastructure/storage/db/inmemory"
	log "github.com/sirupsen/logrus"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

// Config holds the collaborators of a wallet. It is read once by NewWallet.
type Config struct {
	DBType string
	// DBConfig is the datadir for the badger db, ignored otherwise.
	DBConfig interface{}

	Sequencer       ports.SequencerClient
	Prover          ports.Prover
	MerkleTreeDepth uint8
	BlockBatchSize  int

	repo ports.RepoManager
}

func (c *Config) Validate() error {
	if c.Sequencer == nil {
		return ErrNullSequencer
	}
	if c.Prover == nil {
		return ErrNullProver
	}
	if c.BlockBatchSize < 0 {
		return ErrInvalidBlockBatchSize
	}
	if c.MerkleTreeDepth > 63 {
		return domain.ErrInvalidMerkleDepth
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) merkleTreeDepth() uint8 {
	if c.MerkleTreeDepth == 0 {
		return domain.DefaultMerkleTreeDepth
	}
	return c.MerkleTreeDepth
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		if _, ok := SupportedDBType[c.DBType]; !ok {
			return nil, ErrUnknownDBType
		}

		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		default:
			c.repo = dbinmemory.NewRepoManager()
		}
	}
	return c.repo, nil
}

// Wallet is the exclusive handle on an open wallet. Every service it hands
// out shares the same lock and store; once Close is called they all fail
// with ErrWalletClosed.
type Wallet struct {
	core *walletCore

	wallet   WalletService
	account  AccountService
	transfer TransferService
	pinata   PinataService
	sync     SyncService
}

// NewWallet opens the wallet store described by cfg. The wallet starts
// locked.
func NewWallet(cfg *Config) (*Wallet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	core := newWalletCore(
		cfg.RepoManager(), cfg.Sequencer, cfg.Prover, cfg.merkleTreeDepth(),
	)
	return &Wallet{
		core:     core,
		wallet:   newWalletService(core),
		account:  newAccountService(core),
		transfer: newTransferService(core),
		pinata:   newPinataService(core),
		sync:     newSyncService(core, cfg.BlockBatchSize),
	}, nil
}

func (w *Wallet) WalletService() WalletService {
	return w.wallet
}

func (w *Wallet) AccountService() AccountService {
	return w.account
}

func (w *Wallet) TransferService() TransferService {
	return w.transfer
}

func (w *Wallet) PinataService() PinataService {
	return w.pinata
}

func (w *Wallet) SyncService() SyncService {
	return w.sync
}

// Close wipes the seed from memory and releases the store and the
// sequencer client. It is safe to call more than once.
func (w *Wallet) Close() {
	w.core.close()
	log.Debug("wallet closed")
}
