package application

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
)

// walletCore is the state shared by all services of a wallet handle.
//
// lock guards the account store, the sync cursor, the unlocked seed and the
// set of reserved notes as a unit. It is never held across network calls.
type walletCore struct {
	lock *sync.Mutex

	repo            ports.RepoManager
	sequencer       ports.SequencerClient
	prover          ports.Prover
	merkleTreeDepth uint8

	wallet   *wallet.Wallet
	reserved map[domain.Commitment]struct{}
	closed   bool
}

func newWalletCore(
	repo ports.RepoManager,
	sequencer ports.SequencerClient,
	prover ports.Prover,
	merkleTreeDepth uint8,
) *walletCore {
	return &walletCore{
		lock:            &sync.Mutex{},
		repo:            repo,
		sequencer:       sequencer,
		prover:          prover,
		merkleTreeDepth: merkleTreeDepth,
		reserved:        make(map[domain.Commitment]struct{}),
	}
}

// withLock runs fn holding the wallet lock, unless the wallet is closed.
func (c *walletCore) withLock(fn func() error) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrWalletClosed
	}
	return fn()
}

// update runs fn holding the wallet lock within a single storage
// transaction: either every write made by fn is persisted or none is.
func (c *walletCore) update(
	ctx context.Context, fn func(ctx context.Context) error,
) error {
	return c.withLock(func() error {
		_, err := c.repo.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				return nil, fn(ctx)
			},
		)
		return err
	})
}

func (c *walletCore) close() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.lockSeed()
	c.reserved = nil
	c.sequencer.Close()
	c.repo.Close()
}

func (c *walletCore) unlockSeed(w *wallet.Wallet) {
	c.lockSeed()
	c.wallet = w
}

func (c *walletCore) lockSeed() {
	if c.wallet != nil {
		c.wallet.Zero()
		c.wallet = nil
	}
}

func (c *walletCore) isUnlocked() bool {
	return c.wallet != nil
}

// The methods below must be called holding the lock.

func (c *walletCore) requireUnlocked() error {
	if !c.isUnlocked() {
		return ErrWalletLocked
	}
	return nil
}

func (c *walletCore) getAccount(
	ctx context.Context, id domain.AccountId, kind domain.AccountKind,
) (*domain.Account, error) {
	account, err := c.repo.AccountRepository().GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Kind != kind {
		if kind == domain.AccountKindPublic {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotPublic, id)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotPrivate, id)
	}
	return account, nil
}

// signingKey derives the signing key of the owned public account. The
// caller must zero it once done.
func (c *walletCore) signingKey(account *domain.Account) (*btcec.PrivateKey, error) {
	if err := c.requireUnlocked(); err != nil {
		return nil, err
	}
	prvkey, pubkey, err := c.wallet.DeriveSigningKeyPair(
		wallet.DeriveSigningKeyPairOpts{Index: account.Index},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletLocked, err)
	}
	if !bytes.Equal(schnorr.SerializePubKey(pubkey), account.PublicKey[:]) {
		prvkey.Zero()
		return nil, fmt.Errorf("%w: signing key of %s", ErrKeyNotFound, account.AccountId)
	}
	return prvkey, nil
}

// privateKeys derives the key bundle of the owned private account. The
// caller must zero it once done.
func (c *walletCore) privateKeys(account *domain.Account) (*wallet.PrivateKeys, error) {
	if err := c.requireUnlocked(); err != nil {
		return nil, err
	}
	keys, err := c.wallet.DerivePrivateKeys(
		wallet.DerivePrivateKeysOpts{Index: account.Index},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletLocked, err)
	}
	if domain.NullifierPublicKey(keys.NullifierPublicKey()) != account.NullifierPublicKey ||
		domain.ViewingPublicKey(keys.ViewingPublicKey()) != account.ViewingPublicKey {
		keys.Zero()
		return nil, fmt.Errorf("%w: private keys of %s", ErrKeyNotFound, account.AccountId)
	}
	return keys, nil
}

func (c *walletCore) reserve(notes []domain.OwnedNote) {
	for _, n := range notes {
		c.reserved[n.Commitment] = struct{}{}
	}
}

func (c *walletCore) isReserved(commitment domain.Commitment) bool {
	_, ok := c.reserved[commitment]
	return ok
}

// release frees the notes reserved by a transfer build, whatever its
// outcome.
func (c *walletCore) release(notes []domain.OwnedNote) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for _, n := range notes {
		delete(c.reserved, n.Commitment)
	}
}
