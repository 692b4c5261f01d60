package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

// AccountInfo is the public view of an owned account.
type AccountInfo struct {
	AccountId domain.AccountId
	Kind      domain.AccountKind
	Label     string
}

// AccountService manages the accounts owned by the wallet. It never
// discloses secret key material: only public halves leave the wallet.
type AccountService interface {
	// CreateAccount derives the keys of the next account of the given kind
	// and stores it. The wallet must be unlocked.
	CreateAccount(ctx context.Context, kind domain.AccountKind) (domain.AccountId, error)
	// ListAccounts returns the owned accounts in creation order.
	ListAccounts(ctx context.Context) ([]AccountInfo, error)
	GetAccount(ctx context.Context, id domain.AccountId) (*domain.Account, error)
	// UpdateBalance caches the balance of a public account. Private balances
	// only follow their notes.
	UpdateBalance(ctx context.Context, id domain.AccountId, balance domain.Amount) error
	GetPublicKey(ctx context.Context, id domain.AccountId) (domain.PublicKey, error)
	GetPrivateKeys(
		ctx context.Context, id domain.AccountId,
	) (domain.NullifierPublicKey, domain.ViewingPublicKey, error)
	// GetBalance returns the network balance of a public account and the
	// cached balance of a private one.
	GetBalance(ctx context.Context, id domain.AccountId) (domain.Amount, error)
	// GetAccountPublic returns the network state of any account.
	GetAccountPublic(ctx context.Context, id domain.AccountId) (*ports.AccountState, error)
	SetLabel(ctx context.Context, id domain.AccountId, label string) error
}

type accountService struct {
	core *walletCore
}

func newAccountService(core *walletCore) AccountService {
	return &accountService{core}
}

func (s *accountService) CreateAccount(
	ctx context.Context, kind domain.AccountKind,
) (domain.AccountId, error) {
	if kind != domain.AccountKindPublic && kind != domain.AccountKindPrivate {
		return domain.AccountId{}, domain.ErrUnknownAccountKind
	}

	var account *domain.Account
	if err := s.core.update(ctx, func(ctx context.Context) error {
		if err := s.core.requireUnlocked(); err != nil {
			return err
		}

		stateRepo := s.core.repo.WalletStateRepository()
		state, err := stateRepo.GetWalletState(ctx)
		if err != nil {
			return err
		}
		index, seq, err := state.NextIndex(kind)
		if err != nil {
			return err
		}
		if account, err = s.deriveAccount(kind, index); err != nil {
			return err
		}
		account.Sequence = seq
		account.CreatedAt = time.Now().Unix()

		if err := s.core.repo.AccountRepository().AddAccount(ctx, account); err != nil {
			return err
		}
		return stateRepo.UpdateWalletState(
			ctx, func(_ *domain.WalletState) (*domain.WalletState, error) {
				return state, nil
			},
		)
	}); err != nil {
		return domain.AccountId{}, err
	}

	log.Debugf("created %s account %s", kind, account.AccountId)
	return account.AccountId, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]AccountInfo, error) {
	var accounts []*domain.Account
	if err := s.core.withLock(func() (err error) {
		accounts, err = s.core.repo.AccountRepository().ListAccounts(ctx)
		return
	}); err != nil {
		return nil, err
	}

	info := make([]AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		info = append(info, AccountInfo{a.AccountId, a.Kind, a.Label})
	}
	return info, nil
}

func (s *accountService) GetAccount(
	ctx context.Context, id domain.AccountId,
) (*domain.Account, error) {
	var account *domain.Account
	if err := s.core.withLock(func() (err error) {
		account, err = s.core.repo.AccountRepository().GetAccount(ctx, id)
		return
	}); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) UpdateBalance(
	ctx context.Context, id domain.AccountId, balance domain.Amount,
) error {
	return s.core.withLock(func() error {
		return s.updatePublicBalance(ctx, id, balance)
	})
}

func (s *accountService) GetPublicKey(
	ctx context.Context, id domain.AccountId,
) (domain.PublicKey, error) {
	var pubkey domain.PublicKey
	err := s.core.withLock(func() error {
		account, err := s.core.repo.AccountRepository().GetAccount(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return fmt.Errorf("%w: %s", ErrKeyNotFound, id)
			}
			return err
		}
		if !account.IsPublic() {
			return fmt.Errorf("%w: %s is not a public account", ErrKeyNotFound, id)
		}
		pubkey = account.PublicKey
		return nil
	})
	return pubkey, err
}

func (s *accountService) GetPrivateKeys(
	ctx context.Context, id domain.AccountId,
) (domain.NullifierPublicKey, domain.ViewingPublicKey, error) {
	var npk domain.NullifierPublicKey
	var vpk domain.ViewingPublicKey
	err := s.core.withLock(func() error {
		account, err := s.core.getAccount(ctx, id, domain.AccountKindPrivate)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotPrivate) {
				return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, err)
			}
			return err
		}
		npk, vpk = account.NullifierPublicKey, account.ViewingPublicKey
		return nil
	})
	return npk, vpk, err
}

func (s *accountService) GetBalance(
	ctx context.Context, id domain.AccountId,
) (domain.Amount, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return domain.Amount{}, err
	}
	if account.IsPrivate() {
		return account.Balance, nil
	}

	state, err := fetchAccountState(ctx, s.core.sequencer, id)
	if err != nil {
		return domain.Amount{}, err
	}
	if err := s.UpdateBalance(ctx, id, state.Balance); err != nil {
		log.WithError(err).Warnf("failed to cache balance of %s", id)
	}
	return state.Balance, nil
}

func (s *accountService) GetAccountPublic(
	ctx context.Context, id domain.AccountId,
) (*ports.AccountState, error) {
	if err := s.core.withLock(func() error { return nil }); err != nil {
		return nil, err
	}
	return s.core.sequencer.GetAccount(ctx, id)
}

func (s *accountService) SetLabel(
	ctx context.Context, id domain.AccountId, label string,
) error {
	return s.core.withLock(func() error {
		return s.core.repo.AccountRepository().UpdateAccount(
			ctx, id, func(a *domain.Account) (*domain.Account, error) {
				a.Label = label
				return a, nil
			},
		)
	})
}

func (s *accountService) deriveAccount(
	kind domain.AccountKind, index uint32,
) (*domain.Account, error) {
	w := s.core.wallet

	if kind == domain.AccountKindPublic {
		prvkey, pubkey, err := w.DeriveSigningKeyPair(
			wallet.DeriveSigningKeyPairOpts{Index: index},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrWalletLocked, err)
		}
		defer prvkey.Zero()

		var pk domain.PublicKey
		copy(pk[:], schnorr.SerializePubKey(pubkey))
		return domain.NewPublicAccount(index, pk), nil
	}

	keys, err := w.DerivePrivateKeys(wallet.DerivePrivateKeysOpts{Index: index})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletLocked, err)
	}
	defer keys.Zero()

	return domain.NewPrivateAccount(
		index, keys.NullifierPublicKey(), keys.ViewingPublicKey(),
	), nil
}

// updatePublicBalance must be called holding the lock.
func (s *accountService) updatePublicBalance(
	ctx context.Context, id domain.AccountId, balance domain.Amount,
) error {
	return s.core.repo.AccountRepository().UpdateAccount(
		ctx, id, func(a *domain.Account) (*domain.Account, error) {
			if !a.IsPublic() {
				return nil, domain.ErrAccountNotPublic
			}
			a.Balance = balance
			return a, nil
		},
	)
}

// fetchAccountState returns the network state of the account. Accounts
// unknown to the network are reported as empty.
func fetchAccountState(
	ctx context.Context, sequencer ports.SequencerClient, id domain.AccountId,
) (*ports.AccountState, error) {
	state, err := sequencer.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrRemoteAccountNotFound) {
			return &ports.AccountState{ProgramOwner: domain.NativeTokenProgramId}, nil
		}
		return nil, err
	}
	return state, nil
}
