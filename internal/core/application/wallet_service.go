package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

// WalletStatus ...
type WalletStatus struct {
	Initialized     bool
	Unlocked        bool
	LastSyncedBlock uint64
	NumOfAccounts   int
}

// WalletService manages the lifecycle of the wallet seed. The mnemonic is
// stored encrypted with the wallet passphrase; the seed it generates is kept
// in memory only while the wallet is unlocked. The passphrase is not a
// BIP39 passphrase: changing it never changes the derived keys.
type WalletService interface {
	GenSeed(ctx context.Context) ([]string, error)
	InitWallet(ctx context.Context, mnemonic []string, passphrase string) error
	UnlockWallet(ctx context.Context, passphrase string) error
	LockWallet(ctx context.Context) error
	ChangePassword(ctx context.Context, currentPassphrase, newPassphrase string) error
	GetMnemonic(ctx context.Context, passphrase string) ([]string, error)
	Status(ctx context.Context) (*WalletStatus, error)
	// Save makes every change durable.
	Save(ctx context.Context) error
}

type walletService struct {
	core *walletCore
}

func newWalletService(core *walletCore) WalletService {
	return &walletService{core}
}

func (s *walletService) GenSeed(_ context.Context) ([]string, error) {
	return wallet.NewMnemonic(wallet.NewMnemonicOpts{})
}

func (s *walletService) InitWallet(
	ctx context.Context, mnemonic []string, passphrase string,
) error {
	state, err := domain.NewWalletState(mnemonic, passphrase)
	if err != nil {
		return err
	}
	w, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
	if err != nil {
		return err
	}

	return s.core.withLock(func() error {
		if err := s.core.repo.WalletStateRepository().InitWalletState(
			ctx, state,
		); err != nil {
			w.Zero()
			return err
		}
		s.core.unlockSeed(w)
		log.Info("wallet initialized")
		return nil
	})
}

func (s *walletService) UnlockWallet(ctx context.Context, passphrase string) error {
	return s.core.withLock(func() error {
		if s.core.isUnlocked() {
			return nil
		}

		state, err := s.core.repo.WalletStateRepository().GetWalletState(ctx)
		if err != nil {
			return err
		}
		mnemonic, err := state.Mnemonic(passphrase)
		if err != nil {
			if errors.Is(err, wallet.ErrInvalidPassphrase) {
				return domain.ErrInvalidPassphrase
			}
			return err
		}
		w, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
			Mnemonic: mnemonic,
		})
		if err != nil {
			return err
		}

		s.core.unlockSeed(w)
		log.Info("wallet unlocked")
		return nil
	})
}

func (s *walletService) LockWallet(_ context.Context) error {
	return s.core.withLock(func() error {
		s.core.lockSeed()
		log.Info("wallet locked")
		return nil
	})
}

func (s *walletService) ChangePassword(
	ctx context.Context, currentPassphrase, newPassphrase string,
) error {
	return s.core.withLock(func() error {
		return s.core.repo.WalletStateRepository().UpdateWalletState(
			ctx, func(state *domain.WalletState) (*domain.WalletState, error) {
				if err := state.ChangePassphrase(
					currentPassphrase, newPassphrase,
				); err != nil {
					return nil, err
				}
				return state, nil
			},
		)
	})
}

func (s *walletService) GetMnemonic(
	ctx context.Context, passphrase string,
) ([]string, error) {
	var mnemonic []string
	if err := s.core.withLock(func() error {
		state, err := s.core.repo.WalletStateRepository().GetWalletState(ctx)
		if err != nil {
			return err
		}
		mnemonic, err = state.Mnemonic(passphrase)
		return err
	}); err != nil {
		return nil, err
	}
	return mnemonic, nil
}

func (s *walletService) Status(ctx context.Context) (*WalletStatus, error) {
	status := &WalletStatus{}
	if err := s.core.withLock(func() error {
		status.Unlocked = s.core.isUnlocked()

		state, err := s.core.repo.WalletStateRepository().GetWalletState(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrWalletNotInitialized) {
				return nil
			}
			return err
		}
		status.Initialized = state.IsInitialized()
		status.LastSyncedBlock = state.LastSyncedBlock

		accounts, err := s.core.repo.AccountRepository().ListAccounts(ctx)
		if err != nil {
			return err
		}
		status.NumOfAccounts = len(accounts)
		return nil
	}); err != nil {
		return nil, err
	}
	return status, nil
}

func (s *walletService) Save(_ context.Context) error {
	return s.core.withLock(func() error {
		if err := s.core.repo.Flush(); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}
		return nil
	})
}
