package db_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	dbbadger "github.com/nssa-network/nssa-wallet/internal/infrastructure/storage/db/badger"
	"github.com/nssa-network/nssa-wallet/internal/infrastructure/storage/db/inmemory"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
	"github.com/stretchr/testify/require"
)

var (
	mnemonic = []string{
		"leave", "dice", "fine", "decrease", "dune", "ribbon", "ocean", "earn",
		"lunar", "account", "silver", "admit", "cheap", "fringe", "disorder", "trade",
		"because", "trade", "steak", "clock", "grace", "video", "jacket", "equal",
	}
	passphrase = "passphrase"
	errFailed  = errors.New("handler failed")
)

type repoManager struct {
	ports.RepoManager
	name string
}

func TestMain(m *testing.M) {
	wallet.ScryptN = 1 << 10
	os.Exit(m.Run())
}

func TestRepositoryImplementations(t *testing.T) {
	for _, newRepo := range []func(t *testing.T) repoManager{
		newInMemoryRepoManager, newBadgerInMemoryRepoManager, newBadgerOnDiskRepoManager,
	} {
		repo := newRepo(t)

		t.Run(repo.name, func(t *testing.T) {
			t.Run("wallet state", func(t *testing.T) {
				testWalletState(t, repo)
			})
			t.Run("accounts", func(t *testing.T) {
				testAccounts(t, repo)
			})
			t.Run("rollback", func(t *testing.T) {
				testRollback(t, repo)
			})
		})
	}
}

func testWalletState(t *testing.T, repo repoManager) {
	ctx := context.Background()
	stateRepo := repo.WalletStateRepository()

	_, err := stateRepo.GetWalletState(ctx)
	require.ErrorIs(t, err, domain.ErrWalletNotInitialized)

	state, err := domain.NewWalletState(mnemonic, passphrase)
	require.NoError(t, err)
	require.NoError(t, stateRepo.InitWalletState(ctx, state))
	require.ErrorIs(t, stateRepo.InitWalletState(ctx, state), domain.ErrWalletAlreadyInitialized)

	err = stateRepo.UpdateWalletState(ctx, func(s *domain.WalletState) (*domain.WalletState, error) {
		s.AdvanceCursor(7, domain.Hash{7})
		return s, nil
	})
	require.NoError(t, err)
	require.NoError(t, repo.Flush())

	stored, err := stateRepo.GetWalletState(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(7), stored.LastSyncedBlock)
	restored, err := stored.Mnemonic(passphrase)
	require.NoError(t, err)
	require.Equal(t, mnemonic, restored)
}

func testAccounts(t *testing.T, repo repoManager) {
	ctx := context.Background()
	accountRepo := repo.AccountRepository()

	private := domain.NewPrivateAccount(0, domain.NullifierPublicKey{1}, domain.ViewingPublicKey{2})
	private.Sequence = 1
	private.Label = "savings"
	public := domain.NewPublicAccount(0, domain.PublicKey{3})
	public.Sequence = 0

	require.NoError(t, accountRepo.AddAccount(ctx, private))
	require.NoError(t, accountRepo.AddAccount(ctx, public))
	require.ErrorIs(t, accountRepo.AddAccount(ctx, public), domain.ErrAccountAlreadyExists)

	_, err := accountRepo.GetAccount(ctx, domain.AccountId{0xff})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	accounts, err := accountRepo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, public.AccountId, accounts[0].AccountId)
	require.Equal(t, private.AccountId, accounts[1].AccountId)

	privates, err := accountRepo.ListAccountsByKind(ctx, domain.AccountKindPrivate)
	require.NoError(t, err)
	require.Len(t, privates, 1)
	require.Equal(t, "savings", privates[0].Label)

	note, err := domain.NewNote(domain.NewAmount(30))
	require.NoError(t, err)
	commitment := domain.NewCommitment(private.NullifierPublicKey, note)
	err = accountRepo.UpdateAccount(ctx, private.AccountId, func(a *domain.Account) (*domain.Account, error) {
		if _, err := a.AddNote(commitment, *note, true, 1); err != nil {
			return nil, err
		}
		return a, nil
	})
	require.NoError(t, err)

	stored, err := accountRepo.GetAccount(ctx, private.AccountId)
	require.NoError(t, err)
	require.True(t, stored.Initialized)
	require.Len(t, stored.Notes, 1)
	require.Equal(t, commitment, stored.Notes[0].Commitment)
	require.Equal(t, "30", stored.Balance.String())
	require.Equal(t, note.Nonce, stored.Notes[0].Note.Nonce)

	err = accountRepo.UpdateAccount(ctx, domain.AccountId{0xff}, func(a *domain.Account) (*domain.Account, error) {
		return a, nil
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func testRollback(t *testing.T, repo repoManager) {
	ctx := context.Background()
	account := domain.NewPublicAccount(1, domain.PublicKey{4})
	account.Sequence = 2

	_, err := repo.RunTransaction(ctx, false, func(ctx context.Context) (interface{}, error) {
		if err := repo.AccountRepository().AddAccount(ctx, account); err != nil {
			return nil, err
		}
		if err := repo.WalletStateRepository().UpdateWalletState(
			ctx, func(s *domain.WalletState) (*domain.WalletState, error) {
				s.AdvanceCursor(9, domain.Hash{9})
				return s, nil
			},
		); err != nil {
			return nil, err
		}
		return nil, errFailed
	})
	require.ErrorIs(t, err, errFailed)

	_, err = repo.AccountRepository().GetAccount(ctx, account.AccountId)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	state, err := repo.WalletStateRepository().GetWalletState(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(7), state.LastSyncedBlock)

	res, err := repo.RunTransaction(ctx, false, func(ctx context.Context) (interface{}, error) {
		if err := repo.AccountRepository().AddAccount(ctx, account); err != nil {
			return nil, err
		}
		// nested transactions join the outer one
		return repo.RunTransaction(ctx, true, func(ctx context.Context) (interface{}, error) {
			return repo.AccountRepository().GetAccount(ctx, account.AccountId)
		})
	})
	require.NoError(t, err)
	require.Equal(t, account.AccountId, res.(*domain.Account).AccountId)

	_, err = repo.AccountRepository().GetAccount(ctx, account.AccountId)
	require.NoError(t, err)
}

func newInMemoryRepoManager(t *testing.T) repoManager {
	return repoManager{inmemory.NewRepoManager(), "inmemory"}
}

func newBadgerInMemoryRepoManager(t *testing.T) repoManager {
	repo, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repoManager{repo, "badger-inmemory"}
}

func newBadgerOnDiskRepoManager(t *testing.T) repoManager {
	repo, err := dbbadger.NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repoManager{repo, "badger"}
}
