package application

import (
	"context"
	"fmt"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

// blockReport summarizes what applying a block changed in the wallet.
type blockReport struct {
	blockId        uint64
	skipped        bool
	scannedOutputs int
	receivedNotes  int
	spentNotes     int
}

// ownedNote locates a note of an owned private account by its nullifier.
type ownedNote struct {
	account    *domain.Account
	commitment domain.Commitment
}

// scanner applies blocks to the owned private accounts. It caches the key
// bundles it derives for the duration of a sync run, close wipes them.
type scanner struct {
	core *walletCore
	keys map[domain.AccountId]*wallet.PrivateKeys
}

func newScanner(core *walletCore) *scanner {
	return &scanner{
		core: core,
		keys: make(map[domain.AccountId]*wallet.PrivateKeys),
	}
}

func (s *scanner) close() {
	for id, k := range s.keys {
		k.Zero()
		delete(s.keys, id)
	}
}

// applyBlock applies the effects of the block and advances the sync cursor
// within one storage transaction. Blocks at or below the cursor are
// skipped.
func (s *scanner) applyBlock(
	ctx context.Context, block *domain.Block,
) (*blockReport, error) {
	report := &blockReport{blockId: block.BlockId}

	if err := s.core.update(ctx, func(ctx context.Context) error {
		stateRepo := s.core.repo.WalletStateRepository()
		state, err := stateRepo.GetWalletState(ctx)
		if err != nil {
			return err
		}
		if block.BlockId <= state.LastSyncedBlock {
			report.skipped = true
			return nil
		}
		if err := checkChain(state, block); err != nil {
			return err
		}

		accounts, err := s.core.repo.AccountRepository().ListAccountsByKind(
			ctx, domain.AccountKindPrivate,
		)
		if err != nil {
			return err
		}
		changed, err := s.scan(block, accounts, report)
		if err != nil {
			return err
		}

		for _, account := range changed {
			updated := account
			if err := s.core.repo.AccountRepository().UpdateAccount(
				ctx, updated.AccountId,
				func(_ *domain.Account) (*domain.Account, error) {
					return updated, nil
				},
			); err != nil {
				return err
			}
		}

		state.AdvanceCursor(block.BlockId, block.Hash)
		return stateRepo.UpdateWalletState(
			ctx, func(_ *domain.WalletState) (*domain.WalletState, error) {
				return state, nil
			},
		)
	}); err != nil {
		return nil, err
	}

	if !report.skipped {
		log.WithField("block", block.BlockId).Debugf(
			"applied block: %d outputs scanned, %d notes received, %d notes spent",
			report.scannedOutputs, report.receivedNotes, report.spentNotes,
		)
	}
	return report, nil
}

// scan tests every nullifier and commitment of the block against the owned
// private accounts, in block order, and returns the accounts it changed.
// It must be called holding the lock.
func (s *scanner) scan(
	block *domain.Block, accounts []*domain.Account, report *blockReport,
) ([]*domain.Account, error) {
	spendable := make(map[domain.Nullifier]ownedNote)
	for _, account := range accounts {
		keys, err := s.keysOf(account)
		if err != nil {
			return nil, err
		}
		nsk := domain.NullifierSecretKey(keys.NullifierSecretKey)
		for _, n := range account.Notes {
			// Notes spent by a submitted transaction still wait for the block
			// revealing their nullifier.
			if n.Spent && n.SpentInBlock > 0 {
				continue
			}
			spendable[domain.NewNullifier(n.Commitment, nsk)] = ownedNote{
				account, n.Commitment,
			}
		}
		nsk.Zero()
	}

	changed := make([]*domain.Account, 0)
	touched := make(map[domain.AccountId]struct{})
	markChanged := func(account *domain.Account) {
		if _, ok := touched[account.AccountId]; ok {
			return
		}
		touched[account.AccountId] = struct{}{}
		changed = append(changed, account)
	}

	for _, tx := range block.PrivacyPreservingTransactions() {
		msg := tx.Message
		if len(msg.EncryptedNotes) != len(msg.NewCommitments) {
			return nil, fmt.Errorf(
				"%w: block %d carries a transaction with %d commitments and %d notes",
				ErrSyncFailed, block.BlockId,
				len(msg.NewCommitments), len(msg.EncryptedNotes),
			)
		}

		for _, n := range msg.NewNullifiers {
			report.scannedOutputs++
			owned, ok := spendable[n.Nullifier]
			if !ok {
				continue
			}
			ok, err := owned.account.MarkSpent(owned.commitment, block.BlockId)
			if err != nil {
				return nil, err
			}
			delete(spendable, n.Nullifier)
			if ok {
				report.spentNotes++
				markChanged(owned.account)
			}
		}

		for i, c := range msg.NewCommitments {
			report.scannedOutputs++
			account, note := s.trialDecrypt(accounts, c, &msg.EncryptedNotes[i])
			if account == nil {
				continue
			}
			ok, err := account.AddNote(c, *note, true, block.BlockId)
			if err != nil {
				return nil, err
			}
			nsk := domain.NullifierSecretKey(s.keys[account.AccountId].NullifierSecretKey)
			spendable[domain.NewNullifier(c, nsk)] = ownedNote{account, c}
			nsk.Zero()
			if ok {
				report.receivedNotes++
				markChanged(account)
			}
		}
	}
	return changed, nil
}

// trialDecrypt returns the owned account the note was sealed to, if any.
// A note is owned only if it opens with the account viewing key and
// commits to the account nullifier public key.
func (s *scanner) trialDecrypt(
	accounts []*domain.Account, commitment domain.Commitment, enc *domain.EncryptedNote,
) (*domain.Account, *domain.Note) {
	for _, account := range accounts {
		keys := s.keys[account.AccountId]
		note, err := enc.Decrypt(keys.ViewingKey, commitment)
		if err != nil {
			continue
		}
		if domain.NewCommitment(account.NullifierPublicKey, note) != commitment {
			log.WithField("commitment", commitment.String()).Warnf(
				"note decrypted by %s does not match its commitment", account.AccountId,
			)
			continue
		}
		return account, note
	}
	return nil, nil
}

// keysOf must be called holding the lock.
func (s *scanner) keysOf(account *domain.Account) (*wallet.PrivateKeys, error) {
	if keys, ok := s.keys[account.AccountId]; ok {
		return keys, nil
	}
	keys, err := s.core.privateKeys(account)
	if err != nil {
		return nil, err
	}
	s.keys[account.AccountId] = keys
	return keys, nil
}

func checkChain(state *domain.WalletState, block *domain.Block) error {
	if block.BlockId != state.LastSyncedBlock+1 {
		return fmt.Errorf(
			"%w: got block %d, expected %d",
			ErrChainMismatch, block.BlockId, state.LastSyncedBlock+1,
		)
	}
	if block.PrevHash != state.LastSyncedHash {
		return fmt.Errorf(
			"%w: block %d does not point to synced block hash %s",
			ErrChainMismatch, block.BlockId, state.LastSyncedHash,
		)
	}
	if block.ComputeHash() != block.Hash {
		return fmt.Errorf("%w: block %d hash mismatch", ErrSyncFailed, block.BlockId)
	}
	return nil
}
