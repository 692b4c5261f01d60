package memsequencer_test

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	devprover "github.com/nssa-network/nssa-wallet/internal/infrastructure/prover/dev"
	memsequencer "github.com/nssa-network/nssa-wallet/internal/infrastructure/sequencer/inmemory"
	"github.com/stretchr/testify/require"
)

type signer struct {
	key *btcec.PrivateKey
	id  domain.AccountId
}

func newSigner(t *testing.T) signer {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	var pk domain.PublicKey
	copy(pk[:], schnorr.SerializePubKey(key.PubKey()))
	return signer{key, domain.NewPublicAccountId(pk)}
}

func newLedger(t *testing.T) *memsequencer.Ledger {
	ledger, err := memsequencer.NewLedger(memsequencer.Opts{
		Prover:          devprover.NewProver(),
		MerkleTreeDepth: 8,
	})
	require.NoError(t, err)
	return ledger
}

func publicTransfer(
	t *testing.T, from signer, to domain.AccountId, nonce, amount uint64,
) domain.Transaction {
	msg := domain.PublicMessage{
		ProgramId:   domain.NativeTokenProgramId,
		AccountIds:  []domain.AccountId{from.id, to},
		Nonces:      []domain.Amount{domain.NewAmount(nonce)},
		Instruction: domain.TransferInstruction(domain.NewAmount(amount)),
	}
	sig, err := domain.Sign(from.key, msg.Hash())
	require.NoError(t, err)
	return domain.NewPublicTransaction(&domain.PublicTransaction{
		Message: msg, Signatures: []domain.Signature{*sig},
	})
}

func TestPublicTransfer(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	alice, bob := newSigner(t), newSigner(t)
	require.NoError(t, ledger.Fund(alice.id, domain.NewAmount(100)))

	res, err := ledger.SubmitTransaction(ctx, publicTransfer(t, alice, bob.id, 0, 40))
	require.NoError(t, err)
	require.True(t, res.Accepted, res.Reason)

	// replayed nonce
	res, err = ledger.SubmitTransaction(ctx, publicTransfer(t, alice, bob.id, 0, 10))
	require.NoError(t, err)
	require.False(t, res.Accepted)

	// overspend
	res, err = ledger.SubmitTransaction(ctx, publicTransfer(t, alice, bob.id, 1, 61))
	require.NoError(t, err)
	require.False(t, res.Accepted)

	// signed by someone else
	tx := publicTransfer(t, bob, bob.id, 0, 1)
	tx.Public.Message.AccountIds[0] = alice.id
	res, err = ledger.SubmitTransaction(ctx, tx)
	require.NoError(t, err)
	require.False(t, res.Accepted)

	last, err := ledger.GetLastBlockId(ctx)
	require.NoError(t, err)
	require.Zero(t, last)

	block := ledger.ProduceBlock()
	require.Equal(t, uint64(1), block.BlockId)
	require.Len(t, block.Transactions, 1)
	require.Equal(t, block.ComputeHash(), block.Hash)

	next := ledger.ProduceBlock()
	require.Equal(t, block.Hash, next.PrevHash)
	require.Empty(t, next.Transactions)

	aliceState, err := ledger.GetAccount(ctx, alice.id)
	require.NoError(t, err)
	require.Equal(t, "60", aliceState.Balance.String())
	require.Equal(t, "1", aliceState.Nonce.String())

	bobState, err := ledger.GetAccount(ctx, bob.id)
	require.NoError(t, err)
	require.Equal(t, "40", bobState.Balance.String())

	_, err = ledger.GetAccount(ctx, domain.AccountId{1})
	require.ErrorIs(t, err, ports.ErrRemoteAccountNotFound)

	_, err = ledger.GetBlock(ctx, 3)
	require.ErrorIs(t, err, ports.ErrBlockNotFound)
}

func TestPrivacyPreservingChecks(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	prover := devprover.NewProver()
	alice := newSigner(t)
	require.NoError(t, ledger.Fund(alice.id, domain.NewAmount(100)))

	vsk, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	var vpk domain.ViewingPublicKey
	copy(vpk[:], vsk.PubKey().SerializeCompressed())
	npk := domain.NullifierSecretKey{1}.PublicKey()

	shield := func(pre, post uint64, nonce uint64) domain.Transaction {
		note, err := domain.NewNote(domain.NewAmount(pre - post))
		require.NoError(t, err)
		c := domain.NewCommitment(npk, note)
		enc, err := domain.EncryptNote(note, c, vpk)
		require.NoError(t, err)
		msg := domain.PrivacyPreservingMessage{
			ProgramId: domain.NativeTokenProgramId,
			PublicChanges: []domain.PublicBalanceChange{{
				AccountId:   alice.id,
				PreBalance:  domain.NewAmount(pre),
				PostBalance: domain.NewAmount(post),
			}},
			PublicNonces:   []domain.Amount{domain.NewAmount(nonce)},
			Instruction:    domain.TransferInstruction(domain.NewAmount(pre - post)),
			NewCommitments: []domain.Commitment{c},
			EncryptedNotes: []domain.EncryptedNote{*enc},
		}
		proof, err := prover.Prove(ctx, &msg)
		require.NoError(t, err)
		sig, err := domain.Sign(alice.key, msg.Hash())
		require.NoError(t, err)
		return domain.NewPrivacyPreservingTransaction(&domain.PrivacyPreservingTransaction{
			Message: msg, Proof: proof, Signatures: []domain.Signature{*sig},
		})
	}

	tx := shield(100, 70, 0)
	res, err := ledger.SubmitTransaction(ctx, tx)
	require.NoError(t, err)
	require.True(t, res.Accepted, res.Reason)

	commitment := tx.Privacy.Message.NewCommitments[0]
	proof, err := ledger.GetProofForCommitment(ctx, commitment)
	require.NoError(t, err)
	require.True(t, domain.VerifyMerkleProof(commitment, proof.Proof, proof.Root, 8))

	t.Run("stale pre balance", func(t *testing.T) {
		res, err := ledger.SubmitTransaction(ctx, shield(100, 70, 1))
		require.NoError(t, err)
		require.False(t, res.Accepted)
	})

	t.Run("tampered proof", func(t *testing.T) {
		bad := shield(70, 60, 1)
		bad.Privacy.Proof[0] ^= 1
		res, err := ledger.SubmitTransaction(ctx, bad)
		require.NoError(t, err)
		require.False(t, res.Accepted)
	})

	t.Run("double spend", func(t *testing.T) {
		spend := func(root domain.Hash) domain.Transaction {
			msg := domain.PrivacyPreservingMessage{
				ProgramId: domain.NativeTokenProgramId,
				NewNullifiers: []domain.NullifierWithRoot{{
					Nullifier: domain.NewNullifier(commitment, domain.NullifierSecretKey{1}),
					Root:      root,
				}},
			}
			p, err := prover.Prove(ctx, &msg)
			require.NoError(t, err)
			return domain.NewPrivacyPreservingTransaction(&domain.PrivacyPreservingTransaction{
				Message: msg, Proof: p,
			})
		}

		res, err := ledger.SubmitTransaction(ctx, spend(domain.Hash{0xde}))
		require.NoError(t, err)
		require.False(t, res.Accepted)

		res, err = ledger.SubmitTransaction(ctx, spend(proof.Root))
		require.NoError(t, err)
		require.True(t, res.Accepted, res.Reason)

		res, err = ledger.SubmitTransaction(ctx, spend(proof.Root))
		require.NoError(t, err)
		require.False(t, res.Accepted)
	})

	t.Run("offline", func(t *testing.T) {
		ledger.SetOffline(true)
		defer ledger.SetOffline(false)
		_, err := ledger.GetLastBlockId(ctx)
		require.ErrorIs(t, err, ports.ErrNetwork)
	})
}

func TestPinata(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	winner := newSigner(t)
	pinataId := domain.AccountId{0x50}
	challenge := domain.PinataChallenge{Difficulty: 1, Seed: [32]byte{1}}
	require.NoError(t, ledger.CreatePinata(pinataId, domain.NewAmount(1000), challenge))

	claim := func(solution uint64) domain.Transaction {
		return domain.NewPublicTransaction(&domain.PublicTransaction{
			Message: domain.PublicMessage{
				ProgramId:   domain.PinataProgramId,
				AccountIds:  []domain.AccountId{pinataId, winner.id},
				Instruction: domain.PinataInstruction(solution),
			},
		})
	}

	solution := challenge.Solve()
	res, err := ledger.SubmitTransaction(ctx, claim(solution+1))
	require.NoError(t, err)
	if challenge.IsSolution(solution + 1) {
		require.True(t, res.Accepted)
		return
	}
	require.False(t, res.Accepted)

	res, err = ledger.SubmitTransaction(ctx, claim(solution))
	require.NoError(t, err)
	require.True(t, res.Accepted, res.Reason)

	state, err := ledger.GetAccount(ctx, winner.id)
	require.NoError(t, err)
	require.Equal(t, "150", state.Balance.String())

	pinata, err := ledger.GetAccount(ctx, pinataId)
	require.NoError(t, err)
	require.Equal(t, "850", pinata.Balance.String())
	require.Equal(t, challenge.Next().Bytes(), pinata.Data)

	// the old solution does not solve the new challenge twice in a row
	res, err = ledger.SubmitTransaction(ctx, claim(solution))
	require.NoError(t, err)
	require.Equal(t, challenge.Next().IsSolution(solution), res.Accepted)
}
