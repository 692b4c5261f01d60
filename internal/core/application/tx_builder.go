package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// TransferResult is the outcome of a submitted transaction. A transaction
// rejected by the sequencer is not an error: Success is false and Reason
// tells why.
type TransferResult struct {
	TxHash  domain.Hash
	Success bool
	Reason  string
}

// PrivateRecipient identifies the receiver of a private output, either by
// the id of an owned private account or by its public keys.
type PrivateRecipient struct {
	AccountId          *domain.AccountId
	NullifierPublicKey domain.NullifierPublicKey
	ViewingPublicKey   domain.ViewingPublicKey
}

// NewOwnedRecipient ...
func NewOwnedRecipient(id domain.AccountId) PrivateRecipient {
	return PrivateRecipient{AccountId: &id}
}

// NewKeysRecipient ...
func NewKeysRecipient(
	npk domain.NullifierPublicKey, vpk domain.ViewingPublicKey,
) PrivateRecipient {
	return PrivateRecipient{NullifierPublicKey: npk, ViewingPublicKey: vpk}
}

func (r PrivateRecipient) validate() error {
	if r.AccountId != nil {
		return nil
	}
	if r.NullifierPublicKey == (domain.NullifierPublicKey{}) {
		return ErrNullRecipient
	}
	if _, err := r.ViewingPublicKey.Parse(); err != nil {
		return err
	}
	return nil
}

// recipientKeys are the resolved public keys of a private recipient. owner
// is set if the recipient is an account of this wallet.
type recipientKeys struct {
	npk   domain.NullifierPublicKey
	vpk   domain.ViewingPublicKey
	owner *domain.AccountId
}

// privateOutput is a new note together with its commitment and its
// encryption for the recipient.
type privateOutput struct {
	recipient  recipientKeys
	note       *domain.Note
	commitment domain.Commitment
	encrypted  *domain.EncryptedNote
}

// privateInput is the set of notes of an owned private account consumed by
// a transaction.
type privateInput struct {
	account    *domain.Account
	notes      []domain.OwnedNote
	total      domain.Amount
	nullifiers []domain.NullifierWithRoot
}

func validateAmount(amount domain.Amount) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

// resolveRecipient must be called holding the lock.
func (c *walletCore) resolveRecipient(
	ctx context.Context, r PrivateRecipient,
) (*recipientKeys, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	id := domain.NewPrivateAccountId(r.NullifierPublicKey)
	if r.AccountId != nil {
		id = *r.AccountId
	}

	account, err := c.getAccount(ctx, id, domain.AccountKindPrivate)
	if err != nil {
		if r.AccountId == nil && errors.Is(err, domain.ErrAccountNotFound) {
			return &recipientKeys{npk: r.NullifierPublicKey, vpk: r.ViewingPublicKey}, nil
		}
		return nil, err
	}
	owner := account.AccountId
	return &recipientKeys{
		npk:   account.NullifierPublicKey,
		vpk:   account.ViewingPublicKey,
		owner: &owner,
	}, nil
}

func newPrivateOutput(
	recipient recipientKeys, amount domain.Amount,
) (*privateOutput, error) {
	note, err := domain.NewNote(amount)
	if err != nil {
		return nil, err
	}
	commitment := domain.NewCommitment(recipient.npk, note)
	encrypted, err := domain.EncryptNote(note, commitment, recipient.vpk)
	if err != nil {
		return nil, err
	}
	return &privateOutput{recipient, note, commitment, encrypted}, nil
}

func ownRecipient(account *domain.Account) recipientKeys {
	owner := account.AccountId
	return recipientKeys{
		npk:   account.NullifierPublicKey,
		vpk:   account.ViewingPublicKey,
		owner: &owner,
	}
}

// selectInputs picks and reserves confirmed notes of the owned private
// account covering amount. It must be called holding the lock. Reserved
// notes must be released once the transaction is submitted or given up.
func (c *walletCore) selectInputs(
	ctx context.Context, from domain.AccountId, amount domain.Amount,
) (*privateInput, error) {
	if err := c.requireUnlocked(); err != nil {
		return nil, err
	}
	account, err := c.getAccount(ctx, from, domain.AccountKindPrivate)
	if err != nil {
		return nil, err
	}
	if account.Balance.Cmp(amount) < 0 {
		return nil, fmt.Errorf(
			"%w: balance of %s is %s, need %s",
			ErrInsufficientFunds, from, account.Balance, amount,
		)
	}

	notes, total, err := account.SelectNotes(amount, c.isReserved)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: not enough confirmed notes to spend %s from %s: %s",
			ErrInsufficientFunds, amount, from, err,
		)
	}
	c.reserve(notes)
	return &privateInput{account: account, notes: notes, total: total}, nil
}

// proveInputs fetches and verifies the membership proof of every input
// note, then computes their nullifiers. Only the nullifier computation
// happens holding the lock.
func (c *walletCore) proveInputs(ctx context.Context, in *privateInput) error {
	roots := make([]domain.Hash, 0, len(in.notes))
	for _, n := range in.notes {
		proof, err := c.sequencer.GetProofForCommitment(ctx, n.Commitment)
		if err != nil {
			return fmt.Errorf("membership proof of %s: %w", n.Commitment, err)
		}
		if !domain.VerifyMerkleProof(
			n.Commitment, proof.Proof, proof.Root, c.merkleTreeDepth,
		) {
			return fmt.Errorf("%w: commitment %s", ErrInvalidMerkleProof, n.Commitment)
		}
		roots = append(roots, proof.Root)
	}

	return c.withLock(func() error {
		keys, err := c.privateKeys(in.account)
		if err != nil {
			return err
		}
		defer keys.Zero()

		nsk := domain.NullifierSecretKey(keys.NullifierSecretKey)
		defer nsk.Zero()

		in.nullifiers = make([]domain.NullifierWithRoot, 0, len(in.notes))
		for i, n := range in.notes {
			in.nullifiers = append(in.nullifiers, domain.NullifierWithRoot{
				Nullifier: domain.NewNullifier(n.Commitment, nsk),
				Root:      roots[i],
			})
		}
		return nil
	})
}

func (c *walletCore) newPrivacyPreservingTx(
	ctx context.Context,
	msg domain.PrivacyPreservingMessage,
	signers []*domain.Account,
) (*domain.Transaction, error) {
	proof, err := c.prover.Prove(ctx, &msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProofFailed, err)
	}

	sigs, err := c.sign(msg.Hash(), signers)
	if err != nil {
		return nil, err
	}

	tx := domain.NewPrivacyPreservingTransaction(&domain.PrivacyPreservingTransaction{
		Message:    msg,
		Proof:      proof,
		Signatures: sigs,
	})
	return &tx, nil
}

func (c *walletCore) sign(
	msgHash domain.Hash, signers []*domain.Account,
) ([]domain.Signature, error) {
	sigs := make([]domain.Signature, 0, len(signers))
	if len(signers) <= 0 {
		return sigs, nil
	}

	err := c.withLock(func() error {
		for _, account := range signers {
			prvkey, err := c.signingKey(account)
			if err != nil {
				return err
			}
			sig, err := domain.Sign(prvkey, msgHash)
			prvkey.Zero()
			if err != nil {
				return err
			}
			sigs = append(sigs, *sig)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sigs, nil
}

func (c *walletCore) submit(
	ctx context.Context, tx domain.Transaction,
) (*TransferResult, error) {
	res, err := c.sequencer.SubmitTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	if !res.Accepted {
		log.WithField("tx", res.TxHash.String()).Infof(
			"transaction rejected: %s", res.Reason,
		)
	} else {
		log.WithField("tx", res.TxHash.String()).Debug("transaction accepted")
	}
	return &TransferResult{
		TxHash:  res.TxHash,
		Success: res.Accepted,
		Reason:  res.Reason,
	}, nil
}

// applyPrivateEffects records the optimistic effects of an accepted
// transaction on the owned private accounts: spent inputs and pending
// outputs. Scanning the confirming block later finds them already known.
func (c *walletCore) applyPrivateEffects(
	ctx context.Context, in *privateInput, outputs []*privateOutput,
) error {
	return c.update(ctx, func(ctx context.Context) error {
		touched := make(map[domain.AccountId]*domain.Account)
		order := make([]domain.AccountId, 0)
		load := func(id domain.AccountId) (*domain.Account, error) {
			if a, ok := touched[id]; ok {
				return a, nil
			}
			a, err := c.repo.AccountRepository().GetAccount(ctx, id)
			if err != nil {
				return nil, err
			}
			touched[id] = a
			order = append(order, id)
			return a, nil
		}

		if in != nil {
			account, err := load(in.account.AccountId)
			if err != nil {
				return err
			}
			for _, n := range in.notes {
				if _, err := account.MarkSpent(n.Commitment, 0); err != nil {
					return err
				}
			}
		}
		for _, out := range outputs {
			if out.recipient.owner == nil {
				continue
			}
			account, err := load(*out.recipient.owner)
			if err != nil {
				return err
			}
			if _, err := account.AddNote(out.commitment, *out.note, false, 0); err != nil {
				return err
			}
		}

		for _, id := range order {
			updated := touched[id]
			if err := c.repo.AccountRepository().UpdateAccount(
				ctx, id, func(_ *domain.Account) (*domain.Account, error) {
					return updated, nil
				},
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func appendOutputs(
	msg *domain.PrivacyPreservingMessage, outputs []*privateOutput,
) {
	for _, out := range outputs {
		msg.NewCommitments = append(msg.NewCommitments, out.commitment)
		msg.EncryptedNotes = append(msg.EncryptedNotes, *out.encrypted)
	}
}

// networkBalanceChange returns the balance change crediting or debiting
// the public account by amount, based on its current network state.
func networkBalanceChange(
	state *ports.AccountState, id domain.AccountId, amount domain.Amount, debit bool,
) (*domain.PublicBalanceChange, error) {
	var post domain.Amount
	var err error
	if debit {
		if post, err = state.Balance.Sub(amount); err != nil {
			return nil, fmt.Errorf(
				"%w: balance of %s is %s, need %s",
				ErrInsufficientFunds, id, state.Balance, amount,
			)
		}
	} else {
		if post, err = state.Balance.Add(amount); err != nil {
			return nil, err
		}
	}
	return &domain.PublicBalanceChange{
		AccountId:   id,
		PreBalance:  state.Balance,
		PostBalance: post,
	}, nil
}
