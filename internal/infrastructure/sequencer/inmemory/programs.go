package memsequencer

import (
	"context"
	"errors"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
)

var (
	errInvalidSignature     = errors.New("invalid signature")
	errSignerMismatch       = errors.New("signature does not belong to account")
	errMissingSignature     = errors.New("debited accounts must sign")
	errInvalidNonce         = errors.New("nonce mismatch")
	errInsufficientBalance  = errors.New("insufficient balance")
	errUnknownProgram       = errors.New("unknown program")
	errAlreadyInitialized   = errors.New("account already initialized")
	errInvalidAccounts      = errors.New("invalid accounts for program")
	errInvalidSolution      = errors.New("invalid pinata solution")
	errInvalidProof         = errors.New("invalid proof")
	errNullifierRevealed    = errors.New("nullifier already revealed")
	errUnknownRoot          = errors.New("unknown commitment tree root")
	errDuplicateCommitment  = errors.New("commitment already exists")
	errStalePreBalance      = errors.New("public pre balance does not match ledger")
	errCommitmentTreeIsFull = errors.New("commitment tree is full")
)

func (l *Ledger) execute(ctx context.Context, tx domain.Transaction) error {
	if tx.Kind == domain.TxKindPublic {
		return l.executePublic(tx.Public)
	}
	return l.executePrivacyPreserving(ctx, tx.Privacy)
}

func (l *Ledger) executePublic(tx *domain.PublicTransaction) error {
	msg := tx.Message
	if len(tx.Signatures) > len(msg.AccountIds) {
		return errInvalidAccounts
	}
	signers := msg.AccountIds[:len(tx.Signatures)]
	if err := l.checkSignatures(
		msg.Hash(), tx.Signatures, signers, msg.Nonces,
	); err != nil {
		return err
	}

	switch msg.ProgramId {
	case domain.NativeTokenProgramId:
		if domain.IsInitializeInstruction(msg.Instruction) {
			return l.initialize(msg.AccountIds, signers)
		}
		return l.transfer(msg.AccountIds, signers, msg.Instruction)
	case domain.PinataProgramId:
		return l.claimPublic(msg.AccountIds, msg.Instruction)
	default:
		return errUnknownProgram
	}
}

func (l *Ledger) initialize(ids, signers []domain.AccountId) error {
	if len(ids) != 1 || len(signers) != 1 {
		return errInvalidAccounts
	}
	if _, ok := l.accounts[ids[0]]; ok {
		return errAlreadyInitialized
	}
	l.accounts[ids[0]] = l.accountOrNew(ids[0])
	return l.bumpNonces(signers)
}

func (l *Ledger) transfer(ids, signers []domain.AccountId, instruction []byte) error {
	amount, err := domain.ParseTransferInstruction(instruction)
	if err != nil {
		return err
	}
	if len(ids) != 2 || len(signers) != 1 || ids[0] == ids[1] {
		return errInvalidAccounts
	}

	from, to := l.accountOrNew(ids[0]), l.accountOrNew(ids[1])
	if from.ProgramOwner != domain.NativeTokenProgramId ||
		to.ProgramOwner != domain.NativeTokenProgramId {
		return errInvalidAccounts
	}
	fromBalance, err := from.Balance.Sub(amount)
	if err != nil {
		return errInsufficientBalance
	}
	toBalance, err := to.Balance.Add(amount)
	if err != nil {
		return err
	}

	from.Balance, to.Balance = fromBalance, toBalance
	l.accounts[ids[0]], l.accounts[ids[1]] = from, to
	return l.bumpNonces(signers)
}

func (l *Ledger) claimPublic(ids []domain.AccountId, instruction []byte) error {
	if len(ids) != 2 || ids[0] == ids[1] {
		return errInvalidAccounts
	}
	pinata, next, err := l.checkPinataClaim(ids[0], instruction)
	if err != nil {
		return err
	}
	winner := l.accountOrNew(ids[1])
	if winner.ProgramOwner != domain.NativeTokenProgramId {
		return errInvalidAccounts
	}

	prize := domain.NewAmount(domain.PinataPrize)
	pinataBalance, err := pinata.Balance.Sub(prize)
	if err != nil {
		return errInsufficientBalance
	}
	winnerBalance, err := winner.Balance.Add(prize)
	if err != nil {
		return err
	}

	pinata.Balance, pinata.Data = pinataBalance, next.Bytes()
	winner.Balance = winnerBalance
	l.accounts[ids[1]] = winner
	return nil
}

func (l *Ledger) checkPinataClaim(
	id domain.AccountId, instruction []byte,
) (*ports.AccountState, *domain.PinataChallenge, error) {
	pinata, ok := l.accounts[id]
	if !ok || pinata.ProgramOwner != domain.PinataProgramId {
		return nil, nil, errInvalidAccounts
	}
	challenge, err := domain.ParsePinataChallenge(pinata.Data)
	if err != nil {
		return nil, nil, err
	}
	solution, err := domain.ParsePinataInstruction(instruction)
	if err != nil {
		return nil, nil, err
	}
	if !challenge.IsSolution(solution) {
		return nil, nil, errInvalidSolution
	}
	next := challenge.Next()
	return pinata, &next, nil
}

func (l *Ledger) executePrivacyPreserving(
	ctx context.Context, tx *domain.PrivacyPreservingTransaction,
) error {
	msg := &tx.Message
	if err := l.prover.Verify(ctx, msg, tx.Proof); err != nil {
		return errInvalidProof
	}

	revealed := make(map[domain.Nullifier]struct{})
	for _, n := range msg.NewNullifiers {
		if _, ok := l.nullifiers[n.Nullifier]; ok {
			return errNullifierRevealed
		}
		if _, ok := revealed[n.Nullifier]; ok {
			return errNullifierRevealed
		}
		if _, ok := l.roots[n.Root]; !ok {
			return errUnknownRoot
		}
		revealed[n.Nullifier] = struct{}{}
	}

	created := make(map[domain.Commitment]struct{})
	for _, c := range msg.NewCommitments {
		if _, ok := l.commitments[c]; ok {
			return errDuplicateCommitment
		}
		if _, ok := created[c]; ok {
			return errDuplicateCommitment
		}
		created[c] = struct{}{}
	}
	capacity := uint64(1)<<l.tree.Depth() - l.tree.Size()
	if uint64(len(msg.NewCommitments)) > capacity {
		return errCommitmentTreeIsFull
	}

	changed := make(map[domain.AccountId]struct{})
	debited := make([]domain.AccountId, 0)
	for _, c := range msg.PublicChanges {
		if _, ok := changed[c.AccountId]; ok {
			return errInvalidAccounts
		}
		changed[c.AccountId] = struct{}{}
		if l.balanceOf(c.AccountId).Cmp(c.PreBalance) != 0 {
			return errStalePreBalance
		}
		owner := l.accountOrNew(c.AccountId).ProgramOwner
		if c.IsDebit() && owner != domain.PinataProgramId {
			debited = append(debited, c.AccountId)
		}
	}
	if len(debited) != len(tx.Signatures) {
		return errMissingSignature
	}
	if err := l.checkSignatures(
		msg.Hash(), tx.Signatures, debited, msg.PublicNonces,
	); err != nil {
		return err
	}

	var nextPinata *domain.PinataChallenge
	switch msg.ProgramId {
	case domain.NativeTokenProgramId:
	case domain.PinataProgramId:
		if len(msg.PublicChanges) != 1 {
			return errInvalidAccounts
		}
		change := msg.PublicChanges[0]
		_, next, err := l.checkPinataClaim(change.AccountId, msg.Instruction)
		if err != nil {
			return err
		}
		expected, err := change.PreBalance.Sub(domain.NewAmount(domain.PinataPrize))
		if err != nil {
			return errInsufficientBalance
		}
		if expected.Cmp(change.PostBalance) != 0 {
			return errInvalidAccounts
		}
		nextPinata = next
	default:
		return errUnknownProgram
	}

	for _, c := range msg.PublicChanges {
		account := l.accountOrNew(c.AccountId)
		account.Balance = c.PostBalance
		if nextPinata != nil && account.ProgramOwner == domain.PinataProgramId {
			account.Data = nextPinata.Bytes()
		}
		l.accounts[c.AccountId] = account
	}
	if err := l.bumpNonces(debited); err != nil {
		return err
	}
	for n := range revealed {
		l.nullifiers[n] = struct{}{}
	}
	for _, c := range msg.NewCommitments {
		index, err := l.tree.Append(c)
		if err != nil {
			return err
		}
		l.commitments[c] = index
	}
	l.roots[l.tree.Root()] = struct{}{}
	return nil
}

func (l *Ledger) checkSignatures(
	msgHash domain.Hash,
	sigs []domain.Signature,
	signers []domain.AccountId,
	nonces []domain.Amount,
) error {
	if len(sigs) != len(signers) || len(sigs) != len(nonces) {
		return errMissingSignature
	}
	for i, sig := range sigs {
		if err := sig.Verify(msgHash); err != nil {
			return errInvalidSignature
		}
		if sig.Signer() != signers[i] {
			return errSignerMismatch
		}
		if l.nonceOf(signers[i]).Cmp(nonces[i]) != 0 {
			return errInvalidNonce
		}
	}
	return nil
}

func (l *Ledger) bumpNonces(ids []domain.AccountId) error {
	for _, id := range ids {
		account := l.accountOrNew(id)
		nonce, err := account.Nonce.Add(domain.NewAmount(1))
		if err != nil {
			return err
		}
		account.Nonce = nonce
		l.accounts[id] = account
	}
	return nil
}
