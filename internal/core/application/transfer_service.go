package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// TransferService builds, proves, signs and submits transfers. Every local
// check happens before the first network call, and the wallet state is
// only touched once the sequencer accepts the transaction.
type TransferService interface {
	// SendPublicTransfer moves funds between public accounts, from must be
	// owned.
	SendPublicTransfer(
		ctx context.Context, from, to domain.AccountId, amount domain.Amount,
	) (*TransferResult, error)
	// SendShieldedTransfer moves funds from an owned public account to a
	// private recipient.
	SendShieldedTransfer(
		ctx context.Context, from domain.AccountId, to PrivateRecipient, amount domain.Amount,
	) (*TransferResult, error)
	// SendDeshieldedTransfer moves funds from an owned private account to a
	// public account.
	SendDeshieldedTransfer(
		ctx context.Context, from, to domain.AccountId, amount domain.Amount,
	) (*TransferResult, error)
	// SendPrivateTransfer moves funds from an owned private account to a
	// private recipient.
	SendPrivateTransfer(
		ctx context.Context, from domain.AccountId, to PrivateRecipient, amount domain.Amount,
	) (*TransferResult, error)
	// RegisterAccount initializes an owned account on the network.
	RegisterAccount(ctx context.Context, id domain.AccountId) (*TransferResult, error)
}

type transferService struct {
	core     *walletCore
	accounts *accountService
}

func newTransferService(core *walletCore) TransferService {
	return &transferService{core, &accountService{core}}
}

func (s *transferService) SendPublicTransfer(
	ctx context.Context, from, to domain.AccountId, amount domain.Amount,
) (*TransferResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if from == to {
		return nil, ErrSameAccount
	}

	var sender *domain.Account
	if err := s.core.withLock(func() (err error) {
		if err = s.core.requireUnlocked(); err != nil {
			return
		}
		sender, err = s.core.getAccount(ctx, from, domain.AccountKindPublic)
		return
	}); err != nil {
		return nil, err
	}

	state, err := fetchAccountState(ctx, s.core.sequencer, from)
	if err != nil {
		return nil, err
	}
	change, err := networkBalanceChange(state, from, amount, true)
	if err != nil {
		return nil, err
	}

	msg := domain.PublicMessage{
		ProgramId:   domain.NativeTokenProgramId,
		AccountIds:  []domain.AccountId{from, to},
		Nonces:      []domain.Amount{state.Nonce},
		Instruction: domain.TransferInstruction(amount),
	}
	sigs, err := s.core.sign(msg.Hash(), []*domain.Account{sender})
	if err != nil {
		return nil, err
	}
	tx := domain.NewPublicTransaction(&domain.PublicTransaction{
		Message: msg, Signatures: sigs,
	})

	res, err := s.core.submit(ctx, tx)
	if err != nil || !res.Success {
		return res, err
	}

	s.cacheBalance(ctx, from, change.PostBalance)
	return res, nil
}

func (s *transferService) SendShieldedTransfer(
	ctx context.Context, from domain.AccountId, to PrivateRecipient, amount domain.Amount,
) (*TransferResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var sender *domain.Account
	var recipient *recipientKeys
	if err := s.core.withLock(func() (err error) {
		if err = s.core.requireUnlocked(); err != nil {
			return
		}
		if sender, err = s.core.getAccount(ctx, from, domain.AccountKindPublic); err != nil {
			return
		}
		recipient, err = s.core.resolveRecipient(ctx, to)
		return
	}); err != nil {
		return nil, err
	}

	state, err := fetchAccountState(ctx, s.core.sequencer, from)
	if err != nil {
		return nil, err
	}
	change, err := networkBalanceChange(state, from, amount, true)
	if err != nil {
		return nil, err
	}

	output, err := newPrivateOutput(*recipient, amount)
	if err != nil {
		return nil, err
	}
	msg := domain.PrivacyPreservingMessage{
		ProgramId:     domain.NativeTokenProgramId,
		PublicChanges: []domain.PublicBalanceChange{*change},
		PublicNonces:  []domain.Amount{state.Nonce},
		Instruction:   domain.TransferInstruction(amount),
	}
	appendOutputs(&msg, []*privateOutput{output})

	tx, err := s.core.newPrivacyPreservingTx(ctx, msg, []*domain.Account{sender})
	if err != nil {
		return nil, err
	}

	res, err := s.core.submit(ctx, *tx)
	if err != nil || !res.Success {
		return res, err
	}

	s.cacheBalance(ctx, from, change.PostBalance)
	if err := s.core.applyPrivateEffects(
		ctx, nil, []*privateOutput{output},
	); err != nil {
		log.WithError(err).Warn("failed to record pending note, it will be found by sync")
	}
	return res, nil
}

func (s *transferService) SendDeshieldedTransfer(
	ctx context.Context, from, to domain.AccountId, amount domain.Amount,
) (*TransferResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var in *privateInput
	if err := s.core.withLock(func() (err error) {
		in, err = s.core.selectInputs(ctx, from, amount)
		return
	}); err != nil {
		return nil, err
	}
	defer s.core.release(in.notes)

	if err := s.core.proveInputs(ctx, in); err != nil {
		return nil, err
	}

	state, err := fetchAccountState(ctx, s.core.sequencer, to)
	if err != nil {
		return nil, err
	}
	credit, err := networkBalanceChange(state, to, amount, false)
	if err != nil {
		return nil, err
	}

	outputs, err := changeOutputs(in, amount)
	if err != nil {
		return nil, err
	}
	msg := domain.PrivacyPreservingMessage{
		ProgramId:     domain.NativeTokenProgramId,
		PublicChanges: []domain.PublicBalanceChange{*credit},
		Instruction:   domain.TransferInstruction(amount),
		NewNullifiers: in.nullifiers,
	}
	appendOutputs(&msg, outputs)

	return s.submitPrivate(ctx, msg, in, outputs)
}

func (s *transferService) SendPrivateTransfer(
	ctx context.Context, from domain.AccountId, to PrivateRecipient, amount domain.Amount,
) (*TransferResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var in *privateInput
	var recipient *recipientKeys
	if err := s.core.withLock(func() (err error) {
		if recipient, err = s.core.resolveRecipient(ctx, to); err != nil {
			return
		}
		in, err = s.core.selectInputs(ctx, from, amount)
		return
	}); err != nil {
		return nil, err
	}
	defer s.core.release(in.notes)

	if err := s.core.proveInputs(ctx, in); err != nil {
		return nil, err
	}

	output, err := newPrivateOutput(*recipient, amount)
	if err != nil {
		return nil, err
	}
	changes, err := changeOutputs(in, amount)
	if err != nil {
		return nil, err
	}
	outputs := append([]*privateOutput{output}, changes...)

	msg := domain.PrivacyPreservingMessage{
		ProgramId:     domain.NativeTokenProgramId,
		Instruction:   domain.TransferInstruction(amount),
		NewNullifiers: in.nullifiers,
	}
	appendOutputs(&msg, outputs)

	return s.submitPrivate(ctx, msg, in, outputs)
}

func (s *transferService) RegisterAccount(
	ctx context.Context, id domain.AccountId,
) (*TransferResult, error) {
	var account *domain.Account
	if err := s.core.withLock(func() (err error) {
		if err = s.core.requireUnlocked(); err != nil {
			return
		}
		account, err = s.core.repo.AccountRepository().GetAccount(ctx, id)
		return
	}); err != nil {
		return nil, err
	}

	if account.IsPublic() {
		return s.registerPublic(ctx, account)
	}
	return s.registerPrivate(ctx, account)
}

func (s *transferService) registerPublic(
	ctx context.Context, account *domain.Account,
) (*TransferResult, error) {
	if _, err := s.core.sequencer.GetAccount(ctx, account.AccountId); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountAlreadyRegistered, account.AccountId)
	} else if !errors.Is(err, ports.ErrRemoteAccountNotFound) {
		return nil, err
	}

	msg := domain.PublicMessage{
		ProgramId:   domain.NativeTokenProgramId,
		AccountIds:  []domain.AccountId{account.AccountId},
		Nonces:      []domain.Amount{domain.NewAmount(0)},
		Instruction: domain.InitializeInstruction(),
	}
	sigs, err := s.core.sign(msg.Hash(), []*domain.Account{account})
	if err != nil {
		return nil, err
	}
	tx := domain.NewPublicTransaction(&domain.PublicTransaction{
		Message: msg, Signatures: sigs,
	})

	res, err := s.core.submit(ctx, tx)
	if err != nil || !res.Success {
		return res, err
	}

	if err := s.core.withLock(func() error {
		return s.core.repo.AccountRepository().UpdateAccount(
			ctx, account.AccountId, func(a *domain.Account) (*domain.Account, error) {
				a.Initialized = true
				return a, nil
			},
		)
	}); err != nil {
		log.WithError(err).Warnf("failed to flag %s as registered", account.AccountId)
	}
	return res, nil
}

func (s *transferService) registerPrivate(
	ctx context.Context, account *domain.Account,
) (*TransferResult, error) {
	if account.Initialized {
		return nil, fmt.Errorf("%w: %s", ErrAccountAlreadyRegistered, account.AccountId)
	}

	output, err := newPrivateOutput(ownRecipient(account), domain.Amount{})
	if err != nil {
		return nil, err
	}
	msg := domain.PrivacyPreservingMessage{
		ProgramId:   domain.NativeTokenProgramId,
		Instruction: domain.InitializeInstruction(),
	}
	appendOutputs(&msg, []*privateOutput{output})

	return s.submitPrivate(ctx, msg, nil, []*privateOutput{output})
}

// submitPrivate proves and submits a transaction with no public signer,
// then records its effects on the owned private accounts.
func (s *transferService) submitPrivate(
	ctx context.Context,
	msg domain.PrivacyPreservingMessage,
	in *privateInput,
	outputs []*privateOutput,
) (*TransferResult, error) {
	tx, err := s.core.newPrivacyPreservingTx(ctx, msg, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.core.submit(ctx, *tx)
	if err != nil || !res.Success {
		return res, err
	}

	if err := s.core.applyPrivateEffects(ctx, in, outputs); err != nil {
		log.WithError(err).Warn(
			"failed to record transaction effects, they will be found by sync",
		)
	}
	return res, nil
}

func (s *transferService) cacheBalance(
	ctx context.Context, id domain.AccountId, balance domain.Amount,
) {
	if err := s.accounts.UpdateBalance(ctx, id, balance); err != nil {
		log.WithError(err).Warnf("failed to cache balance of %s", id)
	}
}

// changeOutputs returns the note paying back to the sender what exceeds
// amount in the inputs, if anything.
func changeOutputs(in *privateInput, amount domain.Amount) ([]*privateOutput, error) {
	change, err := in.total.Sub(amount)
	if err != nil {
		return nil, err
	}
	if change.IsZero() {
		return nil, nil
	}
	output, err := newPrivateOutput(ownRecipient(in.account), change)
	if err != nil {
		return nil, err
	}
	return []*privateOutput{output}, nil
}
