package application

import (
	"context"
	"fmt"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
)

// PinataService claims the prize of pinata accounts. A pinata holds a hash
// challenge: whoever submits a solution first wins domain.PinataPrize and
// the challenge moves on.
type PinataService interface {
	// Claim pays the prize to a public account.
	Claim(
		ctx context.Context, pinata, winner domain.AccountId, solution uint64,
	) (*TransferResult, error)
	// ClaimPrivateInitialized pays the prize to an owned private account
	// that already holds a note on the network, proving its membership.
	ClaimPrivateInitialized(
		ctx context.Context, pinata, winner domain.AccountId, solution uint64,
	) (*TransferResult, error)
	// ClaimPrivateUninitialized pays the prize to an owned private account
	// never seen by the network, initializing it.
	ClaimPrivateUninitialized(
		ctx context.Context, pinata, winner domain.AccountId, solution uint64,
	) (*TransferResult, error)
	// Solve searches the solution of the current challenge of the pinata.
	Solve(ctx context.Context, pinata domain.AccountId) (uint64, error)
}

type pinataService struct {
	core *walletCore
}

func newPinataService(core *walletCore) PinataService {
	return &pinataService{core}
}

func (s *pinataService) Claim(
	ctx context.Context, pinata, winner domain.AccountId, solution uint64,
) (*TransferResult, error) {
	if pinata == winner {
		return nil, ErrSameAccount
	}
	if err := s.core.withLock(func() error {
		_, err := s.core.getAccount(ctx, winner, domain.AccountKindPublic)
		return err
	}); err != nil {
		return nil, err
	}

	if _, err := s.checkSolution(ctx, pinata, solution); err != nil {
		return nil, err
	}

	tx := domain.NewPublicTransaction(&domain.PublicTransaction{
		Message: domain.PublicMessage{
			ProgramId:   domain.PinataProgramId,
			AccountIds:  []domain.AccountId{pinata, winner},
			Instruction: domain.PinataInstruction(solution),
		},
	})
	return s.core.submit(ctx, tx)
}

func (s *pinataService) ClaimPrivateInitialized(
	ctx context.Context, pinata, winner domain.AccountId, solution uint64,
) (*TransferResult, error) {
	var in *privateInput
	if err := s.core.withLock(func() error {
		if err := s.core.requireUnlocked(); err != nil {
			return err
		}
		account, err := s.core.getAccount(ctx, winner, domain.AccountKindPrivate)
		if err != nil {
			return err
		}
		notes := account.SpendableNotes(s.core.isReserved)
		if len(notes) <= 0 {
			return fmt.Errorf("%w: %s holds no confirmed note", ErrAccountNotInitialized, winner)
		}
		// The largest note proves the initialization and is merged with the
		// prize.
		in = &privateInput{
			account: account,
			notes:   notes[:1],
			total:   notes[0].Note.Balance,
		}
		s.core.reserve(in.notes)
		return nil
	}); err != nil {
		return nil, err
	}
	defer s.core.release(in.notes)

	state, err := s.checkSolution(ctx, pinata, solution)
	if err != nil {
		return nil, err
	}
	if err := s.core.proveInputs(ctx, in); err != nil {
		return nil, err
	}

	prize := domain.NewAmount(domain.PinataPrize)
	balance, err := in.total.Add(prize)
	if err != nil {
		return nil, err
	}
	output, err := newPrivateOutput(ownRecipient(in.account), balance)
	if err != nil {
		return nil, err
	}

	msg, err := pinataMessage(pinata, state, solution)
	if err != nil {
		return nil, err
	}
	msg.NewNullifiers = in.nullifiers
	appendOutputs(msg, []*privateOutput{output})

	return s.submitClaim(ctx, *msg, in, output)
}

func (s *pinataService) ClaimPrivateUninitialized(
	ctx context.Context, pinata, winner domain.AccountId, solution uint64,
) (*TransferResult, error) {
	var account *domain.Account
	if err := s.core.withLock(func() (err error) {
		if account, err = s.core.getAccount(
			ctx, winner, domain.AccountKindPrivate,
		); err != nil {
			return
		}
		if account.Initialized {
			return fmt.Errorf("%w: %s", ErrAccountAlreadyRegistered, winner)
		}
		return
	}); err != nil {
		return nil, err
	}

	state, err := s.checkSolution(ctx, pinata, solution)
	if err != nil {
		return nil, err
	}

	output, err := newPrivateOutput(
		ownRecipient(account), domain.NewAmount(domain.PinataPrize),
	)
	if err != nil {
		return nil, err
	}
	msg, err := pinataMessage(pinata, state, solution)
	if err != nil {
		return nil, err
	}
	appendOutputs(msg, []*privateOutput{output})

	return s.submitClaim(ctx, *msg, nil, output)
}

func (s *pinataService) Solve(
	ctx context.Context, pinata domain.AccountId,
) (uint64, error) {
	if err := s.core.withLock(func() error { return nil }); err != nil {
		return 0, err
	}
	_, challenge, err := s.fetchChallenge(ctx, pinata)
	if err != nil {
		return 0, err
	}
	return challenge.Solve(), nil
}

func (s *pinataService) submitClaim(
	ctx context.Context,
	msg domain.PrivacyPreservingMessage,
	in *privateInput,
	output *privateOutput,
) (*TransferResult, error) {
	tx, err := s.core.newPrivacyPreservingTx(ctx, msg, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.core.submit(ctx, *tx)
	if err != nil || !res.Success {
		return res, err
	}
	if err := s.core.applyPrivateEffects(
		ctx, in, []*privateOutput{output},
	); err != nil {
		return res, fmt.Errorf("claim accepted but not recorded: %w", err)
	}
	return res, nil
}

func (s *pinataService) fetchChallenge(
	ctx context.Context, pinata domain.AccountId,
) (*ports.AccountState, *domain.PinataChallenge, error) {
	state, err := s.core.sequencer.GetAccount(ctx, pinata)
	if err != nil {
		return nil, nil, err
	}
	if state.ProgramOwner != domain.PinataProgramId {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotAPinata, pinata)
	}
	challenge, err := domain.ParsePinataChallenge(state.Data)
	if err != nil {
		return nil, nil, err
	}
	return state, challenge, nil
}

// checkSolution fetches the pinata challenge and validates the solution
// locally, so that a wrong one never reaches the network.
func (s *pinataService) checkSolution(
	ctx context.Context, pinata domain.AccountId, solution uint64,
) (*ports.AccountState, error) {
	state, challenge, err := s.fetchChallenge(ctx, pinata)
	if err != nil {
		return nil, err
	}
	if !challenge.IsSolution(solution) {
		return nil, fmt.Errorf(
			"%w: %d for pinata %s", ErrInvalidPinataSolution, solution, pinata,
		)
	}
	return state, nil
}

func pinataMessage(
	pinata domain.AccountId,
	state *ports.AccountState,
	solution uint64,
) (*domain.PrivacyPreservingMessage, error) {
	change, err := networkBalanceChange(
		state, pinata, domain.NewAmount(domain.PinataPrize), true,
	)
	if err != nil {
		return nil, err
	}
	return &domain.PrivacyPreservingMessage{
		ProgramId:     domain.PinataProgramId,
		PublicChanges: []domain.PublicBalanceChange{*change},
		Instruction:   domain.PinataInstruction(solution),
	}, nil
}
