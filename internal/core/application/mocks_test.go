package application_test

import (
	"context"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockSequencer struct {
	mock.Mock
}

func (m *mockSequencer) SubmitTransaction(
	ctx context.Context, tx domain.Transaction,
) (*ports.SubmitResult, error) {
	args := m.Called(ctx, tx)

	var res *ports.SubmitResult
	if a := args.Get(0); a != nil {
		res = a.(*ports.SubmitResult)
	}
	return res, args.Error(1)
}

func (m *mockSequencer) GetBlock(
	ctx context.Context, blockId uint64,
) (*domain.Block, error) {
	args := m.Called(ctx, blockId)

	var res *domain.Block
	if a := args.Get(0); a != nil {
		res = a.(*domain.Block)
	}
	return res, args.Error(1)
}

func (m *mockSequencer) GetLastBlockId(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockSequencer) GetAccount(
	ctx context.Context, id domain.AccountId,
) (*ports.AccountState, error) {
	args := m.Called(ctx, id)

	var res *ports.AccountState
	if a := args.Get(0); a != nil {
		res = a.(*ports.AccountState)
	}
	return res, args.Error(1)
}

func (m *mockSequencer) GetProofForCommitment(
	ctx context.Context, commitment domain.Commitment,
) (*domain.MembershipProof, error) {
	args := m.Called(ctx, commitment)

	var res *domain.MembershipProof
	if a := args.Get(0); a != nil {
		res = a.(*domain.MembershipProof)
	}
	return res, args.Error(1)
}

func (m *mockSequencer) Close() {}
