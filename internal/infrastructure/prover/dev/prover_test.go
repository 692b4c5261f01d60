package devprover_test

import (
	"context"
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	devprover "github.com/nssa-network/nssa-wallet/internal/infrastructure/prover/dev"
	"github.com/stretchr/testify/require"
)

func TestProver(t *testing.T) {
	ctx := context.Background()
	p := devprover.NewProver()

	msg := &domain.PrivacyPreservingMessage{
		ProgramId:      domain.NativeTokenProgramId,
		NewCommitments: []domain.Commitment{{1}},
	}
	proof, err := p.Prove(ctx, msg)
	require.NoError(t, err)
	require.NoError(t, p.Verify(ctx, msg, proof))

	msg.NewCommitments[0] = domain.Commitment{2}
	require.ErrorIs(t, p.Verify(ctx, msg, proof), devprover.ErrInvalidProof)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Prove(cancelled, msg)
	require.ErrorIs(t, err, context.Canceled)
}
