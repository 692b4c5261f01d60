package ports

import (
	"context"
	"errors"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
)

var (
	// ErrNetwork wraps every transport failure of a SequencerClient.
	ErrNetwork = errors.New("sequencer unreachable")
	// ErrRemoteAccountNotFound is returned when the network has no state for
	// an account id.
	ErrRemoteAccountNotFound = errors.New("account not found on the network")
	// ErrCommitmentNotFound is returned when no membership proof exists for
	// a commitment.
	ErrCommitmentNotFound = errors.New("commitment not found on the network")
	// ErrBlockNotFound ...
	ErrBlockNotFound = errors.New("block not found")
)

// AccountState is the network view of a public account.
type AccountState struct {
	ProgramOwner domain.ProgramId
	Balance      domain.Amount
	Nonce        domain.Amount
	Data         []byte
}

// SubmitResult is the outcome of a submission. A rejected transaction is
// not an error: Accepted is false and Reason tells why.
type SubmitResult struct {
	TxHash   domain.Hash
	Accepted bool
	Reason   string
}

// SequencerClient is the wallet's only window on the network.
type SequencerClient interface {
	SubmitTransaction(ctx context.Context, tx domain.Transaction) (*SubmitResult, error)
	GetBlock(ctx context.Context, blockId uint64) (*domain.Block, error)
	GetLastBlockId(ctx context.Context) (uint64, error)
	GetAccount(ctx context.Context, id domain.AccountId) (*AccountState, error)
	GetProofForCommitment(
		ctx context.Context, commitment domain.Commitment,
	) (*domain.MembershipProof, error)
	Close()
}
