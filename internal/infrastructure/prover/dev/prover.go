// Package devprover is a stand-in prover for development networks: the
// proof is a keyed digest of the message, it proves nothing beyond integrity.
package devprover

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
)

var proofTag = []byte("LEE/dev-proof")

// ErrInvalidProof ...
var ErrInvalidProof = errors.New("proof does not match message")

type prover struct{}

// NewProver ...
func NewProver() ports.Prover {
	return prover{}
}

func (prover) Prove(
	ctx context.Context, msg *domain.PrivacyPreservingMessage,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return digest(msg), nil
}

func (prover) Verify(
	_ context.Context, msg *domain.PrivacyPreservingMessage, proof []byte,
) error {
	if subtle.ConstantTimeCompare(digest(msg), proof) != 1 {
		return ErrInvalidProof
	}
	return nil
}

func digest(msg *domain.PrivacyPreservingMessage) []byte {
	h := msg.Hash()
	sum := sha256.Sum256(append(append([]byte{}, proofTag...), h[:]...))
	return sum[:]
}
