package ports

import (
	"context"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
)

// Prover produces and checks the validity proof of a privacy preserving
// message. The proof system itself is opaque to the wallet.
type Prover interface {
	Prove(ctx context.Context, msg *domain.PrivacyPreservingMessage) ([]byte, error)
	Verify(ctx context.Context, msg *domain.PrivacyPreservingMessage, proof []byte) error
}
