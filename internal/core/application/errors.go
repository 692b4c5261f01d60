package application

import (
	"errors"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
)

var (
	// ErrWalletClosed is returned by every operation of a closed wallet.
	ErrWalletClosed = errors.New("wallet is closed")
	// ErrWalletLocked is returned when secret key material is needed but the
	// wallet seed is not available.
	ErrWalletLocked = errors.New("wallet is locked")
	// ErrKeyNotFound is returned when the wallet does not hold the key
	// material needed by an operation.
	ErrKeyNotFound = errors.New("key material not found")
	// ErrInsufficientFunds ...
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrZeroAmount ...
	ErrZeroAmount = errors.New("amount must be greater than zero")
	// ErrSameAccount ...
	ErrSameAccount = errors.New("sender and recipient must be different accounts")
	// ErrNullRecipient ...
	ErrNullRecipient = errors.New("recipient must be either an account id or its keys")
	// ErrAccountAlreadyRegistered ...
	ErrAccountAlreadyRegistered = errors.New("account already registered")
	// ErrAccountNotInitialized is returned when a private account holds no
	// note to prove its initialization.
	ErrAccountNotInitialized = errors.New("private account not initialized")
	// ErrNotAPinata ...
	ErrNotAPinata = errors.New("account is not a pinata")
	// ErrInvalidPinataSolution ...
	ErrInvalidPinataSolution = errors.New("solution does not solve the pinata challenge")
	// ErrInvalidMerkleProof is returned when the membership proof of an owned
	// commitment does not verify against the given root.
	ErrInvalidMerkleProof = errors.New("invalid merkle proof")
	// ErrProofFailed is returned when the prover fails to prove a
	// transaction.
	ErrProofFailed = errors.New("failed to prove transaction")
	// ErrSyncFailed wraps every scan specific failure.
	ErrSyncFailed = errors.New("sync failed")
	// ErrChainMismatch is returned when a block does not extend the last
	// synced one.
	ErrChainMismatch = errors.New("block does not extend the synced chain")
	// ErrTargetBeyondTip is returned when asked to sync past the last block
	// produced by the network.
	ErrTargetBeyondTip = errors.New("target block is beyond the chain tip")
	// ErrInvalidBlockBatchSize ...
	ErrInvalidBlockBatchSize = errors.New("block batch size must be greater than zero")
	// ErrNullSequencer ...
	ErrNullSequencer = errors.New("sequencer client must not be null")
	// ErrNullProver ...
	ErrNullProver = errors.New("prover must not be null")
	// ErrUnknownDBType ...
	ErrUnknownDBType = errors.New("unknown db type")
)

// Kind classifies errors by the recovery strategy they call for.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindKeyNotFound
	KindInsufficientFunds
	KindNetwork
	KindStorage
	KindSync
	KindCrypto
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindKeyNotFound:
		return "key not found"
	case KindInsufficientFunds:
		return "insufficient funds"
	case KindNetwork:
		return "network"
	case KindStorage:
		return "storage"
	case KindSync:
		return "sync"
	case KindCrypto:
		return "crypto"
	default:
		return "internal"
	}
}

var errorKinds = []struct {
	kind Kind
	errs []error
}{
	{KindNetwork, []error{ports.ErrNetwork}},
	{KindSync, []error{ErrSyncFailed, ErrChainMismatch}},
	{KindStorage, []error{ports.ErrStorage}},
	{KindInsufficientFunds, []error{
		ErrInsufficientFunds, domain.ErrInsufficientSpendableNotes,
	}},
	{KindKeyNotFound, []error{ErrKeyNotFound}},
	{KindNotFound, []error{
		domain.ErrAccountNotFound, domain.ErrNoteNotFound,
		domain.ErrWalletNotInitialized, ports.ErrRemoteAccountNotFound,
		ports.ErrCommitmentNotFound, ports.ErrBlockNotFound,
	}},
	{KindCrypto, []error{
		ErrWalletLocked, ErrInvalidMerkleProof, ErrProofFailed,
		domain.ErrNoteDecryption, domain.ErrInvalidSignature,
		wallet.ErrNullSeed, wallet.ErrInvalidViewingKey,
		wallet.ErrInvalidCypherText,
	}},
	{KindInvalidInput, []error{
		ErrZeroAmount, ErrSameAccount, ErrNullRecipient,
		ErrAccountAlreadyRegistered, ErrAccountNotInitialized,
		ErrNotAPinata, ErrInvalidPinataSolution, ErrTargetBeyondTip,
		ErrInvalidBlockBatchSize,
		domain.ErrInvalidAccountId, domain.ErrInvalidAmount,
		domain.ErrAmountOverflow, domain.ErrAmountUnderflow,
		domain.ErrAccountAlreadyExists, domain.ErrAccountNotPrivate,
		domain.ErrAccountNotPublic, domain.ErrUnknownAccountKind,
		domain.ErrWalletAlreadyInitialized, domain.ErrInvalidPassphrase,
		domain.ErrNullMnemonicOrPassphrase, domain.ErrInvalidViewingPublicKey,
		domain.ErrInvalidNullifierPublicKey, domain.ErrMalformedTransaction,
		domain.ErrInvalidInstruction, domain.ErrInvalidPinataData,
		wallet.ErrInvalidMnemonic, wallet.ErrNullMnemonic,
		wallet.ErrInvalidPassphrase, wallet.ErrNullPassphrase,
	}},
}

// ErrorKind maps err, possibly wrapped, to its kind. Errors not produced by
// the wallet core are KindInternal.
func ErrorKind(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range errorKinds {
		for _, e := range k.errs {
			if errors.Is(err, e) {
				return k.kind
			}
		}
	}
	return KindInternal
}
