package domain

import "errors"

var (
	// ErrInvalidAccountId is returned when a string is not the canonical
	// base58 encoding of a 32 bytes account id.
	ErrInvalidAccountId = errors.New("account id must be a base58 encoded 32 bytes array")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a positive decimal integer")
	// ErrAmountOverflow is returned when a sum does not fit 128 bits.
	ErrAmountOverflow = errors.New("amount overflows 128 bits")
	// ErrAmountUnderflow is returned when subtracting a larger amount.
	ErrAmountUnderflow = errors.New("amount underflows zero")

	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists ...
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrAccountNotPrivate ...
	ErrAccountNotPrivate = errors.New("account is not private")
	// ErrAccountNotPublic ...
	ErrAccountNotPublic = errors.New("account is not public")
	// ErrUnknownAccountKind ...
	ErrUnknownAccountKind = errors.New("unknown account kind")
	// ErrNoteNotFound ...
	ErrNoteNotFound = errors.New("note not found")
	// ErrInsufficientSpendableNotes is returned when the confirmed unspent notes
	// of an account do not cover the requested amount.
	ErrInsufficientSpendableNotes = errors.New("not enough confirmed funds to cover amount")

	// ErrWalletNotInitialized ...
	ErrWalletNotInitialized = errors.New("wallet is not initialized")
	// ErrWalletAlreadyInitialized ...
	ErrWalletAlreadyInitialized = errors.New("wallet is already initialized")
	// ErrInvalidPassphrase ...
	ErrInvalidPassphrase = errors.New("passphrase is not valid")
	// ErrNullMnemonicOrPassphrase ...
	ErrNullMnemonicOrPassphrase = errors.New("mnemonic and/or passphrase must not be null")

	// ErrInvalidMerkleDepth ...
	ErrInvalidMerkleDepth = errors.New("merkle tree depth must be in range [1, 63]")
	// ErrMerkleTreeFull ...
	ErrMerkleTreeFull = errors.New("merkle tree has no free leaves")
	// ErrLeafIndexOutOfRange ...
	ErrLeafIndexOutOfRange = errors.New("leaf index out of range")

	// ErrInvalidViewingPublicKey ...
	ErrInvalidViewingPublicKey = errors.New("viewing public key is not a valid curve point")
	// ErrInvalidNullifierPublicKey ...
	ErrInvalidNullifierPublicKey = errors.New("nullifier public key must be a 32 bytes array in hex format")
	// ErrNoteDecryption is returned when a note was not encrypted for the
	// given viewing key.
	ErrNoteDecryption = errors.New("note cannot be decrypted with viewing key")
	// ErrMalformedNote ...
	ErrMalformedNote = errors.New("note plaintext is malformed")
	// ErrInvalidSignature ...
	ErrInvalidSignature = errors.New("signature is not valid")

	// ErrMalformedTransaction ...
	ErrMalformedTransaction = errors.New("transaction is malformed")
	// ErrUnknownTransactionKind ...
	ErrUnknownTransactionKind = errors.New("unknown transaction kind")
	// ErrInvalidInstruction ...
	ErrInvalidInstruction = errors.New("instruction is malformed")
	// ErrInvalidPinataData ...
	ErrInvalidPinataData = errors.New("pinata data must be 33 bytes with difficulty at most 32")
)
