package wallet

import (
	"errors"
	"strings"
)

var (
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic must not be null")
	// ErrNullSeed ...
	ErrNullSeed = errors.New("seed must not be null")
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")

	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher is too short or malformed")
	// ErrInvalidPassphrase ...
	ErrInvalidPassphrase = errors.New("passphrase is not valid")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
	// ErrInvalidViewingKey is returned in the negligible case the viewing
	// secret derived for an index is not a valid curve scalar.
	ErrInvalidViewingKey = errors.New("derived viewing key is not a valid scalar")
)

// Wallet holds the mnemonic and the seed derived from it. It is the only
// type that ever sees the seed: every key of the wallet, public or private,
// is derived from here on demand.
type Wallet struct {
	mnemonic []string
	seed     []byte
}

// NewWalletOpts is the struct given to the NewWallet method
type NewWalletOpts struct {
	EntropySize int
}

func (o NewWalletOpts) validate() error {
	return NewMnemonicOpts{EntropySize: o.EntropySize}.validate()
}

// NewWallet creates a new wallet with a freshly generated mnemonic
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	mnemonic, err := NewMnemonic(NewMnemonicOpts{EntropySize: opts.EntropySize})
	if err != nil {
		return nil, err
	}
	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{Mnemonic: mnemonic})
}

// NewWalletFromMnemonicOpts is the struct given to the NewWalletFromMnemonic
// method
type NewWalletFromMnemonicOpts struct {
	Mnemonic   []string
	Passphrase string
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if !isMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	return nil
}

// NewWalletFromMnemonic restores a wallet from the given mnemonic and optional
// bip39 passphrase
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	mnemonic := make([]string, len(opts.Mnemonic))
	copy(mnemonic, opts.Mnemonic)

	return &Wallet{
		mnemonic: mnemonic,
		seed:     generateSeedFromMnemonic(mnemonic, opts.Passphrase),
	}, nil
}

// NewWalletFromSeed returns a wallet without mnemonic, able only to derive
// keys
func NewWalletFromSeed(seed []byte) (*Wallet, error) {
	if len(seed) <= 0 {
		return nil, ErrNullSeed
	}
	s := make([]byte, len(seed))
	copy(s, seed)
	return &Wallet{seed: s}, nil
}

// Mnemonic returns the wallet's mnemonic
func (w *Wallet) Mnemonic() ([]string, error) {
	if len(w.mnemonic) <= 0 {
		return nil, ErrNullMnemonic
	}
	mnemonic := make([]string, len(w.mnemonic))
	copy(mnemonic, w.mnemonic)
	return mnemonic, nil
}

// MnemonicString returns the mnemonic as a space separated sentence.
func (w *Wallet) MnemonicString() (string, error) {
	mnemonic, err := w.Mnemonic()
	if err != nil {
		return "", err
	}
	return strings.Join(mnemonic, " "), nil
}

// Zero wipes the seed and the mnemonic. The wallet is unusable afterwards.
func (w *Wallet) Zero() {
	zero(w.seed)
	w.seed = nil
	for i := range w.mnemonic {
		w.mnemonic[i] = ""
	}
	w.mnemonic = nil
}

func (w *Wallet) validSeed() error {
	if len(w.seed) <= 0 {
		return ErrNullSeed
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
