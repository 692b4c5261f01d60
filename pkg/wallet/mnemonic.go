package wallet

import (
	"strings"

	"github.com/vulpemventures/go-bip39"
)

type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words. Entropy defaults to
// 256 bits, a 24 words sentence.
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 256
	}

	entropy, err := bip39.NewEntropy(opts.EntropySize)
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(mnemonic, " "), nil
}

// IsMnemonicValid returns whether the given sentence is a valid bip39
// mnemonic, checksum included.
func IsMnemonicValid(mnemonic string) bool {
	return isMnemonicValid(strings.Fields(mnemonic))
}

func isMnemonicValid(mnemonic []string) bool {
	m := strings.Join(mnemonic, " ")
	if !bip39.IsMnemonicValid(m) {
		return false
	}
	// IsMnemonicValid only looks up the words, the checksum is verified while
	// recovering the entropy.
	_, err := bip39.MnemonicToByteArray(m)
	return err == nil
}

func generateSeedFromMnemonic(mnemonic []string, passphrase string) []byte {
	m := strings.Join(mnemonic, " ")
	return bip39.NewSeed(m, passphrase)
}
