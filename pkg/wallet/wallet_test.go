package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func newTestWallet(t *testing.T) *Wallet {
	w, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: strings.Fields(testMnemonic),
	})
	require.NoError(t, err)
	return w
}

func TestNewWallet(t *testing.T) {
	w, err := NewWallet(NewWalletOpts{})
	require.NoError(t, err)

	mnemonic, err := w.Mnemonic()
	require.NoError(t, err)
	assert.Len(t, mnemonic, 24)
	assert.True(t, isMnemonicValid(mnemonic))

	other, err := NewWallet(NewWalletOpts{EntropySize: 128})
	require.NoError(t, err)
	otherMnemonic, err := other.Mnemonic()
	require.NoError(t, err)
	assert.Len(t, otherMnemonic, 12)
	assert.NotEqual(t, mnemonic, otherMnemonic)
}

func TestFailingNewMnemonic(t *testing.T) {
	tests := []int{-1, 127, 257, 130}
	for _, tt := range tests {
		_, err := NewMnemonic(NewMnemonicOpts{EntropySize: tt})
		assert.Equal(t, ErrInvalidEntropySize, err)
	}
}

func TestFailingNewWalletFromMnemonic(t *testing.T) {
	tests := []struct {
		mnemonic []string
		err      error
	}{
		{nil, ErrNullMnemonic},
		{strings.Fields("abandon abandon abandon"), ErrInvalidMnemonic},
		{strings.Fields(strings.Replace(testMnemonic, "about", "abandon", 1)), ErrInvalidMnemonic},
	}
	for _, tt := range tests {
		_, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{Mnemonic: tt.mnemonic})
		assert.Equal(t, tt.err, err)
	}
}

func TestPassphraseChangesSeed(t *testing.T) {
	a := newTestWallet(t)
	b, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic:   strings.Fields(testMnemonic),
		Passphrase: "password_b",
	})
	require.NoError(t, err)
	assert.NotEqual(t, a.seed, b.seed)

	c := newTestWallet(t)
	assert.Equal(t, a.seed, c.seed)
}

func TestZero(t *testing.T) {
	w := newTestWallet(t)
	w.Zero()

	_, err := w.Mnemonic()
	assert.Equal(t, ErrNullMnemonic, err)
	_, err = w.DerivePrivateKeys(DerivePrivateKeysOpts{})
	assert.Equal(t, ErrNullSeed, err)
	_, _, err = w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{})
	assert.Equal(t, ErrNullSeed, err)
}

func TestIsMnemonicValid(t *testing.T) {
	tests := []struct {
		mnemonic string
		valid    bool
	}{
		{testMnemonic, true},
		{"  " + testMnemonic + "\n", true},
		{strings.Replace(testMnemonic, "about", "abandon", 1), false},
		{strings.Replace(testMnemonic, "about", "notaword", 1), false},
		{"abandon abandon abandon", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsMnemonicValid(tt.mnemonic), tt.mnemonic)
	}
}
