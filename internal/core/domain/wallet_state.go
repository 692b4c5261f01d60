package domain

import (
	"bytes"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
)

// WalletState is the singleton record of the wallet: the encrypted
// mnemonic, derivation counters and the sync cursor.
type WalletState struct {
	EncryptedMnemonic []byte
	PassphraseHash    []byte
	NextPublicIndex   uint32
	NextPrivateIndex  uint32
	NextSequence      uint64
	LastSyncedBlock   uint64
	LastSyncedHash    Hash
}

// NewWalletState encrypts the provided mnemonic with the passhrase and
// returns a new state with zeroed counters and cursor.
func NewWalletState(mnemonic []string, passphrase string) (*WalletState, error) {
	if len(mnemonic) <= 0 || len(passphrase) <= 0 {
		return nil, ErrNullMnemonicOrPassphrase
	}
	if _, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	}); err != nil {
		return nil, err
	}

	encryptedMnemonic, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  []byte(strings.Join(mnemonic, " ")),
		Passphrase: passphrase,
	})
	if err != nil {
		return nil, err
	}

	return &WalletState{
		EncryptedMnemonic: encryptedMnemonic,
		PassphraseHash:    btcutil.Hash160([]byte(passphrase)),
	}, nil
}

// IsInitialized ...
func (s *WalletState) IsInitialized() bool {
	return len(s.EncryptedMnemonic) > 0
}

// Mnemonic decrypts the stored mnemonic.
func (s *WalletState) Mnemonic(passphrase string) ([]string, error) {
	if !s.isValidPassphrase(passphrase) {
		return nil, ErrInvalidPassphrase
	}
	plaintext, err := wallet.Decrypt(wallet.DecryptOpts{
		CypherText: s.EncryptedMnemonic,
		Passphrase: passphrase,
	})
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(plaintext)), nil
}

// ChangePassphrase re-encrypts the mnemonic under a new passphrase.
func (s *WalletState) ChangePassphrase(currentPassphrase, newPassphrase string) error {
	if len(newPassphrase) <= 0 {
		return ErrNullMnemonicOrPassphrase
	}
	mnemonic, err := s.Mnemonic(currentPassphrase)
	if err != nil {
		return err
	}

	encryptedMnemonic, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  []byte(strings.Join(mnemonic, " ")),
		Passphrase: newPassphrase,
	})
	if err != nil {
		return err
	}

	s.EncryptedMnemonic = encryptedMnemonic
	s.PassphraseHash = btcutil.Hash160([]byte(newPassphrase))
	return nil
}

// NextIndex reserves the next derivation index for the given kind together
// with the next creation sequence number.
func (s *WalletState) NextIndex(kind AccountKind) (uint32, uint64, error) {
	var index uint32
	switch kind {
	case AccountKindPublic:
		index = s.NextPublicIndex
		s.NextPublicIndex++
	case AccountKindPrivate:
		index = s.NextPrivateIndex
		s.NextPrivateIndex++
	default:
		return 0, 0, ErrUnknownAccountKind
	}
	seq := s.NextSequence
	s.NextSequence++
	return index, seq, nil
}

// AdvanceCursor moves the sync cursor forward. Lower or equal block ids are
// ignored so the cursor never goes backwards.
func (s *WalletState) AdvanceCursor(blockId uint64, blockHash Hash) bool {
	if blockId <= s.LastSyncedBlock {
		return false
	}
	s.LastSyncedBlock = blockId
	s.LastSyncedHash = blockHash
	return true
}

func (s *WalletState) isValidPassphrase(passphrase string) bool {
	return bytes.Equal(s.PassphraseHash, btcutil.Hash160([]byte(passphrase)))
}
