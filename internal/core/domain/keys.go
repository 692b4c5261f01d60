package domain

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nssa-network/nssa-wallet/pkg/wallet"
)

// NullifierSecretKey is the secret a private account needs to spend its
// notes. It never leaves the wallet.
type NullifierSecretKey [32]byte

// NullifierPublicKey is published inside commitments and identifies the
// owner of a note.
type NullifierPublicKey [32]byte

// ViewingPublicKey is the compressed secp256k1 key senders encrypt notes to.
type ViewingPublicKey [33]byte

// PublicKey is the x-only secp256k1 key of a public account.
type PublicKey [32]byte

// PublicKey returns the nullifier public key bound to the secret.
func (nsk NullifierSecretKey) PublicKey() NullifierPublicKey {
	return NullifierPublicKey(wallet.NullifierPublicKey(nsk))
}

func (nsk *NullifierSecretKey) Zero() {
	for i := range nsk {
		nsk[i] = 0
	}
}

func (npk NullifierPublicKey) String() string {
	return hex.EncodeToString(npk[:])
}

// Parse returns the curve point, failing if the bytes are not a valid
// compressed point.
func (vpk ViewingPublicKey) Parse() (*btcec.PublicKey, error) {
	pk, err := btcec.ParsePubKey(vpk[:])
	if err != nil {
		return nil, ErrInvalidViewingPublicKey
	}
	return pk, nil
}

func (vpk ViewingPublicKey) String() string {
	return hex.EncodeToString(vpk[:])
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// ParseViewingPublicKey decodes the hex form of a viewing public key.
func ParseViewingPublicKey(s string) (ViewingPublicKey, error) {
	var vpk ViewingPublicKey
	buf, err := hex.DecodeString(s)
	if err != nil || len(buf) != len(vpk) {
		return vpk, ErrInvalidViewingPublicKey
	}
	copy(vpk[:], buf)
	if _, err := vpk.Parse(); err != nil {
		return ViewingPublicKey{}, err
	}
	return vpk, nil
}

// ParseNullifierPublicKey decodes the hex form of a nullifier public key.
func ParseNullifierPublicKey(s string) (NullifierPublicKey, error) {
	var npk NullifierPublicKey
	buf, err := hex.DecodeString(s)
	if err != nil || len(buf) != len(npk) {
		return npk, ErrInvalidNullifierPublicKey
	}
	copy(npk[:], buf)
	return npk, nil
}
