package domain

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const AccountIdSize = 32

var (
	publicAccountIdPrefix  = paddedTag("/LEE/v0.3/AccountId/Public/")
	privateAccountIdPrefix = paddedTag("/LEE/v0.3/AccountId/Private/")
)

// AccountId identifies an account on the network, public or private.
// Its text form is the base58 encoding of the 32 bytes.
type AccountId [AccountIdSize]byte

// NewPublicAccountId derives the id of a public account from its x-only
// signing public key.
func NewPublicAccountId(pubkey [32]byte) AccountId {
	return AccountId(sha256.Sum256(append(publicAccountIdPrefix[:], pubkey[:]...)))
}

// NewPrivateAccountId derives the id of a private account from its
// nullifier public key.
func NewPrivateAccountId(npk NullifierPublicKey) AccountId {
	return AccountId(sha256.Sum256(append(privateAccountIdPrefix[:], npk[:]...)))
}

// ParseAccountId decodes the canonical base58 form of an account id.
// Strings with invalid characters, decoding to other than 32 bytes or not
// re-encoding to themselves are rejected.
func ParseAccountId(s string) (AccountId, error) {
	if len(s) <= 0 {
		return AccountId{}, ErrInvalidAccountId
	}
	buf := base58.Decode(s)
	if len(buf) != AccountIdSize {
		return AccountId{}, ErrInvalidAccountId
	}
	var id AccountId
	copy(id[:], buf)
	if id.String() != s {
		return AccountId{}, ErrInvalidAccountId
	}
	return id, nil
}

func (id AccountId) String() string {
	return base58.Encode(id[:])
}

func (id AccountId) IsZero() bool {
	return id == AccountId{}
}

func (id AccountId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AccountId) UnmarshalText(text []byte) error {
	v, err := ParseAccountId(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func paddedTag(tag string) [32]byte {
	var b [32]byte
	copy(b[:], tag)
	return b
}
