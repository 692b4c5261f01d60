package wallet

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	spendingKeyTag    = "NSSA_seed"
	spendingKeyRounds = 2048

	privateKeysPrefix = "LEE/keys"
	nullifierKeyTag   = 1
	viewingKeyTag     = 2

	nullifierPublicKeyPrefix = "NSSA_keys"
	nullifierPublicKeyTag    = 7
)

// DeriveSigningKeyPairOpts is the struct given to DeriveSigningKeyPair method
type DeriveSigningKeyPairOpts struct {
	Index uint32
}

// DeriveSigningKeyPair derives the secp256k1 key pair of the public account
// at the given index, following path m/44'/1337'/0'/0/index.
func (w *Wallet) DeriveSigningKeyPair(
	opts DeriveSigningKeyPairOpts,
) (*btcec.PrivateKey, *btcec.PublicKey, error) {
	if err := w.validSeed(); err != nil {
		return nil, nil, err
	}

	hdNode, err := hdkeychain.NewMaster(w.seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, nil, err
	}
	for _, step := range PublicAccountPath(opts.Index) {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, nil, err
		}
	}

	prvkey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, nil, err
	}
	return prvkey, prvkey.PubKey(), nil
}

// PrivateKeys is the key bundle of a private account. The spending key is
// shared by all private accounts of the wallet, the nullifier and viewing
// secrets are bound to the account index.
type PrivateKeys struct {
	SpendingKey        [32]byte
	NullifierSecretKey [32]byte
	ViewingKey         *btcec.PrivateKey
}

// NullifierPublicKey returns the public half of the nullifier secret key.
func (k *PrivateKeys) NullifierPublicKey() [32]byte {
	return NullifierPublicKey(k.NullifierSecretKey)
}

// ViewingPublicKey returns the compressed public half of the viewing key.
func (k *PrivateKeys) ViewingPublicKey() [33]byte {
	var vpk [33]byte
	copy(vpk[:], k.ViewingKey.PubKey().SerializeCompressed())
	return vpk
}

// Zero wipes every secret of the bundle.
func (k *PrivateKeys) Zero() {
	zero(k.SpendingKey[:])
	zero(k.NullifierSecretKey[:])
	if k.ViewingKey != nil {
		k.ViewingKey.Zero()
	}
}

// DerivePrivateKeysOpts is the struct given to DerivePrivateKeys method
type DerivePrivateKeysOpts struct {
	Index uint32
}

// DerivePrivateKeys derives the key bundle of the private account at the
// given index. Same seed and same index always give the same keys.
func (w *Wallet) DerivePrivateKeys(opts DerivePrivateKeysOpts) (*PrivateKeys, error) {
	if err := w.validSeed(); err != nil {
		return nil, err
	}

	ssk := w.secretSpendingKey()
	nsk := deriveIndexedSecret(ssk, nullifierKeyTag, opts.Index)
	vskBytes := deriveIndexedSecret(ssk, viewingKeyTag, opts.Index)
	defer zero(vskBytes[:])

	vsk, _ := btcec.PrivKeyFromBytes(vskBytes[:])
	if vsk.Key.IsZero() {
		return nil, ErrInvalidViewingKey
	}

	return &PrivateKeys{
		SpendingKey:        ssk,
		NullifierSecretKey: nsk,
		ViewingKey:         vsk,
	}, nil
}

// NullifierPublicKey computes the nullifier public key of the given
// nullifier secret.
func NullifierPublicKey(nsk [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(nullifierPublicKeyPrefix))
	h.Write(nsk[:])
	h.Write([]byte{nullifierPublicKeyTag})
	h.Write(make([]byte, 22))

	var npk [32]byte
	copy(npk[:], h.Sum(nil))
	return npk
}

func (w *Wallet) secretSpendingKey() [32]byte {
	mac := hmacSha512([]byte(spendingKeyTag), w.seed)
	for i := 1; i < spendingKeyRounds; i++ {
		next := hmacSha512([]byte(spendingKeyTag), mac)
		zero(mac)
		mac = next
	}
	defer zero(mac)

	var ssk [32]byte
	copy(ssk[:], mac[:32])
	return ssk
}

func deriveIndexedSecret(ssk [32]byte, tag byte, index uint32) [32]byte {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], index)

	h := sha256.New()
	h.Write([]byte(privateKeysPrefix))
	h.Write(ssk[:])
	h.Write([]byte{tag})
	h.Write(idx[:])
	h.Write(make([]byte, 19))

	var secret [32]byte
	copy(secret[:], h.Sum(nil))
	return secret
}

func hmacSha512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
