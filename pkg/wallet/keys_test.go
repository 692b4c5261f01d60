package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSigningKeyPair(t *testing.T) {
	w := newTestWallet(t)

	prvkey, pubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{Index: 0})
	require.NoError(t, err)
	require.NotNil(t, prvkey)
	assert.True(t, pubkey.IsEqual(prvkey.PubKey()))

	_, again, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{Index: 0})
	require.NoError(t, err)
	assert.True(t, pubkey.IsEqual(again))

	_, other, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{Index: 1})
	require.NoError(t, err)
	assert.False(t, pubkey.IsEqual(other))
}

func TestDerivePrivateKeys(t *testing.T) {
	w := newTestWallet(t)

	keys, err := w.DerivePrivateKeys(DerivePrivateKeysOpts{Index: 0})
	require.NoError(t, err)
	same, err := newTestWallet(t).DerivePrivateKeys(DerivePrivateKeysOpts{Index: 0})
	require.NoError(t, err)
	next, err := w.DerivePrivateKeys(DerivePrivateKeysOpts{Index: 1})
	require.NoError(t, err)

	assert.Equal(t, keys.NullifierSecretKey, same.NullifierSecretKey)
	assert.Equal(t, keys.NullifierPublicKey(), same.NullifierPublicKey())
	assert.Equal(t, keys.ViewingPublicKey(), same.ViewingPublicKey())

	// indexes share the spending key only
	assert.Equal(t, keys.SpendingKey, next.SpendingKey)
	assert.NotEqual(t, keys.NullifierSecretKey, next.NullifierSecretKey)
	assert.NotEqual(t, keys.ViewingPublicKey(), next.ViewingPublicKey())

	// the nullifier public key never equals its secret
	assert.NotEqual(t, keys.NullifierSecretKey, keys.NullifierPublicKey())

	vpk := keys.ViewingPublicKey()
	assert.Contains(t, []byte{0x02, 0x03}, vpk[0])
}

func TestPrivateKeysZero(t *testing.T) {
	keys, err := newTestWallet(t).DerivePrivateKeys(DerivePrivateKeysOpts{Index: 2})
	require.NoError(t, err)

	keys.Zero()
	assert.Equal(t, [32]byte{}, keys.SpendingKey)
	assert.Equal(t, [32]byte{}, keys.NullifierSecretKey)
	assert.True(t, keys.ViewingKey.Key.IsZero())
}
