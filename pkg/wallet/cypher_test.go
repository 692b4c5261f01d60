package wallet

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	ScryptN = 1 << 10
	os.Exit(m.Run())
}

func TestEncryptDecrypt(t *testing.T) {
	plaintext := []byte("super secret message")
	passphrase := "supersecurekey"

	cyphertext, err := Encrypt(EncryptOpts{
		PlainText:  plaintext,
		Passphrase: passphrase,
	})
	require.NoError(t, err)
	require.NotContains(t, string(cyphertext), string(plaintext))

	revealedtext, err := Decrypt(DecryptOpts{
		CypherText: cyphertext,
		Passphrase: passphrase,
	})
	require.NoError(t, err)
	assert.Equal(t, plaintext, revealedtext)

	_, err = Decrypt(DecryptOpts{
		CypherText: cyphertext,
		Passphrase: "wrongkey",
	})
	assert.Equal(t, ErrInvalidPassphrase, err)
}

func TestFailingEncrypt(t *testing.T) {
	tests := []struct {
		opts EncryptOpts
		err  error
	}{
		{
			opts: EncryptOpts{
				PlainText:  nil,
				Passphrase: "supersecurekey",
			},
			err: ErrNullPlainText,
		},
		{
			opts: EncryptOpts{
				PlainText:  []byte("super secret message"),
				Passphrase: "",
			},
			err: ErrNullPassphrase,
		},
	}
	for _, tt := range tests {
		_, err := Encrypt(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestFailingDecrypt(t *testing.T) {
	tests := []struct {
		opts DecryptOpts
		err  error
	}{
		{
			opts: DecryptOpts{
				CypherText: nil,
				Passphrase: "supersecurekey",
			},
			err: ErrNullCypherText,
		},
		{
			opts: DecryptOpts{
				CypherText: []byte("supersecretmessage"),
				Passphrase: "supersecurekey",
			},
			err: ErrInvalidCypherText,
		},
		{
			opts: DecryptOpts{
				CypherText: []byte("supersecretmessage"),
				Passphrase: "",
			},
			err: ErrNullPassphrase,
		},
	}
	for _, tt := range tests {
		_, err := Decrypt(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}
