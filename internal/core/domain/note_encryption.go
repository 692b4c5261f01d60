package domain

import (
	"crypto/cipher"
	"crypto/sha256"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	viewTagTag = []byte("LEE/view_tag")
	noteKeyTag = []byte("LEE/note_key")
)

// EncryptedNote is a note sealed to the viewing public key of its owner.
// The view tag lets scanners discard notes not meant for them with a single
// hash, without attempting decryption.
type EncryptedNote struct {
	EphemeralPublicKey [33]byte
	ViewTag            byte
	Ciphertext         []byte
}

// EncryptNote seals the note to vpk. The ciphertext is bound to the
// commitment, which must be the commitment of the very same note.
func EncryptNote(
	note *Note, commitment Commitment, vpk ViewingPublicKey,
) (*EncryptedNote, error) {
	recipient, err := vpk.Parse()
	if err != nil {
		return nil, err
	}
	ephemeral, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	defer ephemeral.Zero()

	shared := btcec.GenerateSharedSecret(ephemeral, recipient)
	defer zeroBytes(shared)

	var epk [33]byte
	copy(epk[:], ephemeral.PubKey().SerializeCompressed())

	aead, err := noteCipher(shared, epk)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	ciphertext := aead.Seal(nil, nonce, note.Serialize(), commitment[:])

	return &EncryptedNote{
		EphemeralPublicKey: epk,
		ViewTag:            viewTag(shared),
		Ciphertext:         ciphertext,
	}, nil
}

// Decrypt opens the note with the viewing secret key. It fails with
// ErrNoteDecryption when the note was sealed to some other key.
func (e *EncryptedNote) Decrypt(
	vsk *btcec.PrivateKey, commitment Commitment,
) (*Note, error) {
	epk, err := btcec.ParsePubKey(e.EphemeralPublicKey[:])
	if err != nil {
		return nil, ErrNoteDecryption
	}
	shared := btcec.GenerateSharedSecret(vsk, epk)
	defer zeroBytes(shared)

	if viewTag(shared) != e.ViewTag {
		return nil, ErrNoteDecryption
	}

	aead, err := noteCipher(shared, e.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	plaintext, err := aead.Open(nil, nonce, e.Ciphertext, commitment[:])
	if err != nil {
		return nil, ErrNoteDecryption
	}
	return DeserializeNote(plaintext)
}

// Keys are single use, one per ephemeral key, hence the zero nonce.
func noteCipher(shared []byte, epk [33]byte) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	kdf := hkdf.New(sha256.New, shared, epk[:], noteKeyTag)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}

func viewTag(shared []byte) byte {
	h := sha256.New()
	h.Write(viewTagTag)
	h.Write(shared)
	return h.Sum(nil)[0]
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
