package domain

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/btcsuite/btcd/wire"
)

const (
	NoteNonceSize = 16
	maxNoteData   = 1 << 16
)

var commitmentPrefix = paddedTag("/LEE/v0.3/Commitment/")

// Note is the plaintext content of a private account output. Only the owner
// (and the sender) ever see it; the network only sees its commitment.
type Note struct {
	ProgramOwner ProgramId
	Balance      Amount
	Nonce        [NoteNonceSize]byte
	Data         []byte
}

// NewNote returns a note of the native token program with a random nonce.
func NewNote(balance Amount) (*Note, error) {
	n := &Note{
		ProgramOwner: NativeTokenProgramId,
		Balance:      balance,
	}
	if _, err := rand.Read(n.Nonce[:]); err != nil {
		return nil, err
	}
	return n, nil
}

// Serialize encodes the note as owner || balance_le16 || nonce || var_bytes(data).
func (n *Note) Serialize() []byte {
	buf := bytes.NewBuffer(nil)
	balance := n.Balance.LE16()
	buf.Write(n.ProgramOwner[:])
	buf.Write(balance[:])
	buf.Write(n.Nonce[:])
	// writing to a bytes.Buffer never fails
	_ = wire.WriteVarBytes(buf, 0, n.Data)
	return buf.Bytes()
}

// DeserializeNote decodes the output of Note.Serialize.
func DeserializeNote(data []byte) (*Note, error) {
	r := bytes.NewReader(data)
	n := &Note{}
	var balance [16]byte
	if _, err := io.ReadFull(r, n.ProgramOwner[:]); err != nil {
		return nil, ErrMalformedNote
	}
	if _, err := io.ReadFull(r, balance[:]); err != nil {
		return nil, ErrMalformedNote
	}
	if _, err := io.ReadFull(r, n.Nonce[:]); err != nil {
		return nil, ErrMalformedNote
	}
	noteData, err := wire.ReadVarBytes(r, 0, maxNoteData, "note data")
	if err != nil || r.Len() > 0 {
		return nil, ErrMalformedNote
	}
	n.Balance = AmountFromLE16(balance)
	if len(noteData) > 0 {
		n.Data = noteData
	}
	return n, nil
}

// Commitment is the public, hiding and binding digest of a note and its
// owner's nullifier public key.
type Commitment [32]byte

// NewCommitment computes the commitment of the note owned by npk.
func NewCommitment(npk NullifierPublicKey, note *Note) Commitment {
	h := sha256.New()
	h.Write(commitmentPrefix[:])
	h.Write(npk[:])
	h.Write(note.Serialize())

	var c Commitment
	copy(c[:], h.Sum(nil))
	return c
}

func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// ParseCommitment decodes the hex form of a commitment.
func ParseCommitment(s string) (Commitment, error) {
	h, err := ParseHash(s)
	return Commitment(h), err
}

// Nullifier is revealed when the note behind a commitment is spent.
type Nullifier [32]byte

// NewNullifier computes sha256(commitment || nsk). Only the holder of the
// nullifier secret key can compute it.
func NewNullifier(commitment Commitment, nsk NullifierSecretKey) Nullifier {
	h := sha256.New()
	h.Write(commitment[:])
	h.Write(nsk[:])

	var n Nullifier
	copy(n[:], h.Sum(nil))
	return n
}

func (n Nullifier) String() string {
	return hex.EncodeToString(n[:])
}

// NullifierWithRoot binds a revealed nullifier to the commitment tree root
// its membership was proven against.
type NullifierWithRoot struct {
	Nullifier Nullifier
	Root      Hash
}
