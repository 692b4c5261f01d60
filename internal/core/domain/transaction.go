package domain

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// TxKind discriminates the two transaction families of the network.
type TxKind uint8

const (
	TxKindPublic TxKind = iota + 1
	TxKindPrivacyPreserving
)

func (k TxKind) String() string {
	switch k {
	case TxKindPublic:
		return "public"
	case TxKindPrivacyPreserving:
		return "privacy-preserving"
	default:
		return "unknown"
	}
}

// Signature is a BIP340 signature together with the x-only key that made it.
type Signature struct {
	PublicKey PublicKey
	Signature [64]byte
}

// Sign produces the signature of msgHash with the given key.
func Sign(prvkey *btcec.PrivateKey, msgHash Hash) (*Signature, error) {
	sig, err := schnorr.Sign(prvkey, msgHash[:])
	if err != nil {
		return nil, err
	}
	s := &Signature{}
	copy(s.PublicKey[:], schnorr.SerializePubKey(prvkey.PubKey()))
	copy(s.Signature[:], sig.Serialize())
	return s, nil
}

// Verify checks the signature against msgHash.
func (s Signature) Verify(msgHash Hash) error {
	pubkey, err := schnorr.ParsePubKey(s.PublicKey[:])
	if err != nil {
		return ErrInvalidSignature
	}
	sig, err := schnorr.ParseSignature(s.Signature[:])
	if err != nil {
		return ErrInvalidSignature
	}
	if !sig.Verify(msgHash[:], pubkey) {
		return ErrInvalidSignature
	}
	return nil
}

// Signer returns the id of the public account owning the signing key.
func (s Signature) Signer() AccountId {
	return NewPublicAccountId(s.PublicKey)
}

// PublicMessage is the signed content of a public transaction.
type PublicMessage struct {
	ProgramId   ProgramId
	AccountIds  []AccountId
	Nonces      []Amount
	Instruction []byte
}

// Hash is the digest signers commit to.
func (m *PublicMessage) Hash() Hash {
	buf := bytes.NewBuffer(nil)
	_ = m.encode(buf)
	return sha256.Sum256(buf.Bytes())
}

// PublicTransaction moves public balances. Every account whose nonce is
// listed must sign.
type PublicTransaction struct {
	Message    PublicMessage
	Signatures []Signature
}

// PublicBalanceChange is the effect of a privacy preserving transaction on
// a public account. The pre balance lets the network reject stale changes.
type PublicBalanceChange struct {
	AccountId   AccountId
	PreBalance  Amount
	PostBalance Amount
}

// IsDebit ...
func (c PublicBalanceChange) IsDebit() bool {
	return c.PostBalance.Cmp(c.PreBalance) < 0
}

// PrivacyPreservingMessage is the signed and proven content of a privacy
// preserving transaction. EncryptedNotes[i] opens to the note behind
// NewCommitments[i].
type PrivacyPreservingMessage struct {
	ProgramId      ProgramId
	PublicChanges  []PublicBalanceChange
	PublicNonces   []Amount
	Instruction    []byte
	NewCommitments []Commitment
	NewNullifiers  []NullifierWithRoot
	EncryptedNotes []EncryptedNote
}

// Hash is the digest both the proof and the signatures commit to.
func (m *PrivacyPreservingMessage) Hash() Hash {
	buf := bytes.NewBuffer(nil)
	_ = m.encode(buf)
	return sha256.Sum256(buf.Bytes())
}

// PrivacyPreservingTransaction consumes and creates private notes, and
// optionally changes public balances. Signatures are required from debited
// public accounts only.
type PrivacyPreservingTransaction struct {
	Message    PrivacyPreservingMessage
	Proof      []byte
	Signatures []Signature
}

// Transaction is the submission-ready unit sent to the sequencer.
type Transaction struct {
	Kind    TxKind
	Public  *PublicTransaction
	Privacy *PrivacyPreservingTransaction
}

// NewPublicTransaction ...
func NewPublicTransaction(tx *PublicTransaction) Transaction {
	return Transaction{Kind: TxKindPublic, Public: tx}
}

// NewPrivacyPreservingTransaction ...
func NewPrivacyPreservingTransaction(tx *PrivacyPreservingTransaction) Transaction {
	return Transaction{Kind: TxKindPrivacyPreserving, Privacy: tx}
}

// Validate checks the shape of the transaction: kind and payload agree and
// parallel lists have matching lengths.
func (t Transaction) Validate() error {
	switch t.Kind {
	case TxKindPublic:
		if t.Public == nil || t.Privacy != nil {
			return ErrMalformedTransaction
		}
		if len(t.Public.Message.AccountIds) <= 0 {
			return ErrMalformedTransaction
		}
		if len(t.Public.Message.Nonces) != len(t.Public.Signatures) {
			return ErrMalformedTransaction
		}
	case TxKindPrivacyPreserving:
		if t.Privacy == nil || t.Public != nil {
			return ErrMalformedTransaction
		}
		msg := t.Privacy.Message
		if len(msg.NewCommitments) != len(msg.EncryptedNotes) {
			return ErrMalformedTransaction
		}
		if len(msg.PublicNonces) != len(t.Privacy.Signatures) {
			return ErrMalformedTransaction
		}
		if len(t.Privacy.Proof) <= 0 {
			return ErrMalformedTransaction
		}
	default:
		return ErrUnknownTransactionKind
	}
	return nil
}

// Hash identifies the transaction.
func (t Transaction) Hash() Hash {
	buf, _ := t.Serialize()
	return sha256.Sum256(buf)
}

// Serialize returns the canonical binary encoding of the transaction.
func (t Transaction) Serialize() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	if err := t.encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeTransaction decodes the output of Transaction.Serialize.
func DeserializeTransaction(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	tx, err := decodeTransaction(r)
	if err != nil {
		return nil, ErrMalformedTransaction
	}
	if r.Len() > 0 {
		return nil, ErrMalformedTransaction
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}
