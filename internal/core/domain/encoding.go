package domain

import (
	"io"

	"github.com/btcsuite/btcd/wire"
)

const (
	maxListLen     = 1 << 12
	maxInstruction = 1 << 12
	maxProofSize   = 1 << 20
	maxCiphertext  = 1 << 16
)

func (t Transaction) encode(w io.Writer) error {
	if _, err := w.Write([]byte{byte(t.Kind)}); err != nil {
		return err
	}
	switch t.Kind {
	case TxKindPublic:
		if err := t.Public.Message.encode(w); err != nil {
			return err
		}
		return writeSignatures(w, t.Public.Signatures)
	default:
		if err := t.Privacy.Message.encode(w); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, 0, t.Privacy.Proof); err != nil {
			return err
		}
		return writeSignatures(w, t.Privacy.Signatures)
	}
}

func decodeTransaction(r io.Reader) (*Transaction, error) {
	var kind [1]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return nil, err
	}
	tx := &Transaction{Kind: TxKind(kind[0])}
	switch tx.Kind {
	case TxKindPublic:
		msg, err := decodePublicMessage(r)
		if err != nil {
			return nil, err
		}
		sigs, err := readSignatures(r)
		if err != nil {
			return nil, err
		}
		tx.Public = &PublicTransaction{Message: *msg, Signatures: sigs}
	case TxKindPrivacyPreserving:
		msg, err := decodePrivacyPreservingMessage(r)
		if err != nil {
			return nil, err
		}
		proof, err := wire.ReadVarBytes(r, 0, maxProofSize, "proof")
		if err != nil {
			return nil, err
		}
		sigs, err := readSignatures(r)
		if err != nil {
			return nil, err
		}
		tx.Privacy = &PrivacyPreservingTransaction{
			Message: *msg, Proof: proof, Signatures: sigs,
		}
	default:
		return nil, ErrUnknownTransactionKind
	}
	return tx, nil
}

func (m *PublicMessage) encode(w io.Writer) error {
	if _, err := w.Write(m.ProgramId[:]); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, 0, uint64(len(m.AccountIds))); err != nil {
		return err
	}
	for _, id := range m.AccountIds {
		if _, err := w.Write(id[:]); err != nil {
			return err
		}
	}
	if err := writeAmounts(w, m.Nonces); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, 0, m.Instruction)
}

func decodePublicMessage(r io.Reader) (*PublicMessage, error) {
	m := &PublicMessage{}
	if _, err := io.ReadFull(r, m.ProgramId[:]); err != nil {
		return nil, err
	}
	count, err := readListLen(r)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < count; i++ {
		var id AccountId
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return nil, err
		}
		m.AccountIds = append(m.AccountIds, id)
	}
	if m.Nonces, err = readAmounts(r); err != nil {
		return nil, err
	}
	if m.Instruction, err = wire.ReadVarBytes(
		r, 0, maxInstruction, "instruction",
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PrivacyPreservingMessage) encode(w io.Writer) error {
	if _, err := w.Write(m.ProgramId[:]); err != nil {
		return err
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(m.PublicChanges))); err != nil {
		return err
	}
	for _, c := range m.PublicChanges {
		pre, post := c.PreBalance.LE16(), c.PostBalance.LE16()
		for _, b := range [][]byte{c.AccountId[:], pre[:], post[:]} {
			if _, err := w.Write(b); err != nil {
				return err
			}
		}
	}

	if err := writeAmounts(w, m.PublicNonces); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, 0, m.Instruction); err != nil {
		return err
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(m.NewCommitments))); err != nil {
		return err
	}
	for _, c := range m.NewCommitments {
		if _, err := w.Write(c[:]); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(m.NewNullifiers))); err != nil {
		return err
	}
	for _, n := range m.NewNullifiers {
		if _, err := w.Write(n.Nullifier[:]); err != nil {
			return err
		}
		if _, err := w.Write(n.Root[:]); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(m.EncryptedNotes))); err != nil {
		return err
	}
	for _, n := range m.EncryptedNotes {
		if _, err := w.Write(n.EphemeralPublicKey[:]); err != nil {
			return err
		}
		if _, err := w.Write([]byte{n.ViewTag}); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, 0, n.Ciphertext); err != nil {
			return err
		}
	}
	return nil
}

func decodePrivacyPreservingMessage(r io.Reader) (*PrivacyPreservingMessage, error) {
	m := &PrivacyPreservingMessage{}
	if _, err := io.ReadFull(r, m.ProgramId[:]); err != nil {
		return nil, err
	}

	count, err := readListLen(r)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < count; i++ {
		var c PublicBalanceChange
		var pre, post [16]byte
		for _, b := range [][]byte{c.AccountId[:], pre[:], post[:]} {
			if _, err := io.ReadFull(r, b); err != nil {
				return nil, err
			}
		}
		c.PreBalance, c.PostBalance = AmountFromLE16(pre), AmountFromLE16(post)
		m.PublicChanges = append(m.PublicChanges, c)
	}

	if m.PublicNonces, err = readAmounts(r); err != nil {
		return nil, err
	}
	if m.Instruction, err = wire.ReadVarBytes(
		r, 0, maxInstruction, "instruction",
	); err != nil {
		return nil, err
	}

	if count, err = readListLen(r); err != nil {
		return nil, err
	}
	for i := uint64(0); i < count; i++ {
		var c Commitment
		if _, err := io.ReadFull(r, c[:]); err != nil {
			return nil, err
		}
		m.NewCommitments = append(m.NewCommitments, c)
	}

	if count, err = readListLen(r); err != nil {
		return nil, err
	}
	for i := uint64(0); i < count; i++ {
		var n NullifierWithRoot
		if _, err := io.ReadFull(r, n.Nullifier[:]); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, n.Root[:]); err != nil {
			return nil, err
		}
		m.NewNullifiers = append(m.NewNullifiers, n)
	}

	if count, err = readListLen(r); err != nil {
		return nil, err
	}
	for i := uint64(0); i < count; i++ {
		var n EncryptedNote
		var tag [1]byte
		if _, err := io.ReadFull(r, n.EphemeralPublicKey[:]); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			return nil, err
		}
		n.ViewTag = tag[0]
		if n.Ciphertext, err = wire.ReadVarBytes(
			r, 0, maxCiphertext, "ciphertext",
		); err != nil {
			return nil, err
		}
		m.EncryptedNotes = append(m.EncryptedNotes, n)
	}
	return m, nil
}

func writeAmounts(w io.Writer, amounts []Amount) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(amounts))); err != nil {
		return err
	}
	for _, a := range amounts {
		le := a.LE16()
		if _, err := w.Write(le[:]); err != nil {
			return err
		}
	}
	return nil
}

func readAmounts(r io.Reader) ([]Amount, error) {
	count, err := readListLen(r)
	if err != nil {
		return nil, err
	}
	var amounts []Amount
	for i := uint64(0); i < count; i++ {
		var le [16]byte
		if _, err := io.ReadFull(r, le[:]); err != nil {
			return nil, err
		}
		amounts = append(amounts, AmountFromLE16(le))
	}
	return amounts, nil
}

func writeSignatures(w io.Writer, sigs []Signature) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(sigs))); err != nil {
		return err
	}
	for _, s := range sigs {
		if _, err := w.Write(s.PublicKey[:]); err != nil {
			return err
		}
		if _, err := w.Write(s.Signature[:]); err != nil {
			return err
		}
	}
	return nil
}

func readSignatures(r io.Reader) ([]Signature, error) {
	count, err := readListLen(r)
	if err != nil {
		return nil, err
	}
	var sigs []Signature
	for i := uint64(0); i < count; i++ {
		var s Signature
		if _, err := io.ReadFull(r, s.PublicKey[:]); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, s.Signature[:]); err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}

func readListLen(r io.Reader) (uint64, error) {
	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return 0, err
	}
	if count > maxListLen {
		return 0, ErrMalformedTransaction
	}
	return count, nil
}
