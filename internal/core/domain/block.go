package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
)

// Block is an ordered batch of transactions sealed by the sequencer.
// Block ids start at 1 and are contiguous.
type Block struct {
	BlockId      uint64
	PrevHash     Hash
	Hash         Hash
	Timestamp    int64
	Transactions []Transaction
}

// ComputeHash returns sha256(id || prev_hash || timestamp || tx hashes).
func (b *Block) ComputeHash() Hash {
	buf := bytes.NewBuffer(nil)
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], b.BlockId)
	buf.Write(n[:])
	buf.Write(b.PrevHash[:])
	binary.LittleEndian.PutUint64(n[:], uint64(b.Timestamp))
	buf.Write(n[:])
	for _, tx := range b.Transactions {
		h := tx.Hash()
		buf.Write(h[:])
	}
	return sha256.Sum256(buf.Bytes())
}

// PrivacyPreservingTransactions returns the transactions a scanner must look
// into, in block order.
func (b *Block) PrivacyPreservingTransactions() []*PrivacyPreservingTransaction {
	txs := make([]*PrivacyPreservingTransaction, 0)
	for _, tx := range b.Transactions {
		if tx.Kind == TxKindPrivacyPreserving && tx.Privacy != nil {
			txs = append(txs, tx.Privacy)
		}
	}
	return txs
}
