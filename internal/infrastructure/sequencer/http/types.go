package httpsequencer

import (
	"encoding/base64"
	"fmt"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
)

const (
	submitTxPath  = "/transaction"
	lastBlockPath = "/block/last"
	blockPath     = "/block/"
	accountPath   = "/account/"
	proofPath     = "/proof/"
)

type errorResponse struct {
	Error string `json:"error"`
}

type submitTxRequest struct {
	Tx string `json:"tx"`
}

type submitTxResponse struct {
	TxHash   string `json:"tx_hash"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type lastBlockResponse struct {
	BlockId uint64 `json:"block_id"`
}

type blockResponse struct {
	BlockId      uint64   `json:"block_id"`
	PrevHash     string   `json:"prev_hash"`
	Hash         string   `json:"hash"`
	Timestamp    int64    `json:"timestamp"`
	Transactions []string `json:"transactions"`
}

type accountResponse struct {
	ProgramOwner string        `json:"program_owner"`
	Balance      domain.Amount `json:"balance"`
	Nonce        domain.Amount `json:"nonce"`
	Data         string        `json:"data"`
}

type proofResponse struct {
	LeafIndex uint64   `json:"leaf_index"`
	Siblings  []string `json:"siblings"`
	Root      string   `json:"root"`
}

func encodeTransaction(tx domain.Transaction) (string, error) {
	buf, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func decodeTransaction(s string) (*domain.Transaction, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedTransaction, err)
	}
	return domain.DeserializeTransaction(buf)
}

func (r *submitTxResponse) toResult() (*ports.SubmitResult, error) {
	var txHash domain.Hash
	if len(r.TxHash) > 0 {
		var err error
		if txHash, err = domain.ParseHash(r.TxHash); err != nil {
			return nil, fmt.Errorf("invalid tx hash: %w", err)
		}
	}
	return &ports.SubmitResult{
		TxHash:   txHash,
		Accepted: r.Accepted,
		Reason:   r.Reason,
	}, nil
}

func newBlockResponse(block *domain.Block) (*blockResponse, error) {
	txs := make([]string, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		encoded, err := encodeTransaction(tx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, encoded)
	}
	return &blockResponse{
		BlockId:      block.BlockId,
		PrevHash:     block.PrevHash.String(),
		Hash:         block.Hash.String(),
		Timestamp:    block.Timestamp,
		Transactions: txs,
	}, nil
}

func (r *blockResponse) toBlock() (*domain.Block, error) {
	prevHash, err := domain.ParseHash(r.PrevHash)
	if err != nil {
		return nil, fmt.Errorf("invalid prev hash: %w", err)
	}
	hash, err := domain.ParseHash(r.Hash)
	if err != nil {
		return nil, fmt.Errorf("invalid block hash: %w", err)
	}
	txs := make([]domain.Transaction, 0, len(r.Transactions))
	for i, encoded := range r.Transactions {
		tx, err := decodeTransaction(encoded)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		txs = append(txs, *tx)
	}

	block := &domain.Block{
		BlockId:      r.BlockId,
		PrevHash:     prevHash,
		Hash:         hash,
		Timestamp:    r.Timestamp,
		Transactions: txs,
	}
	if block.ComputeHash() != hash {
		return nil, fmt.Errorf("block %d: hash mismatch", r.BlockId)
	}
	return block, nil
}

func newAccountResponse(state *ports.AccountState) *accountResponse {
	return &accountResponse{
		ProgramOwner: state.ProgramOwner.String(),
		Balance:      state.Balance,
		Nonce:        state.Nonce,
		Data:         base64.StdEncoding.EncodeToString(state.Data),
	}
}

func (r *accountResponse) toAccountState() (*ports.AccountState, error) {
	owner, err := domain.ParseHash(r.ProgramOwner)
	if err != nil {
		return nil, fmt.Errorf("invalid program owner: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid account data: %w", err)
	}
	return &ports.AccountState{
		ProgramOwner: domain.ProgramId(owner),
		Balance:      r.Balance,
		Nonce:        r.Nonce,
		Data:         data,
	}, nil
}

func newProofResponse(proof *domain.MembershipProof) *proofResponse {
	siblings := make([]string, 0, len(proof.Proof.Siblings))
	for _, s := range proof.Proof.Siblings {
		siblings = append(siblings, s.String())
	}
	return &proofResponse{
		LeafIndex: proof.Proof.LeafIndex,
		Siblings:  siblings,
		Root:      proof.Root.String(),
	}
}

func (r *proofResponse) toMembershipProof() (*domain.MembershipProof, error) {
	root, err := domain.ParseHash(r.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root: %w", err)
	}
	siblings := make([]domain.Hash, 0, len(r.Siblings))
	for _, s := range r.Siblings {
		h, err := domain.ParseHash(s)
		if err != nil {
			return nil, fmt.Errorf("invalid sibling: %w", err)
		}
		siblings = append(siblings, h)
	}
	return &domain.MembershipProof{
		Proof: domain.MerkleProof{LeafIndex: r.LeafIndex, Siblings: siblings},
		Root:  root,
	}, nil
}
