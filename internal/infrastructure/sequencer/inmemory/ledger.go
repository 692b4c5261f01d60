// Package memsequencer is a single process sequencer keeping the whole
// ledger in memory. It runs the native token and pinata programs and
// verifies privacy preserving transactions with the configured prover.
package memsequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNullProver ...
	ErrNullProver = errors.New("prover must not be null")
	// ErrAccountExists ...
	ErrAccountExists = errors.New("account already exists on the ledger")
)

// Opts is the struct given to NewLedger.
type Opts struct {
	Prover          ports.Prover
	MerkleTreeDepth uint8
	// AutoSeal seals a block right after every accepted transaction.
	AutoSeal bool
}

func (o Opts) validate() error {
	if o.Prover == nil {
		return ErrNullProver
	}
	return nil
}

// Ledger implements ports.SequencerClient.
type Ledger struct {
	lock *sync.Mutex

	prover      ports.Prover
	autoSeal    bool
	tree        *domain.MerkleTree
	accounts    map[domain.AccountId]*ports.AccountState
	commitments map[domain.Commitment]uint64
	roots       map[domain.Hash]struct{}
	nullifiers  map[domain.Nullifier]struct{}
	mempool     []domain.Transaction
	blocks      []*domain.Block

	offline        bool
	failBlocksFrom uint64
}

// NewLedger returns an empty ledger at block 0.
func NewLedger(opts Opts) (*Ledger, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	depth := opts.MerkleTreeDepth
	if depth == 0 {
		depth = domain.DefaultMerkleTreeDepth
	}
	tree, err := domain.NewMerkleTree(depth)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		lock:        &sync.Mutex{},
		prover:      opts.Prover,
		autoSeal:    opts.AutoSeal,
		tree:        tree,
		accounts:    make(map[domain.AccountId]*ports.AccountState),
		commitments: make(map[domain.Commitment]uint64),
		roots:       map[domain.Hash]struct{}{tree.Root(): {}},
		nullifiers:  make(map[domain.Nullifier]struct{}),
	}, nil
}

// Fund credits a public account out of thin air, as a genesis allocation.
func (l *Ledger) Fund(id domain.AccountId, amount domain.Amount) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	account := l.accountOrNew(id)
	balance, err := account.Balance.Add(amount)
	if err != nil {
		return err
	}
	account.Balance = balance
	l.accounts[id] = account
	return nil
}

// CreatePinata adds a pinata account holding balance and the challenge.
func (l *Ledger) CreatePinata(
	id domain.AccountId, balance domain.Amount, challenge domain.PinataChallenge,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.accounts[id]; ok {
		return ErrAccountExists
	}
	l.accounts[id] = &ports.AccountState{
		ProgramOwner: domain.PinataProgramId,
		Balance:      balance,
		Data:         challenge.Bytes(),
	}
	return nil
}

// ProduceBlock seals the mempool into a new block, possibly empty.
func (l *Ledger) ProduceBlock() *domain.Block {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.seal()
}

// SetOffline makes every client call fail with ports.ErrNetwork.
func (l *Ledger) SetOffline(offline bool) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.offline = offline
}

// FailBlocksFrom makes GetBlock fail with ports.ErrNetwork for every block
// id greater or equal to blockId. Zero disables it.
func (l *Ledger) FailBlocksFrom(blockId uint64) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.failBlocksFrom = blockId
}

func (l *Ledger) SubmitTransaction(
	ctx context.Context, tx domain.Transaction,
) (*ports.SubmitResult, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.offline {
		return nil, fmt.Errorf("%w: submit transaction", ports.ErrNetwork)
	}

	if err := tx.Validate(); err != nil {
		return &ports.SubmitResult{Reason: err.Error()}, nil
	}
	txHash := tx.Hash()

	if err := l.execute(ctx, tx); err != nil {
		log.WithField("tx", txHash.String()).Debugf("ledger: rejected: %s", err)
		return &ports.SubmitResult{TxHash: txHash, Reason: err.Error()}, nil
	}

	l.mempool = append(l.mempool, tx)
	if l.autoSeal {
		l.seal()
	}
	return &ports.SubmitResult{TxHash: txHash, Accepted: true}, nil
}

func (l *Ledger) GetBlock(_ context.Context, blockId uint64) (*domain.Block, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.offline || (l.failBlocksFrom > 0 && blockId >= l.failBlocksFrom) {
		return nil, fmt.Errorf("%w: get block %d", ports.ErrNetwork, blockId)
	}
	if blockId == 0 || blockId > uint64(len(l.blocks)) {
		return nil, ports.ErrBlockNotFound
	}
	return l.blocks[blockId-1], nil
}

func (l *Ledger) GetLastBlockId(_ context.Context) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.offline {
		return 0, fmt.Errorf("%w: get last block id", ports.ErrNetwork)
	}
	return uint64(len(l.blocks)), nil
}

func (l *Ledger) GetAccount(
	_ context.Context, id domain.AccountId,
) (*ports.AccountState, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.offline {
		return nil, fmt.Errorf("%w: get account", ports.ErrNetwork)
	}
	account, ok := l.accounts[id]
	if !ok {
		return nil, ports.ErrRemoteAccountNotFound
	}
	state := *account
	state.Data = append([]byte{}, account.Data...)
	return &state, nil
}

func (l *Ledger) GetProofForCommitment(
	_ context.Context, commitment domain.Commitment,
) (*domain.MembershipProof, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.offline {
		return nil, fmt.Errorf("%w: get proof", ports.ErrNetwork)
	}
	index, ok := l.commitments[commitment]
	if !ok {
		return nil, ports.ErrCommitmentNotFound
	}
	proof, err := l.tree.Proof(index)
	if err != nil {
		return nil, err
	}
	return &domain.MembershipProof{Proof: *proof, Root: l.tree.Root()}, nil
}

func (l *Ledger) Close() {}

func (l *Ledger) seal() *domain.Block {
	var prevHash domain.Hash
	if len(l.blocks) > 0 {
		prevHash = l.blocks[len(l.blocks)-1].Hash
	}
	block := &domain.Block{
		BlockId:      uint64(len(l.blocks)) + 1,
		PrevHash:     prevHash,
		Timestamp:    time.Now().Unix(),
		Transactions: l.mempool,
	}
	block.Hash = block.ComputeHash()

	l.blocks = append(l.blocks, block)
	l.mempool = nil
	log.Debugf(
		"ledger: sealed block %d with %d txs", block.BlockId, len(block.Transactions),
	)
	return block
}

func (l *Ledger) accountOrNew(id domain.AccountId) *ports.AccountState {
	if account, ok := l.accounts[id]; ok {
		return account
	}
	return &ports.AccountState{ProgramOwner: domain.NativeTokenProgramId}
}

func (l *Ledger) balanceOf(id domain.AccountId) domain.Amount {
	if account, ok := l.accounts[id]; ok {
		return account.Balance
	}
	return domain.Amount{}
}

func (l *Ledger) nonceOf(id domain.AccountId) domain.Amount {
	if account, ok := l.accounts[id]; ok {
		return account.Nonce
	}
	return domain.Amount{}
}
