package domain

import (
	"crypto/sha256"
)

// DefaultMerkleTreeDepth is the depth of the network commitment tree.
const DefaultMerkleTreeDepth = 32

// MerkleProof is the authentication path of a leaf: the sibling of each
// level from the leaf up to the child of the root.
type MerkleProof struct {
	LeafIndex uint64
	Siblings  []Hash
}

// MembershipProof is a proof together with the root it verifies against.
type MembershipProof struct {
	Proof MerkleProof
	Root  Hash
}

// VerifyMerkleProof checks the commitment sits at proof.LeafIndex of a tree
// of the given depth with the given root. Proofs with a sibling count other
// than depth or a leaf index out of range are rejected.
func VerifyMerkleProof(
	commitment Commitment, proof MerkleProof, root Hash, depth uint8,
) bool {
	if depth == 0 || depth > 63 {
		return false
	}
	if len(proof.Siblings) != int(depth) {
		return false
	}
	if proof.LeafIndex >= uint64(1)<<depth {
		return false
	}

	node := hashLeaf(commitment)
	index := proof.LeafIndex
	for _, sibling := range proof.Siblings {
		if index&1 == 0 {
			node = hashNodes(node, sibling)
		} else {
			node = hashNodes(sibling, node)
		}
		index >>= 1
	}
	return node == root
}

// MerkleTree is an append only commitment tree of fixed depth. Empty
// leaves are zero hashes.
type MerkleTree struct {
	depth  uint8
	size   uint64
	levels []map[uint64]Hash
	zeros  []Hash
}

// NewMerkleTree ...
func NewMerkleTree(depth uint8) (*MerkleTree, error) {
	if depth == 0 || depth > 63 {
		return nil, ErrInvalidMerkleDepth
	}
	levels := make([]map[uint64]Hash, depth+1)
	for i := range levels {
		levels[i] = make(map[uint64]Hash)
	}
	return &MerkleTree{
		depth:  depth,
		levels: levels,
		zeros:  zeroHashes(depth),
	}, nil
}

func (t *MerkleTree) Depth() uint8 {
	return t.depth
}

func (t *MerkleTree) Size() uint64 {
	return t.size
}

// Append adds the commitment as next leaf and returns its index.
func (t *MerkleTree) Append(commitment Commitment) (uint64, error) {
	if t.size >= uint64(1)<<t.depth {
		return 0, ErrMerkleTreeFull
	}
	index := t.size
	t.size++

	node := hashLeaf(commitment)
	t.levels[0][index] = node
	pos := index
	for level := uint8(0); level < t.depth; level++ {
		sibling := t.node(level, pos^1)
		if pos&1 == 0 {
			node = hashNodes(node, sibling)
		} else {
			node = hashNodes(sibling, node)
		}
		pos >>= 1
		t.levels[level+1][pos] = node
	}
	return index, nil
}

// Root ...
func (t *MerkleTree) Root() Hash {
	return t.node(t.depth, 0)
}

// Proof returns the authentication path of the leaf at index.
func (t *MerkleTree) Proof(index uint64) (*MerkleProof, error) {
	if index >= t.size {
		return nil, ErrLeafIndexOutOfRange
	}
	siblings := make([]Hash, 0, t.depth)
	pos := index
	for level := uint8(0); level < t.depth; level++ {
		siblings = append(siblings, t.node(level, pos^1))
		pos >>= 1
	}
	return &MerkleProof{LeafIndex: index, Siblings: siblings}, nil
}

func (t *MerkleTree) node(level uint8, pos uint64) Hash {
	if h, ok := t.levels[level][pos]; ok {
		return h
	}
	return t.zeros[level]
}

func zeroHashes(depth uint8) []Hash {
	zeros := make([]Hash, depth+1)
	for i := uint8(1); i <= depth; i++ {
		zeros[i] = hashNodes(zeros[i-1], zeros[i-1])
	}
	return zeros
}

func hashLeaf(commitment Commitment) Hash {
	return sha256.Sum256(commitment[:])
}

func hashNodes(left, right Hash) Hash {
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return sha256.Sum256(buf[:])
}
