package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

const (
	// PinataPrize is the amount a valid pinata solution is rewarded with.
	PinataPrize = 150

	pinataDataSize = 1 + 32

	nativeOpTransfer   byte = 0x00
	nativeOpInitialize byte = 0x01
)

// Hash is a sha256 digest.
type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash decodes the hex form of a hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	buf, err := hex.DecodeString(s)
	if err != nil || len(buf) != len(h) {
		return h, ErrMalformedTransaction
	}
	copy(h[:], buf)
	return h, nil
}

// ProgramId identifies an on-chain program.
type ProgramId [32]byte

var (
	// NativeTokenProgramId owns every account holding the native token.
	NativeTokenProgramId = ProgramId(sha256.Sum256([]byte("/LEE/v0.3/Program/NativeToken/")))
	// PinataProgramId owns pinata accounts.
	PinataProgramId = ProgramId(sha256.Sum256([]byte("/LEE/v0.3/Program/Pinata/")))
)

func (p ProgramId) String() string {
	return hex.EncodeToString(p[:])
}

// TransferInstruction encodes a native token transfer of the given amount.
func TransferInstruction(amount Amount) []byte {
	le := amount.LE16()
	return append([]byte{nativeOpTransfer}, le[:]...)
}

// InitializeInstruction encodes the registration of a fresh account.
func InitializeInstruction() []byte {
	return []byte{nativeOpInitialize}
}

// ParseTransferInstruction returns the amount of a transfer instruction.
func ParseTransferInstruction(instruction []byte) (Amount, error) {
	if len(instruction) != 17 || instruction[0] != nativeOpTransfer {
		return Amount{}, ErrInvalidInstruction
	}
	var le [16]byte
	copy(le[:], instruction[1:])
	return AmountFromLE16(le), nil
}

// IsInitializeInstruction ...
func IsInitializeInstruction(instruction []byte) bool {
	return bytes.Equal(instruction, InitializeInstruction())
}

// PinataChallenge is the puzzle stored in the data of a pinata account.
type PinataChallenge struct {
	Difficulty uint8
	Seed       [32]byte
}

// ParsePinataChallenge decodes difficulty (1 byte) || seed (32 bytes).
func ParsePinataChallenge(data []byte) (*PinataChallenge, error) {
	if len(data) != pinataDataSize || data[0] > 32 {
		return nil, ErrInvalidPinataData
	}
	c := &PinataChallenge{Difficulty: data[0]}
	copy(c.Seed[:], data[1:])
	return c, nil
}

// Bytes encodes the challenge as account data.
func (c PinataChallenge) Bytes() []byte {
	return append([]byte{c.Difficulty}, c.Seed[:]...)
}

// IsSolution checks that the leftmost Difficulty bytes of
// sha256(seed || solution_le16) are zero.
func (c PinataChallenge) IsSolution(solution uint64) bool {
	digest := c.digest(solution)
	for _, b := range digest[:c.Difficulty] {
		if b != 0 {
			return false
		}
	}
	return true
}

// Solve brute forces the smallest valid solution.
func (c PinataChallenge) Solve() uint64 {
	var solution uint64
	for !c.IsSolution(solution) {
		solution++
	}
	return solution
}

// Next returns the challenge that replaces this one once solved.
func (c PinataChallenge) Next() PinataChallenge {
	return PinataChallenge{
		Difficulty: c.Difficulty,
		Seed:       sha256.Sum256(c.Seed[:]),
	}
}

func (c PinataChallenge) digest(solution uint64) [32]byte {
	var buf [48]byte
	copy(buf[:32], c.Seed[:])
	binary.LittleEndian.PutUint64(buf[32:40], solution)
	return sha256.Sum256(buf[:])
}

// PinataInstruction encodes a solution as a 16 bytes little endian integer.
func PinataInstruction(solution uint64) []byte {
	le := NewAmount(solution).LE16()
	return le[:]
}

// ParsePinataInstruction returns the solution of a pinata instruction.
func ParsePinataInstruction(instruction []byte) (uint64, error) {
	if len(instruction) != 16 {
		return 0, ErrInvalidInstruction
	}
	var le [16]byte
	copy(le[:], instruction)
	solution, ok := AmountFromLE16(le).Uint64()
	if !ok {
		return 0, ErrInvalidInstruction
	}
	return solution, nil
}
