package domain

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

const amountBits = 128

// Amount is an unsigned 128 bit quantity of native tokens. Arithmetic is
// checked: results that do not fit 128 bits are errors, never wrapped.
type Amount uint256.Int

// NewAmount ...
func NewAmount(v uint64) Amount {
	return Amount(*uint256.NewInt(v))
}

// ParseAmount parses a base 10 string.
func ParseAmount(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	if v.BitLen() > amountBits {
		return Amount{}, ErrAmountOverflow
	}
	return Amount(*v), nil
}

// AmountFromLE16 decodes the 16 bytes little endian representation.
func AmountFromLE16(b [16]byte) Amount {
	var a Amount
	a[0] = binary.LittleEndian.Uint64(b[:8])
	a[1] = binary.LittleEndian.Uint64(b[8:])
	return a
}

// LE16 returns the 16 bytes little endian representation.
func (a Amount) LE16() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], a[0])
	binary.LittleEndian.PutUint64(b[8:], a[1])
	return b
}

func (a Amount) Add(b Amount) (Amount, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a.int(), b.int())
	if overflow || sum.BitLen() > amountBits {
		return Amount{}, ErrAmountOverflow
	}
	return Amount(*sum), nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a.int(), b.int())
	if underflow {
		return Amount{}, ErrAmountUnderflow
	}
	return Amount(*diff), nil
}

// Cmp returns -1, 0 or +1 like big.Int.Cmp.
func (a Amount) Cmp(b Amount) int {
	return a.int().Cmp(b.int())
}

func (a Amount) IsZero() bool {
	return a.int().IsZero()
}

// Uint64 returns the amount as uint64 and whether it fits.
func (a Amount) Uint64() (uint64, bool) {
	v := a.int()
	return v.Uint64(), v.IsUint64()
}

func (a Amount) String() string {
	return a.int().Dec()
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	v, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// SumAmounts adds up the given amounts.
func SumAmounts(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

func (a Amount) int() *uint256.Int {
	v := uint256.Int(a)
	return &v
}
