package turing

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// NumBanks is the number of saved pattern slots in the Pattern Store
const NumBanks = 8

// RegisterBits is the width of the working register
const RegisterBits = 16

// StepLengths are the allowed pattern lengths, in table order
var StepLengths = [...]int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 15, 16}

// NumStepLengths is the size of the length table
const NumStepLengths = len(StepLengths)

// DefaultLengthIndex points at length 8
const DefaultLengthIndex = 6

func bitRead(reg uint16, idx int) bool {
	return reg&(1<<uint(idx)) != 0
}

func bitWrite(reg uint16, idx int, val bool) uint16 {
	if val {
		return reg | (1 << uint(idx))
	}
	return reg &^ (1 << uint(idx))
}

// Rotate rotates a 16-bit register left by amt (right when amt is negative)
func Rotate(reg uint16, amt int) uint16 {
	return bits.RotateLeft16(reg, amt)
}

// Norm returns a register with the low length bits of reg copied into it
// enough times to fill all 16 bits. The result is periodic with period length.
func Norm(reg uint16, length int) uint16 {
	if length <= 0 || length >= RegisterBits {
		return reg
	}
	mask := uint16(1)<<uint(length) - 1
	seed := reg & mask
	var ret uint16
	for pos := 0; pos < RegisterBits; pos += length {
		ret |= seed << uint(pos)
	}
	return ret
}

// Wrap constrains n to [lo, hi] (inclusive), wrapping around instead of clipping
func Wrap[T constraints.Signed](n, lo, hi T) T {
	if lo <= n && n <= hi {
		return n
	}
	span := hi - lo + 1
	if span <= 0 {
		return hi
	}
	n = (n - lo) % span
	if n < 0 {
		n += span
	}
	return n + lo
}

// PulseIt derives the 8 trigger outputs from the visible pattern.
// Bit 0 follows the register, bit 1 is its inverse, and the rest are fixed
// pairings picked by ear.
func PulseIt(reg uint16) uint8 {
	in := uint8(reg & 0xFF)
	b := func(i uint) uint8 { return (in >> i) & 1 }

	out := b(0)
	out |= (b(0) ^ 1) << 1
	out |= (b(0) & b(3)) << 2
	out |= (b(2) & b(7)) << 3
	out |= (b(1) ^ b(6)) << 4
	out |= (b(0) ^ b(4)) << 5
	out |= (b(3) ^ b(7)) << 6
	out |= (b(2) ^ b(5)) << 7
	return out
}
