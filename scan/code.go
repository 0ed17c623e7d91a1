package scan

// Code is a bitfield of inputs, one bit per key. Bit positions are fixed by
// configuration. The zero value means "no event" and is never a valid key.
type Code uint64

// None is returned by Read when no event is pending.
const None Code = 0

// MaxKeys is the largest number of inputs a Code can carry.
const MaxKeys = 64

// Width returns the storage width in bits selected for n inputs: 8, 16, 32 or
// 64. It returns 0 when n is out of range.
func Width(n int) int {
	switch {
	case n < 1 || n > MaxKeys:
		return 0
	case n > 32:
		return 64
	case n > 16:
		return 32
	case n > 8:
		return 16
	default:
		return 8
	}
}

// widthMask returns all ones for the given width in bits.
func widthMask(bits int) Code {
	if bits >= 64 {
		return ^Code(0)
	}
	return Code(1)<<bits - 1
}

// keyMask returns a mask of the low n bits.
func keyMask(n int) Code {
	return widthMask(n)
}
