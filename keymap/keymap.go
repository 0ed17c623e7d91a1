// Package keymap assigns names to the bit positions of a scan.Code.
package keymap

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Alia5/keyscan/scan"
)

// Default key bits of the front panel layout.
const (
	KeyUp  scan.Code = 0x0001
	KeyDn  scan.Code = 0x0002
	KeyLt  scan.Code = 0x0004
	KeyRt  scan.Code = 0x0008
	KeyEnt scan.Code = 0x0010
	KeyEsc scan.Code = 0x0020
	KeyInc scan.Code = 0x0040
	KeyDec scan.Code = 0x0080
	KeyFun scan.Code = 0x0100
)

// Default maps key names to bit positions.
var Default = map[string]int{
	"up":  0,
	"dn":  1,
	"lt":  2,
	"rt":  3,
	"ent": 4,
	"esc": 5,
	"inc": 6,
	"dec": 7,
	"fun": 8,
}

var (
	ErrUnknownKey = errors.New("unknown key")
	ErrBit        = errors.New("bit position out of range")
	ErrDuplicate  = errors.New("bit position assigned twice")
)

// Layout is a bidirectional mapping between key names and bits.
type Layout struct {
	byName map[string]scan.Code
	names  []string // ordered by bit
	bits   []scan.Code
}

// New builds a Layout from name to bit position pairs. Names are case
// insensitive.
func New(keys map[string]int) (*Layout, error) {
	l := &Layout{byName: make(map[string]scan.Code, len(keys))}
	seen := make(map[int]string, len(keys))
	type entry struct {
		name string
		bit  int
	}
	var entries []entry
	for name, bit := range keys {
		name = strings.ToLower(strings.TrimSpace(name))
		if bit < 0 || bit >= scan.MaxKeys {
			return nil, fmt.Errorf("key %q bit %d: %w", name, bit, ErrBit)
		}
		if other, ok := seen[bit]; ok {
			return nil, fmt.Errorf("keys %q and %q share bit %d: %w", other, name, bit, ErrDuplicate)
		}
		seen[bit] = name
		entries = append(entries, entry{name, bit})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].bit < entries[j].bit })
	for _, e := range entries {
		c := scan.Code(1) << e.bit
		l.byName[e.name] = c
		l.names = append(l.names, e.name)
		l.bits = append(l.bits, c)
	}
	return l, nil
}

// MustDefault returns the default front panel layout.
func MustDefault() *Layout {
	l, err := New(Default)
	if err != nil {
		panic(err)
	}
	return l
}

// Lookup returns the bit of a single named key.
func (l *Layout) Lookup(name string) (scan.Code, bool) {
	c, ok := l.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Parse converts an expression like "up|fun", "up+dn" or "0x101" to a Code.
// An empty expression is zero.
func (l *Layout) Parse(expr string) (scan.Code, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, nil
	}
	var out scan.Code
	for _, part := range strings.FieldsFunc(expr, func(r rune) bool { return r == '|' || r == '+' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if c, ok := l.Lookup(part); ok {
			out |= c
			continue
		}
		n, err := strconv.ParseUint(part, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", part, ErrUnknownKey)
		}
		out |= scan.Code(n)
	}
	return out, nil
}

// ParseList combines several key expressions into one mask.
func (l *Layout) ParseList(exprs []string) (scan.Code, error) {
	var out scan.Code
	for _, e := range exprs {
		c, err := l.Parse(e)
		if err != nil {
			return 0, err
		}
		out |= c
	}
	return out, nil
}

// Names returns the names of the keys set in c, lowest bit first. Bits with no
// name are skipped.
func (l *Layout) Names(c scan.Code) []string {
	var out []string
	for i, b := range l.bits {
		if c&b != 0 {
			out = append(out, l.names[i])
		}
	}
	return out
}

// Format renders c as "UP|FUN". Unnamed bits are appended in hex.
func (l *Layout) Format(c scan.Code) string {
	if c == 0 {
		return "NONE"
	}
	var named scan.Code
	parts := make([]string, 0, len(l.bits))
	for i, b := range l.bits {
		if c&b != 0 {
			parts = append(parts, strings.ToUpper(l.names[i]))
			named |= b
		}
	}
	if rest := c &^ named; rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint64(rest)))
	}
	return strings.Join(parts, "|")
}

// Describe renders a decoded event, for example "FUN+UP long-inverted".
func (l *Layout) Describe(e scan.Event) string {
	if e.Kind == scan.KindNone {
		return "NONE"
	}
	s := l.Format(e.Keys)
	if e.Shift != 0 {
		s = l.Format(e.Shift) + "+" + s
	}
	return s + " " + e.Kind.String()
}
