package scan

// Emitted codes carry no kind tag; the kind follows from the bit pattern and
// the configured masks. The helpers below recover it. Short presses and
// repeating long presses produce the same pattern and cannot be told apart.

// Kind is the class of an emitted code.
type Kind int

const (
	KindNone Kind = iota
	KindPress
	KindShift
	KindLongPressInverted
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPress:
		return "press"
	case KindShift:
		return "shift"
	case KindLongPressInverted:
		return "long-inverted"
	default:
		return "unknown"
	}
}

// Event is a decoded code.
type Event struct {
	Code     Code
	Kind     Kind
	Keys     Code // key bits without the shift modifier
	Shift    Code // shift modifier bits applied to Keys
	Inverted bool
}

// IsNone reports whether c is the "no event" value.
func IsNone(c Code) bool {
	return c == None
}

// IsLongPressInverted reports whether c is the complement of a held
// single-shot level. When the key count fills the whole Code width a regular
// code whose complement falls inside the single-shot and shift masks is
// indistinguishable from an inverted one and is reported as inverted.
func IsLongPressInverted(cfg Config, c Code) bool {
	if c == None {
		return false
	}
	inv := ^c & cfg.Mask()
	return inv != 0 &&
		inv&^(cfg.SingleShotMask|cfg.ShiftMask) == 0 &&
		inv&cfg.SingleShotMask != 0
}

// IsShiftComposed reports whether c carries the shift modifier on top of at
// least one other key.
func IsShiftComposed(cfg Config, c Code) bool {
	e := Decode(cfg, c)
	return e.Keys != 0 && e.Shift != 0
}

// Keys returns the key bits of c with inversion and shift removed.
func Keys(cfg Config, c Code) Code {
	return Decode(cfg, c).Keys
}

// Decode splits c into its parts.
func Decode(cfg Config, c Code) Event {
	e := Event{Code: c}
	if c == None {
		return e
	}
	d := c
	if IsLongPressInverted(cfg, c) {
		d = ^c & cfg.Mask()
		e.Inverted = true
	}
	e.Keys = d &^ cfg.ShiftMask
	e.Shift = d & cfg.ShiftMask
	switch {
	case e.Inverted:
		e.Kind = KindLongPressInverted
	case e.Keys == 0:
		// a shift key on its own
		e.Keys, e.Shift = e.Shift, 0
		e.Kind = KindShift
	default:
		e.Kind = KindPress
	}
	return e
}
