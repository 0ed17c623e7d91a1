package sampler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/keyscan/keymap"
	"github.com/Alia5/keyscan/scan"

	"golang.org/x/term"
)

const ctrlC = 0x03

var ErrBinding = errors.New("binding must map a single character to a key")

// DefaultBindings maps terminal characters to the default front panel keys.
var DefaultBindings = map[string]string{
	"w":     "up",
	"s":     "dn",
	"a":     "lt",
	"d":     "rt",
	"enter": "ent",
	"x":     "esc",
	"+":     "inc",
	"-":     "dec",
	"f":     "fun",
}

var namedChars = map[string]byte{
	"enter": '\r',
	"space": ' ',
	"tab":   '\t',
}

// ParseBindings resolves character to key name bindings against layout.
func ParseBindings(bindings map[string]string, layout *keymap.Layout) (map[byte]scan.Code, error) {
	out := make(map[byte]scan.Code, len(bindings))
	for ch, name := range bindings {
		b, ok := namedChars[strings.ToLower(ch)]
		if !ok {
			if len(ch) != 1 {
				return nil, fmt.Errorf("%q: %w", ch, ErrBinding)
			}
			b = ch[0]
		}
		code, err := layout.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", ch, err)
		}
		out[b] |= code
	}
	return out, nil
}

// Terminal samples a keyboard attached to a terminal. Terminals only report
// key presses, so every byte asserts its bound key for the hold window. The
// terminal's own autorepeat refreshes the window while a key is held down.
type Terminal struct {
	in       io.Reader
	fd       int
	bindings map[byte]scan.Code
	hold     time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	lastSeen map[scan.Code]time.Time
	state    *term.State
	done     chan struct{}
	doneOnce sync.Once
}

// NewTerminal returns a Terminal reading from in. If in is a TTY it is
// switched to raw mode by Configure.
func NewTerminal(in *os.File, bindings map[byte]scan.Code, hold time.Duration, logger *slog.Logger) *Terminal {
	t := newTerminal(in, bindings, hold, logger)
	t.fd = int(in.Fd())
	return t
}

func newTerminal(in io.Reader, bindings map[byte]scan.Code, hold time.Duration, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Terminal{
		in:       in,
		fd:       -1,
		bindings: bindings,
		hold:     hold,
		now:      time.Now,
		logger:   logger,
		lastSeen: make(map[scan.Code]time.Time),
		done:     make(chan struct{}),
	}
}

// Configure puts the terminal in raw mode and starts reading input. It is
// called once by scan.New.
func (t *Terminal) Configure() error {
	if t.fd >= 0 && term.IsTerminal(t.fd) {
		st, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("terminal raw mode: %w", err)
		}
		t.mu.Lock()
		t.state = st
		t.mu.Unlock()
	} else {
		t.logger.Warn("input is not a terminal; key releases are inferred from the hold window only")
	}
	go t.readLoop()
	return nil
}

// Close restores the terminal mode.
func (t *Terminal) Close() error {
	t.finish()
	t.mu.Lock()
	st := t.state
	t.state = nil
	t.mu.Unlock()
	if st != nil {
		return term.Restore(t.fd, st)
	}
	return nil
}

// Done is closed when the input ends or Ctrl-C is read.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

func (t *Terminal) finish() {
	t.doneOnce.Do(func() { close(t.done) })
}

func (t *Terminal) readLoop() {
	buf := make([]byte, 64)
	for {
		n, err := t.in.Read(buf)
		if n > 0 && !t.feed(buf[:n]) {
			t.finish()
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.logger.Error("terminal read failed", "error", err)
			}
			t.finish()
			return
		}
	}
}

// feed records the keys in p. It returns false when Ctrl-C was read.
func (t *Terminal) feed(p []byte) bool {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range p {
		if b == ctrlC {
			return false
		}
		code, ok := t.bindings[b]
		if !ok {
			t.logger.Debug("unbound key", "byte", fmt.Sprintf("%#02x", b))
			continue
		}
		t.lastSeen[code] = now
	}
	return true
}

// Sample returns every key seen within the hold window.
func (t *Terminal) Sample() scan.Code {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	var out scan.Code
	for code, seen := range t.lastSeen {
		if now.Sub(seen) < t.hold {
			out |= code
			continue
		}
		delete(t.lastSeen, code)
	}
	return out
}
