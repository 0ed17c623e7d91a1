// Package scan turns periodic raw samples of up to 64 momentary inputs into a
// buffered stream of classified key codes.
//
// A Scanner is driven by calling Tick every 20-50ms. Each tick samples the
// inputs once, debounces them, detects releases and long presses, applies the
// shift modifier and pushes zero or more codes into a ring buffer that a
// consumer drains with Read. Tick and the consumer methods may be called from
// different goroutines; Tick itself must not be called concurrently.
package scan

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/keyscan/ring"
)

// ErrNoSampler is returned by New when no sampler is given.
var ErrNoSampler = errors.New("scan: sampler is nil")

// Sampler returns the current level of every input, asserted bits set.
type Sampler interface {
	Sample() Code
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func() Code

func (f SamplerFunc) Sample() Code { return f() }

// Configurer is implemented by samplers that need one-time preparation of
// their inputs before the first sample.
type Configurer interface {
	Configure() error
}

// State is the data carried between ticks.
type State struct {
	PrevRaw       Code
	PrevConfirmed Code
	Shift         Code
	Suppress      Code
	// Countdown is the number of stable ticks left before the next long press.
	Countdown int
}

// Trace describes one tick. Emitted is only valid during the Trace call.
type Trace struct {
	Tick      uint64
	Raw       Code
	Confirmed Code
	Pressed   Code
	Released  Code
	Emitted   []Code
}

// Tracer observes every tick.
type Tracer interface {
	Trace(t Trace)
}

// Option configures optional Scanner collaborators.
type Option func(*Scanner)

// WithLogger sets the logger used for per-event debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer installs a per-tick observer.
func WithTracer(t Tracer) Option {
	return func(s *Scanner) { s.tracer = t }
}

// Scanner owns the debounce state and event buffer of one input device.
type Scanner struct {
	cfg     Config
	sampler Sampler
	keys    Code
	mask    Code
	st      State
	buf     *ring.Buffer[Code]
	tick    uint64
	emitted []Code

	logger *slog.Logger
	tracer Tracer
}

// New validates cfg and returns a Scanner reading from sampler. If sampler
// implements Configurer it is configured here.
func New(cfg Config, sampler Sampler, opts ...Option) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, ErrNoSampler
	}
	buf, err := ring.New[Code](cfg.BufferSize)
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		cfg:     cfg,
		sampler: sampler,
		keys:    keyMask(cfg.MaxKeys),
		mask:    cfg.Mask(),
		buf:     buf,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	if c, ok := sampler.(Configurer); ok {
		if err := c.Configure(); err != nil {
			return nil, fmt.Errorf("scan: configure inputs: %w", err)
		}
	}
	return s, nil
}

// Tick runs one scan cycle.
func (s *Scanner) Tick() {
	s.emitted = s.emitted[:0]

	raw := s.sampler.Sample() & s.keys
	confirmed := Debounce(s.st.PrevRaw, raw, s.st.PrevConfirmed)
	released := Released(s.st.PrevConfirmed, confirmed)
	pressed := Pressed(s.st.PrevConfirmed, confirmed)

	if s.cfg.LongPress {
		s.trackLongPress(confirmed)
	}
	if released != 0 {
		s.composeShort(released, confirmed)
	}

	s.st.PrevRaw = raw
	s.st.PrevConfirmed = confirmed
	s.tick++

	if s.tracer != nil {
		s.tracer.Trace(Trace{
			Tick:      s.tick,
			Raw:       raw,
			Confirmed: confirmed,
			Pressed:   pressed,
			Released:  released,
			Emitted:   s.emitted,
		})
	}
}

func (s *Scanner) emit(code Code) {
	s.buf.Push(code)
	s.emitted = append(s.emitted, code)
	s.logger.Debug("key event", "tick", s.tick+1, "code", fmt.Sprintf("%#x", uint64(code)))
}

// Read returns the oldest pending code, or None.
func (s *Scanner) Read() Code {
	c, ok := s.buf.Pop()
	if !ok {
		return None
	}
	return c
}

// Pending returns the number of unread codes.
func (s *Scanner) Pending() int {
	return s.buf.Len()
}

// Flush drops all unread codes. Shift and suppression state are kept.
func (s *Scanner) Flush() {
	s.buf.Flush()
}

// State returns a copy of the carried state. It must not be called
// concurrently with Tick.
func (s *Scanner) State() State {
	return s.st
}

// Config returns the configuration the scanner was built with.
func (s *Scanner) Config() Config {
	return s.cfg
}

// Ticks returns the number of completed ticks.
func (s *Scanner) Ticks() uint64 {
	return s.tick
}
