package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/keyscan/scan"
)

// TraceOutput is bound into the commands. A nil W disables tick traces.
type TraceOutput struct {
	W io.Writer
}

// TickLogger writes one line per scan tick. It implements scan.Tracer.
type TickLogger struct {
	w      io.Writer
	mu     sync.Mutex
	now    func() time.Time
	idle   bool
	digits int
}

// NewTick returns a TickLogger writing to w with codes padded to the width of
// cfg. A nil writer yields a logger that drops everything. When idle is false,
// ticks with nothing set and nothing emitted are skipped.
func NewTick(w io.Writer, cfg scan.Config, idle bool) *TickLogger {
	return &TickLogger{
		w:      w,
		now:    time.Now,
		idle:   idle,
		digits: cfg.Width() / 4,
	}
}

// Trace formats t as
//
//	2006/01/02 15:04:05 tick 12 raw 0x0001 confirmed 0x0001 pressed 0x0000 released 0x0000 emitted [0xfffe]
func (l *TickLogger) Trace(t scan.Trace) {
	if l == nil || l.w == nil {
		return
	}
	if !l.idle && t.Raw == 0 && t.Confirmed == 0 && t.Released == 0 && len(t.Emitted) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s tick %d raw %s confirmed %s pressed %s released %s emitted [",
		l.now().Format("2006/01/02 15:04:05"),
		t.Tick,
		l.hex(t.Raw),
		l.hex(t.Confirmed),
		l.hex(t.Pressed),
		l.hex(t.Released))
	for i, c := range t.Emitted {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(l.hex(c))
	}
	sb.WriteString("]\n")

	l.mu.Lock()
	_, _ = io.WriteString(l.w, sb.String())
	l.mu.Unlock()
}

func (l *TickLogger) hex(c scan.Code) string {
	return fmt.Sprintf("%#0*x", l.digits+2, uint64(c))
}
