package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/keyscan/internal/log"
	"github.com/Alia5/keyscan/internal/sampler"
	"github.com/Alia5/keyscan/keymap"
	"github.com/Alia5/keyscan/scan"
)

const (
	minPeriod = 20 * time.Millisecond
	maxPeriod = 50 * time.Millisecond
)

// Run scans the terminal keyboard at a fixed period and prints key events.
type Run struct {
	Layout Layout            `embed:"" prefix:"scan."`
	Period time.Duration     `help:"Scan period; debounce and long press timing scale with it" default:"20ms" env:"KEYSCAN_PERIOD"`
	Poll   time.Duration     `help:"Interval at which the event buffer is drained" default:"100ms" env:"KEYSCAN_POLL"`
	Hold   time.Duration     `help:"How long a key stays asserted after its last terminal byte" default:"550ms" env:"KEYSCAN_HOLD"`
	Bind   map[string]string `help:"Terminal character to key bindings (enter, space and tab are named)" env:"KEYSCAN_BIND"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, trace log.TraceOutput) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, os.Stdin, os.Stdout, logger, trace)
}

// Start runs until ctx is done or the terminal input ends.
func (r *Run) Start(ctx context.Context, in *os.File, out io.Writer, logger *slog.Logger, trace log.TraceOutput) error {
	cfg, km, err := r.Layout.Build()
	if err != nil {
		return err
	}
	bind := r.Bind
	if len(bind) == 0 {
		bind = sampler.DefaultBindings
	}
	bindings, err := sampler.ParseBindings(bind, km)
	if err != nil {
		return err
	}
	if r.Period <= 0 || r.Poll <= 0 {
		return errors.New("period and poll must be positive")
	}
	if r.Period < minPeriod || r.Period > maxPeriod {
		logger.Warn("Scan period outside the 20-50ms window; debounce and long press timing will shift", "period", r.Period)
	}

	term := sampler.NewTerminal(in, bindings, r.Hold, logger)
	sc, err := scan.New(cfg, term,
		scan.WithLogger(logger),
		scan.WithTracer(log.NewTick(trace.W, cfg, false)),
	)
	if err != nil {
		_ = term.Close()
		return err
	}
	defer func() {
		if err := term.Close(); err != nil {
			logger.Error("failed to restore terminal", "error", err)
		}
	}()

	logger.Info("Scanning terminal keyboard", "period", r.Period, "keys", cfg.MaxKeys, "buffer", cfg.BufferSize)
	logger.Info("Press Ctrl-C to quit")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		ticker := time.NewTicker(r.Period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-term.Done():
				cancel()
				return
			case <-ticker.C:
				sc.Tick()
			}
		}
	}()

	poll := time.NewTicker(r.Poll)
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			<-scanDone
			printEvents(out, sc, cfg, km, logger)
			return nil
		case <-poll.C:
			printEvents(out, sc, cfg, km, logger)
		}
	}
}

func printEvents(out io.Writer, sc *scan.Scanner, cfg scan.Config, km *keymap.Layout, logger *slog.Logger) {
	if n := sc.Pending(); n == cfg.BufferSize {
		logger.Warn("Event buffer full; oldest events may have been dropped", "pending", n)
	}
	for sc.Pending() > 0 {
		c := sc.Read()
		e := scan.Decode(cfg, c)
		// raw mode terminals need an explicit carriage return
		fmt.Fprintf(out, "%s (%#x)\r\n", km.Describe(e), uint64(c))
	}
}
