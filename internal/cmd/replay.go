package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/keyscan/internal/log"
	"github.com/Alia5/keyscan/internal/sampler"
	"github.com/Alia5/keyscan/scan"
)

// Replay feeds a sample script through a scanner without any timing.
type Replay struct {
	Layout    Layout `embed:"" prefix:"scan."`
	Script    string `arg:"" help:"Sample script (.txt, .yaml, .yml or .toml)" type:"existingfile"`
	Tail      int    `help:"Idle ticks appended after the script so the last release is seen" default:"2"`
	ReadEvery int    `help:"Drain the event buffer every N ticks; 0 drains only at the end" default:"1"`
}

// Run is called by Kong when the replay command is executed.
func (r *Replay) Run(logger *slog.Logger, trace log.TraceOutput) error {
	return r.Execute(os.Stdout, logger, trace)
}

// Execute runs the replay and writes one line per event to out.
func (r *Replay) Execute(out io.Writer, logger *slog.Logger, trace log.TraceOutput) error {
	cfg, km, err := r.Layout.Build()
	if err != nil {
		return err
	}
	script, err := sampler.LoadScript(r.Script, km)
	if err != nil {
		return err
	}
	if r.Tail < 0 || r.ReadEvery < 0 {
		return errors.New("tail and read-every must not be negative")
	}

	sc, err := scan.New(cfg, script,
		scan.WithLogger(logger),
		scan.WithTracer(log.NewTick(trace.W, cfg, true)),
	)
	if err != nil {
		return err
	}

	logger.Info("Replaying script", "file", r.Script, "samples", script.Len(), "tail", r.Tail)

	digits := cfg.Width()/4 + 2
	read := func() {
		for sc.Pending() > 0 {
			c := sc.Read()
			e := scan.Decode(cfg, c)
			fmt.Fprintf(out, "tick %d: %s (%#0*x)\n", sc.Ticks(), km.Describe(e), digits, uint64(c))
		}
	}

	total := script.Len() + r.Tail
	for i := 1; i <= total; i++ {
		sc.Tick()
		if r.ReadEvery > 0 && i%r.ReadEvery == 0 {
			read()
		}
	}
	read()

	logger.Debug("Replay finished", "ticks", sc.Ticks())
	return nil
}
