package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Alia5/keyscan/internal/cmd"
	"github.com/Alia5/keyscan/internal/log"
	"github.com/Alia5/keyscan/keymap"
	"github.com/Alia5/keyscan/scan"
	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

func defaultLayout() cmd.Layout {
	return cmd.Layout{
		MaxKeys:        11,
		BufferSize:     8,
		LongPress:      true,
		Shift:          []string{"fun"},
		SingleShot:     []string{"up", "dn"},
		PressDelay:     40,
		RepeatInterval: 5,
	}
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLayoutBuild(t *testing.T) {
	l := defaultLayout()
	cfg, km, err := l.Build()
	require.NoError(t, err)
	assert.Equal(t, scan.DefaultConfig(), cfg)
	assert.Equal(t, "UP", km.Format(keymap.KeyUp))

	l.Keys = map[string]int{"a": 0, "shift": 3}
	l.Shift = []string{"shift"}
	l.SingleShot = nil
	l.MaxKeys = 4
	cfg, km, err = l.Build()
	require.NoError(t, err)
	assert.Equal(t, scan.Code(0x8), cfg.ShiftMask)
	assert.Equal(t, "A|SHIFT", km.Format(0x9))

	l.Shift = []string{"missing"}
	_, _, err = l.Build()
	assert.ErrorIs(t, err, keymap.ErrUnknownKey)

	l = defaultLayout()
	l.BufferSize = 3
	_, _, err = l.Build()
	assert.ErrorIs(t, err, scan.ErrBufferSize)
}

func TestLayoutFlagDefaults(t *testing.T) {
	var cli struct {
		Scan cmd.Layout `embed:"" prefix:"scan."`
	}
	p, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	_, err = p.Parse(nil)
	require.NoError(t, err)

	cfg, _, err := cli.Scan.Build()
	require.NoError(t, err)
	assert.Equal(t, scan.DefaultConfig(), cfg)
}

func TestReplay(t *testing.T) {
	script := writeScript(t, "press.txt", `up *2
- *2
fun *2
- *2
up *2
- *2
`)

	t.Run("read every tick", func(t *testing.T) {
		var out, traces bytes.Buffer
		r := &cmd.Replay{Layout: defaultLayout(), Script: script, Tail: 2, ReadEvery: 1}
		require.NoError(t, r.Execute(&out, discard(), log.TraceOutput{W: &traces}))

		assert.Equal(t, "tick 4: UP press (0x0001)\n"+
			"tick 8: FUN shift (0x0100)\n"+
			"tick 12: FUN+UP press (0x0101)\n", out.String())
		assert.Contains(t, traces.String(), "tick 14 raw 0x0000")
	})

	t.Run("buffer overwrite when read late", func(t *testing.T) {
		var out bytes.Buffer
		l := defaultLayout()
		l.BufferSize = 2
		r := &cmd.Replay{Layout: l, Script: script, Tail: 2}
		require.NoError(t, r.Execute(&out, discard(), log.TraceOutput{}))

		assert.Equal(t, "tick 14: FUN shift (0x0100)\n"+
			"tick 14: FUN+UP press (0x0101)\n", out.String())
	})
}

func TestReplayLongPress(t *testing.T) {
	script := writeScript(t, "long.yaml", `samples:
  - keys: dn
    repeat: 8
  - keys: "-"
    repeat: 2
  - keys: rt
    repeat: 7
`)
	l := defaultLayout()
	l.PressDelay = 3
	l.RepeatInterval = 2

	var out bytes.Buffer
	r := &cmd.Replay{Layout: l, Script: script, Tail: 2, ReadEvery: 1}
	require.NoError(t, r.Execute(&out, discard(), log.TraceOutput{}))

	assert.Equal(t, "tick 5: DN long-inverted (0xfffd)\n"+
		"tick 15: RT press (0x0008)\n"+
		"tick 17: RT press (0x0008)\n", out.String())
}

func TestReplayMissingScript(t *testing.T) {
	r := &cmd.Replay{Layout: defaultLayout(), Script: filepath.Join(t.TempDir(), "nope.txt"), ReadEvery: 1}
	assert.Error(t, r.Execute(&bytes.Buffer{}, discard(), log.TraceOutput{}))
}

func TestConfigInitRender(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		data, err := (&cmd.ConfigInit{Command: "run", Format: "json"}).Render()
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, "20ms", m["period"])
		scanSection, ok := m["scan"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(11), scanSection["max-keys"])
		assert.Equal(t, []any{"up", "dn"}, scanSection["single-shot"])
		assert.Equal(t, true, scanSection["long-press"])
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := (&cmd.ConfigInit{Command: "replay", Format: "yml"}).Render()
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, yaml.Unmarshal(data, &m))
		assert.Equal(t, 1, m["read-every"])
		assert.NotContains(t, m, "script")
	})

	t.Run("toml", func(t *testing.T) {
		data, err := (&cmd.ConfigInit{Command: "run", Format: "toml"}).Render()
		require.NoError(t, err)
		tree, err := toml.LoadBytes(data)
		require.NoError(t, err)
		assert.Equal(t, int64(40), tree.Get("scan.press-delay"))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := (&cmd.ConfigInit{Command: "run", Format: "xml"}).Render()
		assert.Error(t, err)
		_, err = (&cmd.ConfigInit{Command: "server", Format: "json"}).Render()
		assert.Error(t, err)
	})
}

func TestConfigInitWrites(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "sub", "run.toml")
	c := &cmd.ConfigInit{Command: "run", Format: "toml", Output: dest}
	require.NoError(t, c.Run())
	assert.FileExists(t, dest)

	assert.Error(t, c.Run(), "refuses to overwrite")
	c.Force = true
	assert.NoError(t, c.Run())
}

func TestRunFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	run := &cmd.Run{
		Layout: defaultLayout(),
		Period: 20 * time.Millisecond,
		Poll:   10 * time.Millisecond,
		Hold:   80 * time.Millisecond,
		Bind:   map[string]string{"w": "up"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	errCh := make(chan error, 1)
	go func() {
		errCh <- run.Start(ctx, r, &out, discard(), log.TraceOutput{})
	}()

	time.Sleep(50 * time.Millisecond)
	_, err = w.Write([]byte("w"))
	require.NoError(t, err)
	time.Sleep(400 * time.Millisecond)
	require.NoError(t, w.Close())

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("run did not stop on end of input")
	}
	assert.Equal(t, "UP press (0x1)\r\n", out.String())
}
