package keymap_test

import (
	"testing"

	"github.com/Alia5/keyscan/keymap"
	"github.com/Alia5/keyscan/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout(t *testing.T) {
	l := keymap.MustDefault()

	c, ok := l.Lookup("FUN")
	assert.True(t, ok)
	assert.Equal(t, keymap.KeyFun, c)

	_, ok = l.Lookup("missing")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	l := keymap.MustDefault()

	type testCase struct {
		name     string
		expr     string
		expected scan.Code
		wantErr  bool
	}

	cases := []testCase{
		{name: "empty", expr: "", expected: 0},
		{name: "single", expr: "up", expected: keymap.KeyUp},
		{name: "pipe", expr: "up|dn", expected: keymap.KeyUp | keymap.KeyDn},
		{name: "plus with spaces", expr: " fun + ent ", expected: keymap.KeyFun | keymap.KeyEnt},
		{name: "hex", expr: "0x101", expected: 0x101},
		{name: "mixed", expr: "fun|0x2", expected: 0x102},
		{name: "unknown", expr: "up|nope", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := l.Parse(tc.expr)
			if tc.wantErr {
				assert.ErrorIs(t, err, keymap.ErrUnknownKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, c)
		})
	}

	c, err := l.ParseList([]string{"up", "dn|lt"})
	require.NoError(t, err)
	assert.Equal(t, scan.Code(0x7), c)
}

func TestNewErrors(t *testing.T) {
	_, err := keymap.New(map[string]int{"a": 64})
	assert.ErrorIs(t, err, keymap.ErrBit)

	_, err = keymap.New(map[string]int{"a": 1, "b": 1})
	assert.ErrorIs(t, err, keymap.ErrDuplicate)
}

func TestFormat(t *testing.T) {
	l := keymap.MustDefault()
	assert.Equal(t, "NONE", l.Format(0))
	assert.Equal(t, "UP", l.Format(keymap.KeyUp))
	assert.Equal(t, "UP|FUN", l.Format(keymap.KeyUp|keymap.KeyFun))
	assert.Equal(t, "DN|0x400", l.Format(keymap.KeyDn|0x400))
	assert.Equal(t, []string{"lt", "esc"}, l.Names(keymap.KeyLt|keymap.KeyEsc))
}

func TestDescribe(t *testing.T) {
	l := keymap.MustDefault()
	cfg := scan.DefaultConfig()

	assert.Equal(t, "NONE", l.Describe(scan.Decode(cfg, 0)))
	assert.Equal(t, "UP press", l.Describe(scan.Decode(cfg, 0x0001)))
	assert.Equal(t, "FUN+UP press", l.Describe(scan.Decode(cfg, 0x0101)))
	assert.Equal(t, "FUN shift", l.Describe(scan.Decode(cfg, 0x0100)))
	assert.Equal(t, "DN long-inverted", l.Describe(scan.Decode(cfg, 0xFFFD)))
}
