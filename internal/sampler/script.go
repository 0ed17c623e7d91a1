// Package sampler provides scan.Sampler implementations for the keyscan
// commands: a scripted sampler for deterministic replays and a terminal
// sampler for interactive use.
package sampler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Alia5/keyscan/keymap"
	"github.com/Alia5/keyscan/scan"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

var (
	ErrFormat = errors.New("unsupported script format")
	ErrRepeat = errors.New("invalid repeat count")
)

// Script formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Step is one script entry: a key expression held for Repeat samples. A
// zero Repeat holds it for one sample.
type Step struct {
	Keys   string `yaml:"keys" toml:"keys"`
	Repeat int    `yaml:"repeat" toml:"repeat"`
}

type scriptFile struct {
	Samples []Step `yaml:"samples" toml:"samples"`
}

// Script replays a fixed list of raw samples. Once exhausted it samples every
// key up.
type Script struct {
	samples []scan.Code
	pos     int
}

// NewScript returns a Script over samples.
func NewScript(samples ...scan.Code) *Script {
	return &Script{samples: samples}
}

// FormatFromPath picks the script format from the file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatText
	}
}

// LoadScript reads a script file.
func LoadScript(path string, layout *keymap.Layout) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	s, err := ParseScript(f, FormatFromPath(path), layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScript decodes a script in the given format.
//
// Text scripts hold one key expression per line with an optional "*N"
// repeat suffix, N >= 1. "-" is an idle sample and "#" starts a comment:
//
//	up *2
//	- *2
//
// YAML and TOML scripts hold a "samples" list of {keys, repeat} entries.
func ParseScript(r io.Reader, format string, layout *keymap.Layout) (*Script, error) {
	var steps []Step
	switch format {
	case FormatText:
		var err error
		if steps, err = parseText(r); err != nil {
			return nil, err
		}
	case FormatYAML, FormatTOML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		var sf scriptFile
		if format == FormatYAML {
			err = yaml.Unmarshal(data, &sf)
		} else {
			err = toml.Unmarshal(data, &sf)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s script: %w", format, err)
		}
		steps = sf.Samples
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrFormat)
	}
	return compile(steps, layout)
}

func parseText(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		step := Step{Keys: text, Repeat: 1}
		if i := strings.LastIndexByte(text, '*'); i >= 0 {
			n, err := strconv.Atoi(strings.TrimSpace(text[i+1:]))
			if err != nil {
				return nil, fmt.Errorf("line %d: bad repeat: %w", line, err)
			}
			if n < 1 {
				return nil, fmt.Errorf("line %d: repeat %d: %w", line, n, ErrRepeat)
			}
			step.Keys = strings.TrimSpace(text[:i])
			step.Repeat = n
		}
		steps = append(steps, step)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func compile(steps []Step, layout *keymap.Layout) (*Script, error) {
	s := &Script{}
	for i, st := range steps {
		if st.Repeat < 0 {
			return nil, fmt.Errorf("step %d: repeat %d: %w", i+1, st.Repeat, ErrRepeat)
		}
		// an omitted repeat decodes as 0
		n := max(st.Repeat, 1)
		var code scan.Code
		if keys := strings.TrimSpace(st.Keys); keys != "-" {
			var err error
			if code, err = layout.Parse(keys); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		for range n {
			s.samples = append(s.samples, code)
		}
	}
	return s, nil
}

// Sample returns the next scripted sample.
func (s *Script) Sample() scan.Code {
	if s.pos >= len(s.samples) {
		return 0
	}
	c := s.samples[s.pos]
	s.pos++
	return c
}

// Len returns the total number of scripted samples.
func (s *Script) Len() int { return len(s.samples) }

// Done reports whether every scripted sample has been returned.
func (s *Script) Done() bool { return s.pos >= len(s.samples) }
