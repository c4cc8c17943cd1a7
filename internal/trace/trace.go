// Package trace replays scripted sequences of cache operations.
//
// A script is YAML:
//
//	name: recursion
//	ops:
//	  - {op: enter}
//	  - {op: alloc, site: a, size: 64, write: "hi"}
//	  - {op: realloc, site: a, size: 256, check: "hi"}
//	  - {op: fail, above: 1024}
//	  - {op: alloc, site: a, size: 4096, error: true}
//	  - {op: heal}
//	  - {op: leave}
//	  - {op: release, depth: 0}
//	  - {op: expect, live: 0, hits: 0}
//
// Sites are named; each name maps to one cache key for the whole replay.
package trace

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Operation names.
const (
	OpAlloc   = "alloc"
	OpRealloc = "realloc"
	OpEnter   = "enter"
	OpLeave   = "leave"
	OpRelease = "release"
	OpExpect  = "expect"
	OpFail    = "fail"
	OpHeal    = "heal"
)

// ErrInvalidScript indicates a malformed script.
var ErrInvalidScript = errors.New("trace: invalid script")

// Script is a named list of operations.
type Script struct {
	Name string `yaml:"name"`
	Ops  []Op   `yaml:"ops"`
}

// Op is one scripted step. Which fields apply depends on Op.
type Op struct {
	Op string `yaml:"op"`

	// alloc, realloc
	Site  string `yaml:"site,omitempty"`
	Size  int    `yaml:"size,omitempty"`
	Write string `yaml:"write,omitempty"` // copied to the start of the buffer
	Check string `yaml:"check,omitempty"` // expected buffer prefix
	Error bool   `yaml:"error,omitempty"` // expect an out-of-memory failure

	// release
	Depth int `yaml:"depth,omitempty"`

	// fail: requests above this many bytes fail
	Above int `yaml:"above,omitempty"`

	// expect
	Live   *int64 `yaml:"live,omitempty"`
	Allocs *int64 `yaml:"allocs,omitempty"`
	Hits   *int64 `yaml:"hits,omitempty"`
	Keys   *int   `yaml:"keys,omitempty"`
}

// Parse decodes and validates a script.
func Parse(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("trace: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load parses the script at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks every op is known and carries the fields it needs.
func (s *Script) Validate() error {
	if len(s.Ops) == 0 {
		return fmt.Errorf("%w: no ops", ErrInvalidScript)
	}
	for i, op := range s.Ops {
		switch op.Op {
		case OpAlloc, OpRealloc:
			if op.Site == "" {
				return fmt.Errorf("%w: op %d (%s): missing site", ErrInvalidScript, i, op.Op)
			}
			if op.Size < 0 {
				return fmt.Errorf("%w: op %d (%s): negative size", ErrInvalidScript, i, op.Op)
			}
			if len(op.Write) > op.Size {
				return fmt.Errorf("%w: op %d (%s): write longer than size", ErrInvalidScript, i, op.Op)
			}
		case OpFail:
			if op.Above < 0 {
				return fmt.Errorf("%w: op %d (fail): negative threshold", ErrInvalidScript, i)
			}
		case OpEnter, OpLeave, OpRelease, OpExpect, OpHeal:
		default:
			return fmt.Errorf("%w: op %d: unknown op %q", ErrInvalidScript, i, op.Op)
		}
	}
	return nil
}
