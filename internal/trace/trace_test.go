package trace

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tempalloc/cache"
	"github.com/joshuapare/tempalloc/heap"
)

func replay(t *testing.T, src string) error {
	t.Helper()
	s, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	r := NewReplayer(nil, nil)
	t.Cleanup(func() { _ = r.Close() })
	return r.Run(context.Background(), s)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "name: x\nops: []\n", "no ops"},
		{"unknown op", "ops:\n  - {op: jump}\n", `unknown op "jump"`},
		{"missing site", "ops:\n  - {op: alloc, size: 4}\n", "missing site"},
		{"negative size", "ops:\n  - {op: alloc, site: a, size: -4}\n", "negative size"},
		{"long write", "ops:\n  - {op: alloc, site: a, size: 2, write: abc}\n", "write longer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.ErrorIs(t, err, ErrInvalidScript)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("ops:\n  - {op: alloc, site: a, bytes: 4}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bytes")
}

func TestLoad_Testdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := Load(f)
			require.NoError(t, err)

			counting := heap.NewCounting(heap.NewGo())
			r := NewReplayer(counting, nil)
			require.NoError(t, r.Run(context.Background(), s))
			require.NoError(t, r.Close())
			assert.Zero(t, counting.Outstanding())
		})
	}
}

func TestRun_ExpectMismatch(t *testing.T) {
	err := replay(t, `
name: bad
ops:
  - {op: alloc, site: a, size: 8}
  - {op: expect, live: 9, hits: 3}
`)
	require.ErrorIs(t, err, ErrExpectation)
	assert.Contains(t, err.Error(), "bad: op 1 (expect)")
	assert.Contains(t, err.Error(), "live bytes 8, want 9")
	assert.Contains(t, err.Error(), "hits 0, want 3")

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
}

func TestRun_CheckMismatch(t *testing.T) {
	err := replay(t, `
ops:
  - {op: alloc, site: a, size: 8, write: "abc"}
  - {op: alloc, site: a, size: 64, check: "abc"}
`)
	require.ErrorIs(t, err, ErrExpectation)
}

func TestRun_ReallocCopies(t *testing.T) {
	err := replay(t, `
ops:
  - {op: realloc, site: a, size: 8, write: "abcdefgh"}
  - {op: realloc, site: a, size: 4, check: "abcd"}
  - {op: realloc, site: a, size: 64, check: "abcd"}
`)
	require.NoError(t, err)
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	err := replay(t, `
ops:
  - {op: alloc, site: a, size: 8, error: true}
`)
	require.ErrorIs(t, err, ErrExpectation)
}

func TestRun_LeaveWithoutEnter(t *testing.T) {
	err := replay(t, "ops:\n  - {op: leave}\n")
	require.ErrorIs(t, err, ErrExpectation)
}

func TestRun_SitesPersistAcrossScripts(t *testing.T) {
	r := NewReplayer(nil, nil)
	defer r.Close()

	first, err := Parse(strings.NewReader("ops:\n  - {op: alloc, site: a, size: 100}\n"))
	require.NoError(t, err)
	second, err := Parse(strings.NewReader("ops:\n  - {op: alloc, site: a, size: 60}\n  - {op: expect, hits: 1, keys: 1}\n"))
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), first))
	require.NoError(t, r.Run(context.Background(), second))
}

func TestRun_Canceled(t *testing.T) {
	s, err := Parse(strings.NewReader("ops:\n  - {op: enter}\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReplayer(nil, nil)
	defer r.Close()
	err = r.Run(ctx, s)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRun_TableFull(t *testing.T) {
	s, err := Parse(strings.NewReader("ops:\n  - {op: alloc, site: a, size: 1}\n  - {op: alloc, site: b, size: 1}\n"))
	require.NoError(t, err)

	r := NewReplayer(nil, &cache.Options{MaxKeys: 1})
	defer r.Close()
	err = r.Run(context.Background(), s)
	require.ErrorIs(t, err, cache.ErrTableFull)
}
