package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/joshuapare/tempalloc/internal/report"
)

func TestBenchCommand(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		json        bool
		wantErr     bool
		wantRows    int
		wantContain []string
	}{
		{
			name:        "all patterns",
			wantContain: []string{"recursive/heap", "recursive/cache", "loop/heap", "loop/cache"},
		},
		{
			name:        "loop only",
			pattern:     "loop",
			wantContain: []string{"loop/heap", "loop/cache"},
		},
		{
			name:     "json",
			json:     true,
			wantRows: 4,
		},
		{
			name:    "unknown pattern",
			pattern: "spiral",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			benchDepth, benchIterations = 4, 20
			benchPattern = tt.pattern
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runBench(context.Background())
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runBench() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
			}
			if tt.wantErr {
				return
			}
			assertContains(t, output, tt.wantContain)

			if tt.json {
				var rows []report.Row
				if err := json.Unmarshal([]byte(output), &rows); err != nil {
					t.Fatalf("invalid JSON: %v\nOutput: %s", err, output)
				}
				if len(rows) != tt.wantRows {
					t.Errorf("got %d rows, want %d", len(rows), tt.wantRows)
				}
			}
		})
	}
}

func TestBenchParams_Overrides(t *testing.T) {
	resetFlags(t)
	t.Setenv("TEMPALLOC_BENCH_SITES", "2")
	benchDepth, benchSeed = 3, 99

	p, err := benchParams()
	if err != nil {
		t.Fatalf("benchParams() error = %v", err)
	}
	if p.Depth != 3 || p.Sites != 2 || p.Seed != 99 {
		t.Errorf("unexpected params %+v", p)
	}
	if p.Iterations != 1000 {
		t.Errorf("Iterations = %d, want config default 1000", p.Iterations)
	}
}
