// Package report renders cache statistics as tables.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/tempalloc/cache"
)

// Format selects the table style.
type Format int

const (
	// Text draws a boxed table for terminals.
	Text Format = iota
	// Markdown draws a GitHub-flavored markdown table.
	Markdown
)

// Printer formats numbers with locale-aware digit grouping.
type Printer struct {
	p *message.Printer
}

// NewPrinter returns a printer for tag. An undetermined tag uses English.
func NewPrinter(tag language.Tag) *Printer {
	if tag == language.Und {
		tag = language.English
	}
	return &Printer{p: message.NewPrinter(tag)}
}

// Int formats n with digit grouping, e.g. 1,234,567.
func (p *Printer) Int(n int64) string {
	return p.p.Sprintf("%d", n)
}

// Bytes formats n as a grouped byte count.
func (p *Printer) Bytes(n int64) string {
	return p.p.Sprintf("%d B", n)
}

// Percent formats f (0..1) as a percentage with one decimal.
func (p *Printer) Percent(f float64) string {
	return p.p.Sprintf("%.1f%%", f*100)
}

func newTable(w io.Writer, f Format) *tablewriter.Table {
	if f == Markdown {
		return tablewriter.NewTable(w,
			tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{})),
		)
	}
	return tablewriter.NewTable(w)
}

// Stats writes a two-column table of st.
func Stats(w io.Writer, st cache.Stats, f Format, p *Printer) error {
	if p == nil {
		p = NewPrinter(language.English)
	}

	table := newTable(w, f)
	table.Header([]string{"Metric", "Value"})
	rows := [][]string{
		{"Live bytes", p.Bytes(st.LiveBytes)},
		{"Heap allocations", p.Int(st.Allocs)},
		{"Cache hits", p.Int(st.Hits)},
		{"Hit rate", p.Percent(st.HitRate())},
		{"Releases", p.Int(st.Releases)},
		{"Keys", p.Int(int64(st.Keys))},
		{"Table capacity", p.Int(int64(st.Capacity))},
		{"Table growths", p.Int(int64(st.Growths))},
		{"Depth", p.Int(int64(st.Depth))},
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// Row is one line of a comparison table.
type Row struct {
	Name      string        `json:"name"`
	HeapCalls int64         `json:"heapCalls"`
	Hits      int64         `json:"hits"`
	PeakBytes int64         `json:"peakBytes"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Compare writes rows side by side.
func Compare(w io.Writer, rows []Row, f Format, p *Printer) error {
	if p == nil {
		p = NewPrinter(language.English)
	}

	table := newTable(w, f)
	table.Header([]string{"Strategy", "Heap calls", "Cache hits", "Peak live", "Elapsed"})

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.Name,
			p.Int(r.HeapCalls),
			p.Int(r.Hits),
			p.Bytes(r.PeakBytes),
			r.Elapsed.Round(time.Microsecond).String(),
		})
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
