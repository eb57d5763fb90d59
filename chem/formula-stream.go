package chem

import (
	"fmt"
	"io"
	"strings"
)

// FormulaStream is a channel pipeline stage of catalog entries.
type FormulaStream struct {
	Outlet chan CatalogEntry
}

func NewFormulaStream() *FormulaStream {
	stream := &FormulaStream{
		Outlet: make(chan CatalogEntry, 1),
	}
	return stream
}

// StreamFormulas pushes the given entries into a new stream and then closes it.
func StreamFormulas(entries ...CatalogEntry) *FormulaStream {
	next := NewFormulaStream()

	go func() {
		for _, entry := range entries {
			next.Outlet <- entry
		}
		next.Close()
	}()

	return next
}

func (stream *FormulaStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *FormulaStream) Push(entry CatalogEntry) {
	stream.Outlet <- entry
}

// Pull returns the next entry, or false once the stream is drained.
func (stream *FormulaStream) Pull() (CatalogEntry, bool) {
	entry, ok := <-stream.Outlet
	return entry, ok
}

// PullAll drains the stream and returns how many entries it carried.
func (stream *FormulaStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains the stream into a slice.
func (stream *FormulaStream) Collect() []CatalogEntry {
	var entries []CatalogEntry
	for entry := range stream.Outlet {
		entries = append(entries, entry)
	}
	return entries
}

// Print writes one CSV line per entry to out and passes each entry on.
func (stream *FormulaStream) Print(
	out io.Writer,
	opts PrintOpts) *FormulaStream {

	next := NewFormulaStream()

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for entry := range stream.Outlet {
			if len(opts.Label) > 0 {
				buf.WriteString(opts.Label)
				buf.WriteByte(',')
			}

			count++
			fmt.Fprintf(&buf, "%06d,%s,%s", count, entry.Name, entry.Formula.String())
			if opts.Counts {
				for _, key := range entry.Formula.Isotopes() {
					fmt.Fprintf(&buf, ",%s=%d", key, entry.Formula.Count(key))
				}
			}
			if opts.Masses != nil {
				avg, err := entry.Formula.AverageMass(opts.Masses)
				if err == nil {
					mono, _ := entry.Formula.MonoisotopicMass(opts.Masses)
					fmt.Fprintf(&buf, ",%.4f,%.6f", avg, mono)
				}
			}
			buf.WriteByte('\n')
			io.WriteString(out, buf.String())
			buf.Reset()
			next.Outlet <- entry
		}
		next.Close()
	}()

	return next
}

// AddTo adds each entry to target, passing on only the entries that were newly added.
func (stream *FormulaStream) AddTo(target FormulaAdder) *FormulaStream {
	next := NewFormulaStream()

	go func() {
		for entry := range stream.Outlet {
			wasAdded, err := target.TryAddFormula(entry.Name, entry.Formula)
			if wasAdded && err == nil {
				next.Outlet <- entry
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams every catalog entry selected by sel.
func SelectFromCatalog(cat Catalog, sel FormulaSelector) *FormulaStream {
	next := NewFormulaStream()

	onHit := make(chan CatalogEntry, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		for entry := range onHit {
			if sel.Selects(entry.Formula) {
				next.Outlet <- entry
			}
		}
		next.Close()
	}()

	return next
}

func (stream *FormulaStream) SelectFromStream(sel FormulaSelector) *FormulaStream {
	next := NewFormulaStream()

	go func() {
		for entry := range stream.Outlet {
			if sel.Selects(entry.Formula) {
				next.Outlet <- entry
			}
		}
		next.Close()
	}()

	return next
}
