// Package planner turns discovered capture files into conversion plans:
// one plan per file, or one concatenation plan per segment group with the
// segments ordered by their embedded capture timestamp.
package planner

import (
	"fmt"
	"sort"

	"github.com/backmassage/rawconv/internal/naming"
)

// Plan describes one unit of conversion work: an ordered input list and the
// output path it exclusively owns. Inputs has length > 1 only for merge
// plans. Warnings carries non-fatal findings from planning (e.g. segments
// whose name yields no timestamp).
type Plan struct {
	Inputs   []string
	Output   string
	Warnings []string
}

// Planner builds plans for one run. It owns the collision resolver, so
// every plan it produces claims a distinct output path.
type Planner struct {
	outputDir string
	resolver  *naming.CollisionResolver
}

// New creates a Planner writing into outputDir.
func New(outputDir string) *Planner {
	return &Planner{
		outputDir: outputDir,
		resolver:  naming.NewCollisionResolver(),
	}
}

// Single plans the conversion of one capture file.
func (p *Planner) Single(input string) Plan {
	out := p.resolver.Resolve(input, naming.OutputPath(input, p.outputDir))
	return Plan{Inputs: []string{input}, Output: out}
}

// Merge plans the concatenation of one already-identified segment group.
// Segments are ordered by embedded timestamp; segments without a parseable
// timestamp sort after all parseable ones, keeping their discovery order,
// and each adds a warning to the plan. Which files form a group is the
// caller's concern; Merge only orders.
func (p *Planner) Merge(key string, files []string) Plan {
	ordered, warnings := orderByTimestamp(files)
	requested := naming.MergedOutputPath(ordered, key, p.outputDir)
	out := p.resolver.Resolve(fmt.Sprintf("group:%s", key), requested)
	return Plan{Inputs: ordered, Output: out, Warnings: warnings}
}

// orderByTimestamp sorts files by their embedded capture timestamp. The
// sort is stable so equal timestamps and unparseable names keep their
// relative discovery order.
func orderByTimestamp(files []string) (ordered, warnings []string) {
	type entry struct {
		path string
		ts   int64
		ok   bool
	}

	entries := make([]entry, 0, len(files))
	for _, f := range files {
		ts, ok := naming.ExtractTimestamp(f)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("no timestamp in %q, sorting last", f))
		}
		entries = append(entries, entry{path: f, ts: ts, ok: ok})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}
		return a.ts < b.ts
	})

	ordered = make([]string, len(entries))
	for i, e := range entries {
		ordered[i] = e.path
	}
	return ordered, warnings
}
