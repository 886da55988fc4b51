package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/analysis"
)

// MarkdownReport generates simulation reports in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().Format(time.RFC3339))
}

// WriteConfiguration writes the cache geometry section.
func (r *MarkdownReport) WriteConfiguration(g cachesim.Geometry, k cachesim.Keying) {
	fmt.Fprintln(r.w, "## Configuration")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Sets:** %d\n", g.Sets)
	fmt.Fprintf(r.w, "- **Associativity:** %d-way\n", g.LinesPerSet)
	fmt.Fprintf(r.w, "- **Line size:** %d bytes\n", g.LineSize)
	fmt.Fprintf(r.w, "- **Capacity:** %d bytes\n", g.Size())
	fmt.Fprintf(r.w, "- **Address split:** %d offset bits, %d index bits\n", g.OffsetBits(), g.IndexBits())
	fmt.Fprintf(r.w, "- **Keying:** %s\n", k)
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the run totals.
func (r *MarkdownReport) WriteSummaryTable(s cachesim.Stats) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Accesses | Hits | Misses | Evictions | Hit Ratio | Miss Ratio |")
	fmt.Fprintln(r.w, "|----------|------|--------|-----------|-----------|------------|")
	fmt.Fprintf(r.w, "| %d | %d | %d | %d | %.6f | %.6f |\n",
		s.Accesses, s.Hits, s.Misses, s.Evictions, s.HitRatio, s.MissRatio)
	fmt.Fprintln(r.w)
}

// WriteAccessTable writes one row per access.
func (r *MarkdownReport) WriteAccessTable(records []cachesim.AccessRecord) {
	fmt.Fprintln(r.w, "## Accesses")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| # | Op | Address | Tag | Index | Offset | Status | Memrefs |")
	fmt.Fprintln(r.w, "|---|----|---------|-----|-------|--------|--------|---------|")
	for i, rec := range records {
		status := rec.Status.String()
		if rec.Evicted {
			status += " (evict)"
		}
		fmt.Fprintf(r.w, "| %d | %s | `%s` | %d | %d | %d | %s | %d |\n",
			i+1, rec.Op, rec.HexAddress(), rec.Tag, rec.Index, rec.Offset, status, rec.MemoryRefs)
	}
	fmt.Fprintln(r.w)
}

// WriteAnalysis writes the per-set distribution section.
func (r *MarkdownReport) WriteAnalysis(m *analysis.Metrics) {
	fmt.Fprintln(r.w, "## Set Usage")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Sets touched:** %d of %d\n", m.SetsTouched, m.Sets)
	fmt.Fprintf(r.w, "- **Distinct blocks:** %d\n", m.DistinctBlocks)
	fmt.Fprintf(r.w, "- **Compulsory misses:** %d\n", m.CompulsoryMisses)
	fmt.Fprintf(r.w, "- **Capacity and conflict misses:** %d\n", m.OtherMisses)
	fmt.Fprintf(r.w, "- **Accesses per set:** mean %.2f, median %.0f, p90 %.0f, max %.0f\n",
		m.AccessesPerSet.Mean, m.AccessesPerSet.Median, m.AccessesPerSet.P90, m.AccessesPerSet.Max)
	fmt.Fprintf(r.w, "- **Concentration (Gini):** %.3f\n", m.Concentration)
	fmt.Fprintf(r.w, "- **Busiest 10%% of sets:** %.1f%% of accesses\n", m.TopSetPct)
	fmt.Fprintln(r.w)

	if len(m.Usage) == 0 {
		return
	}
	fmt.Fprintln(r.w, "| Set | Accesses | Hits | Misses | Evictions | Hit Ratio |")
	fmt.Fprintln(r.w, "|-----|----------|------|--------|-----------|-----------|")
	for _, u := range m.Usage {
		fmt.Fprintf(r.w, "| %d | %d | %d | %d | %d | %.3f |\n",
			u.Index, u.Accesses, u.Hits, u.Misses, u.Evictions, u.HitRatio())
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a side-by-side section for two keying policies.
func (r *MarkdownReport) WriteComparison(comp *analysis.PolicyComparison) {
	fmt.Fprintf(r.w, "## %s vs %s\n\n", comp.Policy1, comp.Policy2)

	fmt.Fprintln(r.w, "| Metric | "+comp.Policy1+" | "+comp.Policy2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Policy1)+2)+"|"+strings.Repeat("-", len(comp.Policy2)+2)+"|")
	fmt.Fprintf(r.w, "| Hits | %d | %d |\n", comp.Stats1.Hits, comp.Stats2.Hits)
	fmt.Fprintf(r.w, "| Misses | %d | %d |\n", comp.Stats1.Misses, comp.Stats2.Misses)
	fmt.Fprintf(r.w, "| Hit ratio | %.6f | %.6f |\n", comp.Stats1.HitRatio, comp.Stats2.HitRatio)
	fmt.Fprintf(r.w, "| Mean misses per set | %.2f | %.2f |\n", comp.MissesPerSet1.Mean, comp.MissesPerSet2.Mean)
	fmt.Fprintf(r.w, "| Max misses per set | %.0f | %.0f |\n", comp.MissesPerSet1.Max, comp.MissesPerSet2.Max)
	fmt.Fprintln(r.w)

	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	if comp.Diverging == 0 {
		fmt.Fprintln(r.w, "- **Divergence:** none")
	} else {
		fmt.Fprintf(r.w, "- **Divergence:** %d accesses, first at access %d\n",
			comp.Diverging, comp.FirstDivergence+1)
	}
	fmt.Fprintln(r.w)
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by cachesim*")
}

// WriteMarkdown writes a complete report for res. m may be nil.
func WriteMarkdown(w io.Writer, res *cachesim.Result, m *analysis.Metrics) {
	r := NewMarkdownReport(w)
	r.WriteHeader("Cache Simulation Report")
	r.WriteConfiguration(res.Geometry, res.Keying)
	r.WriteSummaryTable(res.Stats)
	if m != nil {
		r.WriteAnalysis(m)
	}
	r.WriteAccessTable(res.Records)
	r.WriteFooter()
}
