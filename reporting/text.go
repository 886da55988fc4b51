// Package reporting renders simulation results for people and tools.
package reporting

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/discochess/cachesim"
)

const summaryTitle = "Simulation Summary Statistics"

// WriteText writes res in the classic console layout: the cache
// configuration, one row per access and the summary totals.
func WriteText(w io.Writer, res *cachesim.Result) error {
	bw := bufio.NewWriter(w)
	g := res.Geometry

	fmt.Fprintln(bw, "Cache Configuration")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "\t\t%d %d-way set associative entries\n", g.Sets, g.LinesPerSet)
	fmt.Fprintf(bw, "\t\tof line size %d bytes\n", g.LineSize)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Access Address\t Tag   Index Offset Status Memrefs")
	fmt.Fprintln(bw, strings.Join([]string{
		dashes("Access"), dashes("Address"), dashes("Tag    "),
		dashes("Index"), dashes("Offset"), dashes("Status"), dashes("Memrefs"),
	}, " "))
	for _, r := range res.Records {
		fmt.Fprintf(bw, "%6s%8s%8d%6d%7d%7s%8d\n",
			r.Op, r.HexAddress(), r.Tag, r.Index, r.Offset, r.Status, r.MemoryRefs)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, summaryTitle)
	fmt.Fprintln(bw, dashes(summaryTitle))
	fmt.Fprintf(bw, "Total hits       : %d\n", res.Stats.Hits)
	fmt.Fprintf(bw, "Total misses     : %d\n", res.Stats.Misses)
	fmt.Fprintf(bw, "Total accesses   : %d\n", res.Stats.Accesses)
	fmt.Fprintf(bw, "Hit ratio        : %.6f\n", res.Stats.HitRatio)
	fmt.Fprintf(bw, "Miss ratio       : %.6f\n", res.Stats.MissRatio)

	return bw.Flush()
}

func dashes(s string) string {
	return strings.Repeat("-", len(s))
}
