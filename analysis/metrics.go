package analysis

import (
	"sort"

	"github.com/discochess/cachesim"
)

// SetUsage counts the traffic seen by one set.
type SetUsage struct {
	Index     uint64
	Accesses  int
	Hits      int
	Misses    int
	Evictions int
}

// HitRatio returns hits over accesses, or zero for an idle set.
func (u SetUsage) HitRatio() float64 {
	if u.Accesses == 0 {
		return 0
	}
	return float64(u.Hits) / float64(u.Accesses)
}

// Metrics describes how a run spread over the sets of the cache.
type Metrics struct {
	Sets        int
	SetsTouched int

	// DistinctBlocks is the number of distinct line-aligned blocks referenced.
	DistinctBlocks int

	// CompulsoryMisses are misses on the first reference to a block; no
	// cache of any size could have avoided them.
	CompulsoryMisses int

	// OtherMisses are the remaining capacity and conflict misses.
	OtherMisses int

	// AccessesPerSet is computed over every set, touched or not.
	AccessesPerSet DescriptiveStats

	// Concentration is the Gini coefficient of per-set accesses.
	Concentration float64

	// TopSetPct is the percentage of accesses landing in the busiest 10% of sets.
	TopSetPct float64

	// Usage lists the touched sets by index.
	Usage []SetUsage
}

// ComputeMetrics computes per-set metrics from a finished run.
func ComputeMetrics(res *cachesim.Result) *Metrics {
	g := res.Geometry
	usage := make(map[uint64]*SetUsage)
	blocks := make(map[uint64]struct{})

	m := &Metrics{Sets: int(g.Sets)}
	for _, r := range res.Records {
		u, ok := usage[r.Index]
		if !ok {
			u = &SetUsage{Index: r.Index}
			usage[r.Index] = u
		}
		u.Accesses++
		if r.Evicted {
			u.Evictions++
		}

		block := r.Address >> g.OffsetBits()
		_, seen := blocks[block]
		blocks[block] = struct{}{}

		if r.Status == cachesim.Hit {
			u.Hits++
			continue
		}
		u.Misses++
		if seen {
			m.OtherMisses++
		} else {
			m.CompulsoryMisses++
		}
	}

	m.SetsTouched = len(usage)
	m.DistinctBlocks = len(blocks)

	perSet := make([]float64, g.Sets)
	m.Usage = make([]SetUsage, 0, len(usage))
	for idx, u := range usage {
		perSet[idx] = float64(u.Accesses)
		m.Usage = append(m.Usage, *u)
	}
	sort.Slice(m.Usage, func(i, j int) bool {
		return m.Usage[i].Index < m.Usage[j].Index
	})

	m.AccessesPerSet = Describe(perSet)
	m.Concentration = gini(perSet)
	m.TopSetPct = topShare(perSet, 0.1)

	return m
}

// missesPerSet returns the miss count of every set, touched or not.
func missesPerSet(res *cachesim.Result) []float64 {
	out := make([]float64, res.Geometry.Sets)
	for _, r := range res.Records {
		if r.Status == cachesim.Miss {
			out[r.Index]++
		}
	}
	return out
}
