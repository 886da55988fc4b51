package analysis

import (
	"errors"
	"fmt"

	"github.com/discochess/cachesim"
)

// ErrIncomparable is returned when two runs did not replay the same trace.
var ErrIncomparable = errors.New("analysis: runs replayed different traces")

// PolicyComparison contrasts two runs of the same trace.
type PolicyComparison struct {
	Policy1 string
	Policy2 string
	Stats1  cachesim.Stats
	Stats2  cachesim.Stats

	// Diverging counts accesses classified differently by the two runs.
	Diverging int

	// FirstDivergence is the position of the first diverging access, or -1.
	FirstDivergence int

	HitRatioDiff float64 // Positive means Policy1 hits more often.

	MissesPerSet1 DescriptiveStats
	MissesPerSet2 DescriptiveStats
	EffectSize    EffectSize
}

// ComparePolicies compares two runs over the same accesses.
func ComparePolicies(a, b *cachesim.Result) (*PolicyComparison, error) {
	if len(a.Records) != len(b.Records) || a.Geometry != b.Geometry {
		return nil, ErrIncomparable
	}

	c := &PolicyComparison{
		Policy1:         a.Keying.String(),
		Policy2:         b.Keying.String(),
		Stats1:          a.Stats,
		Stats2:          b.Stats,
		FirstDivergence: -1,
		HitRatioDiff:    a.Stats.HitRatio - b.Stats.HitRatio,
	}

	for i := range a.Records {
		ra, rb := a.Records[i], b.Records[i]
		if ra.Address != rb.Address || ra.Op != rb.Op {
			return nil, fmt.Errorf("%w: access %d differs", ErrIncomparable, i)
		}
		if ra.Status != rb.Status {
			c.Diverging++
			if c.FirstDivergence < 0 {
				c.FirstDivergence = i
			}
		}
	}

	m1, m2 := missesPerSet(a), missesPerSet(b)
	c.MissesPerSet1 = Describe(m1)
	c.MissesPerSet2 = Describe(m2)
	c.EffectSize = ComputeEffectSize(m1, m2)

	return c, nil
}

// Summary returns a human-readable summary of the comparison.
func (c *PolicyComparison) Summary() string {
	verdict := "both policies classify every access the same way"
	if c.Diverging > 0 {
		verdict = fmt.Sprintf("%d accesses diverge, first at access %d", c.Diverging, c.FirstDivergence+1)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: hits=%d misses=%d hit ratio=%.6f\n"+
			"  %s: hits=%d misses=%d hit ratio=%.6f\n"+
			"  Misses per set: mean %.2f vs %.2f (effect size %.2f, %s)\n"+
			"  Result: %s",
		c.Policy1, c.Policy2,
		c.Policy1, c.Stats1.Hits, c.Stats1.Misses, c.Stats1.HitRatio,
		c.Policy2, c.Stats2.Hits, c.Stats2.Misses, c.Stats2.HitRatio,
		c.MissesPerSet1.Mean, c.MissesPerSet2.Mean, c.EffectSize.CohensD, c.EffectSize.Interpretation,
		verdict,
	)
}
