package setstore_test

import (
	"math/rand/v2"
	"testing"

	"github.com/discochess/cachesim/internal/setstore"
	"github.com/discochess/cachesim/internal/setstore/linkedlru"
	"github.com/discochess/cachesim/internal/setstore/lru"
)

// Both implementations must make the same decisions for the same operations.
func TestImplementationsAgree(t *testing.T) {
	for _, capacity := range []int{1, 2, 4, 8} {
		a, err := linkedlru.Factory(capacity)
		if err != nil {
			t.Fatalf("linkedlru.Factory(%d) error = %v", capacity, err)
		}
		b, err := lru.Factory(capacity)
		if err != nil {
			t.Fatalf("lru.Factory(%d) error = %v", capacity, err)
		}

		rng := rand.New(rand.NewPCG(uint64(capacity), 7))
		for i := 0; i < 2000; i++ {
			key := rng.Uint64N(uint64(capacity * 3))
			if rng.IntN(2) == 0 {
				va, oka := a.Get(key)
				vb, okb := b.Get(key)
				if va != vb || oka != okb {
					t.Fatalf("cap %d step %d: Get(%d) = (%d, %v) vs (%d, %v)", capacity, i, key, va, oka, vb, okb)
				}
				continue
			}
			ea := a.Add(key, uint64(i))
			eb := b.Add(key, uint64(i))
			if ea != eb {
				t.Fatalf("cap %d step %d: Add(%d) evicted %v vs %v", capacity, i, key, ea, eb)
			}
			if a.Len() != b.Len() {
				t.Fatalf("cap %d step %d: Len() %d vs %d", capacity, i, a.Len(), b.Len())
			}
		}
	}
}

var _ setstore.Factory = linkedlru.Factory
var _ setstore.Factory = lru.Factory
