package clock

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// referenceNearest is a brute-force oracle: the divisor of n with minimal
// distance to d, preferring the higher divisor on ties.
func referenceNearest(n, d int) int {
	best := n
	for k := n; k >= 1; k-- {
		if n%k != 0 {
			continue
		}
		dk, db := k-d, best-d
		if dk < 0 {
			dk = -dk
		}
		if db < 0 {
			db = -db
		}
		// strictly closer only: descending k keeps the higher divisor on ties
		if dk < db {
			best = k
		}
	}
	return best
}

func TestNearestDivisorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("result always divides n", prop.ForAll(
		func(n, d int) bool {
			if d > n {
				d = n
			}
			return n%nearestDivisor(n, d) == 0
		},
		gen.IntRange(1, 64),
		gen.IntRange(1, 64),
	))

	properties.Property("a divisor of n is returned unchanged", prop.ForAll(
		func(n, d int) bool {
			if d > n {
				d = n
			}
			if n%d != 0 {
				return true
			}
			return nearestDivisor(n, d) == d
		},
		gen.IntRange(1, 64),
		gen.IntRange(1, 64),
	))

	properties.Property("scan order matches minimal distance with upward tie-break", prop.ForAll(
		func(n, d int) bool {
			if d > n {
				d = n
			}
			return nearestDivisor(n, d) == referenceNearest(n, d)
		},
		gen.IntRange(1, 64),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}
