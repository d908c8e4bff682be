package bootstrap

import (
	"math/rand/v2"
	"sort"
	"time"
)

// grid is the evenly spaced set of candidate block starts. Position i is
// start + i*step; it is never materialised.
type grid struct {
	start time.Time
	step  time.Duration
	n     int
}

func newGrid(start, end time.Time, step time.Duration) grid {
	g := grid{start: start, step: step}
	if span := end.Sub(start); span >= 0 {
		g.n = int(span/step) + 1
	}
	return g
}

func (g grid) at(i int) time.Time {
	return g.start.Add(time.Duration(i) * g.step)
}

func (g grid) end() time.Time {
	if g.n == 0 {
		return g.start
	}
	return g.at(g.n - 1)
}

// span is a run of grid positions [lo, hi] whose windows hold at least one
// row. cum is the number of such positions up to and including this run.
type span struct {
	lo, hi int
	cum    int64
}

// coverage lists the grid positions whose window [g, g+block] is non-empty.
// Drawing uniformly from it is the same as drawing uniformly from the whole
// grid and redrawing on empty windows, but always terminates.
type coverage struct {
	spans []span
	total int64
}

// newCoverage expects timestamps in ascending order.
func newCoverage(g grid, block time.Duration, timestamps []time.Time) coverage {
	var c coverage
	last := g.n - 1
	for _, t := range timestamps {
		// g.at(i) in [t-block, t]
		lo := ceilDiv(int64(t.Sub(g.start)-block), int64(g.step))
		hi := floorDiv(int64(t.Sub(g.start)), int64(g.step))
		if lo < 0 {
			lo = 0
		}
		if hi > int64(last) {
			hi = int64(last)
		}
		if lo > hi {
			continue
		}

		if n := len(c.spans); n > 0 && int64(c.spans[n-1].hi) >= lo-1 {
			if int64(c.spans[n-1].hi) < hi {
				c.spans[n-1].hi = int(hi)
			}
			continue
		}
		c.spans = append(c.spans, span{lo: int(lo), hi: int(hi)})
	}

	for i := range c.spans {
		c.total += int64(c.spans[i].hi-c.spans[i].lo) + 1
		c.spans[i].cum = c.total
	}
	return c
}

// pick returns a grid position drawn uniformly from the covered ones.
func (c coverage) pick(rng *rand.Rand) int {
	k := rng.Int64N(c.total)
	i := sort.Search(len(c.spans), func(i int) bool {
		return c.spans[i].cum > k
	})
	prev := int64(0)
	if i > 0 {
		prev = c.spans[i-1].cum
	}
	return c.spans[i].lo + int(k-prev)
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
