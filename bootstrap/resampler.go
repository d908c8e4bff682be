package bootstrap

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sartorproj/blockbootstrap/timeseries"
)

// Resampler draws block bootstrap samples from a time series. It holds a
// sorted private copy of the input and is immutable after New, so Sample may
// be called from several goroutines.
type Resampler struct {
	series *timeseries.Series
	block  BlockLength
	window time.Duration
	grid   grid
	cover  coverage

	logger       logrus.FieldLogger
	metrics      *Metrics
	legacyReseed bool
}

// New prepares a Resampler for series. The default block length is 100 days.
func New(series *timeseries.Series, opts ...Option) (*Resampler, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrEmptyInput
	}

	cfg := defaultSettings()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.block.Validate(); err != nil {
		return nil, err
	}
	if series.HasDuplicateTimestamps() {
		return nil, ErrDuplicateTimestamp
	}

	sorted := series.SortByTime()
	step := cfg.block.Unit.Duration()
	window := cfg.block.Duration()

	span := sorted.Span()
	if span < step {
		return nil, fmt.Errorf("%w: series spans %s, less than one %s", ErrDegenerateInput, span, cfg.block.Unit)
	}
	if window > time.Duration(math.MaxInt64)-span {
		return nil, fmt.Errorf("%w: block length %s too long for a %s series", ErrConfiguration, cfg.block, span)
	}

	g := newGrid(sorted.First().Add(-window+step), sorted.Last(), step)
	if g.n < 1 {
		return nil, fmt.Errorf("%w: empty reference grid", ErrDegenerateInput)
	}

	r := &Resampler{
		series:       sorted,
		block:        cfg.block,
		window:       window,
		grid:         g,
		cover:        newCoverage(g, window, sorted.Timestamps),
		logger:       cfg.logger,
		metrics:      cfg.metrics,
		legacyReseed: cfg.legacyReseed,
	}

	r.logger.WithFields(logrus.Fields{
		"rows":         r.N(),
		"grid_len":     r.GridLen(),
		"coverage":     r.Coverage(),
		"block_length": r.block.String(),
	}).Debug("resampler prepared")

	return r, nil
}

// N returns the number of rows in the input, which is the length of every sample.
func (r *Resampler) N() int {
	return r.series.Len()
}

// GridLen returns the number of candidate block starts on the reference grid.
func (r *Resampler) GridLen() int {
	return r.grid.n
}

// Coverage returns how many grid positions have a non-empty window.
func (r *Resampler) Coverage() int64 {
	return r.cover.total
}

// GridStart returns the first candidate block start.
func (r *Resampler) GridStart() time.Time {
	return r.grid.start
}

// GridEnd returns the last candidate block start.
func (r *Resampler) GridEnd() time.Time {
	return r.grid.end()
}

// BlockLength returns the configured block length.
func (r *Resampler) BlockLength() BlockLength {
	return r.block
}

// Sample draws one bootstrap sample from a stream seeded with system entropy.
func (r *Resampler) Sample() (*timeseries.Series, error) {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return r.assemble(func() int { return r.cover.pick(rng) })
}

// SampleSeed draws one bootstrap sample from a stream seeded with seed.
// Equal seeds give equal samples.
func (r *Resampler) SampleSeed(seed uint64) (*timeseries.Series, error) {
	if r.legacyReseed {
		return r.assemble(func() int { return r.cover.pick(newStream(seed)) })
	}
	rng := newStream(seed)
	return r.assemble(func() int { return r.cover.pick(rng) })
}

// SampleWith draws one bootstrap sample from rng.
func (r *Resampler) SampleWith(rng *rand.Rand) (*timeseries.Series, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}
	return r.assemble(func() int { return r.cover.pick(rng) })
}

func newStream(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// block is one drawn window: rows [lo, hi) fall inside it and the first
// take of them go into the sample.
type block struct {
	start  time.Time
	lo, hi int
	take   int
}

// drawBlocks draws windows from next until they hold n rows. Only the last
// block can be cut short.
func (r *Resampler) drawBlocks(n int, next func() int) []block {
	var blocks []block
	for filled := 0; filled < n; {
		start := r.grid.at(next())
		lo := r.series.SearchLeft(start)
		hi := r.series.SearchRight(start.Add(r.window))

		b := block{start: start, lo: lo, hi: hi, take: min(hi-lo, n-filled)}
		blocks = append(blocks, b)
		filled += b.take
	}
	return blocks
}

// assemble concatenates blocks until the sample holds N rows, then orders
// the rows by timestamp.
func (r *Resampler) assemble(next func() int) (*timeseries.Series, error) {
	blocks := r.drawBlocks(r.N(), next)

	parts := make([]*timeseries.Series, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, r.series.Slice(b.lo, b.lo+b.take))
		r.metrics.observeBlock(b.hi-b.lo, b.take)
	}

	out, err := timeseries.Concat(parts...)
	if err != nil {
		return nil, fmt.Errorf("join blocks: %w", err)
	}
	sample := out.SortByTime()

	r.metrics.observeSample()
	r.logger.WithFields(logrus.Fields{
		"blocks": len(blocks),
		"rows":   sample.Len(),
	}).Debug("bootstrap sample assembled")

	return sample, nil
}
