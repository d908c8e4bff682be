package bootstrap

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/blockbootstrap/timeseries"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// dailySeries builds n daily rows from start with values 0..n-1.
func dailySeries(t *testing.T, start time.Time, n int) *timeseries.Series {
	t.Helper()
	ts := make([]time.Time, n)
	vals := make([]float64, n)
	for i := range ts {
		ts[i] = start.AddDate(0, 0, i)
		vals[i] = float64(i)
	}
	s, err := timeseries.New(ts, vals)
	require.NoError(t, err)
	return s
}

func valueByTime(s *timeseries.Series) map[time.Time][]float64 {
	m := make(map[time.Time][]float64, s.Len())
	for i, ts := range s.Timestamps {
		m[ts] = s.Values[i]
	}
	return m
}

func assertValidSample(t *testing.T, in, out *timeseries.Series) {
	t.Helper()
	require.Equal(t, in.Len(), out.Len(), "sample length")
	assert.Equal(t, in.Columns, out.Columns)
	assert.True(t, out.IsSorted(), "sample must be ordered by timestamp")

	orig := valueByTime(in)
	for i, ts := range out.Timestamps {
		want, ok := orig[ts]
		require.True(t, ok, "timestamp %s not in input", ts)
		assert.Equal(t, want, out.Values[i], "row %d at %s", i, ts)
	}
}

func TestNewTenDayScenario(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 10)

	r, err := New(s, WithBlockLength(3), WithFrequency("D"))
	require.NoError(t, err)

	assert.Equal(t, 10, r.N())
	// start = Jan 1 - 3D + 1D = Dec 30, end = Jan 10
	assert.Equal(t, day(2019, 12, 30), r.GridStart())
	assert.Equal(t, day(2020, 1, 10), r.GridEnd())
	assert.Equal(t, 12, r.GridLen())
	assert.EqualValues(t, 12, r.Coverage())
	assert.Equal(t, BlockLength{Count: 3, Unit: Day}, r.BlockLength())

	out, err := r.SampleSeed(1)
	require.NoError(t, err)
	assertValidSample(t, s, out)

	for _, row := range out.Values {
		assert.GreaterOrEqual(t, row[0], 0.0)
		assert.LessOrEqual(t, row[0], 9.0)
	}
}

func TestSampleIsContiguousBlocks(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 10)
	r, err := New(s, WithBlockLength(3), WithFrequency("D"))
	require.NoError(t, err)
	window := 3 * 24 * time.Hour

	for seed := uint64(0); seed < 20; seed++ {
		rng := newStream(seed)
		blocks := r.drawBlocks(r.N(), func() int { return r.cover.pick(rng) })
		require.NotEmpty(t, blocks)

		var want []float64
		filled := 0
		for i, b := range blocks {
			assert.Equal(t, s.SearchLeft(b.start), b.lo, "seed %d block %d start row", seed, i)
			assert.Equal(t, s.SearchRight(b.start.Add(window)), b.hi, "seed %d block %d end row", seed, i)
			assert.Positive(t, b.take, "seed %d block %d is empty", seed, i)
			if i < len(blocks)-1 {
				assert.Equal(t, b.hi-b.lo, b.take, "seed %d block %d cut short before the last block", seed, i)
			} else {
				assert.LessOrEqual(t, b.take, b.hi-b.lo)
			}
			for row := b.lo; row < b.lo+b.take; row++ {
				want = append(want, float64(row))
			}
			filled += b.take
		}
		assert.Equal(t, r.N(), filled)

		out, err := r.SampleSeed(seed)
		require.NoError(t, err)
		got, ok := out.Column(timeseries.DefaultColumn)
		require.True(t, ok)
		slices.Sort(want)
		assert.Equal(t, want, got, "seed %d sample must be the drawn runs of consecutive rows", seed)
	}
}

func TestNewDefaults(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 400)

	r, err := New(s)
	require.NoError(t, err)

	assert.Equal(t, BlockLength{Count: DefaultBlockLength, Unit: Day}, r.BlockLength())
	// span 399 days plus 99 extra leading positions
	assert.Equal(t, 399+100, r.GridLen())
}

func TestSampleLengthInvariant(t *testing.T) {
	s := dailySeries(t, day(2021, 3, 1), 57)

	for _, block := range []int{1, 2, 5, 13, 57, 200} {
		r, err := New(s, WithBlockLength(block))
		require.NoError(t, err)

		for seed := uint64(0); seed < 20; seed++ {
			out, err := r.SampleSeed(seed)
			require.NoError(t, err)
			assertValidSample(t, s, out)
		}

		out, err := r.Sample()
		require.NoError(t, err)
		assertValidSample(t, s, out)
	}
}

func TestSampleSeedDeterministic(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 90)
	r, err := New(s, WithBlockLength(7))
	require.NoError(t, err)

	a, err := r.SampleSeed(42)
	require.NoError(t, err)
	b, err := r.SampleSeed(42)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSampleWith(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 30)
	r, err := New(s, WithBlockLength(4))
	require.NoError(t, err)

	out, err := r.SampleWith(rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)
	assertValidSample(t, s, out)

	_, err = r.SampleWith(nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSamplePreservesColumns(t *testing.T) {
	n := 40
	ts := make([]time.Time, n)
	rows := make([][]float64, n)
	for i := range ts {
		ts[i] = day(2022, 6, 1).Add(time.Duration(i) * time.Hour)
		rows[i] = []float64{float64(i), float64(-i), float64(i * i)}
	}
	s, err := timeseries.NewFrame(ts, []string{"flow", "stage", "temp"}, rows)
	require.NoError(t, err)
	s.Name = "gauge"

	r, err := New(s, WithBlockLength(6), WithUnit(Hour))
	require.NoError(t, err)

	out, err := r.SampleSeed(3)
	require.NoError(t, err)
	assertValidSample(t, s, out)
	assert.Equal(t, "gauge", out.Name)
	assert.Equal(t, 3, out.Width())
}

func TestNewSortsWithoutMutatingInput(t *testing.T) {
	ts := []time.Time{day(2020, 1, 5), day(2020, 1, 1), day(2020, 1, 3), day(2020, 1, 2), day(2020, 1, 4)}
	vals := []float64{5, 1, 3, 2, 4}
	s, err := timeseries.New(ts, vals)
	require.NoError(t, err)
	before := s.Copy()

	r, err := New(s, WithBlockLength(2))
	require.NoError(t, err)
	assert.Equal(t, day(2020, 1, 5), r.GridEnd())

	out, err := r.SampleSeed(9)
	require.NoError(t, err)
	assertValidSample(t, s, out)

	assert.Equal(t, before, s, "input must not be modified")

	// The sample must not alias the resampler's rows.
	out.Values[0][0] = -100
	again, err := r.SampleSeed(9)
	require.NoError(t, err)
	assert.NotEqual(t, -100.0, again.Values[0][0])
}

func TestNewErrors(t *testing.T) {
	daily := dailySeries(t, day(2020, 1, 1), 10)

	oneRow := dailySeries(t, day(2020, 1, 1), 1)

	short, err := timeseries.New(
		[]time.Time{day(2020, 1, 1), day(2020, 1, 1).Add(time.Hour)},
		[]float64{1, 2},
	)
	require.NoError(t, err)

	dup, err := timeseries.New(
		[]time.Time{day(2020, 1, 1), day(2020, 1, 2), day(2020, 1, 1)},
		[]float64{1, 2, 3},
	)
	require.NoError(t, err)

	empty, err := timeseries.New(nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		series *timeseries.Series
		opts   []Option
		want   error
	}{
		{"nil series", nil, nil, ErrEmptyInput},
		{"no rows", empty, nil, ErrEmptyInput},
		{"empty input checked before options", empty, []Option{WithFrequency("W")}, ErrEmptyInput},
		{"zero block length", daily, []Option{WithBlockLength(0)}, ErrConfiguration},
		{"negative block length", daily, []Option{WithBlockLength(-3)}, ErrConfiguration},
		{"unknown frequency code", daily, []Option{WithFrequency("W")}, ErrConfiguration},
		{"unknown unit", daily, []Option{WithUnit(Unit(42))}, ErrConfiguration},
		{"overflowing block length", daily, []Option{WithBlockLength(1 << 40)}, ErrConfiguration},
		{"duplicate timestamps", dup, nil, ErrDuplicateTimestamp},
		{"span shorter than a day", short, nil, ErrDegenerateInput},
		{"single row", oneRow, nil, ErrDegenerateInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.series, tt.opts...)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestShortSpanValidForFinerUnit(t *testing.T) {
	s, err := timeseries.New(
		[]time.Time{day(2020, 1, 1), day(2020, 1, 1).Add(time.Hour)},
		[]float64{1, 2},
	)
	require.NoError(t, err)

	r, err := New(s, WithBlockLength(1), WithUnit(Minute))
	require.NoError(t, err)
	assert.Equal(t, 61, r.GridLen())

	out, err := r.SampleSeed(5)
	require.NoError(t, err)
	assertValidSample(t, s, out)
}

func TestSampleAcrossGap(t *testing.T) {
	ts := []time.Time{day(2020, 1, 1), day(2020, 1, 2), day(2020, 1, 20), day(2020, 1, 21)}
	s, err := timeseries.New(ts, []float64{1, 2, 20, 21})
	require.NoError(t, err)

	r, err := New(s, WithBlockLength(2))
	require.NoError(t, err)

	// Grid runs Dec 31 .. Jan 21; only Dec 31..Jan 2 and Jan 18..Jan 21 reach data.
	assert.Equal(t, 22, r.GridLen())
	assert.EqualValues(t, 7, r.Coverage())

	populated := map[time.Time]bool{}
	for _, at := range ts {
		populated[at] = true
	}

	for seed := uint64(0); seed < 50; seed++ {
		out, err := r.SampleSeed(seed)
		require.NoError(t, err)
		assertValidSample(t, s, out)
		for _, at := range out.Timestamps {
			assert.True(t, populated[at], "row at %s outside populated regions", at)
		}
	}
}

func TestBlockLongerThanSeries(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 5)

	r, err := New(s, WithBlockLength(30))
	require.NoError(t, err)
	assert.Equal(t, 4+30, r.GridLen())

	out, err := r.SampleSeed(1)
	require.NoError(t, err)
	assertValidSample(t, s, out)
}

func TestLegacyReseedRepeatsOneBlock(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 100)

	r, err := New(s, WithBlockLength(3), WithLegacyReseed())
	require.NoError(t, err)

	for seed := uint64(0); seed < 10; seed++ {
		out, err := r.SampleSeed(seed)
		require.NoError(t, err)
		assertValidSample(t, s, out)

		distinct := map[time.Time]int{}
		for _, ts := range out.Timestamps {
			distinct[ts]++
		}
		// A 3-day window holds at most 4 daily rows.
		assert.LessOrEqual(t, len(distinct), 4, "seed %d", seed)
		assert.GreaterOrEqual(t, len(distinct), 1)
	}

	// Unseeded draws are not affected.
	out, err := r.Sample()
	require.NoError(t, err)
	assertValidSample(t, s, out)
}

func TestSampleConcurrent(t *testing.T) {
	s := dailySeries(t, day(2020, 1, 1), 200)
	r, err := New(s, WithBlockLength(10), WithMetrics(NewMetrics(nil)))
	require.NoError(t, err)

	want, err := r.SampleSeed(77)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*timeseries.Series, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := r.SampleSeed(77)
			if err == nil {
				results[i] = out
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		require.NotNil(t, got, "goroutine %d", i)
		assert.Equal(t, want, got)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	s := dailySeries(t, day(2020, 1, 1), 25)
	r, err := New(s, WithBlockLength(4), WithMetrics(m))
	require.NoError(t, err)

	for seed := uint64(0); seed < 3; seed++ {
		_, err := r.SampleSeed(seed)
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Samples))
	assert.Equal(t, 75.0, testutil.ToFloat64(m.RowsEmitted))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.BlocksDrawn), 3.0)
	assert.LessOrEqual(t, testutil.ToFloat64(m.TruncatedBlocks), 3.0)

	count, err := testutil.GatherAndCount(reg, "blockbootstrap_block_rows")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
