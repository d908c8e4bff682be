// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"
)

// DefaultColumn is the column label used for single-column series.
const DefaultColumn = "y"

var (
	// ErrLengthMismatch is returned when timestamps, rows or column labels disagree in length.
	ErrLengthMismatch = errors.New("timeseries: length mismatch")
	// ErrNoData is returned when a source yields no rows.
	ErrNoData = errors.New("timeseries: no data")
)

// Series is a time-indexed table: one timestamp per row and one or more
// named float64 columns. Values is row-major, Values[i] belongs to Timestamps[i].
type Series struct {
	Timestamps []time.Time
	Columns    []string
	Values     [][]float64
	Name       string
}

// New creates a single-column series from timestamps and values.
func New(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps, %d values", ErrLengthMismatch, len(timestamps), len(values))
	}

	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}

	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)

	return &Series{
		Timestamps: ts,
		Columns:    []string{DefaultColumn},
		Values:     rows,
	}, nil
}

// NewFrame creates a multi-column series. Every row must have one field per column.
func NewFrame(timestamps []time.Time, columns []string, rows [][]float64) (*Series, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: at least one column is required", ErrLengthMismatch)
	}
	if len(timestamps) != len(rows) {
		return nil, fmt.Errorf("%w: %d timestamps, %d rows", ErrLengthMismatch, len(timestamps), len(rows))
	}

	values := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrLengthMismatch, i, len(row), len(columns))
		}
		values[i] = append([]float64(nil), row...)
	}

	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Series{
		Timestamps: ts,
		Columns:    cols,
		Values:     values,
	}, nil
}

// Len returns the number of rows.
func (s *Series) Len() int {
	return len(s.Timestamps)
}

// Width returns the number of columns.
func (s *Series) Width() int {
	return len(s.Columns)
}

// Row returns the values of row i. The slice aliases the series.
func (s *Series) Row(i int) []float64 {
	return s.Values[i]
}

// Column returns a copy of the named column.
func (s *Series) Column(name string) ([]float64, bool) {
	idx := -1
	for i, c := range s.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	out := make([]float64, len(s.Values))
	for i, row := range s.Values {
		out[i] = row[idx]
	}
	return out, true
}

// First returns the earliest timestamp of a sorted series.
func (s *Series) First() time.Time {
	return s.Timestamps[0]
}

// Last returns the latest timestamp of a sorted series.
func (s *Series) Last() time.Time {
	return s.Timestamps[len(s.Timestamps)-1]
}

// Span returns Last minus First for a sorted series, or zero when empty.
func (s *Series) Span() time.Duration {
	if s.Len() == 0 {
		return 0
	}
	return s.Last().Sub(s.First())
}

// IsSorted reports whether timestamps are non-decreasing.
func (s *Series) IsSorted() bool {
	return sort.SliceIsSorted(s.Timestamps, func(i, j int) bool {
		return s.Timestamps[i].Before(s.Timestamps[j])
	})
}

// HasDuplicateTimestamps reports whether any timestamp occurs more than once.
func (s *Series) HasDuplicateTimestamps() bool {
	seen := make(map[time.Time]struct{}, len(s.Timestamps))
	for _, t := range s.Timestamps {
		// UTC drops the zone and monotonic reading so == compares instants.
		k := t.UTC()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// SortByTime returns a deep copy ordered by timestamp. Ties keep their order.
func (s *Series) SortByTime() *Series {
	order := make([]int, s.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Timestamps[order[a]].Before(s.Timestamps[order[b]])
	})

	out := &Series{
		Timestamps: make([]time.Time, len(order)),
		Columns:    append([]string(nil), s.Columns...),
		Values:     make([][]float64, len(order)),
		Name:       s.Name,
	}
	for dst, src := range order {
		out.Timestamps[dst] = s.Timestamps[src]
		out.Values[dst] = append([]float64(nil), s.Values[src]...)
	}
	return out
}

// SearchLeft returns the leftmost row whose timestamp is not before t.
// The series must be sorted.
func (s *Series) SearchLeft(t time.Time) int {
	return sort.Search(len(s.Timestamps), func(i int) bool {
		return !s.Timestamps[i].Before(t)
	})
}

// SearchRight returns the leftmost row whose timestamp is after t.
// The series must be sorted.
func (s *Series) SearchRight(t time.Time) int {
	return sort.Search(len(s.Timestamps), func(i int) bool {
		return s.Timestamps[i].After(t)
	})
}

// Slice returns a copy of rows from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > s.Len() {
		end = s.Len()
	}
	if start >= end {
		return &Series{Columns: append([]string(nil), s.Columns...), Name: s.Name}
	}

	timestamps := make([]time.Time, end-start)
	copy(timestamps, s.Timestamps[start:end])

	values := make([][]float64, end-start)
	for i := range values {
		values[i] = append([]float64(nil), s.Values[start+i]...)
	}

	return &Series{
		Timestamps: timestamps,
		Columns:    append([]string(nil), s.Columns...),
		Values:     values,
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	return s.Slice(0, s.Len())
}

// Concat joins parts end to end in the given order. Every part must carry the
// same column labels; the result takes its name from the first part and
// shares row storage with the parts.
func Concat(parts ...*Series) (*Series, error) {
	if len(parts) == 0 {
		return nil, ErrNoData
	}

	n := 0
	for i, p := range parts {
		if !slices.Equal(p.Columns, parts[0].Columns) {
			return nil, fmt.Errorf("%w: part %d has columns %v, want %v", ErrLengthMismatch, i, p.Columns, parts[0].Columns)
		}
		n += p.Len()
	}

	out := &Series{
		Timestamps: make([]time.Time, 0, n),
		Columns:    append([]string(nil), parts[0].Columns...),
		Values:     make([][]float64, 0, n),
		Name:       parts[0].Name,
	}
	for _, p := range parts {
		out.Timestamps = append(out.Timestamps, p.Timestamps...)
		out.Values = append(out.Values, p.Values...)
	}
	return out, nil
}
