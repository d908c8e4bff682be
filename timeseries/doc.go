// Package timeseries provides time-indexed data structures and utilities.
//
// This package includes the Series type, a table of one or more float64
// columns sharing a single timestamp index, along with functions for
// loading, ordering, searching and slicing it.
//
// # Creating a Series
//
// Create a single-column series:
//
//	series, err := timeseries.New(timestamps, []float64{100, 102, 105})
//
// Create a table of several columns:
//
//	series, err := timeseries.NewFrame(timestamps, []string{"flow", "stage"}, rows)
//
// # Ordering and Lookup
//
// Rows are not required to arrive in order:
//
//	sorted := series.SortByTime()    // stable, deep copy
//	lo := sorted.SearchLeft(t0)      // first row with timestamp >= t0
//	hi := sorted.SearchRight(t1)     // first row with timestamp > t1
//	window := sorted.Slice(lo, hi)   // rows in [t0, t1]
//
// # Loading from CSV
//
// Load every non-date column of a CSV file:
//
//	series, err := timeseries.LoadCSV("gauge.csv", nil)
//
// Files ending in .zst are read and written through a zstd stream:
//
//	series, err := timeseries.LoadCSV("gauge.csv.zst", nil)
//	err = timeseries.SaveCSV(series, "replicate.csv.zst")
//
// # CSV Options
//
// Customize CSV loading:
//
//	opts := &timeseries.CSVOptions{
//	    DateColumn:   "date",
//	    ValueColumns: []string{"discharge"},
//	    DateFormat:   "2006-01-02",
//	    HasHeader:    true,
//	}
//	series, err := timeseries.LoadCSVFromReader(reader, opts)
package timeseries
