// Package blockbootstrap provides block bootstrap resampling for irregularly
// spaced time series.
//
// A block bootstrap builds a replicate of a series by concatenating randomly
// chosen contiguous time windows of the original until the replicate is as
// long as the input. Unlike an i.i.d. bootstrap it keeps the short-range
// dependence between neighbouring observations, so replicates can feed
// variance and uncertainty estimates for autocorrelated data.
//
// # Features
//
//   - Single series or several columns sharing one time index
//   - Input in any order, with gaps and uneven spacing
//   - Block lengths in days, hours, minutes or seconds
//   - Reproducible replicates from a seed, safe concurrent sampling
//   - CSV input and output, optionally zstd compressed
//   - Prometheus counters for sampling activity
//
// # Quick Start
//
//	series, _ := timeseries.LoadCSV("gauge.csv", nil)
//	r, err := bootstrap.New(series, bootstrap.WithBlockLength(30))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	replicate, _ := r.SampleSeed(42)
//
// # Packages
//
// The library is organized into the following packages:
//
//   - bootstrap: the Resampler, frequency units and errors
//   - timeseries: the time-indexed Series type and CSV utilities
//
// The blockboot command in cmd/blockboot writes replicates of a CSV file
// from the command line.
//
// # References
//
//   - Künsch, H. R. (1989). The jackknife and the bootstrap for general stationary observations
//   - Lahiri, S. N. (2003). Resampling Methods for Dependent Data
package blockbootstrap
