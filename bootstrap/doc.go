// Package bootstrap implements block bootstrap resampling of irregularly
// spaced time series.
//
// A block bootstrap draws contiguous time windows ("blocks") from a series
// and concatenates them until the result has as many rows as the input.
// Drawing whole windows rather than single points keeps the local
// autocorrelation of the data, which makes the replicates usable for
// variance and uncertainty estimates over dependent observations.
//
// # Reference Grid
//
// Block starts are drawn from an evenly spaced grid stepped by one frequency
// unit, running from first-blockLength+unit to the last timestamp. The block
// for grid position g holds every row with a timestamp in [g, g+blockLength].
// Positions whose window holds no rows are never drawn.
//
// # Basic Usage
//
//	r, err := bootstrap.New(series,
//	    bootstrap.WithBlockLength(30),
//	    bootstrap.WithUnit(bootstrap.Day),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Reproducible replicate
//	sample, err := r.SampleSeed(42)
//
//	// Fresh entropy on every call
//	sample, err = r.Sample()
//
// Every sample has exactly r.N() rows taken unmodified from the input, with
// the input's column labels, ordered by timestamp. The same row can appear
// more than once.
//
// # Randomness
//
// Each call owns its random stream, so a Resampler can be shared between
// goroutines. WithLegacyReseed re-seeds before every draw instead; with a
// fixed seed that yields the same block over and over.
//
// # Errors
//
// New reports ErrEmptyInput, ErrConfiguration, ErrDuplicateTimestamp and
// ErrDegenerateInput, wrapped with context. Use errors.Is to match them.
package bootstrap
