package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
)

// ZstdSuffix marks CSV files that are zstd framed on disk.
const ZstdSuffix = ".zst"

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn   string   // Column name for timestamps (default: first of ds/date/time/timestamp)
	ValueColumns []string // Columns to load (default: every non-date column)
	DateFormat   string   // Preferred timestamp layout (default: "2006-01-02")
	HasHeader    bool     // Whether CSV has header row (default: true)
	Delimiter    rune     // Field delimiter (default: ',')
	SkipRows     int      // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateFormat: "2006-01-02",
		HasHeader:  true,
		Delimiter:  ',',
	}
}

var (
	dateHeaders   = []string{"ds", "date", "Date", "time", "timestamp"}
	missingTokens = []string{"", "NA", "NaN", "nan", "null"}
	fallbackDates = []string{
		"2006-01-02",
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
	}
)

// LoadCSV loads a series from a CSV file. Files ending in .zst are decompressed.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(filename, ZstdSuffix) {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	s, err := LoadCSVFromReader(r, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return s, nil
}

// LoadCSVFromReader loads a series from an io.Reader.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	dateIdx := 0
	var valueIdx []int
	var columns []string

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, err
	}

	var pending []string
	if opts.HasHeader {
		headers := lo.Map(first, func(h string, _ int) string {
			return strings.TrimSpace(strings.Trim(h, "\""))
		})

		dateIdx, valueIdx, err = resolveColumns(headers, opts)
		if err != nil {
			return nil, err
		}
		columns = lo.Map(valueIdx, func(i int, _ int) string { return headers[i] })
	} else {
		// No header: first field is the date, the rest are values.
		for i := 1; i < len(first); i++ {
			valueIdx = append(valueIdx, i)
			columns = append(columns, "y"+strconv.Itoa(i))
		}
		if len(columns) == 1 {
			columns[0] = DefaultColumn
		}
		pending = first
	}

	if len(valueIdx) == 0 {
		return nil, fmt.Errorf("%w: no value columns", ErrNoData)
	}

	var timestamps []time.Time
	var rows [][]float64

	line := opts.SkipRows
	if opts.HasHeader {
		line++
	}
	for {
		var record []string
		if pending != nil {
			record, pending = pending, nil
		} else {
			record, err = reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
		}
		line++

		if dateIdx >= len(record) {
			return nil, fmt.Errorf("line %d: missing date field", line)
		}
		ts, err := parseDate(field(record, dateIdx), opts.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]float64, len(valueIdx))
		for j, idx := range valueIdx {
			v, err := parseValue(field(record, idx))
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, columns[j], err)
			}
			row[j] = v
		}

		timestamps = append(timestamps, ts)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	return NewFrame(timestamps, columns, rows)
}

func resolveColumns(headers []string, opts *CSVOptions) (int, []int, error) {
	dateIdx := -1
	if opts.DateColumn != "" {
		dateIdx = lo.IndexOf(headers, opts.DateColumn)
		if dateIdx < 0 {
			return 0, nil, fmt.Errorf("date column %q not found", opts.DateColumn)
		}
	} else {
		for i, h := range headers {
			if lo.Contains(dateHeaders, h) {
				dateIdx = i
				break
			}
		}
		if dateIdx < 0 {
			dateIdx = 0
		}
	}

	if len(opts.ValueColumns) > 0 {
		idx := make([]int, 0, len(opts.ValueColumns))
		for _, name := range opts.ValueColumns {
			i := lo.IndexOf(headers, name)
			if i < 0 {
				return 0, nil, fmt.Errorf("value column %q not found", name)
			}
			idx = append(idx, i)
		}
		return dateIdx, idx, nil
	}

	idx := make([]int, 0, len(headers)-1)
	for i := range headers {
		if i != dateIdx {
			idx = append(idx, i)
		}
	}
	return dateIdx, idx, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(record[i], "\""))
}

func parseDate(s, preferred string) (time.Time, error) {
	layouts := fallbackDates
	if preferred != "" {
		layouts = append([]string{preferred}, fallbackDates...)
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseValue(s string) (float64, error) {
	if lo.Contains(missingTokens, s) {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// SaveCSV saves a series to a CSV file. Files ending in .zst are compressed.
func SaveCSV(series *Series, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(filename, ZstdSuffix) {
		return WriteCSV(file, series, "")
	}

	enc, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("open zstd stream: %w", err)
	}
	if err := WriteCSV(enc, series, ""); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// WriteCSV writes a "ds,<columns...>" table. An empty layout picks a date-only
// layout when every timestamp is midnight UTC and RFC 3339 otherwise.
func WriteCSV(w io.Writer, series *Series, layout string) error {
	if layout == "" {
		layout = pickLayout(series.Timestamps)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"ds"}, series.Columns...)); err != nil {
		return err
	}

	record := make([]string, series.Width()+1)
	for i, ts := range series.Timestamps {
		record[0] = ts.Format(layout)
		for j, v := range series.Row(i) {
			record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func pickLayout(timestamps []time.Time) string {
	for _, ts := range timestamps {
		if ts.Location() != time.UTC || !ts.Equal(ts.Truncate(24*time.Hour)) {
			return time.RFC3339Nano
		}
	}
	return "2006-01-02"
}
