package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: "ds")
	ValueColumn string // Column name for values (default: "y")
	DateFormat  string // Date format (default: "2006-01-02")
	Delimiter   rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "ds",
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		Delimiter:   ',',
	}
}

// dateFormats are tried after the configured one.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a dated series from an io.Reader. Rows with a blank
// or non-numeric value are skipped; an unparseable date is an error.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.DateColumn:
			dateIdx = i
		case opts.ValueColumn:
			valueIdx = i
		}
	}
	if dateIdx == -1 || valueIdx == -1 {
		return nil, fmt.Errorf("columns %q and %q are required", opts.DateColumn, opts.ValueColumn)
	}

	var values []float64
	var timestamps []time.Time
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		valStr := strings.TrimSpace(record[valueIdx])
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			continue
		}

		ts, err := parseDate(strings.TrimSpace(record[dateIdx]), opts.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		timestamps = append(timestamps, ts)
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	return &Series{Timestamps: timestamps, Values: values}, nil
}

func parseDate(s, preferred string) (time.Time, error) {
	if preferred != "" {
		if ts, err := time.Parse(preferred, s); err == nil {
			return ts, nil
		}
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// SaveCSV writes the series as ds,y rows.
func SaveCSV(series *Series, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, series); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteCSV writes the series as ds,y rows to w.
func WriteCSV(w io.Writer, series *Series) error {
	if len(series.Timestamps) != len(series.Values) {
		return errors.New("series needs one timestamp per value")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ds", "y"}); err != nil {
		return err
	}
	for i, v := range series.Values {
		row := []string{
			series.Timestamps[i].Format("2006-01-02"),
			strconv.FormatFloat(v, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
