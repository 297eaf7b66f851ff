package timeseries

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `ds,y
2020-01-01,100
2020-01-02,101
2020-01-03,102
2020-01-04,103
2020-01-05,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if series.Len() != 5 {
		t.Errorf("Expected 5 observations, got %d", series.Len())
	}

	expected := []float64{100, 101, 102, 103, 104}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}
	if !series.Timestamps[4].Equal(time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected last timestamp %s", series.Timestamps[4])
	}
}

func TestLoadCSVWithNAValues(t *testing.T) {
	csvData := `ds,y
2020-01-01,100
2020-01-02,NA
2020-01-03,102
2020-01-04,NaN
2020-01-05,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	// NA and NaN values should be skipped
	if series.Len() != 3 {
		t.Errorf("Expected 3 observations (NA values skipped), got %d", series.Len())
	}
}

func TestLoadCSVCustomColumns(t *testing.T) {
	csvData := `day,neighborhood,rides
2020-01-01,Astoria,200
2020-01-02,Astoria,210
2020-01-03,Astoria,220`

	opts := DefaultCSVOptions()
	opts.DateColumn = "day"
	opts.ValueColumn = "rides"

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	expected := []float64{200, 210, 220}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	csvData := `date,value
2020-01-01,1`

	if _, err := LoadCSVFromReader(strings.NewReader(csvData), nil); err == nil {
		t.Error("Expected error for missing ds/y columns")
	}
}

func TestLoadCSVBadDate(t *testing.T) {
	csvData := `ds,y
yesterday,1`

	if _, err := LoadCSVFromReader(strings.NewReader(csvData), nil); err == nil {
		t.Error("Expected error for unparseable date")
	}
}

func TestLoadCSVDateFormats(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
	}{
		{"ISO format", "ds,y\n2020-01-01,100\n2020-01-02,101"},
		{"with time", "ds,y\n2020-01-01 00:00:00,100\n2020-01-02 00:00:00,101"},
		{"US format", "ds,y\n01/01/2020,100\n01/02/2020,101"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series, err := LoadCSVFromReader(strings.NewReader(tc.csvData), nil)
			if err != nil {
				t.Fatalf("Failed to load CSV: %v", err)
			}
			if series.Len() != 2 {
				t.Errorf("Expected 2 observations, got %d", series.Len())
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	s := New(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), []float64{12, 7.5})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	expected := "ds,y\n2021-03-01,12\n2021-03-02,7.5\n"
	if buf.String() != expected {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

func TestSaveAndLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	s := New(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), []float64{12, 7, 9})

	if err := SaveCSV(s, path); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	loaded, err := LoadCSV(path, nil)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if loaded.Len() != 3 || loaded.Values[2] != 9 {
		t.Errorf("Unexpected reloaded series: %v", loaded.Values)
	}
}
