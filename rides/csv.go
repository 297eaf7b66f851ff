package rides

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// stationDayRecord is the on-disk row of the cleaned station-day table.
type stationDayRecord struct {
	Day          string `dataframe:"day"`
	StationID    string `dataframe:"station_id"`
	Latitude     string `dataframe:"latitude"`
	Longitude    string `dataframe:"longitude"`
	RideCount    int    `dataframe:"ride_count"`
	Neighborhood string `dataframe:"neighborhood"`
	Borough      string `dataframe:"borough"`
}

var stationDayColumns = []string{"day", "station_id", "latitude", "longitude", "ride_count", "neighborhood", "borough"}

// WriteStationDays writes the station-day table as CSV.
func WriteStationDays(w io.Writer, days []StationDay) error {
	if len(days) == 0 {
		return ErrNoRows
	}

	records := make([]stationDayRecord, len(days))
	for i, d := range days {
		records[i] = stationDayRecord{
			Day:          d.Day.Format(time.DateOnly),
			StationID:    d.StationID,
			Latitude:     strconv.FormatFloat(d.Lat, 'f', -1, 64),
			Longitude:    strconv.FormatFloat(d.Lon, 'f', -1, 64),
			RideCount:    d.RideCount,
			Neighborhood: d.Neighborhood,
			Borough:      d.Borough,
		}
	}

	df := dataframe.LoadStructs(records)
	if df.Err != nil {
		return fmt.Errorf("build station days: %w", df.Err)
	}
	return df.WriteCSV(w)
}

// SaveStationDays writes the station-day table to path.
func SaveStationDays(path string, days []StationDay) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteStationDays(f, days); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadStationDays reads a station-day table from path.
func LoadStationDays(path string) ([]StationDay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStationDays(f)
}

// ReadStationDays reads a table written by WriteStationDays.
func ReadStationDays(r io.Reader) ([]StationDay, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read station days: %w", df.Err)
	}

	have := make(map[string]bool)
	for _, name := range df.Names() {
		have[name] = true
	}
	cols := make(map[string][]string, len(stationDayColumns))
	for _, name := range stationDayColumns {
		if !have[name] {
			return nil, fmt.Errorf("read station days: missing column %q", name)
		}
		cols[name] = df.Col(name).Records()
	}

	days := make([]StationDay, df.Nrow())
	for i := range days {
		row := func(col string) string { return strings.TrimSpace(cols[col][i]) }

		day, err := time.Parse(time.DateOnly, row("day"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lat, err := strconv.ParseFloat(row("latitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d latitude: %w", i+2, err)
		}
		lon, err := strconv.ParseFloat(row("longitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d longitude: %w", i+2, err)
		}
		count, err := strconv.Atoi(row("ride_count"))
		if err != nil {
			return nil, fmt.Errorf("row %d ride_count: %w", i+2, err)
		}

		days[i] = StationDay{
			Day:          day,
			StationID:    row("station_id"),
			Lat:          lat,
			Lon:          lon,
			RideCount:    count,
			Neighborhood: blankNaN(row("neighborhood")),
			Borough:      blankNaN(row("borough")),
		}
	}
	return days, nil
}

func blankNaN(s string) string {
	if s == "NaN" {
		return ""
	}
	return s
}
