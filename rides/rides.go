package rides

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrUnknownSchema       = errors.New("rides: unrecognized ride file header")
	ErrUnknownNeighborhood = errors.New("rides: neighborhood has no station days")
	ErrNoRows              = errors.New("rides: no rows")
)

// Ride is one trip start.
type Ride struct {
	Start     time.Time
	StationID string
	Lat       float64
	Lon       float64
}

// Schema names the columns of one ride file layout.
type Schema struct {
	Name      string
	Start     string
	StationID string
	Lat       string
	Lon       string

	// ConvertIDs rounds numeric station ids, see ConvertStation.
	ConvertIDs bool
}

var (
	// Legacy is the layout used through January 2021.
	Legacy = Schema{
		Name:      "legacy",
		Start:     "starttime",
		StationID: "start station id",
		Lat:       "start station latitude",
		Lon:       "start station longitude",
	}
	// Current is the layout used from February 2021.
	Current = Schema{
		Name:       "current",
		Start:      "started_at",
		StationID:  "start_station_id",
		Lat:        "start_lat",
		Lon:        "start_lng",
		ConvertIDs: true,
	}
)

// DetectSchema picks the layout whose columns are all present.
func DetectSchema(columns []string) (Schema, error) {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[strings.TrimSpace(c)] = true
	}
	for _, s := range []Schema{Current, Legacy} {
		if have[s.Start] && have[s.StationID] && have[s.Lat] && have[s.Lon] {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("%w: %v", ErrUnknownSchema, columns)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// ParseStart parses a ride start timestamp. Fractional seconds are accepted.
func ParseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized start time %q", s)
}

// ReadRidesFile reads a raw ride CSV from disk.
func ReadRidesFile(path string) ([]Ride, Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Schema{}, err
	}
	defer f.Close()
	return ReadRides(f)
}

// ReadRides reads a raw ride CSV in either layout. Rides without a station id
// or coordinates are dropped.
func ReadRides(r io.Reader) ([]Ride, Schema, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, Schema{}, fmt.Errorf("read rides: %w", df.Err)
	}

	schema, err := DetectSchema(df.Names())
	if err != nil {
		return nil, Schema{}, err
	}

	starts := df.Col(schema.Start).Records()
	ids := df.Col(schema.StationID).Records()
	lats := df.Col(schema.Lat).Records()
	lons := df.Col(schema.Lon).Records()

	rides := make([]Ride, 0, len(starts))
	for i := range starts {
		if missing(ids[i]) || missing(lats[i]) || missing(lons[i]) {
			continue
		}
		start, err := ParseStart(starts[i])
		if err != nil {
			return nil, schema, fmt.Errorf("row %d: %w", i+2, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(lats[i]), 64)
		if err != nil {
			return nil, schema, fmt.Errorf("row %d latitude: %w", i+2, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lons[i]), 64)
		if err != nil {
			return nil, schema, fmt.Errorf("row %d longitude: %w", i+2, err)
		}

		id := strings.TrimSpace(ids[i])
		if schema.ConvertIDs {
			id = ConvertStation(id)
		}
		rides = append(rides, Ride{Start: start, StationID: id, Lat: lat, Lon: lon})
	}
	return rides, schema, nil
}

func missing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "NaN" || s == "NA"
}

// ConvertStation rounds a numeric station id to the nearest integer, halves
// to even, so "5905.14" becomes "5905". Non-numeric ids are returned unchanged.
func ConvertStation(id string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(id), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return id
	}
	return strconv.FormatFloat(math.RoundToEven(f), 'f', 0, 64)
}
