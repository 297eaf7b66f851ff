package rides

import (
	"sort"
	"time"

	"github.com/sartorproj/ridecast/timeseries"
)

// StationDay is the number of rides started at one station on one day.
type StationDay struct {
	Day          time.Time
	StationID    string
	Lat          float64
	Lon          float64
	RideCount    int
	Neighborhood string // empty when unresolved
	Borough      string
}

type stationKey struct {
	day      int64
	id       string
	lat, lon float64
}

// Aggregate counts rides per calendar day and station location, sorted by
// day, then station id.
func Aggregate(rides []Ride) []StationDay {
	counts := make(map[stationKey]int)
	for _, r := range rides {
		k := stationKey{
			day: timeseries.Truncate(r.Start).Unix(),
			id:  r.StationID,
			lat: r.Lat,
			lon: r.Lon,
		}
		counts[k]++
	}

	days := make([]StationDay, 0, len(counts))
	for k, n := range counts {
		days = append(days, StationDay{
			Day:       time.Unix(k.day, 0).UTC(),
			StationID: k.id,
			Lat:       k.lat,
			Lon:       k.lon,
			RideCount: n,
		})
	}
	sortStationDays(days)
	return days
}

func sortStationDays(days []StationDay) {
	sort.Slice(days, func(i, j int) bool {
		a, b := days[i], days[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		if a.StationID != b.StationID {
			return a.StationID < b.StationID
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		return a.Lon < b.Lon
	})
}

// Resolver maps a coordinate to a neighborhood and a borough.
type Resolver interface {
	Neighborhood(lat, lon float64) (string, bool)
	Borough(lat, lon float64) (string, bool)
}

// Annotate fills Neighborhood and Borough in place and returns how many
// station days could not be placed. Each distinct coordinate is resolved once.
func Annotate(days []StationDay, resolver Resolver) int {
	type place struct{ neighborhood, borough string }
	type point struct{ lat, lon float64 }

	seen := make(map[point]place)
	unresolved := 0
	for i := range days {
		pt := point{days[i].Lat, days[i].Lon}
		p, ok := seen[pt]
		if !ok {
			p.neighborhood, _ = resolver.Neighborhood(pt.lat, pt.lon)
			p.borough, _ = resolver.Borough(pt.lat, pt.lon)
			seen[pt] = p
		}
		days[i].Neighborhood = p.neighborhood
		days[i].Borough = p.borough
		if p.neighborhood == "" {
			unresolved++
		}
	}
	return unresolved
}

// Neighborhoods returns the sorted distinct non-empty neighborhood names.
func Neighborhoods(days []StationDay) []string {
	set := make(map[string]struct{})
	for _, d := range days {
		if d.Neighborhood != "" {
			set[d.Neighborhood] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NeighborhoodSeries sums one neighborhood's rides per day over every day
// from its first to its last station day. Zero days take the next non-zero
// day's count.
func NeighborhoodSeries(days []StationDay, neighborhood string) (*timeseries.Series, error) {
	var timestamps []time.Time
	var counts []float64
	for _, d := range days {
		if d.Neighborhood == neighborhood {
			timestamps = append(timestamps, d.Day)
			counts = append(counts, float64(d.RideCount))
		}
	}
	if len(counts) == 0 {
		return nil, ErrUnknownNeighborhood
	}

	raw, err := timeseries.NewWithTimestamps(timestamps, counts)
	if err != nil {
		return nil, err
	}
	daily, err := raw.ResampleDaily()
	if err != nil {
		return nil, err
	}

	filled := daily.BackfillZeros()
	filled.Name = neighborhood
	return filled, nil
}
