package rides

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyCSV = `tripduration,starttime,stoptime,start station id,start station name,start station latitude,start station longitude
680,2019-01-01 00:01:47.4010,2019-01-01 00:13:07.8720,3160,Central Park West & W 76 St,40.78057799,-73.97525
1282,2019-01-01 00:04:43.7360,2019-01-01 00:26:06.0470,519,Pershing Square North,40.751873,-73.977706
1000,2019-01-01 07:15:00.0000,2019-01-01 07:30:00.0000,3160,Central Park West & W 76 St,40.78057799,-73.97525
300,2019-01-02 09:00:00.0000,2019-01-02 09:05:00.0000,,Unknown,,
`

const currentCSV = `ride_id,rideable_type,started_at,ended_at,start_station_name,start_station_id,start_lat,start_lng
A1,classic_bike,2021-03-01 08:00:03,2021-03-01 08:10:00,W 21 St & 6 Ave,6140.05,40.74173969,-73.99415556
A2,docked_bike,2021-03-01 09:30:00,2021-03-01 09:45:00,Hoboken Terminal,JC013,40.735938,-74.030305
A3,classic_bike,2021-03-02 10:00:00.512,2021-03-02 10:10:00,W 21 St & 6 Ave,6140.05,40.74173969,-73.99415556
`

func TestReadRidesLegacy(t *testing.T) {
	rides, schema, err := ReadRides(strings.NewReader(legacyCSV))
	require.NoError(t, err)
	assert.Equal(t, "legacy", schema.Name)

	require.Len(t, rides, 3, "ride without station or coordinates is dropped")
	assert.Equal(t, time.Date(2019, 1, 1, 0, 1, 47, 401000000, time.UTC), rides[0].Start)
	assert.Equal(t, "3160", rides[0].StationID)
	assert.Equal(t, 40.78057799, rides[0].Lat)
	assert.Equal(t, -73.97525, rides[0].Lon)
}

func TestReadRidesCurrent(t *testing.T) {
	rides, schema, err := ReadRides(strings.NewReader(currentCSV))
	require.NoError(t, err)
	assert.Equal(t, "current", schema.Name)

	require.Len(t, rides, 3)
	assert.Equal(t, "6140", rides[0].StationID)
	assert.Equal(t, "JC013", rides[1].StationID)
	assert.Equal(t, time.Date(2021, 3, 2, 10, 0, 0, 512000000, time.UTC), rides[2].Start)
}

func TestReadRidesErrors(t *testing.T) {
	_, _, err := ReadRides(strings.NewReader("a,b,c\n1,2,3\n"))
	assert.ErrorIs(t, err, ErrUnknownSchema)

	bad := "started_at,start_station_id,start_lat,start_lng\nyesterday,1,40.7,-73.9\n"
	_, _, err = ReadRides(strings.NewReader(bad))
	assert.ErrorContains(t, err, "row 2")
}

func TestParseStart(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2019-01-01 00:01:47.4010", time.Date(2019, 1, 1, 0, 1, 47, 401000000, time.UTC)},
		{"2021-03-01 08:00:03", time.Date(2021, 3, 1, 8, 0, 3, 0, time.UTC)},
		{"9/1/2014 00:00:25", time.Date(2014, 9, 1, 0, 0, 25, 0, time.UTC)},
		{"1/1/2015 0:01", time.Date(2015, 1, 1, 0, 1, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseStart(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConvertStation(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"6140.05", "6140"},
		{"5905.14", "5905"},
		{"72", "72"},
		{"6.5", "6"},
		{"7.5", "8"},
		{"JC013", "JC013"},
		{"SYS016", "SYS016"},
		{"", ""},
		{"NaN", "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertStation(tt.in), "ConvertStation(%q)", tt.in)
	}
}

func TestDetectSchemaPrefersCurrent(t *testing.T) {
	s, err := DetectSchema([]string{"started_at", "start_station_id", "start_lat", "start_lng", "starttime"})
	require.NoError(t, err)
	assert.Equal(t, Current, s)
}

func TestAggregate(t *testing.T) {
	rides, _, err := ReadRides(strings.NewReader(legacyCSV))
	require.NoError(t, err)

	days := Aggregate(rides)
	want := []StationDay{
		{Day: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), StationID: "3160", Lat: 40.78057799, Lon: -73.97525, RideCount: 2},
		{Day: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), StationID: "519", Lat: 40.751873, Lon: -73.977706, RideCount: 1},
	}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}
