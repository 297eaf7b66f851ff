// Package rides turns raw bike-share trip files into per-station daily counts
// and per-neighborhood daily series.
//
// Two trip file layouts are recognized from their header. The legacy layout
// has "starttime", "start station id", "start station latitude" and "start
// station longitude". The current layout, used from 2021, has "started_at",
// "start_station_id", "start_lat" and "start_lng", and its numeric station
// ids carry a decimal part that ConvertStation rounds away.
//
//	trips, schema, err := rides.ReadRidesFile("202103-citibike-tripdata.csv")
//	days := rides.Aggregate(trips)
//	unresolved := rides.Annotate(days, boundaries)
//	err = rides.SaveStationDays("station_days.csv", days)
//
//	astoria, err := rides.NeighborhoodSeries(days, "Astoria")
package rides
