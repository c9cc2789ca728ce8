package mapview

import (
	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection renders the view as GeoJSON: airport points, flight line
// strings and a point per flight for the time label. GeoJSON positions are
// [lng, lat].
func FeatureCollection(v View) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, m := range v.Markers {
		f := geojson.NewPointFeature([]float64{m.Position.Lng, m.Position.Lat})
		f.ID = m.IATACode
		f.SetProperty("kind", "airport")
		f.SetProperty("name", m.Name)
		f.SetProperty("iata_code", m.IATACode)
		f.SetProperty("city", m.City)
		f.SetProperty("country", m.Country)
		fc.AddFeature(f)
	}

	for _, p := range v.Paths {
		line := geojson.NewLineStringFeature([][]float64{
			{p.Path[0].Lng, p.Path[0].Lat},
			{p.Path[1].Lng, p.Path[1].Lat},
		})
		line.ID = p.FlightID
		line.SetProperty("kind", "flight")
		line.SetProperty("flight", p.Flight)
		line.SetProperty("airline", p.Airline)
		line.SetProperty("scheduled_departure", p.ScheduledDeparture)
		line.SetProperty("scheduled_arrival", p.ScheduledArrival)
		line.SetProperty("distance_km", p.DistanceKM)
		fc.AddFeature(line)

		label := geojson.NewPointFeature([]float64{p.Midpoint.Lng, p.Midpoint.Lat})
		label.SetProperty("kind", "flight_time")
		label.SetProperty("flight", p.Flight)
		label.SetProperty("label", p.DepartureTime+" → "+p.ArrivalTime)
		fc.AddFeature(label)
	}

	return fc
}

func GeoJSON(v View) ([]byte, error) {
	return FeatureCollection(v).MarshalJSON()
}
