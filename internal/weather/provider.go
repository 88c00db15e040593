package weather

import (
	"context"
)

// ObservationQuery selects station rows from the historical dataset.
// Exactly one of StationID or LocationID is expected.
type ObservationQuery struct {
	DatasetID  string
	StationID  string
	LocationID string
	Datatypes  []Datatype
	StartDate  string
	EndDate    string
	Limit      int
}

// LocationQuery is a free-text location search. Q must already have passed
// query validation.
type LocationQuery struct {
	Q          string
	Limit      int
	CategoryID string
	SortField  string
}

// Upstream abstracts the weather backend the dashboard reads from.
type Upstream interface {
	Datasets(ctx context.Context, limit int) ([]Dataset, error)
	Observations(ctx context.Context, q ObservationQuery) ([]RawObservation, error)
	SearchLocations(ctx context.Context, q LocationQuery) ([]Location, error)
	DailyForecast(ctx context.Context, lat, lon float64, days int, units Unit) ([]SeriesPoint, error)
	Trends(ctx context.Context, lat, lon float64, days int, units Unit) (TrendPayload, error)
	Alerts(ctx context.Context, lat, lon float64) ([]Alert, error)
}

// ReverseGeocoder names a coordinate pair.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Place, error)
}

// Selection supplies the location currently driving displayed data.
type Selection interface {
	Active() Location
}
