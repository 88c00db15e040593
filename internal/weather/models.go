package weather

import (
	"strings"
)

// Datatype identifies the kind of value carried by a station observation row.
type Datatype string

const (
	DatatypeTMax Datatype = "TMAX"
	DatatypeTMin Datatype = "TMIN"
)

// Location represents a place the user can select or pin.
// ID is the only equality key; Lat/Lon are nil when the provider did not supply them.
type Location struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	State   string   `json:"state,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Key returns the canonical key for indexing this location in stores.
func (l Location) Key() string {
	return l.ID
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Label renders "Name, State, Country", skipping empty parts.
func (l Location) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Name, l.State, l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Clone returns a deep copy so callers cannot mutate stored coordinates.
func (l Location) Clone() Location {
	out := l
	if l.Lat != nil {
		lat := *l.Lat
		out.Lat = &lat
	}
	if l.Lon != nil {
		lon := *l.Lon
		out.Lon = &lon
	}
	return out
}

// RawObservation is one upstream station row. Value is in tenths of a degree Celsius.
type RawObservation struct {
	Date     string   `json:"date"`
	Datatype Datatype `json:"datatype"`
	Station  string   `json:"station,omitempty"`
	Value    *float64 `json:"value"`
}

// DailyObservation is the per-date fold of TMAX/TMIN rows, in degrees Celsius.
type DailyObservation struct {
	Date  string   `json:"date"`
	TMaxC *float64 `json:"tmax_c"`
	TMinC *float64 `json:"tmin_c"`
}

// Dataset describes an upstream historical dataset.
type Dataset struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	MinDate      string  `json:"mindate,omitempty"`
	MaxDate      string  `json:"maxdate,omitempty"`
	DataCoverage float64 `json:"datacoverage,omitempty"`
}

// SeriesPoint is one day of a forecast series as delivered upstream.
// Pop is a probability in [0,1].
type SeriesPoint struct {
	Date string   `json:"date"`
	TMax *float64 `json:"tMax"`
	TMin *float64 `json:"tMin"`
	Pop  *float64 `json:"pop"`
}

// Confidence holds the backend's per-request agreement scores, each in [0,1].
type Confidence struct {
	TMax    float64  `json:"tMax"`
	TMin    float64  `json:"tMin"`
	Pop     float64  `json:"pop"`
	Overall *float64 `json:"overall,omitempty"`
}

// ConfidencePct is Confidence as whole percentages.
type ConfidencePct struct {
	TMax    int  `json:"tMax"`
	TMin    int  `json:"tMin"`
	Pop     int  `json:"pop"`
	Overall *int `json:"overall,omitempty"`
}

// TrendPayload is the /trends response body.
type TrendPayload struct {
	Predicted        []SeriesPoint `json:"predicted"`
	OfficialForecast []SeriesPoint `json:"officialForecast"`
	Confidence       Confidence    `json:"confidence"`
	Summary          string        `json:"summary"`
}

// TrendDay is one aligned comparison row in display units.
// PredPop and OffPop are whole percentages.
type TrendDay struct {
	Date    string   `json:"date"`
	PredMax *float64 `json:"predMax"`
	PredMin *float64 `json:"predMin"`
	PredPop int      `json:"predPop"`
	OffMax  *float64 `json:"offMax"`
	OffMin  *float64 `json:"offMin"`
	OffPop  *int     `json:"offPop"`
}

// TrendView is what the trend panel renders.
type TrendView struct {
	Location      Location      `json:"location"`
	Unit          Unit          `json:"units"`
	Symbol        string        `json:"symbol"`
	Days          []TrendDay    `json:"days"`
	Confidence    Confidence    `json:"confidence"`
	ConfidencePct ConfidencePct `json:"confidencePct"`
	Summary       string        `json:"summary,omitempty"`
}

// ForecastDay is one day of the daily forecast in display units.
type ForecastDay struct {
	Date string   `json:"date"`
	TMax *float64 `json:"tMax"`
	TMin *float64 `json:"tMin"`
	Pop  *int     `json:"pop"`
}

// ForecastView is what the forecast panel renders.
type ForecastView struct {
	Location Location      `json:"location"`
	Unit     Unit          `json:"units"`
	Symbol   string        `json:"symbol"`
	Days     []ForecastDay `json:"days"`
}

// HistoryView is what the observation history panel renders.
type HistoryView struct {
	StationID  string             `json:"stationId,omitempty"`
	LocationID string             `json:"locationId,omitempty"`
	Start      string             `json:"start"`
	End        string             `json:"end"`
	Days       []DailyObservation `json:"days"`
}

// Alert is a normalized weather alert.
type Alert struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Severity  string `json:"severity"`
	Headline  string `json:"headline"`
	Effective string `json:"effective,omitempty"`
	Ends      string `json:"ends,omitempty"`
	Area      string `json:"area,omitempty"`
}

// AlertsView is what the alerts panel renders.
type AlertsView struct {
	Location Location `json:"location"`
	Count    int      `json:"count"`
	Alerts   []Alert  `json:"alerts"`
}

// Place is a reverse-geocoded name for a coordinate pair.
type Place struct {
	Name    string
	State   string
	Country string
}
