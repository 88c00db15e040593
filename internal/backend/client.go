// Package backend is the REST client for the weather backend. Every payload
// is normalized into internal/weather types before it leaves this package.
package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	defaultLocationLimit    = 1000
	defaultLocationCategory = "CITY"
)

// Client implements weather.Upstream over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
}

// NewClient creates a backend client. The http.Client's Timeout is the only
// per-request deadline besides the caller's context.
func NewClient(httpClient *http.Client, baseURL string, breaker BreakerConfig, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		circuit:    newBreaker("weather-backend", breaker),
		metrics:    metrics,
	}
}

var _ weather.Upstream = (*Client)(nil)

// Datasets lists available historical datasets.
func (c *Client) Datasets(ctx context.Context, limit int) ([]weather.Dataset, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var payload struct {
		Results []weather.Dataset `json:"results"`
	}
	if err := c.getJSON(ctx, "/datasets", params, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// Observations fetches raw station rows. Datatypes are sent as repeated
// datatypeid parameters.
func (c *Client) Observations(ctx context.Context, q weather.ObservationQuery) ([]weather.RawObservation, error) {
	if q.StationID == "" && q.LocationID == "" {
		return nil, ErrMissingStation
	}

	params := url.Values{}
	setIf(params, "datasetid", q.DatasetID)
	setIf(params, "stationid", q.StationID)
	setIf(params, "locationid", q.LocationID)
	for _, dt := range q.Datatypes {
		params.Add("datatypeid", string(dt))
	}
	setIf(params, "startdate", q.StartDate)
	setIf(params, "enddate", q.EndDate)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var payload struct {
		Results []weather.RawObservation `json:"results"`
	}
	if err := c.getJSON(ctx, "/observations", params, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// SearchLocations runs a free-text search and normalizes the results.
func (c *Client) SearchLocations(ctx context.Context, q weather.LocationQuery) ([]weather.Location, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLocationLimit
	}
	if q.CategoryID == "" {
		q.CategoryID = defaultLocationCategory
	}

	params := url.Values{}
	setIf(params, "q", q.Q)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("locationcategoryid", q.CategoryID)
	setIf(params, "sortfield", q.SortField)

	var payload struct {
		Results []weather.RawLocation `json:"results"`
	}
	if err := c.getJSON(ctx, "/locations", params, &payload); err != nil {
		return nil, err
	}
	return weather.NormalizeLocations(payload.Results), nil
}

// DailyForecast fetches the aggregated daily forecast in the requested units.
func (c *Client) DailyForecast(ctx context.Context, lat, lon float64, days int, units weather.Unit) ([]weather.SeriesPoint, error) {
	var payload struct {
		Daily []weather.SeriesPoint `json:"daily"`
	}
	if err := c.getJSON(ctx, "/forecast/daily", coordParams(lat, lon, days, units), &payload); err != nil {
		return nil, err
	}
	return payload.Daily, nil
}

// Trends fetches the predicted and official series with confidence scores.
func (c *Client) Trends(ctx context.Context, lat, lon float64, days int, units weather.Unit) (weather.TrendPayload, error) {
	var payload weather.TrendPayload
	if err := c.getJSON(ctx, "/trends", coordParams(lat, lon, days, units), &payload); err != nil {
		return weather.TrendPayload{}, err
	}
	return payload, nil
}

// Alerts fetches active alerts for a point.
func (c *Client) Alerts(ctx context.Context, lat, lon float64) ([]weather.Alert, error) {
	params := url.Values{}
	params.Set("lat", formatFloat(lat))
	params.Set("lon", formatFloat(lon))

	var payload struct {
		Count    int                `json:"count"`
		Alerts   []weather.RawAlert `json:"alerts"`
		Features []weather.RawAlert `json:"features"`
	}
	if err := c.getJSON(ctx, "/alerts", params, &payload); err != nil {
		return nil, err
	}
	raw := payload.Alerts
	if len(raw) == 0 {
		raw = payload.Features
	}
	return weather.NormalizeAlerts(raw), nil
}

func coordParams(lat, lon float64, days int, units weather.Unit) url.Values {
	params := url.Values{}
	params.Set("lat", formatFloat(lat))
	params.Set("lon", formatFloat(lon))
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	setIf(params, "units", string(units))
	return params
}

func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
