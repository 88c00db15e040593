package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL+"/api/", DefaultBreakerConfig(), nil), srv
}

func TestObservationsRepeatsDatatypeParams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/observations", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, []string{"TMAX", "TMIN"}, q["datatypeid"])
		assert.Equal(t, "GHCND", q.Get("datasetid"))
		assert.Equal(t, "GHCND:USW00013881", q.Get("stationid"))
		assert.Empty(t, q.Get("locationid"))
		assert.Equal(t, "2024-09-01", q.Get("startdate"))
		assert.Equal(t, "1000", q.Get("limit"))
		fmt.Fprint(w, `{"results":[{"date":"2024-09-01T00:00:00","datatype":"TMAX","station":"GHCND:USW00013881","value":250}]}`)
	})

	rows, err := c.Observations(context.Background(), weather.ObservationQuery{
		DatasetID: "GHCND",
		StationID: "GHCND:USW00013881",
		Datatypes: []weather.Datatype{weather.DatatypeTMax, weather.DatatypeTMin},
		StartDate: "2024-09-01",
		EndDate:   "2024-09-07",
		Limit:     1000,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, weather.DatatypeTMax, rows[0].Datatype)
	assert.Equal(t, 250.0, *rows[0].Value)
}

func TestObservationsNeedsStationOrLocation(t *testing.T) {
	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Observations(context.Background(), weather.ObservationQuery{DatasetID: "GHCND"})
	assert.ErrorIs(t, err, ErrMissingStation)
}

func TestSearchLocationsDefaultsAndNormalization(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Charlotte, NC", q.Get("q"))
		assert.Equal(t, "1000", q.Get("limit"))
		assert.Equal(t, "CITY", q.Get("locationcategoryid"))
		fmt.Fprint(w, `{"results":[
			{"id":"CITY:US370016","name":"Charlotte","lat":35.2271,"lon":-80.8431},
			{"place":"Charlotte Hall","latitude":"38.48","longitude":"-76.78"}
		]}`)
	})

	locs, err := c.SearchLocations(context.Background(), weather.LocationQuery{Q: "Charlotte, NC"})
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Charlotte Hall", locs[1].Name)
	assert.True(t, locs[1].HasCoordinates())
}

func TestForecastAndTrendParams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "35.2271", q.Get("lat"))
		assert.Equal(t, "-80.8431", q.Get("lon"))
		assert.Equal(t, "7", q.Get("days"))
		switch r.URL.Path {
		case "/api/forecast/daily":
			assert.Equal(t, "imperial", q.Get("units"))
			fmt.Fprint(w, `{"daily":[{"date":"2024-09-01","tMax":80,"tMin":null,"pop":0.2}]}`)
		case "/api/trends":
			assert.Equal(t, "metric", q.Get("units"))
			fmt.Fprint(w, `{"predicted":[{"date":"2024-09-01","tMax":25,"tMin":12,"pop":0.4}],
				"officialForecast":[],"confidence":{"tMax":0.8,"tMin":0.7,"pop":0.6},"summary":"ok"}`)
		default:
			http.NotFound(w, r)
		}
	})

	points, err := c.DailyForecast(context.Background(), 35.2271, -80.8431, 7, weather.UnitImperial)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Nil(t, points[0].TMin)

	payload, err := c.Trends(context.Background(), 35.2271, -80.8431, 7, weather.UnitMetric)
	require.NoError(t, err)
	assert.Len(t, payload.Predicted, 1)
	assert.Empty(t, payload.OfficialForecast)
	assert.Equal(t, 0.8, payload.Confidence.TMax)
	assert.Equal(t, "ok", payload.Summary)
}

func TestAlertsNormalizes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":2,"alerts":[
			{"event":"Heat Advisory","severity":"Moderate","headline":"Hot"},
			{"id":"w1","event":"Tornado Warning","severity":"Extreme","headline":"Take cover"}
		]}`)
	})

	alerts, err := c.Alerts(context.Background(), 35.2, -80.8)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "w1", alerts[0].ID)
	assert.NotEmpty(t, alerts[1].ID)
}

func TestStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	})

	_, err := c.Datasets(context.Background(), 10)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "rate limited", statusErr.Message)
	assert.Equal(t, "The weather service is busy. Please try again shortly.", UserMessage(err))
}

func TestDecodeError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>oops</html>`)
	})

	_, err := c.Datasets(context.Background(), 10)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "The weather service sent data we could not read.", UserMessage(err))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(&http.Client{Timeout: time.Second}, url, DefaultBreakerConfig(), nil)
	_, err := c.Datasets(context.Background(), 10)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, UserMessage(err), "Could not reach")
}

func TestBreakerOpensWithoutRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.circuit = newBreaker("test", BreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := c.Datasets(context.Background(), 10)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
	}

	_, err := c.Datasets(context.Background(), 10)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, UserMessage(err), "temporarily unavailable")
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/alerts" {
			fmt.Fprint(w, `{"count":0,"alerts":[]}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"no data"}`)
	})
	c.circuit = newBreaker("test", BreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	for i := 0; i < 5; i++ {
		_, err := c.Observations(context.Background(), weather.ObservationQuery{StationID: "S1"})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	}

	_, err := c.Alerts(context.Background(), 35.2, -80.8)
	assert.NoError(t, err)
}

func TestBreakerIgnoresCancelledCalls(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":0,"alerts":[]}`)
	})
	c.circuit = newBreaker("test", BreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := c.Alerts(cancelled, 35.2, -80.8)
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, netErr.Aborted)
		assert.ErrorIs(t, err, context.Canceled)
	}

	_, err := c.Alerts(context.Background(), 35.2, -80.8)
	assert.NoError(t, err)
}

func TestBreakerCountsRateLimiting(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.circuit = newBreaker("test", BreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, _ = c.Datasets(context.Background(), 10)
	}
	_, err := c.Datasets(context.Background(), 10)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestTripsBreaker(t *testing.T) {
	assert.False(t, tripsBreaker(nil))
	assert.False(t, tripsBreaker(&StatusError{StatusCode: http.StatusNotFound}))
	assert.False(t, tripsBreaker(&StatusError{StatusCode: http.StatusBadRequest}))
	assert.False(t, tripsBreaker(&NetworkError{Err: context.Canceled, Aborted: true}))
	assert.True(t, tripsBreaker(&StatusError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, tripsBreaker(&StatusError{StatusCode: http.StatusBadGateway}))
	assert.True(t, tripsBreaker(&NetworkError{Err: errors.New("connection refused")}))
	assert.True(t, tripsBreaker(&DecodeError{Err: errors.New("bad json")}))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{weather.ErrNoCoordinates, "Choose a location with coordinates to load this panel."},
		{fmt.Errorf("wrapped: %w", ErrMissingStation), "Choose a station or location to load observations."},
		{&StatusError{StatusCode: 404}, "No weather data was found for this request."},
		{&StatusError{StatusCode: 503}, "The weather service is having trouble right now."},
		{&StatusError{StatusCode: 400}, "The weather service could not handle this request."},
		{errors.New("sql: connection refused at 10.0.0.3"), "Something went wrong while loading weather data."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "circuit_open", outcome(fmt.Errorf("%w: open", ErrCircuitOpen)))
	assert.Equal(t, "network", outcome(&NetworkError{Err: errors.New("x")}))
	assert.Equal(t, "status", outcome(&StatusError{}))
	assert.Equal(t, "decode", outcome(&DecodeError{Err: errors.New("x")}))
}
