package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-dashboard/internal/query"
	"github.com/i474232898/weather-dashboard/internal/view"
)

// ErrNoCoordinates is returned when the active location cannot drive a
// coordinate-based fetch.
var ErrNoCoordinates = errors.New("active location has no coordinates")

// Defaults are the request parameters used when a caller leaves them unset.
type Defaults struct {
	Days          int
	Units         Unit
	PredictedUnit Unit
	OfficialUnit  Unit
	DatasetID     string
	StationID     string
}

// ServiceOptions bundles the optional collaborators of a Service.
type ServiceOptions struct {
	Clock    clockwork.Clock
	Geocoder ReverseGeocoder
	// Describe maps fetch errors to user-facing text.
	Describe func(error) string
	// OnRejected is told about every search that fails validation.
	OnRejected func(query.Result)
}

// Service orchestrates upstream fetches, normalization and panel state.
// Each feature area has its own panel and request cycle.
type Service struct {
	upstream  Upstream
	selection Selection
	defaults  Defaults
	geocoder  ReverseGeocoder
	onReject  func(query.Result)

	datasets *view.Panel[[]Dataset]
	search   *view.Panel[[]Location]
	history  *view.Panel[HistoryView]
	day      *view.Panel[DailyObservation]
	forecast *view.Panel[ForecastView]
	trends   *view.Panel[TrendView]
	alerts   *view.Panel[AlertsView]
}

// NewService creates a new Service.
func NewService(upstream Upstream, selection Selection, defaults Defaults, opts ServiceOptions) *Service {
	if defaults.Days <= 0 {
		defaults.Days = 7
	}
	if defaults.Units == "" {
		defaults.Units = UnitImperial
	}
	if defaults.PredictedUnit == "" {
		defaults.PredictedUnit = UnitMetric
	}
	if defaults.OfficialUnit == "" {
		defaults.OfficialUnit = UnitImperial
	}
	if defaults.DatasetID == "" {
		defaults.DatasetID = "GHCND"
	}

	clock, describe := opts.Clock, opts.Describe
	return &Service{
		upstream:  upstream,
		selection: selection,
		defaults:  defaults,
		geocoder:  opts.Geocoder,
		onReject:  opts.OnRejected,
		datasets:  view.NewPanel[[]Dataset](clock, describe),
		search:    view.NewPanel[[]Location](clock, describe),
		history:   view.NewPanel[HistoryView](clock, describe),
		day:       view.NewPanel[DailyObservation](clock, describe),
		forecast:  view.NewPanel[ForecastView](clock, describe),
		trends:    view.NewPanel[TrendView](clock, describe),
		alerts:    view.NewPanel[AlertsView](clock, describe),
	}
}

// Defaults returns the effective defaults.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// Close tears down every panel; fetches still in flight are discarded.
func (s *Service) Close() {
	s.datasets.Close()
	s.search.Close()
	s.history.Close()
	s.day.Close()
	s.forecast.Close()
	s.trends.Close()
	s.alerts.Close()
}

// Datasets loads the dataset listing.
func (s *Service) Datasets(ctx context.Context, limit int) view.Snapshot[[]Dataset] {
	t := s.datasets.Begin()
	ds, err := s.upstream.Datasets(ctx, limit)
	if err != nil {
		log.Printf("ERROR: datasets fetch failed: %v", err)
		s.datasets.Fail(t, err)
	} else {
		s.datasets.Resolve(t, ds)
	}
	return s.datasets.Snapshot()
}

// SearchLocations validates raw and, only if it is accepted, searches
// upstream. A rejected query never reaches the network and leaves the
// previous results untouched.
func (s *Service) SearchLocations(ctx context.Context, raw string) (query.Result, view.Snapshot[[]Location]) {
	res := query.Validate(raw)
	if !res.OK {
		if s.onReject != nil {
			s.onReject(res)
		}
		return res, s.search.Snapshot()
	}

	t := s.search.Begin()
	locs, err := s.upstream.SearchLocations(ctx, LocationQuery{Q: query.SearchText(raw)})
	if err != nil {
		log.Printf("ERROR: location search failed: %v", err)
		s.search.Fail(t, err)
	} else {
		s.search.Resolve(t, locs)
	}
	return res, s.search.Snapshot()
}

// ReverseLookup names a coordinate pair. Geocoder failures degrade to a
// label built from the coordinates.
func (s *Service) ReverseLookup(ctx context.Context, lat, lon float64) Location {
	var place Place
	if s.geocoder != nil {
		p, err := s.geocoder.Reverse(ctx, lat, lon)
		if err != nil {
			log.Printf("INFO: reverse geocode %.4f,%.4f failed: %v", lat, lon, err)
		} else {
			place = p
		}
	}
	return CoordinateLocation(lat, lon, place)
}

// HistoryRequest selects an observation range. Empty station and location
// ids fall back to the configured default station.
type HistoryRequest struct {
	StationID  string
	LocationID string
	Start      string
	End        string
}

// History loads TMAX/TMIN rows for the range and groups them per date.
func (s *Service) History(ctx context.Context, req HistoryRequest) view.Snapshot[HistoryView] {
	if req.StationID == "" && req.LocationID == "" {
		req.StationID = s.defaults.StationID
	}

	t := s.history.Begin()
	rows, err := s.upstream.Observations(ctx, ObservationQuery{
		DatasetID:  s.defaults.DatasetID,
		StationID:  req.StationID,
		LocationID: req.LocationID,
		Datatypes:  []Datatype{DatatypeTMax, DatatypeTMin},
		StartDate:  req.Start,
		EndDate:    req.End,
		Limit:      1000,
	})
	if err != nil {
		log.Printf("ERROR: observations fetch failed: %v", err)
		s.history.Fail(t, err)
		return s.history.Snapshot()
	}

	next := HistoryView{
		StationID:  req.StationID,
		LocationID: req.LocationID,
		Start:      req.Start,
		End:        req.End,
		Days:       GroupObservations(rows),
	}
	// A page next to or over the shown range extends it.
	if prev := s.history.Snapshot(); prev.HasData && extendsHistory(prev.Data, next) {
		next.Days = MergeDaily(prev.Data.Days, next.Days)
		next.Start = minDate(prev.Data.Start, next.Start)
		next.End = maxDate(prev.Data.End, next.End)
	}

	s.history.Resolve(t, next)
	return s.history.Snapshot()
}

func extendsHistory(prev, next HistoryView) bool {
	return prev.StationID == next.StationID &&
		prev.LocationID == next.LocationID &&
		RangesTouch(prev.Start, prev.End, next.Start, next.End)
}

// DaySample fetches TMAX and TMIN for a single date concurrently. Both must
// succeed; either failure fails the whole sample.
func (s *Service) DaySample(ctx context.Context, stationID, date string) view.Snapshot[DailyObservation] {
	if stationID == "" {
		stationID = s.defaults.StationID
	}

	t := s.day.Begin()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	datatypes := []Datatype{DatatypeTMax, DatatypeTMin}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		rows []RawObservation
		errs []error
	)
	for _, dt := range datatypes {
		dt := dt
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := s.upstream.Observations(ctx, ObservationQuery{
				DatasetID: s.defaults.DatasetID,
				StationID: stationID,
				Datatypes: []Datatype{dt},
				StartDate: date,
				EndDate:   date,
				Limit:     1,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s sample: %w", dt, err))
				// No point waiting on the sibling once the join has failed.
				cancel()
				return
			}
			rows = append(rows, r...)
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.Printf("ERROR: day sample %s failed: %v", date, err)
		s.day.Fail(t, errs[0])
		return s.day.Snapshot()
	}

	sample := DailyObservation{Date: date}
	for _, d := range GroupObservations(rows) {
		if d.Date == date {
			sample = d
		}
	}
	s.day.Resolve(t, sample)
	return s.day.Snapshot()
}

// Forecast loads the daily forecast for the active selection.
func (s *Service) Forecast(ctx context.Context, days int, units Unit) view.Snapshot[ForecastView] {
	days, units = s.orDefault(days, units)
	loc := s.selection.Active()

	t := s.forecast.Begin()
	if !loc.HasCoordinates() {
		s.forecast.Fail(t, ErrNoCoordinates)
		return s.forecast.Snapshot()
	}

	points, err := s.upstream.DailyForecast(ctx, *loc.Lat, *loc.Lon, days, units)
	if err != nil {
		log.Printf("ERROR: forecast fetch failed for %s: %v", loc.Key(), err)
		s.forecast.Fail(t, err)
		return s.forecast.Snapshot()
	}

	// The backend answers in the units it was asked for.
	s.forecast.Resolve(t, AggregateForecast(loc, points, units, units))
	return s.forecast.Snapshot()
}

// TrendRequest parameterizes a trend comparison. Zero values take defaults.
type TrendRequest struct {
	Days         int
	Units        Unit
	OfficialUnit Unit
}

// Trends loads the predicted/official comparison for the active selection.
func (s *Service) Trends(ctx context.Context, req TrendRequest) view.Snapshot[TrendView] {
	days, units := s.orDefault(req.Days, req.Units)
	opts := TrendOptions{
		Display:       units,
		PredictedUnit: s.defaults.PredictedUnit,
		OfficialUnit:  s.defaults.OfficialUnit,
	}
	if req.OfficialUnit != "" {
		opts.OfficialUnit = req.OfficialUnit
	}
	loc := s.selection.Active()

	t := s.trends.Begin()
	if !loc.HasCoordinates() {
		s.trends.Fail(t, ErrNoCoordinates)
		return s.trends.Snapshot()
	}

	payload, err := s.upstream.Trends(ctx, *loc.Lat, *loc.Lon, days, opts.PredictedUnit)
	if err != nil {
		log.Printf("ERROR: trends fetch failed for %s: %v", loc.Key(), err)
		s.trends.Fail(t, err)
		return s.trends.Snapshot()
	}

	s.trends.Resolve(t, AggregateTrend(loc, payload, opts))
	return s.trends.Snapshot()
}

// RefreshAlerts reloads alerts for the active selection.
func (s *Service) RefreshAlerts(ctx context.Context) error {
	loc := s.selection.Active()

	t := s.alerts.Begin()
	if !loc.HasCoordinates() {
		s.alerts.Fail(t, ErrNoCoordinates)
		return ErrNoCoordinates
	}

	alerts, err := s.upstream.Alerts(ctx, *loc.Lat, *loc.Lon)
	if err != nil {
		log.Printf("ERROR: alerts fetch failed for %s: %v", loc.Key(), err)
		s.alerts.Fail(t, err)
		return err
	}

	s.alerts.Resolve(t, AlertsView{
		Location: loc,
		Count:    len(alerts),
		Alerts:   alerts,
	})
	return nil
}

// Alerts returns the alerts panel without fetching.
func (s *Service) Alerts() view.Snapshot[AlertsView] {
	return s.alerts.Snapshot()
}

func (s *Service) orDefault(days int, units Unit) (int, Unit) {
	if days <= 0 {
		days = s.defaults.Days
	}
	if units == "" {
		units = s.defaults.Units
	}
	return days, units
}
