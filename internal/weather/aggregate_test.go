package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, tmax, tmin, pop float64) []SeriesPoint {
	out := make([]SeriesPoint, n)
	for i := range out {
		out[i] = SeriesPoint{
			Date: "2024-09-0" + string(rune('1'+i)),
			TMax: f(tmax),
			TMin: f(tmin),
			Pop:  f(pop),
		}
	}
	return out
}

func TestAggregateTrendShorterOfficialSeries(t *testing.T) {
	payload := TrendPayload{
		Predicted:        series(7, 25, 12, 0.4),
		OfficialForecast: series(3, 77, 54, 0.3),
		Confidence:       Confidence{TMax: 0.8, TMin: 0.7, Pop: 0.6},
		Summary:          "Warm and mostly dry.",
	}

	view := AggregateTrend(Location{ID: "x"}, payload, DefaultTrendOptions(UnitImperial))

	require.Len(t, view.Days, 7)
	assert.Equal(t, UnitImperial, view.Unit)
	assert.Equal(t, "°F", view.Symbol)
	assert.Equal(t, "Warm and mostly dry.", view.Summary)
	assert.Equal(t, 0.8, view.Confidence.TMax)
	assert.Equal(t, ConfidencePct{TMax: 80, TMin: 70, Pop: 60}, view.ConfidencePct)

	for i := 0; i < 3; i++ {
		day := view.Days[i]
		assert.Equal(t, 77.0, *day.PredMax)
		assert.Equal(t, 53.6, *day.PredMin)
		assert.Equal(t, 40, day.PredPop)
		require.NotNil(t, day.OffMax)
		assert.Equal(t, 77.0, *day.OffMax)
		assert.Equal(t, 54.0, *day.OffMin)
		assert.Equal(t, 30, *day.OffPop)
	}
	for i := 3; i < 7; i++ {
		day := view.Days[i]
		assert.NotNil(t, day.PredMax, "row %d", i)
		assert.Nil(t, day.OffMax, "row %d", i)
		assert.Nil(t, day.OffMin, "row %d", i)
		assert.Nil(t, day.OffPop, "row %d", i)
	}
}

func TestAggregateTrendMetricDisplay(t *testing.T) {
	payload := TrendPayload{
		Predicted:        series(1, 25, 12, 0.4),
		OfficialForecast: series(1, 77, 50, 0.3),
	}

	view := AggregateTrend(Location{}, payload, DefaultTrendOptions(UnitMetric))

	require.Len(t, view.Days, 1)
	assert.Equal(t, 25.0, *view.Days[0].PredMax)
	assert.Equal(t, 25.0, *view.Days[0].OffMax)
	assert.Equal(t, 10.0, *view.Days[0].OffMin)
	assert.Equal(t, "°C", view.Symbol)
}

func TestAggregateTrendMissingValues(t *testing.T) {
	payload := TrendPayload{
		Predicted:        []SeriesPoint{{Date: "2024-09-01"}},
		OfficialForecast: []SeriesPoint{{Date: "2024-09-01", TMax: f(80)}},
	}

	view := AggregateTrend(Location{}, payload, DefaultTrendOptions(UnitImperial))

	day := view.Days[0]
	assert.Nil(t, day.PredMax)
	assert.Nil(t, day.PredMin)
	assert.Equal(t, 0, day.PredPop)
	assert.Equal(t, 80.0, *day.OffMax)
	assert.Nil(t, day.OffMin)
	assert.Nil(t, day.OffPop)
}

func TestAggregateTrendLongerOfficialSeriesIsTruncated(t *testing.T) {
	payload := TrendPayload{
		Predicted:        series(2, 20, 10, 0.1),
		OfficialForecast: series(5, 70, 50, 0.1),
	}

	view := AggregateTrend(Location{}, payload, DefaultTrendOptions(UnitImperial))
	assert.Len(t, view.Days, 2)
}

func TestAggregateTrendEmpty(t *testing.T) {
	view := AggregateTrend(Location{}, TrendPayload{}, DefaultTrendOptions(UnitImperial))
	assert.NotNil(t, view.Days)
	assert.Empty(t, view.Days)
}

func TestAggregateForecast(t *testing.T) {
	points := []SeriesPoint{
		{Date: "2024-09-01", TMax: f(25.04), TMin: nil, Pop: f(0.125)},
	}

	view := AggregateForecast(Location{ID: "x"}, points, UnitMetric, UnitImperial)

	require.Len(t, view.Days, 1)
	assert.Equal(t, 77.1, *view.Days[0].TMax)
	assert.Nil(t, view.Days[0].TMin)
	assert.Equal(t, 13, *view.Days[0].Pop)
	assert.Equal(t, "°F", view.Symbol)
}

func TestConfidencePercent(t *testing.T) {
	assert.Equal(t, 83, ConfidencePercent(0.834))
	assert.Equal(t, 100, ConfidencePercent(1.2))
}

func TestAggregateTrendOverallConfidencePercent(t *testing.T) {
	payload := TrendPayload{
		Predicted:  series(1, 20, 10, 0.1),
		Confidence: Confidence{TMax: 0.5, TMin: 0.5, Pop: 0.5, Overall: f(0.92)},
	}

	view := AggregateTrend(Location{ID: "x"}, payload, DefaultTrendOptions(UnitMetric))

	require.NotNil(t, view.ConfidencePct.Overall)
	assert.Equal(t, 92, *view.ConfidencePct.Overall)
}
