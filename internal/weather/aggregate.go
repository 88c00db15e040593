package weather

// TrendOptions controls unit handling for AggregateTrend. The native units
// of the two series are explicit because providers disagree on them.
type TrendOptions struct {
	Display       Unit
	PredictedUnit Unit
	OfficialUnit  Unit
}

// DefaultTrendOptions assumes a Celsius predicted series and a
// Fahrenheit-native official series.
func DefaultTrendOptions(display Unit) TrendOptions {
	return TrendOptions{
		Display:       display,
		PredictedUnit: UnitMetric,
		OfficialUnit:  UnitImperial,
	}
}

// AggregateTrend aligns the predicted and official series by index into
// display rows. The predicted series fixes the row count; official fields are
// nil wherever the official series has no entry or no value.
func AggregateTrend(loc Location, payload TrendPayload, opts TrendOptions) TrendView {
	days := make([]TrendDay, 0, len(payload.Predicted))

	for i, p := range payload.Predicted {
		day := TrendDay{
			Date:    p.Date,
			PredMax: Round1(Convert(p.TMax, opts.PredictedUnit, opts.Display)),
			PredMin: Round1(Convert(p.TMin, opts.PredictedUnit, opts.Display)),
		}
		// A missing predicted probability is shown as 0%.
		if pop := Percent(p.Pop); pop != nil {
			day.PredPop = *pop
		}

		if i < len(payload.OfficialForecast) {
			off := payload.OfficialForecast[i]
			day.OffMax = Round1(Convert(off.TMax, opts.OfficialUnit, opts.Display))
			day.OffMin = Round1(Convert(off.TMin, opts.OfficialUnit, opts.Display))
			day.OffPop = Percent(off.Pop)
		}

		days = append(days, day)
	}

	return TrendView{
		Location:   loc,
		Unit:       opts.Display,
		Symbol:     opts.Display.Symbol(),
		Days:       days,
		Confidence: payload.Confidence,
		ConfidencePct: ConfidencePct{
			TMax:    ConfidencePercent(payload.Confidence.TMax),
			TMin:    ConfidencePercent(payload.Confidence.TMin),
			Pop:     ConfidencePercent(payload.Confidence.Pop),
			Overall: Percent(payload.Confidence.Overall),
		},
		Summary: payload.Summary,
	}
}

// AggregateForecast shapes a daily forecast series for display.
func AggregateForecast(loc Location, points []SeriesPoint, native, display Unit) ForecastView {
	days := make([]ForecastDay, 0, len(points))
	for _, p := range points {
		days = append(days, ForecastDay{
			Date: p.Date,
			TMax: Round1(Convert(p.TMax, native, display)),
			TMin: Round1(Convert(p.TMin, native, display)),
			Pop:  Percent(p.Pop),
		})
	}
	return ForecastView{
		Location: loc,
		Unit:     display,
		Symbol:   display.Symbol(),
		Days:     days,
	}
}

// ConfidencePercent renders a confidence score as a whole percentage.
func ConfidencePercent(v float64) int {
	if pct := Percent(&v); pct != nil {
		return *pct
	}
	return 0
}
