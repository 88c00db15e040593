package weather

import (
	"sort"
	"time"
)

const isoDate = "2006-01-02"

// GroupObservations folds flat TMAX/TMIN rows into one DailyObservation per
// calendar date, ascending by date. Only the first 10 characters of the
// provider date are significant. Rows with other datatypes or an unusable
// date are skipped.
func GroupObservations(rows []RawObservation) []DailyObservation {
	byDate := make(map[string]*DailyObservation)

	for _, r := range rows {
		if r.Datatype != DatatypeTMax && r.Datatype != DatatypeTMin {
			continue
		}
		date, ok := CalendarDate(r.Date)
		if !ok {
			continue
		}

		day, exists := byDate[date]
		if !exists {
			day = &DailyObservation{Date: date}
			byDate[date] = day
		}

		switch r.Datatype {
		case DatatypeTMax:
			day.TMaxC = TenthsToCelsius(r.Value)
		case DatatypeTMin:
			day.TMinC = TenthsToCelsius(r.Value)
		}
	}

	return sortedDays(byDate)
}

// MergeDaily unions two grouped sequences by date. For a date present in
// both, non-nil values from next replace those in prev.
func MergeDaily(prev, next []DailyObservation) []DailyObservation {
	byDate := make(map[string]*DailyObservation, len(prev)+len(next))
	for _, d := range prev {
		d := d
		byDate[d.Date] = &d
	}
	for _, d := range next {
		cur, ok := byDate[d.Date]
		if !ok {
			d := d
			byDate[d.Date] = &d
			continue
		}
		if d.TMaxC != nil {
			cur.TMaxC = d.TMaxC
		}
		if d.TMinC != nil {
			cur.TMinC = d.TMinC
		}
	}
	return sortedDays(byDate)
}

// CalendarDate truncates a provider timestamp to its YYYY-MM-DD prefix and
// reports whether that prefix is a real calendar date.
func CalendarDate(s string) (string, bool) {
	if len(s) < len(isoDate) {
		return "", false
	}
	d := s[:len(isoDate)]
	if _, err := time.Parse(isoDate, d); err != nil {
		return "", false
	}
	return d, true
}

// RangesTouch reports whether two inclusive YYYY-MM-DD ranges overlap or
// are separated by no gap. Unparseable bounds never touch.
func RangesTouch(aStart, aEnd, bStart, bEnd string) bool {
	var t [4]time.Time
	for i, s := range []string{aStart, aEnd, bStart, bEnd} {
		d, err := time.Parse(isoDate, s)
		if err != nil {
			return false
		}
		t[i] = d
	}
	return !t[2].After(t[1].AddDate(0, 0, 1)) && !t[0].After(t[3].AddDate(0, 0, 1))
}

func minDate(a, b string) string {
	if b < a {
		return b
	}
	return a
}

func maxDate(a, b string) string {
	if b > a {
		return b
	}
	return a
}

func sortedDays(byDate map[string]*DailyObservation) []DailyObservation {
	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	// ISO dates sort lexicographically in calendar order.
	sort.Strings(keys)

	out := make([]DailyObservation, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byDate[k])
	}
	return out
}
