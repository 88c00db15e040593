package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Providers disagree on field names and on whether numbers arrive as JSON
// numbers or strings. Everything below collapses those variants into the
// package types right after decoding, so nothing downstream branches on
// payload shape.

// FlexFloat decodes a JSON number, numeric string or null. Unparseable
// values decode as missing rather than failing the whole payload.
type FlexFloat struct {
	V *float64
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		f.V = nil
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.V = nil
		return nil
	}
	f.V = &n
	return nil
}

// FlexString decodes either a JSON string or a JSON number as text.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

// RawLocation is a location search result in any of the known provider shapes.
type RawLocation struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Place       string     `json:"place"`
	City        string     `json:"city"`
	DisplayName string     `json:"display_name"`
	State       string     `json:"state"`
	Country     string     `json:"country"`
	Lat         FlexFloat  `json:"lat"`
	Lon         FlexFloat  `json:"lon"`
	Latitude    FlexFloat  `json:"latitude"`
	Longitude   FlexFloat  `json:"longitude"`
}

// Normalize converts r into a Location. It reports false when the result
// carries neither a usable name nor an id.
func (r RawLocation) Normalize() (Location, bool) {
	loc := Location{
		ID:      strings.TrimSpace(string(r.ID)),
		Name:    common.FirstNonEmpty(r.Name, r.Place, r.City, r.DisplayName),
		State:   strings.TrimSpace(r.State),
		Country: strings.TrimSpace(r.Country),
		Lat:     firstFloat(r.Lat, r.Latitude),
		Lon:     firstFloat(r.Lon, r.Longitude),
	}
	if loc.Name == "" && loc.ID == "" {
		return Location{}, false
	}
	if loc.Name == "" {
		loc.Name = loc.ID
	}
	if loc.ID == "" {
		loc.ID = DeriveLocationID(loc)
	}
	return loc, true
}

// NormalizeLocations normalizes a batch, dropping unusable entries and
// duplicate ids (first occurrence wins).
func NormalizeLocations(raw []RawLocation) []Location {
	out := make([]Location, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		loc, ok := r.Normalize()
		if !ok {
			continue
		}
		if _, dup := seen[loc.ID]; dup {
			continue
		}
		seen[loc.ID] = struct{}{}
		out = append(out, loc)
	}
	return out
}

// DeriveLocationID builds a stable id for providers that do not send one.
func DeriveLocationID(loc Location) string {
	id := strings.ToLower(strings.Join([]string{loc.Name, loc.State, loc.Country}, "|"))
	if loc.HasCoordinates() {
		id += fmt.Sprintf("|%.4f,%.4f", *loc.Lat, *loc.Lon)
	}
	return id
}

// CoordinateLocation builds a Location for a bare coordinate pair.
func CoordinateLocation(lat, lon float64, place Place) Location {
	loc := Location{
		Name:    place.Name,
		State:   place.State,
		Country: place.Country,
		Lat:     ptr(lat),
		Lon:     ptr(lon),
	}
	if loc.Name == "" {
		loc.Name = fmt.Sprintf("%.4f, %.4f", lat, lon)
	}
	loc.ID = DeriveLocationID(loc)
	return loc
}

func firstFloat(vals ...FlexFloat) *float64 {
	for _, v := range vals {
		if v.V != nil {
			return ptr(*v.V)
		}
	}
	return nil
}

// RawAlert accepts both the flattened alert shape and the NWS feature shape.
type RawAlert struct {
	ID         FlexString `json:"id"`
	Event      string     `json:"event"`
	Severity   string     `json:"severity"`
	Headline   string     `json:"headline"`
	Effective  string     `json:"effective"`
	Ends       string     `json:"ends"`
	Area       string     `json:"area"`
	AreaDesc   string     `json:"areaDesc"`
	Properties *RawAlert  `json:"properties"`
}

const severityUnknown = "Unknown"

// Normalize converts r into an Alert, generating an id when none was sent.
func (r RawAlert) Normalize() Alert {
	src := r
	if r.Properties != nil {
		src = *r.Properties
		if src.ID == "" {
			src.ID = r.ID
		}
	}
	a := Alert{
		ID:        strings.TrimSpace(string(src.ID)),
		Event:     strings.TrimSpace(src.Event),
		Severity:  common.FirstNonEmpty(src.Severity, severityUnknown),
		Headline:  strings.TrimSpace(src.Headline),
		Effective: strings.TrimSpace(src.Effective),
		Ends:      strings.TrimSpace(src.Ends),
		Area:      common.FirstNonEmpty(src.Area, src.AreaDesc),
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Headline == "" {
		a.Headline = a.Event
	}
	return a
}

// NormalizeAlerts normalizes and orders alerts: most severe first, then the
// most recently effective.
func NormalizeAlerts(raw []RawAlert) []Alert {
	out := make([]Alert, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Normalize())
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := SeverityRank(out[i].Severity), SeverityRank(out[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return parseTime(out[i].Effective).After(parseTime(out[j].Effective))
	})
	return out
}

// SeverityRank orders CAP severities; unknown text ranks lowest.
func SeverityRank(severity string) int {
	switch {
	case common.HasAnyFold(severity, "extreme"):
		return 4
	case common.HasAnyFold(severity, "severe"):
		return 3
	case common.HasAnyFold(severity, "moderate"):
		return 2
	case common.HasAnyFold(severity, "minor"):
		return 1
	default:
		return 0
	}
}

func parseTime(s string) time.Time {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	return time.Time{}
}
