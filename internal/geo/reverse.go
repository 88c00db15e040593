// Package geo names coordinate pairs through the Google geocoding API.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNoAPIKey is returned when no geocoder key is configured.
	ErrNoAPIKey = errors.New("geocoder api key is not configured")
	// ErrNoResults is returned when the geocoder knows nothing at the point.
	ErrNoResults = errors.New("no address found for coordinates")
)

// Resolver implements weather.ReverseGeocoder.
type Resolver struct {
	apiKey  string
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewResolver creates a resolver. An empty key yields a resolver that
// always returns ErrNoAPIKey, so callers fall back to coordinate labels.
// The geocoder package holds its key globally; it is set here, once, and
// never touched per lookup.
func NewResolver(apiKey string) *Resolver {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &Resolver{
		apiKey:  apiKey,
		reverse: geocoder.GeocodingReverse,
	}
}

var _ weather.ReverseGeocoder = (*Resolver)(nil)

// Reverse looks up the place at lat/lon. The geocoder library is not
// context-aware, so ctx only bounds how long we wait for it.
func (r *Resolver) Reverse(ctx context.Context, lat, lon float64) (weather.Place, error) {
	if r.apiKey == "" {
		return weather.Place{}, ErrNoAPIKey
	}

	type result struct {
		addrs []geocoder.Address
		err   error
	}
	done := make(chan result, 1)

	go func() {
		addrs, err := r.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
		done <- result{addrs: addrs, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Place{}, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return weather.Place{}, fmt.Errorf("reverse geocode: %w", res.err)
		}
		return placeFromAddresses(res.addrs)
	}
}

func placeFromAddresses(addrs []geocoder.Address) (weather.Place, error) {
	for _, a := range addrs {
		name := common.FirstNonEmpty(a.City, a.District, a.County)
		if name == "" {
			continue
		}
		return weather.Place{
			Name:    name,
			State:   a.State,
			Country: a.Country,
		}, nil
	}
	return weather.Place{}, ErrNoResults
}
