package weather

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a display or provider unit system.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// ParseUnit accepts "metric"/"imperial" and the short forms "C"/"F", case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric", "c":
		return UnitMetric, nil
	case "imperial", "f":
		return UnitImperial, nil
	default:
		return "", fmt.Errorf("unknown unit %q", s)
	}
}

// Symbol returns the temperature suffix for the unit.
func (u Unit) Symbol() string {
	if u == UnitImperial {
		return "°F"
	}
	return "°C"
}

// All conversions below are nil-propagating: a missing input never becomes a number.

// TenthsToCelsius converts a tenths-of-degree value to degrees Celsius.
func TenthsToCelsius(v *float64) *float64 {
	if !isNumber(v) {
		return nil
	}
	return ptr(*v / 10)
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c *float64) *float64 {
	if !isNumber(c) {
		return nil
	}
	return ptr(*c*9/5 + 32)
}

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(f *float64) *float64 {
	if !isNumber(f) {
		return nil
	}
	return ptr((*f - 32) * 5 / 9)
}

// Round1 rounds to one decimal place.
func Round1(x *float64) *float64 {
	if !isNumber(x) {
		return nil
	}
	return ptr(math.Round(*x*10) / 10)
}

// Convert moves a temperature from one unit system to another.
func Convert(v *float64, from, to Unit) *float64 {
	if !isNumber(v) {
		return nil
	}
	switch {
	case from == to:
		return ptr(*v)
	case to == UnitImperial:
		return CelsiusToFahrenheit(v)
	default:
		return FahrenheitToCelsius(v)
	}
}

// Percent turns a probability in [0,1] into a whole percentage clamped to [0,100].
func Percent(p *float64) *int {
	if !isNumber(p) {
		return nil
	}
	n := int(math.Round(*p * 100))
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return &n
}

func isNumber(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func ptr(v float64) *float64 {
	return &v
}
