// Package query classifies free-text location searches before they are sent
// upstream.
package query

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Reason identifies which rule rejected a query.
type Reason string

const (
	ReasonEmpty       Reason = "empty"
	ReasonTooShort    Reason = "too_short"
	ReasonUnsupported Reason = "unsupported_characters"
	ReasonBareCode    Reason = "bare_code"
)

// MinLength is the shortest accepted query, in characters.
const MinLength = 2

// Result is the outcome of Validate. Message, Suggestion, Reason and Input
// are empty when OK.
type Result struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Reason     Reason `json:"reason,omitempty"`
	Input      string `json:"input,omitempty"`
}

var (
	// RE2's \s is ASCII only; \p{Z} adds no-break and ideographic spaces.
	whitespaceRun = regexp.MustCompile(`[\p{Z}\s]+`)
	commaSpacing  = regexp.MustCompile(`[\p{Z}\s]*,[\p{Z}\s]*`)

	// Letters in any script (with combining marks), decimal digits,
	// whitespace, comma, hyphen, straight or typographic apostrophe, period.
	allowedChars = regexp.MustCompile(`^[\p{L}\p{M}\p{Nd}\p{Z}\s,\-'’.]+$`)
	bareCode     = regexp.MustCompile(`^\p{L}{2}$`)
)

// Normalize collapses whitespace runs to a single space and trims the ends.
func Normalize(raw string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
}

// SearchText is the form sent upstream: normalized, with ", " between parts.
func SearchText(raw string) string {
	return Normalize(commaSpacing.ReplaceAllString(Normalize(raw), ", "))
}

// Validate classifies raw. Rules apply in order and the first match wins.
func Validate(raw string) Result {
	q := Normalize(raw)

	switch {
	case q == "":
		return reject(q, ReasonEmpty,
			"Please enter a location.",
			`Try a city and region, e.g. "Charlotte, NC".`)
	case utf8.RuneCountInString(q) < MinLength:
		return reject(q, ReasonTooShort,
			"That search is too short.",
			"Use at least 2 characters.")
	case !allowedChars.MatchString(q):
		return reject(q, ReasonUnsupported,
			"That search contains unsupported characters.",
			`Use a plain city name, e.g. "Asheville".`)
	case bareCode.MatchString(q):
		return reject(q, ReasonBareCode,
			"That looks like a state or country code on its own.",
			`Add a city, e.g. "Raleigh, NC".`)
	}

	return Result{OK: true}
}

func reject(input string, reason Reason, message, suggestion string) Result {
	return Result{
		Message:    message,
		Suggestion: suggestion,
		Reason:     reason,
		Input:      input,
	}
}
