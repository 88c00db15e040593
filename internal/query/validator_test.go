package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		ok     bool
		reason Reason
	}{
		{"empty", "", false, ReasonEmpty},
		{"only whitespace", " \t\n ", false, ReasonEmpty},
		{"single char", "a", false, ReasonTooShort},
		{"single char padded", "  x  ", false, ReasonTooShort},
		{"forbidden dollar", "a$b", false, ReasonUnsupported},
		{"forbidden single symbol pair", "@@", false, ReasonUnsupported},
		{"html", "<script>", false, ReasonUnsupported},
		{"bare state code", "NC", false, ReasonBareCode},
		{"bare code lower", " us ", false, ReasonBareCode},
		{"city and state", "Charlotte, NC", true, ""},
		{"two digits", "27", true, ""},
		{"hyphen and apostrophe", "Winston-Salem, Coeur d'Alene", true, ""},
		{"typographic apostrophe", "Coeur d’Alene", true, ""},
		{"period", "St. Louis", true, ""},
		{"non latin", "Москва", true, ""},
		{"accents", "São Paulo", true, ""},
		{"combining mark", "São Paulo", true, ""},
		{"two letters with comma", "N,C", true, ""},
		{"no-break space after comma", "Charlotte,\u00a0NC", true, ""},
		{"ideographic space", "New\u3000York", true, ""},
		{"only no-break spaces", "\u00a0\u00a0", false, ReasonEmpty},
		{"no-break space around code", "\u00a0NC\u2003", false, ReasonBareCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			assert.Equal(t, tt.ok, res.OK)
			assert.Equal(t, tt.reason, res.Reason)
			if tt.ok {
				assert.Empty(t, res.Message)
				assert.Empty(t, res.Suggestion)
			} else {
				assert.NotEmpty(t, res.Message)
				assert.NotEmpty(t, res.Suggestion)
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	res := Validate("")
	assert.Equal(t, "Please enter a location.", res.Message)
	assert.Contains(t, res.Suggestion, "Charlotte, NC")

	res = Validate("NC")
	assert.Equal(t, "NC", res.Input)
	assert.Contains(t, res.Suggestion, "Raleigh, NC")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "New York", Normalize("  New \t  York\n"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "New York", Normalize("New\u3000\u00a0York"))
}

func TestSearchText(t *testing.T) {
	assert.Equal(t, "Charlotte, NC", SearchText("Charlotte,NC"))
	assert.Equal(t, "Charlotte, NC, US", SearchText("  Charlotte  ,  NC ,US "))
	assert.Equal(t, "Asheville", SearchText("Asheville"))
	assert.Equal(t, "Charlotte, NC", SearchText("Charlotte\u00a0,\u00a0NC"))
}
