package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", " b ", "c"))
	assert.Equal(t, "", FirstNonEmpty())
	assert.Equal(t, "", FirstNonEmpty(" ", "\t"))
}

func TestHasAnyFold(t *testing.T) {
	assert.True(t, HasAnyFold("EXTREME heat", "extreme"))
	assert.True(t, HasAnyFold("Minor", "severe", "MINOR"))
	assert.False(t, HasAnyFold("Unknown", "extreme", "severe"))
}
