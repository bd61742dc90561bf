package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStripsMarkup(t *testing.T) {
	s := NewService()
	out, err := s.ValidateAndSanitizeMarketInput(MarketInput{
		Question:    "  <b>Will</b> it rain? ",
		Description: "<script>alert(1)</script>Resolves on rain.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Will it rain?", out.Question)
	assert.Equal(t, "Resolves on rain.", out.Description)
}

func TestSanitizeRejectsEmptyQuestion(t *testing.T) {
	s := NewService()
	_, err := s.ValidateAndSanitizeMarketInput(MarketInput{Question: "   "})
	assert.Error(t, err)

	// Markup-only questions sanitize down to nothing.
	_, err = s.ValidateAndSanitizeMarketInput(MarketInput{Question: "<img src=x>"})
	assert.Error(t, err)
}

func TestSanitizeEnforcesLengths(t *testing.T) {
	s := NewService()
	_, err := s.ValidateAndSanitizeMarketInput(MarketInput{
		Question: strings.Repeat("q", 161),
	})
	assert.Error(t, err)

	_, err = s.ValidateAndSanitizeMarketInput(MarketInput{
		Question:    "ok?",
		Description: strings.Repeat("d", 2001),
	})
	assert.Error(t, err)
}
