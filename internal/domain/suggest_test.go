package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictWeatherType(t *testing.T) {
	w, err := StrictWeatherType("heavy snow")
	require.NoError(t, err)
	assert.Equal(t, HeavySnow, w)

	_, err = StrictWeatherType("Thunderstrom")
	require.Error(t, err)
	var unknown *UnknownNameError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Thunderstorm", unknown.Suggestion)
	assert.Equal(t, `unknown weather type "Thunderstrom" (did you mean Thunderstorm?)`, err.Error())
}

func TestStrictLookups_NoSuggestionForGarbage(t *testing.T) {
	_, err := StrictIntensity("xyzzy")
	require.Error(t, err)
	assert.Equal(t, `unknown intensity "xyzzy"`, err.Error())

	_, err = StrictDisasterType("")
	require.Error(t, err)
	var unknown *UnknownNameError
	require.True(t, errors.As(err, &unknown))
	assert.Empty(t, unknown.Suggestion)
}

func TestStrictLookups_Suggestions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) error
		in   string
		want string
	}{
		{"season", func(s string) error { _, err := StrictSeason(s); return err }, "Wintr", "Winter"},
		{"intensity", func(s string) error { _, err := StrictIntensity(s); return err }, "Severe!", "Severe"},
		{"disaster", func(s string) error { _, err := StrictDisasterType(s); return err }, "Tornadoo", "Tornado"},
		{"pattern", func(s string) error { _, err := StrictPattern(s); return err }, "Magicl", "Magical"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var unknown *UnknownNameError
			require.True(t, errors.As(tt.fn(tt.in), &unknown))
			assert.Equal(t, tt.want, unknown.Suggestion)
		})
	}
}

func TestSuggestionLimit(t *testing.T) {
	assert.Equal(t, 1, suggestionLimit(3))
	assert.Equal(t, 2, suggestionLimit(6))
	assert.Equal(t, 3, suggestionLimit(12))
}
