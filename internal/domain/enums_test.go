package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumNamesExhaustive(t *testing.T) {
	assert.Len(t, weatherTypeNames.names, int(weatherTypeCount))
	assert.Len(t, weatherIntensityNames.names, int(weatherIntensityCount))
	assert.Len(t, seasonNames.names, int(seasonCount))
	assert.Len(t, disasterTypeNames.names, int(disasterTypeCount))
	assert.Len(t, weatherPatternNames.names, int(weatherPatternCount))

	for _, w := range AllWeatherTypes() {
		require.NotEmpty(t, w.String())
		got, ok := LookupWeatherType(w.String())
		require.True(t, ok, w.String())
		assert.Equal(t, w, got)
	}
	for _, i := range AllIntensities() {
		got, ok := LookupIntensity(i.String())
		require.True(t, ok, i.String())
		assert.Equal(t, i, got)
	}
	for _, s := range AllSeasons() {
		got, ok := LookupSeason(s.String())
		require.True(t, ok, s.String())
		assert.Equal(t, s, got)
	}
	for _, d := range AllDisasterTypes() {
		got, ok := LookupDisasterType(d.String())
		require.True(t, ok, d.String())
		assert.Equal(t, d, got)
	}
}

func TestEnumTables_BuiltAtInit(t *testing.T) {
	assert.Len(t, weatherTypeNames.lookup, int(weatherTypeCount))
	assert.Len(t, weatherIntensityNames.lookup, int(weatherIntensityCount))
	assert.Len(t, seasonNames.lookup, int(seasonCount))
	assert.Len(t, disasterTypeNames.lookup, int(disasterTypeCount))
	assert.Len(t, weatherPatternNames.lookup, int(weatherPatternCount))

	assert.Equal(t, VolcanicEruption, disasterTypeNames.lookup["volcanic_eruption"])
	assert.Equal(t, "heavy_rain", normalizeEnumText(" Heavy-Rain "))
	assert.Equal(t, "partly_cloudy", normalizeEnumText("PARTLY CLOUDY"))
}

func TestEnumCounts(t *testing.T) {
	assert.Len(t, AllWeatherTypes(), 14)
	assert.Len(t, AllIntensities(), 5)
	assert.Len(t, AllSeasons(), 4)
	assert.Len(t, AllDisasterTypes(), 11)
}

func TestLookupWeatherType_Normalization(t *testing.T) {
	tests := []struct {
		input string
		want  WeatherType
	}{
		{"Heavy_Rain", HeavyRain},
		{"heavy rain", HeavyRain},
		{"HEAVY-RAIN", HeavyRain},
		{"  partly_cloudy ", PartlyCloudy},
		{"magical storm", MagicalStorm},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LookupWeatherType(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := LookupWeatherType("acid rain")
	assert.False(t, ok)
}

func TestParse_LenientDefaults(t *testing.T) {
	assert.Equal(t, Clear, ParseWeatherType("drizzle"))
	assert.Equal(t, Calm, ParseIntensity("apocalyptic"))
	assert.Equal(t, Spring, ParseSeason("monsoon"))
	assert.Equal(t, NoDisaster, ParseDisasterType("meteor"))
	assert.Equal(t, PatternVariable, ParsePattern("chaotic"))
}

func TestSeasonNext_Cycles(t *testing.T) {
	assert.Equal(t, Summer, Spring.Next())
	assert.Equal(t, Autumn, Summer.Next())
	assert.Equal(t, Winter, Autumn.Next())
	assert.Equal(t, Spring, Winter.Next())
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "heavy rain", HeavyRain.Display())
	assert.Equal(t, "volcanic eruption", VolcanicEruption.Display())
	assert.Equal(t, "Unknown", WeatherType(200).String())
}

func TestEnumJSON(t *testing.T) {
	data, err := json.Marshal(map[string]any{"type": HeavySnow, "intensity": Severe})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Heavy_Snow","intensity":"Severe"}`, string(data))

	var decoded struct {
		Type      WeatherType      `json:"type"`
		Intensity WeatherIntensity `json:"intensity"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Fog","intensity":"bogus"}`), &decoded))
	assert.Equal(t, Fog, decoded.Type)
	assert.Equal(t, Calm, decoded.Intensity)
}
