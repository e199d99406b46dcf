package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveEffects_InRangeForEveryCondition(t *testing.T) {
	for _, w := range AllWeatherTypes() {
		for _, i := range AllIntensities() {
			e := DeriveEffects(w, i)
			for name, v := range map[string]float64{
				"visibility": e.VisibilityModifier,
				"movement":   e.MovementModifier,
				"combat":     e.CombatModifier,
				"stamina":    e.StaminaDrain,
			} {
				assert.GreaterOrEqual(t, v, minModifier, "%s %s %s", w, i, name)
				assert.LessOrEqual(t, v, maxModifier, "%s %s %s", w, i, name)
			}
			desc := DescribeEffects(e)
			assert.NotEmpty(t, desc, "%s %s", w, i)
			assert.True(t, strings.HasSuffix(desc, "."), desc)
		}
	}
}

func TestDeriveEffects_ClearVisibilityBonusIgnoresIntensity(t *testing.T) {
	for _, i := range AllIntensities() {
		assert.InDelta(t, 1.1, DeriveEffects(Clear, i).VisibilityModifier, 1e-9)
		assert.InDelta(t, 1.0, DeriveEffects(PartlyCloudy, i).VisibilityModifier, 1e-9)
	}
}

func TestDeriveEffects_HeavySnowSevere(t *testing.T) {
	e := DeriveEffects(HeavySnow, Severe)
	assert.True(t, e.BlocksFlying)
	assert.True(t, e.FireResistance)
	assert.True(t, e.BlocksRanged)
	assert.Less(t, e.MovementModifier, DeriveEffects(HeavySnow, Moderate).MovementModifier)
}

func TestDeriveEffects_IntensityScalesDeviation(t *testing.T) {
	calm := DeriveEffects(Fog, Calm)
	extreme := DeriveEffects(Fog, Extreme)
	assert.Greater(t, calm.VisibilityModifier, extreme.VisibilityModifier)
	// 1 + (0.3-1)*0.5
	assert.InDelta(t, 0.65, calm.VisibilityModifier, 1e-9)
}

func TestDeriveEffects_IntensityGatedFlags(t *testing.T) {
	assert.False(t, DeriveEffects(Windy, Moderate).BlocksFlying)
	assert.True(t, DeriveEffects(Windy, Severe).BlocksFlying)
	assert.False(t, DeriveEffects(Windy, Light).BlocksRanged)
	assert.True(t, DeriveEffects(Windy, Moderate).BlocksRanged)
}

func TestDescribeEffects(t *testing.T) {
	t.Run("neutral effects use the sentinel", func(t *testing.T) {
		assert.Equal(t, NoSignificantEffects, DescribeEffects(DeriveEffects(PartlyCloudy, Moderate)))
		assert.Equal(t, NoSignificantEffects, DescribeEffects(WeatherEffects{
			VisibilityModifier: 1, MovementModifier: 1, CombatModifier: 1, StaminaDrain: 1,
		}))
	})

	t.Run("clear weather sits in the neutral band", func(t *testing.T) {
		assert.Equal(t, NoSignificantEffects, DescribeEffects(DeriveEffects(Clear, Calm)))
	})

	t.Run("list joins with and", func(t *testing.T) {
		got := DescribeEffects(WeatherEffects{
			VisibilityModifier: 0.7, MovementModifier: 1, CombatModifier: 1, StaminaDrain: 1,
			BlocksFlying: true,
		})
		assert.Equal(t, "Visibility is reduced and flying is impossible.", got)
	})

	t.Run("three items use commas", func(t *testing.T) {
		got := DescribeEffects(WeatherEffects{
			VisibilityModifier: 0.4, MovementModifier: 0.8, CombatModifier: 1, StaminaDrain: 1,
			LightningChance: true,
		})
		assert.Equal(t, "Visibility is severely limited, movement is slowed and lightning may strike.", got)
	})
}

func TestJoinWithAnd(t *testing.T) {
	assert.Equal(t, "", joinWithAnd(nil))
	assert.Equal(t, "a", joinWithAnd([]string{"a"}))
	assert.Equal(t, "a and b", joinWithAnd([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinWithAnd([]string{"a", "b", "c"}))
}
