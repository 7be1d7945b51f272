package domain_test

import (
	"testing"

	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestConvertUnit(t *testing.T) {
	t.Run("time conversions", func(t *testing.T) {
		got, ok := domain.ConvertUnit(90, "minutes", "hours")
		assert.True(t, ok)
		assert.InDelta(t, 1.5, got, 1e-9)

		got, ok = domain.ConvertUnit(2, "hour", "minute")
		assert.True(t, ok)
		assert.InDelta(t, 120, got, 1e-9)
	})

	t.Run("volume conversions", func(t *testing.T) {
		got, ok := domain.ConvertUnit(500, "ml", "liter")
		assert.True(t, ok)
		assert.InDelta(t, 0.5, got, 1e-9)

		got, ok = domain.ConvertUnit(1.5, "liters", "milliliters")
		assert.True(t, ok)
		assert.InDelta(t, 1500, got, 1e-9)
	})

	t.Run("round trip is identity within tolerance", func(t *testing.T) {
		pairs := [][2]string{{"minute", "hour"}, {"ml", "liter"}}
		for _, p := range pairs {
			forward, _ := domain.ConvertUnit(7, p[0], p[1])
			back, _ := domain.ConvertUnit(forward, p[1], p[0])
			assert.InDelta(t, 7, back, 1e-9, "%s<->%s", p[0], p[1])
		}
	})

	t.Run("same unit is identity", func(t *testing.T) {
		got, ok := domain.ConvertUnit(5, "page", "page")
		assert.True(t, ok)
		assert.Equal(t, 5.0, got)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		got, ok := domain.ConvertUnit(60, "  Minutes ", "HOUR")
		assert.True(t, ok)
		assert.InDelta(t, 1, got, 1e-9)
	})

	t.Run("unsupported pairs pass through unchanged", func(t *testing.T) {
		got, ok := domain.ConvertUnit(5, "km", "banana")
		assert.False(t, ok)
		assert.Equal(t, 5.0, got)

		got, ok = domain.ConvertUnit(3, "minute", "liter")
		assert.False(t, ok, "incompatible known units are not guessed")
		assert.Equal(t, 3.0, got)
	})
}
