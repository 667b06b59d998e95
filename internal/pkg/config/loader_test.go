package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "custom")
	assert.Equal(t, "custom", LoadEnvString("TEST_STRING", "default"))
	assert.Equal(t, "default", LoadEnvString("TEST_STRING_UNSET", "default"))
}

func TestLoadEnvWithFallback(t *testing.T) {
	noDigits := func(s string) error {
		for _, r := range s {
			if r >= '0' && r <= '9' {
				return fmt.Errorf("digits not allowed")
			}
		}
		return nil
	}

	t.Run("unset uses default without warning", func(t *testing.T) {
		result := LoadEnvWithFallback("TEST_FALLBACK_UNSET", "default", noDigits)
		assert.Equal(t, "default", result.Value)
		assert.False(t, result.FallbackApplied)
		assert.Empty(t, result.Warnings)
	})

	t.Run("valid value passes through", func(t *testing.T) {
		t.Setenv("TEST_FALLBACK", "valid")
		result := LoadEnvWithFallback("TEST_FALLBACK", "default", noDigits)
		assert.Equal(t, "valid", result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("TEST_FALLBACK", "bad123")
		result := LoadEnvWithFallback("TEST_FALLBACK", "default", noDigits)
		assert.Equal(t, "default", result.Value)
		assert.True(t, result.FallbackApplied)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "TEST_FALLBACK")
	})

	t.Run("nil validator accepts anything", func(t *testing.T) {
		t.Setenv("TEST_FALLBACK", "bad123")
		result := LoadEnvWithFallback("TEST_FALLBACK", "default", nil)
		assert.Equal(t, "bad123", result.Value)
		assert.False(t, result.FallbackApplied)
	})
}

func TestLoadEnvDuration(t *testing.T) {
	positive := ValidatePositiveDuration

	t.Run("unset uses default", func(t *testing.T) {
		result := LoadEnvDuration("TEST_DURATION_UNSET", 5*time.Minute, positive)
		assert.Equal(t, 5*time.Minute, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("valid duration parses", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "90s")
		result := LoadEnvDuration("TEST_DURATION", 5*time.Minute, positive)
		assert.Equal(t, 90*time.Second, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("unparseable falls back", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "soon")
		result := LoadEnvDuration("TEST_DURATION", 5*time.Minute, positive)
		assert.Equal(t, 5*time.Minute, result.Value)
		assert.True(t, result.FallbackApplied)
	})

	t.Run("validator rejection falls back", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "-10s")
		result := LoadEnvDuration("TEST_DURATION", 5*time.Minute, positive)
		assert.Equal(t, 5*time.Minute, result.Value)
		assert.True(t, result.FallbackApplied)
	})
}

func TestLoadEnvInt(t *testing.T) {
	inRange := func(v int) error { return ValidateIntRange(v, 1, 100) }

	t.Run("unset uses default", func(t *testing.T) {
		result := LoadEnvInt("TEST_INT_UNSET", 10, inRange)
		assert.Equal(t, 10, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("valid int parses", func(t *testing.T) {
		t.Setenv("TEST_INT", "42")
		result := LoadEnvInt("TEST_INT", 10, inRange)
		assert.Equal(t, 42, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("unparseable falls back", func(t *testing.T) {
		t.Setenv("TEST_INT", "many")
		result := LoadEnvInt("TEST_INT", 10, inRange)
		assert.Equal(t, 10, result.Value)
		assert.True(t, result.FallbackApplied)
	})

	t.Run("out of range falls back", func(t *testing.T) {
		t.Setenv("TEST_INT", "500")
		result := LoadEnvInt("TEST_INT", 10, inRange)
		assert.Equal(t, 10, result.Value)
		assert.True(t, result.FallbackApplied)
	})
}
