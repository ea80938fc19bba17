package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_ENV_STRING", "value")
	assert.Equal(t, "value", GetEnvString("TEST_ENV_STRING", "default"))
	assert.Equal(t, "default", GetEnvString("TEST_ENV_STRING_UNSET", "default"))
}

func TestGetEnvInt64(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int64
	}{
		{name: "valid", value: "2048", want: 2048},
		{name: "padded", value: " 42 ", want: 42},
		{name: "invalid falls back", value: "lots", want: 7},
		{name: "empty falls back", value: "", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT64", tt.value)
			assert.Equal(t, tt.want, GetEnvInt64("TEST_ENV_INT64", 7))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "3")
	assert.Equal(t, 3, GetEnvInt("TEST_ENV_INT", 1))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_ENV_DURATION", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("TEST_ENV_DURATION", time.Second))

	t.Setenv("TEST_ENV_DURATION", "ninety")
	assert.Equal(t, time.Second, GetEnvDuration("TEST_ENV_DURATION", time.Second))
}
