package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.Coordination.EventRingSize)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadHonorsEnvironmentOverrides(t *testing.T) {
	resetViper(t)

	os.Setenv("HUB_SERVER_PORT", "9090")
	os.Setenv("HUB_ENVIRONMENT", "production")
	t.Cleanup(func() {
		os.Unsetenv("HUB_SERVER_PORT")
		os.Unsetenv("HUB_ENVIRONMENT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	resetViper(t)

	os.Setenv("HUB_ENVIRONMENT", "not-a-real-env")
	t.Cleanup(func() { os.Unsetenv("HUB_ENVIRONMENT") })

	_, err := Load()
	assert.ErrorContains(t, err, "invalid environment")
}

func TestLoadRejectsInvalidEventRingSize(t *testing.T) {
	resetViper(t)

	os.Setenv("HUB_COORDINATION_EVENT_RING_SIZE", "0")
	t.Cleanup(func() { os.Unsetenv("HUB_COORDINATION_EVENT_RING_SIZE") })

	_, err := Load()
	assert.ErrorContains(t, err, "event ring size")
}
