package config_test

import (
	"testing"
	"time"

	"github.com/attendascot/attendascot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := config.NewViperWithDefaults()

	assert.False(t, v.GetBool(config.DebugKey))
	assert.Equal(t, 5000, v.GetInt(config.ResponseCacheSizeKey))
	assert.Equal(t, 0, v.GetInt(config.UserInfoCacheSizeKey))
	assert.Equal(t, "Local", v.GetString(config.TimeLocationKey))
	assert.Equal(t, config.StorageBackendCSV, v.GetString(config.StorageBackendKey))
}

func TestGetTimeLocationDefault(t *testing.T) {
	v := config.NewViperWithDefaults()

	timeLoc, err := config.GetTimeLocation(v)

	require.NoError(t, err)
	assert.Equal(t, time.Local.String(), timeLoc.String())
}

func TestGetTimeLocationExplicit(t *testing.T) {
	v := config.NewViperWithDefaults()
	v.Set(config.TimeLocationKey, "America/Los_Angeles")

	timeLoc, err := config.GetTimeLocation(v)

	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", timeLoc.String())
}

func TestGetTimeLocationInvalid(t *testing.T) {
	v := config.NewViperWithDefaults()
	v.Set(config.TimeLocationKey, "somewhere/over-the-rainbow")

	_, err := config.GetTimeLocation(v)

	assert.Error(t, err)
}

func TestGetPluginConfig(t *testing.T) {
	v := config.NewViperWithDefaults()
	v.Set("plugins.attendance.channelId", "C1234")

	pc, err := config.GetPluginConfig(v, "attendance")

	require.NoError(t, err)
	assert.Equal(t, "C1234", pc.GetString("channelId"))
}

func TestGetPluginConfigMissing(t *testing.T) {
	v := config.NewViperWithDefaults()

	_, err := config.GetPluginConfig(v, "attendance")

	assert.Error(t, err)
}
