// Package config provides the default configuration keys and helpers to load
// and access an attendascot instance's configuration
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	// TokenKey holds the slack bot token, string value
	TokenKey = "token"

	// DebugKey enables debug logging, bool value. Defaults to false
	DebugKey = "debug"

	// ResponseCacheSizeKey holds the number of entries kept in the
	// triggering-message-to-response cache, int value
	ResponseCacheSizeKey = "responseCacheSize"

	// UserInfoCacheSizeKey holds the number of entries to keep in the user
	// info cache, int value. Defaults to 0 (no caching)
	UserInfoCacheSizeKey = "userInfoCacheSize"

	// TimeLocationKey holds the time location used by the scheduler, string
	// value such as "America/Los_Angeles" or "Local"
	TimeLocationKey = "timeLocation"

	// StoragePathKey holds the directory where file-backed storers keep
	// their data, string value
	StoragePathKey = "storagePath"

	// StorageBackendKey selects the persistent storer backing the
	// attendance ledger, string value. One of StorageBackendCSV (the
	// default) or StorageBackendLevelDB
	StorageBackendKey = "storageBackend"

	// ThreadedRepliesKey enables sending all responses in threads, bool
	// value. Defaults to false
	ThreadedRepliesKey = "replyBehavior.threadedReplies"

	// BroadcastThreadedRepliesKey enables broadcasting of threaded replies
	// to the main channel, bool value. Only meaningful when
	// ThreadedRepliesKey is enabled. Defaults to false
	BroadcastThreadedRepliesKey = "replyBehavior.broadcast"

	// PluginsKey is the parent key under which each plugin has its own
	// configuration subtree
	PluginsKey = "plugins"
)

// Storage backend values
const (
	// StorageBackendCSV keeps attendance rows in monthly csv files
	StorageBackendCSV = "csv"

	// StorageBackendLevelDB keeps attendance rows in a leveldb database
	StorageBackendLevelDB = "leveldb"
)

// Default values
const (
	defaultResponseCacheSize = 5000
	defaultTimeLocation      = "Local"
)

// PluginConfig is a viper instance scoped to one plugin's configuration subtree
type PluginConfig = viper.Viper

// NewViperWithDefaults creates a new viper instance with all attendascot
// defaults set
func NewViperWithDefaults() (v *viper.Viper) {
	v = viper.New()
	v.SetDefault(DebugKey, false)
	v.SetDefault(ResponseCacheSizeKey, defaultResponseCacheSize)
	v.SetDefault(UserInfoCacheSizeKey, 0)
	v.SetDefault(TimeLocationKey, defaultTimeLocation)
	v.SetDefault(StorageBackendKey, StorageBackendCSV)
	v.SetDefault(ThreadedRepliesKey, false)
	v.SetDefault(BroadcastThreadedRepliesKey, false)

	return v
}

// GetTimeLocation parses the configured time location and returns the
// corresponding *time.Location
func GetTimeLocation(v *viper.Viper) (timeLoc *time.Location, err error) {
	locationID := v.GetString(TimeLocationKey)

	timeLoc, err = time.LoadLocation(locationID)
	if err != nil {
		return nil, fmt.Errorf("error parsing time location [%s]: %v", locationID, err)
	}

	return timeLoc, nil
}

// GetPluginConfig returns the configuration subtree of the named plugin or an
// error if the plugin has no configuration
func GetPluginConfig(v *viper.Viper, name string) (pc *PluginConfig, err error) {
	pluginConfigPath := fmt.Sprintf("%s.%s", PluginsKey, name)

	if ok := v.IsSet(pluginConfigPath); !ok {
		return nil, fmt.Errorf("missing configuration for plugin [%s] at [%s]", name, pluginConfigPath)
	}

	return v.Sub(pluginConfigPath), nil
}
