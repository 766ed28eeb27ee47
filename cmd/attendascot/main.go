package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nlopes/slack"
	"github.com/spf13/viper"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/attendascot/attendascot"
	"github.com/attendascot/attendascot/config"
	"github.com/attendascot/attendascot/plugins"
	"github.com/attendascot/attendascot/store"
	"github.com/attendascot/attendascot/store/csvlog"
	"github.com/attendascot/attendascot/store/inmemorydb"
)

const (
	name = "attendascot"
)

var (
	configurationPath = kingpin.Flag("configuration", "The path to the configuration file.").Short('c').Required().String()
	logfile           = kingpin.Flag("log", "The path to the log file.").Short('l').OpenFile(os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
)

func main() {
	kingpin.Version(attendascot.VERSION)
	kingpin.Parse()

	v := config.NewViperWithDefaults()
	v.SetConfigFile(*configurationPath)
	err := v.ReadInConfig()
	if err != nil {
		log.Fatalf("Error loading configuration file [%s]: %v", *configurationPath, err)
	}

	options := make([]attendascot.Option, 0)
	if *logfile != nil {
		options = append(options, attendascot.OptionLogfile(*logfile))
	}

	client := slack.New(v.GetString(config.TokenKey))

	storer, err := newStorer(v)
	if err != nil {
		log.Fatalf("Error opening attendance storage: %v", err)
	}

	pc, err := config.GetPluginConfig(v, plugins.AttendancePluginName)
	if err != nil {
		log.Fatal(err)
	}

	att, err := plugins.NewAttendance(pc, client, storer)

	bot, err := attendascot.NewBot(name, v, options...).
		WithPluginCloserErr(storer, pluginOrNil(att), err).
		WithPlugin(&plugins.NewVersioner(name, attendascot.VERSION).Plugin).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	defer bot.Close()

	err = bot.Run()
	if err != nil {
		log.Fatal(err)
	}
}

// newStorer opens the configured storage backend wrapped in a write-through
// in-memory cache
func newStorer(v *viper.Viper) (storer store.StringStorer, err error) {
	storagePath := v.GetString(config.StoragePathKey)

	var backend store.StringStorer
	switch backendID := v.GetString(config.StorageBackendKey); backendID {
	case config.StorageBackendCSV:
		backend, err = csvlog.New(plugins.AttendancePluginName, storagePath)
	case config.StorageBackendLevelDB:
		backend, err = store.NewLevelDB(plugins.AttendancePluginName, storagePath)
	default:
		return nil, fmt.Errorf("unsupported storage backend [%s]", backendID)
	}

	if err != nil {
		return nil, err
	}

	return inmemorydb.New(backend)
}

// pluginOrNil guards against dereferencing the attendance plugin when its
// creation failed. The builder surfaces the creation error on Build
func pluginOrNil(att *plugins.Attendance) (p *attendascot.Plugin) {
	if att == nil {
		return nil
	}

	return &att.Plugin
}
