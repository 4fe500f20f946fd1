package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/ewangz/agentconv/pkg/snapshot"
	"github.com/ewangz/agentconv/pkg/snapshot/jsonl"
	"github.com/ewangz/agentconv/pkg/utils/delimiter"
)

func initViperConfig(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}
	if err := viper.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			slog.Info(fmt.Sprintf("error reading config file: %s", err.Error()))
		}
		slog.Info("using default config")
	}
	viper.OnConfigChange(func(fsnotify.Event) {
		slog.Info("config file changed, reloading")
	})
	viper.WatchConfig()
	if viper.GetBool(delimiter.ViperKey("debug")) {
		slog.Info("using debug mode")
		slog.SetLogLoggerLevel(slog.LevelDebug)
		var debugBuf strings.Builder
		viper.DebugTo(&debugBuf)
		slog.Debug(">>>>>>>>>>>>>>>>> viper >>>>>>>>>>>>>>>>>" + "\n" + debugBuf.String())
		slog.Debug("<<<<<<<<<<<<<<<<< viper <<<<<<<<<<<<<<<<<")
	}
}

func makeSnapshotRecorder(cfg string) (snapshot.Recorder, error) {
	if cfg == "" {
		return snapshot.NopRecorder(), nil
	}
	u, err := url.Parse(cfg)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "jsonl":
		var path string
		if u.Opaque != "" {
			path = u.Opaque
		} else {
			path = u.Path
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		return jsonl.NewRecorder(file), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot recorder type %q", u.Scheme)
	}
}
