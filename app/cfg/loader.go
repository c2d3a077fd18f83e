package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed configuration
	FeedsFile string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.yml" description:"Path to the feed definitions file"`

	// Delivery history storage
	HistoryBackend string `long:"history-backend" env:"HISTORY_BACKEND" default:"json" choice:"json" choice:"sqlite" description:"Delivery history backend"`
	HistoryPath    string `long:"history-path" env:"HISTORY_PATH" default:"./data/sent-items.json" description:"Path to the delivery history file or database"`

	// Application configuration
	Port                   string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for health and stats endpoints"`
	FetchTimeoutSeconds    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	DispatchTimeoutSeconds int    `long:"dispatch-timeout" env:"DISPATCH_TIMEOUT" default:"15" description:"Webhook dispatch timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"feedrelay/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedsFile:              raw.FeedsFile,
		HistoryBackend:         raw.HistoryBackend,
		HistoryPath:            raw.HistoryPath,
		Port:                   raw.Port,
		FetchTimeoutSeconds:    raw.FetchTimeoutSeconds,
		DispatchTimeoutSeconds: raw.DispatchTimeoutSeconds,
		UserAgent:              raw.UserAgent,
		Debug:                  raw.Debug,
		Version:                GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
