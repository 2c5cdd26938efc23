package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagModels    = flag.String("models", "", "Models directory")
	flagCase      = flag.Int("case", -1, "Assignment index to load at startup")
	flagWidth     = flag.Int("width", 0, "Window width")
	flagHeight    = flag.Int("height", 0, "Window height")
	flagListen    = flag.String("listen", "", "Enable the host websocket on this address")
	flagHeadless  = flag.Bool("headless", false, "Run without a window")
	flagSnapshots = flag.String("snapshots", "", "Snapshot output directory")
	flagLogFormat = flag.String("log-format", "", "Log output format: console or json")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFormat != "" {
		cfg.Logging.Format = *flagLogFormat
	}
	if *flagModels != "" {
		cfg.Assets.ModelDir = *flagModels
	}
	if *flagCase >= 0 {
		cfg.Cases.Start = *flagCase
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagListen != "" {
		cfg.Host.Enabled = true
		cfg.Host.Listen = *flagListen
	}
	if *flagHeadless {
		cfg.Headless.Enabled = true
	}
	if *flagSnapshots != "" {
		cfg.Snapshot.Dir = *flagSnapshots
	}
}
