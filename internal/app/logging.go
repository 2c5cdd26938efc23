package app

import (
	"github.com/Faultbox/iqhfm-eval/internal/config"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
)

// InitLogging configures the global logger from the logging section.
// Console output is always on; a log file adds a rotating file core.
func InitLogging(cfg config.LoggingConfig) error {
	opts := logger.Options{
		Level:   cfg.Level,
		Format:  cfg.Format,
		Console: true,
	}
	if cfg.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.LogFile)
	}
	return logger.Setup(opts)
}
