package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/logger"
)

// RunHeadless drives a at headless.hz without a window, for headless.ticks
// frames or until ctx is done when ticks is zero.
func RunHeadless(ctx context.Context, a *App) error {
	cfg := a.cfg.Headless
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	t := time.NewTicker(d)
	defer t.Stop()

	logger.Info("running headless", zap.Int("hz", cfg.Hz), zap.Int("ticks", cfg.Ticks))
	err := a.loop.Run(ctx, t.C, uint64(cfg.Ticks))
	logger.Info("headless run finished",
		zap.Uint64("ticks", a.loop.Ticks()),
		zap.String("case", a.registry.CaseID()),
		zap.Bool("loaded", a.registry.CaseLoaded()),
	)
	return err
}
