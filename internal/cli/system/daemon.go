package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/config"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/observability"
	"github.com/julianstephens/habitloop/internal/server"
)

// DaemonCmd keeps reminders flowing: it dispatches due alarms, recomputes
// habits at the start of each day and serves the status API.
type DaemonCmd struct {
	Addr     string `help:"Status server address. Overrides server.addr."`
	NoServer bool   `help:"Do not start the status server."`
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.Default()
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Endpoint != "" {
		shutdown, err := observability.InitTracing(runCtx, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("Failed to flush traces", "error", err)
			}
		}()
	}

	if err := ctx.Reminders.ScheduleAll(runCtx); err != nil {
		logger.Warn("Some reminders could not be scheduled", "error", err)
	}
	if err := ctx.Reminders.ScheduleRefresh(); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	dispatcher := newDispatcher(ctx, false)

	if ctx.ConfigPath != "" {
		watcher := config.NewWatcher(ctx.ConfigPath, func(next *config.Config) {
			logger.SetDebug(next.Log.Debug)
			dispatcher.SetRate(next.Dispatch.RatePerMinute, next.Dispatch.Burst)
		})
		if err := watcher.Start(runCtx); err != nil {
			logger.Warn("Config file will not be reloaded", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	var wg sync.WaitGroup
	if !c.NoServer {
		addr := cfg.Server.Addr
		if c.Addr != "" {
			addr = c.Addr
		}
		srv := server.New(ctx.Habits, ctx.Prefs, ctx.Clock, ctx.Version)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(runCtx, addr); err != nil {
				logger.Error("Status server stopped", "error", err)
				stop()
			}
		}()
	}

	logger.Info("Daemon started", "interval", cfg.Dispatch.Interval)
	if !ctx.Reminders.HasHabitsWithReminders() {
		logger.Info("No habits have reminders yet")
	}
	err := dispatcher.Run(runCtx, cfg.Dispatch.Interval)
	wg.Wait()
	logger.Info("Daemon stopped")
	return err
}
