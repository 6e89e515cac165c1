package main

import (
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/cli/habits"
	"github.com/julianstephens/habitloop/internal/cli/settings"
	"github.com/julianstephens/habitloop/internal/cli/system"
	"github.com/julianstephens/habitloop/internal/config"
	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_path}"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize habitloop storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`

	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and habit tracking."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`

	System struct {
		Notify    system.NotifyCmd    `cmd:"" help:"Deliver due reminders once."`
		Daemon    system.DaemonCmd    `cmd:"" help:"Run the reminder dispatcher and status server."`
		Recompute system.RecomputeCmd `cmd:"" help:"Recompute every habit and reschedule reminders."`
		Export    system.ExportCmd    `cmd:"" help:"Export habits, entries and settings to JSON."`
		Import    system.ImportCmd    `cmd:"" help:"Import a JSON snapshot."`
		Debug     system.DebugCmd     `cmd:"" help:"Debug commands for troubleshooting."`
		Keyring   struct {
			Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
			Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
			Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
			Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
		} `cmd:"" help:"Manage database credentials in the OS keyring."`
	} `cmd:"" help:"Background and maintenance commands."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, scores and reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":      constants.Version,
			"config_path":  constants.DefaultConfigPath,
			"best_streaks": strconv.Itoa(constants.DefaultBestStreaks),
		},
	)

	configPath, err := config.ExpandPath(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		apperrors.Fatal(err)
	}

	configDir, err := config.ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug || cfg.Log.Debug, ConfigDir: configDir}); err != nil {
		apperrors.Fatal(err)
	}

	store, err := cli.NewProvider(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx := &cli.Context{
		Config:     cfg,
		ConfigPath: configPath,
		Version:    constants.Version,
		Store:      store,
	}

	err = ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	apperrors.Fatal(err)
}
