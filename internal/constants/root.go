package constants

import "time"

const (
	AppName            = "habitloop"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitloop"
	DefaultConfigPath  = "~/.config/habitloop/config.toml"
	DefaultDBPath      = "~/.config/habitloop/habitloop.db"
	DBConnectionEnvVar = "HABITLOOP_DB_CONNECTION"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Notify constants
	NotifierLockfileName   = "habitloop-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitloop"
	TrayAppExecutable      = "habitloop-tray"

	// Dispatch constants
	DefaultDispatchInterval = 30 * time.Second
	DefaultDispatchPerMin   = 12
	DefaultDispatchBurst    = 3

	// Runner constants
	DefaultRunnerWorkers = 4

	// Server constants
	DefaultServerAddr = "127.0.0.1:7417"

	// Streak display
	DefaultBestStreaks = 10

	// Score decay half-life, in days, for a daily habit
	ScoreHalfLifeDays = 13.0

	// Maximum frequency denominator, in days
	MaxFrequencyDenominator = 366

	// Factor applied to numerical entry values before storage
	NumericalScale = 1000
)
