package constants

const (
	// General Settings
	SettingTimezone             = "timezone"
	SettingDayStartOffsetMin    = "day_start_offset_min"
	SettingSkipEnabled          = "skip_enabled"
	SettingSnoozeIntervalMin    = "snooze_interval_min"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingNextRefresh          = "next_refresh_ms"

	// Default Settings Values
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultDayStartOffsetMin    = 0
	DefaultSkipEnabled          = false
	DefaultSnoozeIntervalMin    = 15
	DefaultNotificationsEnabled = true
)
