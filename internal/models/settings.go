package models

// Settings holds the user preferences stored in the settings table.
type Settings struct {
	Timezone             string `json:"timezone"`              // IANA timezone name, or "Local" for the system timezone
	DayStartOffsetMin    int    `json:"day_start_offset_min"`  // minutes after midnight at which a new day begins
	SkipEnabled          bool   `json:"skip_enabled"`          // whether toggling cycles through SKIP
	SnoozeIntervalMin    int    `json:"snooze_interval_min"`   // default snooze length in minutes
	NotificationsEnabled bool   `json:"notifications_enabled"` // whether reminders are delivered
	NextRefreshMs        int64  `json:"next_refresh_ms"`       // UTC milliseconds of the next day-change recompute
}
