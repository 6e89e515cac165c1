package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitloop/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Missing keys keep their zero value; call ApplyDefaultSettings afterwards.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDayStartOffsetMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.DayStartOffsetMin); err != nil {
				return Settings{}, fmt.Errorf("parsing day_start_offset_min: %w", err)
			}
		case constants.SettingSkipEnabled:
			settings.SkipEnabled = value == "true"
		case constants.SettingSnoozeIntervalMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.SnoozeIntervalMin); err != nil {
				return Settings{}, fmt.Errorf("parsing snooze_interval_min: %w", err)
			}
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingNextRefresh:
			ms, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing next_refresh_ms: %w", err)
			}
			settings.NextRefreshMs = ms
		}
	}
	if _, ok := data[constants.SettingNotificationsEnabled]; !ok {
		settings.NotificationsEnabled = constants.DefaultNotificationsEnabled
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingDayStartOffsetMin:    strconv.Itoa(settings.DayStartOffsetMin),
		constants.SettingSkipEnabled:          fmt.Sprintf("%v", settings.SkipEnabled),
		constants.SettingSnoozeIntervalMin:    strconv.Itoa(settings.SnoozeIntervalMin),
		constants.SettingNotificationsEnabled: fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingNextRefresh:          strconv.FormatInt(settings.NextRefreshMs, 10),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.SnoozeIntervalMin == 0 {
		settings.SnoozeIntervalMin = constants.DefaultSnoozeIntervalMin
	}
}

// DefaultSettings returns the settings written by a fresh Init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:             constants.DefaultTimezone,
		DayStartOffsetMin:    constants.DefaultDayStartOffsetMin,
		SkipEnabled:          constants.DefaultSkipEnabled,
		SnoozeIntervalMin:    constants.DefaultSnoozeIntervalMin,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
	}
}
