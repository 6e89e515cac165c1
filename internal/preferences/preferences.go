// Package preferences exposes the user settings stored by a storage.Provider.
package preferences

import (
	"sync"
	"time"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
	"github.com/julianstephens/habitloop/internal/utils"
)

// Preferences is what the command and reminder layers read.
type Preferences interface {
	IsSkipEnabled() bool
	// SnoozeInterval is the default snooze length in minutes.
	SnoozeInterval() int
}

// Store caches the settings row and writes updates back to the provider.
type Store struct {
	mu       sync.RWMutex
	provider storage.Provider
	current  models.Settings
	loc      *time.Location
}

var _ Preferences = (*Store)(nil)

func New(p storage.Provider) (*Store, error) {
	s := &Store{provider: p}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the settings from the provider.
func (s *Store) Reload() error {
	settings, err := s.provider.GetSettings()
	if err != nil {
		return err
	}
	models.ApplyDefaultSettings(&settings)
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return apperrors.InvalidArgument("invalid timezone %q: %v", settings.Timezone, err)
	}

	s.mu.Lock()
	s.current = settings
	s.loc = loc
	s.mu.Unlock()
	return nil
}

func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy of the settings, validates and persists it.
func (s *Store) Update(fn func(*models.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)
	if err := Validate(next); err != nil {
		return err
	}
	loc, err := utils.LoadLocation(next.Timezone)
	if err != nil {
		return apperrors.InvalidArgument("invalid timezone %q: %v", next.Timezone, err)
	}
	if err := s.provider.SaveSettings(next); err != nil {
		return err
	}
	s.current = next
	s.loc = loc
	return nil
}

func Validate(s models.Settings) error {
	if !utils.ValidateTimezone(s.Timezone) {
		return apperrors.InvalidArgument("invalid timezone %q", s.Timezone)
	}
	if s.DayStartOffsetMin < 0 || s.DayStartOffsetMin >= 24*60 {
		return apperrors.InvalidArgument("day start offset must be between 0 and 1439 minutes, got %d", s.DayStartOffsetMin)
	}
	if s.SnoozeIntervalMin < 1 {
		return apperrors.InvalidArgument("snooze interval must be at least 1 minute, got %d", s.SnoozeIntervalMin)
	}
	return nil
}

func (s *Store) IsSkipEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.SkipEnabled
}

func (s *Store) SnoozeInterval() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.SnoozeIntervalMin
}

func (s *Store) NotificationsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.NotificationsEnabled
}

func (s *Store) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

func (s *Store) DayStartOffset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.DayStartOffsetMin
}

// Today returns the user's current day at now.
func (s *Store) Today(now time.Time) models.Timestamp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.TodayWithOffset(now, s.loc, s.current.DayStartOffsetMin)
}

// Static is a fixed Preferences value.
type Static struct {
	SkipEnabled   bool
	SnoozeMinutes int
}

func (p Static) IsSkipEnabled() bool { return p.SkipEnabled }
func (p Static) SnoozeInterval() int { return p.SnoozeMinutes }
