package settings

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitloop/internal/cli"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx := &cli.Context{Store: store}
	if err := ctx.Open(); err != nil {
		t.Fatalf("failed to open context: %v", err)
	}

	cleanup := func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, cleanup
}

func TestSettingsCmd_List(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &SettingsCmd{
		List: true,
	}

	err := cmd.Run(ctx)
	if err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	initial, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}

	skip := !initial.SkipEnabled
	snooze := 25
	notifications := false
	cmd := &SettingsCmd{
		SkipEnabled:          &skip,
		SnoozeIntervalMin:    &snooze,
		NotificationsEnabled: &notifications,
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	updated, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get updated settings: %v", err)
	}
	if updated.SkipEnabled != skip {
		t.Errorf("expected SkipEnabled to be %v, got %v", skip, updated.SkipEnabled)
	}
	if updated.SnoozeIntervalMin != snooze {
		t.Errorf("expected SnoozeIntervalMin to be %d, got %d", snooze, updated.SnoozeIntervalMin)
	}
	if updated.NotificationsEnabled {
		t.Error("expected notifications to be disabled")
	}
	if ctx.Prefs.IsSkipEnabled() != skip {
		t.Error("preferences cache not updated")
	}
}

func TestSettingsCmd_DayBoundaryResetsRefresh(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := ctx.Prefs.Update(func(s *models.Settings) { s.NextRefreshMs = 12345 }); err != nil {
		t.Fatalf("failed to seed refresh time: %v", err)
	}

	tz := "UTC"
	offset := 240
	cmd := &SettingsCmd{Timezone: &tz, DayStartOffsetMin: &offset}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	s := ctx.Prefs.Settings()
	if s.Timezone != tz || s.DayStartOffsetMin != offset {
		t.Errorf("settings = %+v", s)
	}
	if s.NextRefreshMs != 0 {
		t.Errorf("expected NextRefreshMs to be reset, got %d", s.NextRefreshMs)
	}
}

func TestSettingsCmd_Invalid(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"timezone", SettingsCmd{Timezone: ptr("Mars/Olympus")}},
		{"offset", SettingsCmd{DayStartOffsetMin: ptr(1440)}},
		{"snooze", SettingsCmd{SnoozeIntervalMin: ptr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			if !apperrors.IsInvalidArgument(err) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
