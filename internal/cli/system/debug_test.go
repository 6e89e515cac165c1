package system

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitloop/internal/cli"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
	"github.com/julianstephens/habitloop/internal/storage/sqlite"
	"github.com/julianstephens/habitloop/internal/storage/storagetest"
)

func setupTestDebugDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{Store: store}

	cleanup := func() {
		ctx.Close()
	}

	return ctx, cleanup
}

func TestDebugDBPathCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Errorf("debug db-path command failed: %v", err)
	}
}

func TestDebugDumpHabitCmd_Success(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := ctx.Store.SaveHabit("test-habit-id", storagetest.SampleHabit("Journal", 0)); err != nil {
		t.Fatalf("failed to add test habit: %v", err)
	}
	if err := ctx.Store.SaveEntry("test-habit-id", models.Entry{Timestamp: 19000, Value: models.EntryYesManual}); err != nil {
		t.Fatalf("failed to add test entry: %v", err)
	}

	for _, ref := range []string{"test-habit-id", "journal"} {
		if err := (&DebugDumpHabitCmd{Habit: ref}).Run(ctx); err != nil {
			t.Errorf("debug dump-habit %q failed: %v", ref, err)
		}
	}
}

func TestDebugDumpHabitCmd_NotFound(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	err := (&DebugDumpHabitCmd{Habit: "nonexistent-id"}).Run(ctx)
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not found error, got: %v", err)
	}
}

func TestDebugDumpHabitCmd_JSONOutput(t *testing.T) {
	snap := storage.HabitSnapshot{
		ID:      "json-habit-id",
		Data:    storagetest.SampleHabit("JSON Habit", 0),
		Entries: []models.Entry{{Timestamp: 19000, Value: models.EntrySkip}},
	}

	jsonBytes, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal habit to JSON: %v", err)
	}

	jsonStr := string(jsonBytes)
	for _, field := range []string{`"id"`, `"data"`, `"entries"`, `"timestamp"`} {
		if !strings.Contains(jsonStr, field) {
			t.Errorf("JSON output missing field: %s", field)
		}
	}
}

func TestDebugDumpSettingsCmd_Success(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := (&DebugDumpSettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("debug dump-settings command failed: %v", err)
	}
}

func TestDebugDumpSettingsCmd_JSONOutput(t *testing.T) {
	jsonBytes, err := json.MarshalIndent(models.DefaultSettings(), "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal settings to JSON: %v", err)
	}

	jsonStr := string(jsonBytes)
	for _, field := range []string{"timezone", "day_start_offset_min", "skip_enabled", "snooze_interval_min", "notifications_enabled"} {
		if !strings.Contains(jsonStr, field) {
			t.Errorf("JSON output missing field: %s", field)
		}
	}
}

func TestDebugDumpAlarmsCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := ctx.Store.SaveAlarm(models.Alarm{HabitID: "h1", FireAt: 1000, Day: 1}); err != nil {
		t.Fatalf("failed to save alarm: %v", err)
	}
	if err := (&DebugDumpAlarmsCmd{}).Run(ctx); err != nil {
		t.Errorf("debug dump-alarms command failed: %v", err)
	}
}
