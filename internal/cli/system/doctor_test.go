package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store, func()) {
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

	return ctx, store, cleanup
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	cmd := &DoctorCmd{}
	err := cmd.Run(ctx)

	// A missing tray app is only a warning
	if err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	db := store.GetDB()
	if db == nil {
		t.Fatal("database connection is nil")
	}

	// Set an impossible future schema version
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	current, _, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to get current version: %v", err)
	}
	if current < 2 {
		t.Skip("need at least two migrations")
	}

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", current-1); err != nil {
		t.Fatalf("failed to insert downgraded schema version: %v", err)
	}

	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := checkMigrationsComplete(ctx); err != nil {
		t.Errorf("checkMigrationsComplete after migrate: %v", err)
	}
}

func TestDoctorCmd_FixesOrphanAlarm(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	orphan := models.Alarm{HabitID: "gone", FireAt: 1, Day: 0, CreatedAt: time.Now().UTC()}
	if err := store.SaveAlarm(orphan); err != nil {
		t.Fatalf("failed to save alarm: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("doctor should report the orphan alarm")
	}
	if err := (&DoctorCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("doctor --fix failed: %v", err)
	}

	alarms, err := store.GetAlarms()
	if err != nil {
		t.Fatalf("failed to read alarms: %v", err)
	}
	if len(alarms) != 0 {
		t.Errorf("alarms after fix = %+v", alarms)
	}
}

func TestCheckSettings(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := checkSettings(ctx); err != nil {
		t.Fatalf("checkSettings on defaults: %v", err)
	}

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.DayStartOffsetMin = 5000
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	if err := checkSettings(ctx); err == nil {
		t.Error("checkSettings should reject an out-of-range day offset")
	}
}

func TestCheckClockTimezone(t *testing.T) {
	// Basic clock check should pass
	err := checkClockTimezone(nil)
	if err != nil {
		t.Errorf("clock/timezone check failed: %v", err)
	}
}

func TestCheckClockTimezone_InvalidSetting(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := checkClockTimezone(ctx); err != nil {
		t.Fatalf("clock/timezone check on defaults: %v", err)
	}

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.Timezone = "Mars/Olympus"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("clock/timezone check should reject an unknown timezone")
	}
}
