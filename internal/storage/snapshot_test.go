package storage_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
	"github.com/julianstephens/habitloop/internal/storage/memory"
	"github.com/julianstephens/habitloop/internal/storage/storagetest"
)

func TestSnapshotRoundTrip(t *testing.T) {
	src := memory.New()
	_ = src.Init()
	settings := models.DefaultSettings()
	settings.SkipEnabled = true
	_ = src.SaveSettings(settings)
	_ = src.SaveHabit("h1", storagetest.SampleHabit("run", 0))
	_ = src.SaveEntry("h1", models.Entry{Timestamp: 100, Value: 1500, Notes: "easy"})
	_ = src.SaveEntry("h1", models.Entry{Timestamp: 99, Value: 0})

	snap, err := storage.ExportSnapshot(src)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "export.json")
	if err := storage.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	read, err := storage.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}

	dst := memory.New()
	_ = dst.Init()
	if err := storage.ImportSnapshot(dst, read); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}

	if got, _ := dst.GetSettings(); !got.SkipEnabled {
		t.Error("imported settings lost skip_enabled")
	}
	records, _ := dst.GetAllHabits()
	if len(records) != 1 || records[0].Data.Name != "run" || records[0].Data.Reminder == nil {
		t.Fatalf("imported habits = %+v", records)
	}
	want, _ := src.GetEntries("h1")
	got, _ := dst.GetEntries("h1")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("imported entries = %+v, want %+v", got, want)
	}
}

func TestImportSnapshotRejectsBadInput(t *testing.T) {
	p := memory.New()
	_ = p.Init()
	if err := storage.ImportSnapshot(p, storage.Snapshot{Version: 9}); err == nil {
		t.Error("ImportSnapshot() accepted unknown version")
	}
	snap := storage.Snapshot{
		Version:  storage.SnapshotVersion,
		Settings: models.DefaultSettings(),
		Habits:   []storage.HabitSnapshot{{Data: models.HabitData{Name: "nameless"}}},
	}
	if err := storage.ImportSnapshot(p, snap); err == nil {
		t.Error("ImportSnapshot() accepted habit without id")
	}
}
