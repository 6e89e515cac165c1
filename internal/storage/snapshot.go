package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/julianstephens/habitloop/internal/models"
)

const SnapshotVersion = 1

// Snapshot is a provider-independent copy of everything habitloop stores
// except transient reminder state (snoozes and pending alarms).
type Snapshot struct {
	Version  int             `json:"version"`
	Settings models.Settings `json:"settings"`
	Habits   []HabitSnapshot `json:"habits"`
}

type HabitSnapshot struct {
	ID      string           `json:"id"`
	Data    models.HabitData `json:"data"`
	Entries []models.Entry   `json:"entries"`
}

func ExportSnapshot(p Provider) (Snapshot, error) {
	settings, err := p.GetSettings()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read settings: %w", err)
	}
	records, err := p.GetAllHabits()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read habits: %w", err)
	}

	snap := Snapshot{Version: SnapshotVersion, Settings: settings}
	for _, rec := range records {
		entries, err := p.GetEntries(rec.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to read entries for habit %s: %w", rec.ID, err)
		}
		snap.Habits = append(snap.Habits, HabitSnapshot{ID: rec.ID, Data: rec.Data, Entries: entries})
	}
	return snap, nil
}

// ImportSnapshot writes snap into p, overwriting habits and entries with
// the same ids. Habits missing from snap are left alone.
func ImportSnapshot(p Provider, snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if err := p.SaveSettings(snap.Settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	for _, h := range snap.Habits {
		if h.ID == "" {
			return fmt.Errorf("snapshot habit %q has no id", h.Data.Name)
		}
		if err := p.SaveHabit(h.ID, h.Data); err != nil {
			return err
		}
		for _, e := range h.Entries {
			if err := p.SaveEntry(h.ID, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func WriteSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, nil
}
