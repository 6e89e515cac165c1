// Package memory is a map-backed storage.Provider for tests and dry runs.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
)

type Provider struct {
	mu       sync.RWMutex
	settings *models.Settings
	habits   map[string]models.HabitData
	entries  map[string]map[models.Timestamp]models.Entry
	snoozes  map[string]models.Snooze
	alarms   map[string]models.Alarm
}

var _ storage.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		habits:  make(map[string]models.HabitData),
		entries: make(map[string]map[models.Timestamp]models.Entry),
		snoozes: make(map[string]models.Snooze),
		alarms:  make(map[string]models.Alarm),
	}
}

func (p *Provider) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settings == nil {
		s := models.DefaultSettings()
		p.settings = &s
	}
	return nil
}

func (p *Provider) Load() error  { return nil }
func (p *Provider) Close() error { return nil }

func (p *Provider) GetSettings() (models.Settings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.settings == nil {
		return models.Settings{}, fmt.Errorf("settings not found")
	}
	return *p.settings, nil
}

func (p *Provider) SaveSettings(s models.Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	models.ApplyDefaultSettings(&s)
	p.settings = &s
	return nil
}

func (p *Provider) SaveHabit(id string, data models.HabitData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.habits[id] = data.Clone()
	return nil
}

func (p *Provider) DeleteHabit(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.habits, id)
	delete(p.entries, id)
	delete(p.snoozes, id)
	delete(p.alarms, id)
	return nil
}

func (p *Provider) GetAllHabits() ([]storage.HabitRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	records := make([]storage.HabitRecord, 0, len(p.habits))
	for id, data := range p.habits {
		records = append(records, storage.HabitRecord{ID: id, Data: data.Clone()})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].Data, records[j].Data
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (p *Provider) SaveEntry(habitID string, e models.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	days, ok := p.entries[habitID]
	if !ok {
		days = make(map[models.Timestamp]models.Entry)
		p.entries[habitID] = days
	}
	days[e.Timestamp] = e
	return nil
}

func (p *Provider) DeleteEntry(habitID string, day models.Timestamp) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries[habitID], day)
	return nil
}

func (p *Provider) GetEntries(habitID string) ([]models.Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var entries []models.Entry
	for _, e := range p.entries[habitID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp > entries[j].Timestamp })
	return entries, nil
}

func (p *Provider) GetSnooze(habitID string) (models.Snooze, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.snoozes[habitID]
	return s, ok, nil
}

func (p *Provider) SaveSnooze(s models.Snooze) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snoozes[s.HabitID] = s
	return nil
}

func (p *Provider) DeleteSnooze(habitID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.snoozes, habitID)
	return nil
}

func (p *Provider) SaveAlarm(a models.Alarm) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alarms[a.HabitID] = a
	return nil
}

func (p *Provider) DeleteAlarm(habitID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.alarms, habitID)
	return nil
}

func (p *Provider) GetAlarms() ([]models.Alarm, error) {
	return p.alarmsUntil(nil), nil
}

func (p *Provider) GetDueAlarms(nowMs int64) ([]models.Alarm, error) {
	return p.alarmsUntil(&nowMs), nil
}

func (p *Provider) alarmsUntil(limit *int64) []models.Alarm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var alarms []models.Alarm
	for _, a := range p.alarms {
		if limit == nil || a.FireAt <= *limit {
			alarms = append(alarms, a)
		}
	}
	sort.Slice(alarms, func(i, j int) bool {
		if alarms[i].FireAt != alarms[j].FireAt {
			return alarms[i].FireAt < alarms[j].FireAt
		}
		return alarms[i].HabitID < alarms[j].HabitID
	})
	return alarms
}

func (p *Provider) GetConfigPath() string {
	return "memory"
}
