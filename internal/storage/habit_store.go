package storage

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/models"
)

// HabitStore keeps one *models.Habit per id in position order and writes
// every change through to a Provider. It is safe for concurrent use.
type HabitStore struct {
	mu       sync.RWMutex
	provider Provider
	habits   []*models.Habit
	byID     map[string]*models.Habit
}

func NewHabitStore(p Provider) *HabitStore {
	return &HabitStore{
		provider: p,
		byID:     make(map[string]*models.Habit),
	}
}

func (s *HabitStore) Provider() Provider { return s.provider }

// Load replaces the in-memory habits with the provider's contents. A habit
// whose entries are inconsistent is kept and logged; its caches start empty.
func (s *HabitStore) Load() error {
	records, err := s.provider.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	habits := make([]*models.Habit, 0, len(records))
	byID := make(map[string]*models.Habit, len(records))
	for _, rec := range records {
		entries, err := s.provider.GetEntries(rec.ID)
		if err != nil {
			return fmt.Errorf("failed to load entries for habit %s: %w", rec.ID, err)
		}
		h := models.NewHabit(rec.ID, rec.Data)
		if err := h.LoadEntries(entries); err != nil {
			logger.Warn("Recovered inconsistent habit entries", "habit", rec.ID, "error", err)
		}
		habits = append(habits, h)
		byID[rec.ID] = h
	}

	s.mu.Lock()
	s.habits = habits
	s.byID = byID
	s.mu.Unlock()
	return nil
}

// Get returns the habit with id, or nil when there is none.
func (s *HabitStore) Get(id string) (*models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id], nil
}

// Add persists a new habit at the end of the list, assigning an id when h
// has none. Entries already recorded on h are persisted too.
func (s *HabitStore) Add(h *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID() == "" {
		if err := h.AssignID(uuid.New().String()); err != nil {
			return err
		}
	}
	id := h.ID()
	if _, exists := s.byID[id]; exists {
		return apperrors.InvalidArgument("habit %s already exists", id)
	}

	data := h.Data()
	data.Position = s.nextPositionLocked()
	h.SetData(data)

	if err := s.provider.SaveHabit(id, data); err != nil {
		return err
	}
	for _, e := range h.Entries() {
		if err := s.provider.SaveEntry(id, e); err != nil {
			return err
		}
	}

	s.habits = append(s.habits, h)
	s.byID[id] = h
	return nil
}

func (s *HabitStore) nextPositionLocked() int {
	next := 0
	for _, h := range s.habits {
		if p := h.Data().Position; p >= next {
			next = p + 1
		}
	}
	return next
}

// Remove deletes the habit and everything stored for it.
func (s *HabitStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return apperrors.NotFound("habit %s", id)
	}
	if err := s.provider.DeleteHabit(id); err != nil {
		return err
	}

	delete(s.byID, id)
	for i, h := range s.habits {
		if h.ID() == id {
			s.habits = append(s.habits[:i], s.habits[i+1:]...)
			break
		}
	}
	return nil
}

// Update persists the current data of a habit already in the store.
func (s *HabitStore) Update(h *models.Habit) error {
	s.mu.RLock()
	stored, ok := s.byID[h.ID()]
	s.mu.RUnlock()
	if !ok {
		return apperrors.NotFound("habit %s", h.ID())
	}
	if stored != h {
		return apperrors.InvalidArgument("habit %s is not the stored instance", h.ID())
	}
	return s.provider.SaveHabit(h.ID(), h.Data())
}

// SaveEntry persists e and then records it on h.
func (s *HabitStore) SaveEntry(h *models.Habit, e models.Entry) error {
	if err := s.provider.SaveEntry(h.ID(), e); err != nil {
		return err
	}
	h.AddEntry(e)
	return nil
}

// DeleteEntry removes the recorded entry of h on day t.
func (s *HabitStore) DeleteEntry(h *models.Habit, t models.Timestamp) error {
	if err := s.provider.DeleteEntry(h.ID(), t); err != nil {
		return err
	}
	h.RemoveEntry(t)
	return nil
}

// All returns every habit in position order.
func (s *HabitStore) All() []*models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

// Matching returns the habits selected by m, in position order.
func (s *HabitStore) Matching(m models.HabitMatcher, today models.Timestamp) []*models.Habit {
	var out []*models.Habit
	for _, h := range s.All() {
		if m.Matches(h, today) {
			out = append(out, h)
		}
	}
	return out
}

func (s *HabitStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.habits)
}

// Reorder moves from into the slot currently held by to, shifting the
// habits in between, and renumbers positions from zero.
func (s *HabitStore) Reorder(from, to *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromIdx, toIdx := s.indexLocked(from), s.indexLocked(to)
	if fromIdx < 0 {
		return apperrors.NotFound("habit %s", from.ID())
	}
	if toIdx < 0 {
		return apperrors.NotFound("habit %s", to.ID())
	}

	reordered := make([]*models.Habit, 0, len(s.habits))
	reordered = append(reordered, s.habits[:fromIdx]...)
	reordered = append(reordered, s.habits[fromIdx+1:]...)
	reordered = append(reordered[:toIdx], append([]*models.Habit{from}, reordered[toIdx:]...)...)

	for i, h := range reordered {
		data := h.Data()
		if data.Position == i {
			continue
		}
		data.Position = i
		if err := s.provider.SaveHabit(h.ID(), data); err != nil {
			return err
		}
		h.SetData(data)
	}
	s.habits = reordered
	return nil
}

func (s *HabitStore) indexLocked(h *models.Habit) int {
	if h == nil {
		return -1
	}
	for i, stored := range s.habits {
		if stored == h {
			return i
		}
	}
	return -1
}
