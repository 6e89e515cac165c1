package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitloop/internal/models"
)

func (q *Queries) GetSnooze(habitID string) (models.Snooze, bool, error) {
	row, err := q.queryRow("SELECT until_ms, day FROM snoozes WHERE habit_id = ?", habitID)
	if err != nil {
		return models.Snooze{}, false, err
	}

	s := models.Snooze{HabitID: habitID}
	var day sql.NullInt64
	if err := row.Scan(&s.Until, &day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snooze{}, false, nil
		}
		return models.Snooze{}, false, fmt.Errorf("failed to get snooze for habit %s: %w", habitID, err)
	}
	if day.Valid {
		s.Day = models.Timestamp(day.Int64)
		s.HasDay = true
	}
	return s, true, nil
}

func (q *Queries) SaveSnooze(s models.Snooze) error {
	var day sql.NullInt64
	if s.HasDay {
		day = sql.NullInt64{Int64: int64(s.Day), Valid: true}
	}
	_, err := q.exec(`
		INSERT INTO snoozes (habit_id, until_ms, day) VALUES (?, ?, ?)
		ON CONFLICT(habit_id) DO UPDATE SET
			until_ms = excluded.until_ms,
			day = excluded.day`,
		s.HabitID, s.Until, day)
	if err != nil {
		return fmt.Errorf("failed to save snooze for habit %s: %w", s.HabitID, err)
	}
	return nil
}

func (q *Queries) DeleteSnooze(habitID string) error {
	if _, err := q.exec("DELETE FROM snoozes WHERE habit_id = ?", habitID); err != nil {
		return fmt.Errorf("failed to delete snooze for habit %s: %w", habitID, err)
	}
	return nil
}

func (q *Queries) SaveAlarm(a models.Alarm) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := q.exec(`
		INSERT INTO alarms (habit_id, fire_at_ms, day, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id) DO UPDATE SET
			fire_at_ms = excluded.fire_at_ms,
			day = excluded.day,
			created_at = excluded.created_at`,
		a.HabitID, a.FireAt, int64(a.Day), createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save alarm for habit %s: %w", a.HabitID, err)
	}
	return nil
}

func (q *Queries) DeleteAlarm(habitID string) error {
	if _, err := q.exec("DELETE FROM alarms WHERE habit_id = ?", habitID); err != nil {
		return fmt.Errorf("failed to delete alarm for habit %s: %w", habitID, err)
	}
	return nil
}

func (q *Queries) GetAlarms() ([]models.Alarm, error) {
	return q.scanAlarms("SELECT habit_id, fire_at_ms, day, created_at FROM alarms ORDER BY fire_at_ms, habit_id")
}

func (q *Queries) GetDueAlarms(nowMs int64) ([]models.Alarm, error) {
	return q.scanAlarms(`
		SELECT habit_id, fire_at_ms, day, created_at FROM alarms
		WHERE fire_at_ms <= ? ORDER BY fire_at_ms, habit_id`, nowMs)
}

func (q *Queries) scanAlarms(query string, args ...any) ([]models.Alarm, error) {
	rows, err := q.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alarms []models.Alarm
	for rows.Next() {
		var a models.Alarm
		var day int64
		var createdAt string
		if err := rows.Scan(&a.HabitID, &a.FireAt, &day, &createdAt); err != nil {
			return nil, err
		}
		a.Day = models.Timestamp(day)
		a.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for alarm %s: %w", a.HabitID, err)
		}
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}
