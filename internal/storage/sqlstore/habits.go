package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
)

func (q *Queries) SaveHabit(id string, data models.HabitData) error {
	var hour, minute, days sql.NullInt64
	if data.Reminder != nil {
		hour = sql.NullInt64{Int64: int64(data.Reminder.Hour), Valid: true}
		minute = sql.NullInt64{Int64: int64(data.Reminder.Minute), Valid: true}
		days = sql.NullInt64{Int64: int64(data.Reminder.Days), Valid: true}
	}
	createdAt := data.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := q.exec(`
		INSERT INTO habits (
			id, name, question, description, unit, color, position,
			habit_type, freq_num, freq_den, target_type, target_value,
			reminder_hour, reminder_minute, reminder_days, archived, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			question = excluded.question,
			description = excluded.description,
			unit = excluded.unit,
			color = excluded.color,
			position = excluded.position,
			habit_type = excluded.habit_type,
			freq_num = excluded.freq_num,
			freq_den = excluded.freq_den,
			target_type = excluded.target_type,
			target_value = excluded.target_value,
			reminder_hour = excluded.reminder_hour,
			reminder_minute = excluded.reminder_minute,
			reminder_days = excluded.reminder_days,
			archived = excluded.archived`,
		id, data.Name, data.Question, data.Description, data.Unit, data.Color, data.Position,
		int(data.Type), data.Frequency.Numerator, data.Frequency.Denominator,
		int(data.TargetType), data.TargetValue,
		hour, minute, days, boolToInt(data.Archived), createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", id, err)
	}
	return nil
}

func (q *Queries) DeleteHabit(id string) error {
	tx, err := q.begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM entries WHERE habit_id = ?",
		"DELETE FROM snoozes WHERE habit_id = ?",
		"DELETE FROM alarms WHERE habit_id = ?",
		"DELETE FROM habits WHERE id = ?",
	} {
		if _, err := tx.Exec(q.Driver.Rebind(stmt), id); err != nil {
			return fmt.Errorf("failed to delete habit %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (q *Queries) GetAllHabits() ([]storage.HabitRecord, error) {
	rows, err := q.query(`
		SELECT id, name, question, description, unit, color, position,
			habit_type, freq_num, freq_den, target_type, target_value,
			reminder_hour, reminder_minute, reminder_days, archived, created_at
		FROM habits ORDER BY position, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []storage.HabitRecord
	for rows.Next() {
		var rec storage.HabitRecord
		var habitType, targetType, archived int
		var hour, minute, days sql.NullInt64
		var createdAt string
		d := &rec.Data

		if err := rows.Scan(&rec.ID, &d.Name, &d.Question, &d.Description, &d.Unit, &d.Color, &d.Position,
			&habitType, &d.Frequency.Numerator, &d.Frequency.Denominator, &targetType, &d.TargetValue,
			&hour, &minute, &days, &archived, &createdAt); err != nil {
			return nil, err
		}

		d.Type = models.HabitType(habitType)
		d.TargetType = models.TargetType(targetType)
		d.Archived = archived != 0
		if hour.Valid && minute.Valid && days.Valid {
			d.Reminder = &models.Reminder{
				Hour:   int(hour.Int64),
				Minute: int(minute.Int64),
				Days:   models.WeekdayMask(days.Int64),
			}
		}
		d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for habit %s: %w", rec.ID, err)
		}

		habits = append(habits, rec)
	}
	return habits, rows.Err()
}
