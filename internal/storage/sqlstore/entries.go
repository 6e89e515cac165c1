package sqlstore

import (
	"fmt"

	"github.com/julianstephens/habitloop/internal/models"
)

func (q *Queries) SaveEntry(habitID string, entry models.Entry) error {
	_, err := q.exec(`
		INSERT INTO entries (habit_id, day, value, notes) VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			value = excluded.value,
			notes = excluded.notes`,
		habitID, int64(entry.Timestamp), entry.Value, entry.Notes)
	if err != nil {
		return fmt.Errorf("failed to save entry for habit %s on %s: %w", habitID, entry.Timestamp, err)
	}
	return nil
}

func (q *Queries) DeleteEntry(habitID string, day models.Timestamp) error {
	_, err := q.exec("DELETE FROM entries WHERE habit_id = ? AND day = ?", habitID, int64(day))
	if err != nil {
		return fmt.Errorf("failed to delete entry for habit %s on %s: %w", habitID, day, err)
	}
	return nil
}

func (q *Queries) GetEntries(habitID string) ([]models.Entry, error) {
	rows, err := q.query(`
		SELECT day, value, notes FROM entries
		WHERE habit_id = ? ORDER BY day DESC`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		var day int64
		if err := rows.Scan(&day, &e.Value, &e.Notes); err != nil {
			return nil, err
		}
		e.Timestamp = models.Timestamp(day)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
