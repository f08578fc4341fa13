package viewing

import (
	"database/sql"
	"fmt"
	"time"
)

// Transition is a locally recorded status change this client issued.
type Transition struct {
	ID          int64     `json:"id"`
	ViewingID   string    `json:"viewing_id"`
	PropertyID  string    `json:"property_id"`
	FromStatus  Status    `json:"from_status"`
	ToStatus    Status    `json:"to_status"`
	ViewingDate string    `json:"viewing_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// History stores the transitions this client issued in SQLite.
// The backend stays the source of truth; this is an audit trail for the CLI.
type History struct {
	db *sql.DB
}

// NewHistory creates a viewing history repository.
func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Record implements Recorder.
func (h *History) Record(from Status, v *ScheduledViewing) error {
	_, err := h.Add(v.ID, v.PropertyID, from, v.CurrentStatus(), v.ViewingDate)
	return err
}

// Add records a transition of a viewing.
func (h *History) Add(viewingID, propertyID string, from, to Status, viewingDate string) (*Transition, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("invalid transition %q -> %q", from, to)
	}

	result, err := h.db.Exec(
		"INSERT INTO viewing_history (viewing_id, property_id, from_status, to_status, viewing_date) VALUES (?, ?, ?, ?, ?)",
		viewingID, propertyID, from, to, viewingDate,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting transition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	var tr Transition
	err = h.db.QueryRow(
		"SELECT id, viewing_id, property_id, from_status, to_status, viewing_date, created_at FROM viewing_history WHERE id = ?", id,
	).Scan(&tr.ID, &tr.ViewingID, &tr.PropertyID, &tr.FromStatus, &tr.ToStatus, &tr.ViewingDate, &tr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading back transition: %w", err)
	}

	return &tr, nil
}

// ListByViewing returns all transitions of a viewing, oldest first.
func (h *History) ListByViewing(viewingID string) ([]*Transition, error) {
	return h.query(
		"SELECT id, viewing_id, property_id, from_status, to_status, viewing_date, created_at FROM viewing_history WHERE viewing_id = ? ORDER BY id ASC",
		viewingID,
	)
}

// Recent returns the latest transitions across all viewings, newest first.
func (h *History) Recent(limit int) ([]*Transition, error) {
	if limit <= 0 {
		limit = 20
	}
	return h.query(
		"SELECT id, viewing_id, property_id, from_status, to_status, viewing_date, created_at FROM viewing_history ORDER BY id DESC LIMIT ?",
		limit,
	)
}

// LastByProperty returns the most recent transition for each property that has one.
// Returns a map of property_id -> Transition.
func (h *History) LastByProperty() (map[string]*Transition, error) {
	rows, err := h.db.Query(
		`SELECT t.id, t.viewing_id, t.property_id, t.from_status, t.to_status, t.viewing_date, t.created_at
		 FROM viewing_history t
		 INNER JOIN (
		     SELECT property_id, MAX(id) AS max_id
		     FROM viewing_history GROUP BY property_id
		 ) latest ON t.id = latest.max_id
		 ORDER BY t.property_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying last transitions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	result := make(map[string]*Transition)
	for rows.Next() {
		var tr Transition
		if err := rows.Scan(&tr.ID, &tr.ViewingID, &tr.PropertyID, &tr.FromStatus, &tr.ToStatus, &tr.ViewingDate, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		result[tr.PropertyID] = &tr
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}

	return result, nil
}

// Prune removes transitions older than the cutoff and returns how many were removed.
func (h *History) Prune(before time.Time) (int64, error) {
	result, err := h.db.Exec("DELETE FROM viewing_history WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func (h *History) query(q string, args ...interface{}) ([]*Transition, error) {
	rows, err := h.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transitions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var list []*Transition
	for rows.Next() {
		var tr Transition
		if err := rows.Scan(&tr.ID, &tr.ViewingID, &tr.PropertyID, &tr.FromStatus, &tr.ToStatus, &tr.ViewingDate, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		list = append(list, &tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}

	return list, nil
}
