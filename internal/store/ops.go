package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/date"
	"github.com/skoglund/timegrid/internal/grid"
)

const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// Op is one recorded submit operation.
type Op struct {
	ID            int
	Kind          grid.OpKind
	RemoteEntryID string
	Entry         api.EntryRequest
	Status        string
	Error         string
	CreatedAt     time.Time
}

// RecordOp persists the outcome of a single create/update operation.
// Failed operations keep enough of the request to be replayed by retry.
func (db *DB) RecordOp(op grid.Op, status, errMsg string) (int64, error) {
	result, err := db.Exec(
		`INSERT INTO ops (kind, remote_entry_id, entry_date, client_id, project_id, task, hours, notes, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.Kind.String(), op.EntryID,
		op.Entry.Date.String(), op.Entry.ClientID, op.Entry.ProjectID,
		op.Entry.Task, op.Entry.Hours, op.Entry.Notes,
		status, errMsg,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting operation: %w", err)
	}
	return result.LastInsertId()
}

// MarkSubmitted flips a previously failed operation to submitted.
func (db *DB) MarkSubmitted(id int, remoteEntryID string) error {
	_, err := db.Exec(
		"UPDATE ops SET status = ?, error = '', remote_entry_id = ? WHERE id = ?",
		StatusSubmitted, remoteEntryID, id,
	)
	return err
}

// MarkFailed records a retry failure without losing the operation.
func (db *DB) MarkFailed(id int, errMsg string) error {
	_, err := db.Exec(
		"UPDATE ops SET status = ?, error = ? WHERE id = ?",
		StatusFailed, errMsg, id,
	)
	return err
}

// FailedOps returns the operations still waiting for a successful submit,
// oldest first.
func (db *DB) FailedOps() ([]Op, error) {
	return db.queryOps(
		`SELECT id, kind, remote_entry_id, entry_date, client_id, project_id, task, hours, notes, status, error, created_at
		 FROM ops
		 WHERE status = ?
		 ORDER BY created_at ASC, id ASC`,
		StatusFailed,
	)
}

// RecentOps returns the newest recorded operations up to limit.
func (db *DB) RecentOps(limit int) ([]Op, error) {
	return db.queryOps(
		`SELECT id, kind, remote_entry_id, entry_date, client_id, project_id, task, hours, notes, status, error, created_at
		 FROM ops
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

func (db *DB) queryOps(query string, args ...interface{}) ([]Op, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []Op
	for rows.Next() {
		var op Op
		var kind, dateStr, createdStr string
		var remoteID, notes, errMsg sql.NullString

		if err := rows.Scan(
			&op.ID, &kind, &remoteID, &dateStr, &op.Entry.ClientID, &op.Entry.ProjectID,
			&op.Entry.Task, &op.Entry.Hours, &notes, &op.Status, &errMsg, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}

		if kind == "update" {
			op.Kind = grid.OpUpdate
		}
		op.RemoteEntryID = remoteID.String
		op.Entry.Notes = notes.String
		op.Error = errMsg.String

		if d, err := date.Parse(dateStr); err == nil {
			op.Entry.Date = d
		}
		if t, err := time.Parse("2006-01-02 15:04:05", createdStr); err == nil {
			op.CreatedAt = t
		} else if t, err := time.Parse(time.RFC3339, createdStr); err == nil {
			op.CreatedAt = t
		}

		ops = append(ops, op)
	}

	return ops, rows.Err()
}
