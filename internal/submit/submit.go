// Package submit dispatches grid operations to the server. Submits are
// best-effort: each create or update is an independent request, failures do
// not roll back operations already sent, and every outcome is recorded in
// the local store so failed operations can be retried.
package submit

import (
	"context"
	"io"
	"log/slog"

	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/grid"
	"github.com/skoglund/timegrid/internal/store"
)

// Client is the slice of the API the submitter needs.
type Client interface {
	CreateEntry(ctx context.Context, req api.EntryRequest) (*api.TimeEntry, error)
	UpdateEntry(ctx context.Context, id string, patch api.EntryPatch) (*api.TimeEntry, error)
}

// Result is the outcome of one dispatched operation.
type Result struct {
	Op       grid.Op
	RemoteID string
	Err      error
}

type Submitter struct {
	client Client
	db     *store.DB
	logger *slog.Logger
}

// New builds a submitter. db may be nil, in which case outcomes are not
// recorded locally.
func New(client Client, db *store.DB, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Submitter{client: client, db: db, logger: logger}
}

// entryPatch maps an operation's full field set onto an update. Updates
// carry the same fields as creates so a row re-pointed at another client,
// project, or task moves its persisted entries along with it.
func entryPatch(e api.EntryRequest) api.EntryPatch {
	return api.EntryPatch{
		ClientID:  &e.ClientID,
		ProjectID: &e.ProjectID,
		Task:      &e.Task,
		Hours:     &e.Hours,
		Notes:     &e.Notes,
	}
}

func (s *Submitter) send(ctx context.Context, op grid.Op) Result {
	res := Result{Op: op}

	switch op.Kind {
	case grid.OpCreate:
		created, err := s.client.CreateEntry(ctx, op.Entry)
		if err != nil {
			res.Err = err
		} else {
			res.RemoteID = created.ID
		}
	case grid.OpUpdate:
		updated, err := s.client.UpdateEntry(ctx, op.EntryID, entryPatch(op.Entry))
		if err != nil {
			res.Err = err
		} else {
			res.RemoteID = updated.ID
		}
	}

	return res
}

// Submit dispatches the operations in order and returns one result per
// operation. It never stops early: a failure is recorded and the remaining
// operations are still sent.
func (s *Submitter) Submit(ctx context.Context, ops []grid.Op) []Result {
	results := make([]Result, 0, len(ops))

	for _, op := range ops {
		res := s.send(ctx, op)

		status := store.StatusSubmitted
		errMsg := ""
		if res.Err != nil {
			status = store.StatusFailed
			errMsg = res.Err.Error()
			s.logger.Error("operation failed", "kind", op.Kind.String(), "date", op.Entry.Date, "error", res.Err)
		} else {
			s.logger.Debug("operation submitted", "kind", op.Kind.String(), "date", op.Entry.Date, "entry", res.RemoteID)
		}

		if s.db != nil {
			if _, err := s.db.RecordOp(op, status, errMsg); err != nil {
				s.logger.Error("recording operation", "error", err)
			}
		}

		results = append(results, res)
	}

	return results
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Retry re-sends the failed operations waiting in the store, oldest first,
// and returns one result per attempted operation.
func (s *Submitter) Retry(ctx context.Context) ([]Result, error) {
	pending, err := s.db.FailedOps()
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, rec := range pending {
		op := grid.Op{Kind: rec.Kind, EntryID: rec.RemoteEntryID, Entry: rec.Entry}
		res := s.send(ctx, op)

		if res.Err != nil {
			if err := s.db.MarkFailed(rec.ID, res.Err.Error()); err != nil {
				s.logger.Error("marking operation failed", "id", rec.ID, "error", err)
			}
		} else {
			if err := s.db.MarkSubmitted(rec.ID, res.RemoteID); err != nil {
				s.logger.Error("marking operation submitted", "id", rec.ID, "error", err)
			}
		}

		results = append(results, res)
	}

	return results, nil
}
