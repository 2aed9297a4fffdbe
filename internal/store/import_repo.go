package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Import event statuses.
const (
	ImportRunning   = "running"
	ImportCompleted = "completed"
	ImportPartial   = "partial"
	ImportFailed    = "failed"
)

// ImportEvent is one attempt to load a study's criteria.
type ImportEvent struct {
	ID          string     `json:"id"`
	StudyID     string     `json:"study_id"`
	Source      string     `json:"source"`
	ContentHash string     `json:"content_hash"`
	Status      string     `json:"status"`
	LineCount   int        `json:"line_count"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// StartImport records a running import event.
func (s *Store) StartImport(ctx context.Context, studyID, source, contentHash string) (*ImportEvent, error) {
	ev := &ImportEvent{
		ID:          uuid.NewString(),
		StudyID:     studyID,
		Source:      source,
		ContentHash: contentHash,
		Status:      ImportRunning,
		StartedAt:   time.Now().UTC(),
	}
	const q = `
insert into criteria_import_events (id, study_id, source, content_hash, status, started_at)
values (?, ?, ?, ?, ?, ?)`
	if _, err := s.DB.ExecContext(ctx, s.rebind(q),
		ev.ID, ev.StudyID, ev.Source, ev.ContentHash, ev.Status, ev.StartedAt); err != nil {
		return nil, classify("start import", err)
	}
	return ev, nil
}

// FinishImport closes an import event with its outcome.
func (s *Store) FinishImport(ctx context.Context, id, status string, lineCount int, errMsg string) error {
	const q = `
update criteria_import_events
set status = ?, line_count = ?, error_message = ?, finished_at = ?
where id = ?`
	res, err := s.DB.ExecContext(ctx, s.rebind(q), status, lineCount, errMsg, time.Now().UTC(), id)
	if err != nil {
		return classify("finish import", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindCompletedImport returns the latest completed import of the same content
// for a study, or ErrNotFound.
func (s *Store) FindCompletedImport(ctx context.Context, studyID, contentHash string) (*ImportEvent, error) {
	const q = `
select id, study_id, source, content_hash, status, line_count, error_message, started_at, finished_at
from criteria_import_events
where study_id = ? and content_hash = ? and status = ?
order by started_at desc
limit 1`
	row := s.DB.QueryRowContext(ctx, s.rebind(q), studyID, contentHash, ImportCompleted)

	var (
		ev       ImportEvent
		finished sql.NullTime
	)
	if err := row.Scan(&ev.ID, &ev.StudyID, &ev.Source, &ev.ContentHash, &ev.Status,
		&ev.LineCount, &ev.Error, &ev.StartedAt, &finished); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, classify("find import", err)
	}
	if finished.Valid {
		t := finished.Time
		ev.FinishedAt = &t
	}
	return &ev, nil
}
