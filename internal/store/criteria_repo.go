package store

import (
	"context"
	"time"

	"github.com/dgallion1/critree/internal/criteria"
)

// Criterion is one stored tagged line.
type Criterion struct {
	StudyID       string               `json:"study_id"`
	Section       criteria.SectionKind `json:"section"`
	QualifiedPath string               `json:"qualified_path"`
	Band          string               `json:"band"`
	ImportEventID string               `json:"import_event_id"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	criteria.TaggedLine
}

// SaveResult counts what SaveSection changed.
type SaveResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
}

// SaveSection replaces the stored lines of one section of a study. Rows are
// keyed by (study, section, sequence number): existing rows are updated in
// place, new ones inserted, and rows the event no longer produced removed.
func (s *Store) SaveSection(ctx context.Context, studyID, eventID string, kind criteria.SectionKind, lines []criteria.TaggedLine) (SaveResult, error) {
	var res SaveResult

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, classify("begin", err)
	}
	defer tx.Rollback()

	var (
		qExists = s.rebind(`
select count(*) from eligibility_criteria
where study_id = ? and section = ? and sequence_number = ?`)
		qUpdate = s.rebind(`
update eligibility_criteria
set classification = ?, band = ?, leader_style = ?, depth = ?, depth_local_sequence = ?,
    path = ?, qualified_path = ?, criterion_text = ?, import_event_id = ?, updated_at = ?
where study_id = ? and section = ? and sequence_number = ?`)
		qInsert = s.rebind(`
insert into eligibility_criteria (
  study_id, section, section_order, sequence_number, classification, band, leader_style,
  depth, depth_local_sequence, path, qualified_path, criterion_text, import_event_id,
  created_at, updated_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		qDelete = s.rebind(`
delete from eligibility_criteria
where study_id = ? and section = ? and import_event_id <> ?`)
	)

	section := kind.String()
	bands := criteria.Resolve(kind)
	now := time.Now().UTC()

	for _, l := range lines {
		var n int
		if err := tx.QueryRowContext(ctx, qExists, studyID, section, l.SequenceNumber).Scan(&n); err != nil {
			return res, classify("check criterion", err)
		}
		band := criteria.BandName(bands, l.Classification)
		qp := criteria.QualifiedPath(kind, l.Path)
		if n > 0 {
			if _, err := tx.ExecContext(ctx, qUpdate,
				int(l.Classification), band, l.LeaderStyle, l.Depth, l.DepthLocalSequence,
				l.Path, qp, l.Text, eventID, now,
				studyID, section, l.SequenceNumber); err != nil {
				return res, classify("update criterion", err)
			}
			res.Updated++
			continue
		}
		if _, err := tx.ExecContext(ctx, qInsert,
			studyID, section, int(kind), l.SequenceNumber, int(l.Classification), band, l.LeaderStyle,
			l.Depth, l.DepthLocalSequence, l.Path, qp, l.Text, eventID,
			now, now); err != nil {
			return res, classify("insert criterion", err)
		}
		res.Inserted++
	}

	del, err := tx.ExecContext(ctx, qDelete, studyID, section, eventID)
	if err != nil {
		return res, classify("prune criteria", err)
	}
	if n, err := del.RowsAffected(); err == nil {
		res.Deleted = int(n)
	}

	if err := tx.Commit(); err != nil {
		return res, classify("commit", err)
	}
	return res, nil
}

// ListCriteria returns a study's stored lines ordered by section, then sequence.
func (s *Store) ListCriteria(ctx context.Context, studyID string) ([]Criterion, error) {
	const q = `
select study_id, section, sequence_number, classification, band, leader_style, depth,
       depth_local_sequence, path, qualified_path, criterion_text, import_event_id,
       created_at, updated_at
from eligibility_criteria
where study_id = ?
order by section_order, sequence_number`
	rows, err := s.DB.QueryContext(ctx, s.rebind(q), studyID)
	if err != nil {
		return nil, classify("list criteria", err)
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var (
			c       Criterion
			section string
			class   int
		)
		if err := rows.Scan(&c.StudyID, &section, &c.SequenceNumber, &class, &c.Band, &c.LeaderStyle,
			&c.Depth, &c.DepthLocalSequence, &c.Path, &c.QualifiedPath, &c.Text, &c.ImportEventID,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, classify("scan criterion", err)
		}
		c.Section = criteria.ParseSectionKind(section)
		c.Classification = criteria.Classification(class)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list criteria", err)
	}
	return out, nil
}

// DeleteStudy removes every stored line of a study.
func (s *Store) DeleteStudy(ctx context.Context, studyID string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, s.rebind(`delete from eligibility_criteria where study_id = ?`), studyID)
	if err != nil {
		return 0, classify("delete study", err)
	}
	return res.RowsAffected()
}

// PruneStudy removes a study's rows written by any event other than keepEventID,
// dropping sections that a newer import no longer contains.
func (s *Store) PruneStudy(ctx context.Context, studyID, keepEventID string) (int64, error) {
	const q = `delete from eligibility_criteria where study_id = ? and import_event_id <> ?`
	res, err := s.DB.ExecContext(ctx, s.rebind(q), studyID, keepEventID)
	if err != nil {
		return 0, classify("prune study", err)
	}
	return res.RowsAffected()
}

// GroupBySection splits stored rows into per-section tagged lines, in section order.
func GroupBySection(rows []Criterion) map[criteria.SectionKind][]criteria.TaggedLine {
	out := make(map[criteria.SectionKind][]criteria.TaggedLine)
	for _, r := range rows {
		out[r.Section] = append(out[r.Section], r.TaggedLine)
	}
	return out
}
