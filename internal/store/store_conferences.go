package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func scanConference(scanner interface{ Scan(dest ...any) error }) (*Conference, error) {
	var (
		conf    Conference
		chamber sql.NullString
	)
	if err := scanner.Scan(&conf.ID, &conf.GoverningBodyID, &conf.Name, &chamber); err != nil {
		return nil, err
	}
	conf.Chamber = chamber.String
	return &conf, nil
}

// ConferenceByID fetches one conference.
func (s *Store) ConferenceByID(ctx context.Context, id int64) (*Conference, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, governing_body_id, name, chamber FROM conferences WHERE id = ?", id)
	conf, err := scanConference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: conference %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query conference %d: %w", id, err)
	}
	return conf, nil
}

// ConferenceByName fetches a conference by name within a governing body.
// Used to locate the plenary session when a committee has no roster.
func (s *Store) ConferenceByName(ctx context.Context, governingBodyID int64, name string) (*Conference, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, governing_body_id, name, chamber FROM conferences WHERE governing_body_id = ? AND name = ?",
		governingBodyID, name)
	conf, err := scanConference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: conference %q in body %d", ErrNotFound, name, governingBodyID)
	}
	if err != nil {
		return nil, fmt.Errorf("query conference %q: %w", name, err)
	}
	return conf, nil
}

// MemberPoliticianIDsAt returns the politicians who were members of the
// conference on the given date. An open end date means the membership is
// still active.
func (s *Store) MemberPoliticianIDsAt(ctx context.Context, conferenceID int64, date time.Time) ([]int64, error) {
	day := date.Format(DateLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT politician_id FROM conference_members
         WHERE conference_id = ?
           AND start_date <= ?
           AND (end_date IS NULL OR end_date >= ?)
         ORDER BY politician_id`,
		conferenceID, day, day)
	if err != nil {
		return nil, fmt.Errorf("query conference members: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
