package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

func scanMeeting(scanner interface{ Scan(dest ...any) error }) (*Meeting, error) {
	var (
		meeting Meeting
		dateRaw sql.NullString
	)
	if err := scanner.Scan(&meeting.ID, &meeting.ConferenceID, &meeting.Name, &dateRaw); err != nil {
		return nil, err
	}
	date, err := parseDate(dateRaw)
	if err != nil {
		return nil, fmt.Errorf("parse meeting date: %w", err)
	}
	meeting.Date = date
	return &meeting, nil
}

// MeetingByID fetches one meeting.
func (s *Store) MeetingByID(ctx context.Context, id int64) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, conference_id, name, date FROM meetings WHERE id = ?", id)
	meeting, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: meeting %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query meeting %d: %w", id, err)
	}
	return meeting, nil
}

// MeetingsByChamberAndDateRange returns the meetings of every conference in
// the chamber whose date falls inside [from, to]. Bulk processing walks this
// list one election term at a time.
func (s *Store) MeetingsByChamberAndDateRange(ctx context.Context, governingBodyID int64, chamber string, from, to time.Time) ([]*Meeting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.conference_id, m.name, m.date
         FROM meetings m JOIN conferences c ON c.id = m.conference_id
         WHERE c.governing_body_id = ? AND c.chamber = ?
           AND m.date IS NOT NULL AND m.date >= ? AND m.date <= ?
         ORDER BY m.date, m.id`,
		governingBodyID, chamber, from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query meetings by chamber: %w", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, meeting)
	}
	return meetings, rows.Err()
}

// MinutesByMeeting fetches the transcript container for a meeting, decoding
// the stored role-name map. A meeting without minutes returns ErrNotFound.
func (s *Store) MinutesByMeeting(ctx context.Context, meetingID int64) (*Minutes, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, meeting_id, role_name_map FROM minutes WHERE meeting_id = ?", meetingID)
	var (
		minutes Minutes
		rawMap  sql.NullString
	)
	err := row.Scan(&minutes.ID, &minutes.MeetingID, &rawMap)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: minutes for meeting %d", ErrNotFound, meetingID)
	}
	if err != nil {
		return nil, fmt.Errorf("query minutes for meeting %d: %w", meetingID, err)
	}
	if rawMap.Valid && rawMap.String != "" {
		if err := json.Unmarshal([]byte(rawMap.String), &minutes.RoleNameMap); err != nil {
			return nil, fmt.Errorf("decode role name map for meeting %d: %w", meetingID, err)
		}
	}
	return &minutes, nil
}

// SpeakerIDsForMinutes returns the distinct speakers appearing in the
// transcript, in first-utterance order.
func (s *Store) SpeakerIDsForMinutes(ctx context.Context, minutesID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT speaker_id FROM conversations
         WHERE minutes_id = ? AND speaker_id IS NOT NULL
         GROUP BY speaker_id ORDER BY MIN(sequence)`,
		minutesID)
	if err != nil {
		return nil, fmt.Errorf("query speakers for minutes %d: %w", minutesID, err)
	}
	defer rows.Close()
	return collectIDs(rows)
}
