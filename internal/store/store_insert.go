package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Insert helpers cover data loading and test fixtures. Each returns the new
// row id.

func (s *Store) InsertParty(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO parties (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("insert party: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertPolitician(ctx context.Context, name, furigana string, partyID *int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO politicians (name, furigana, party_id) VALUES (?, ?, ?)",
		name, nullableString(furigana), nullableInt64(partyID))
	if err != nil {
		return 0, fmt.Errorf("insert politician: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertConference(ctx context.Context, governingBodyID int64, name, chamber string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO conferences (governing_body_id, name, chamber) VALUES (?, ?, ?)",
		governingBodyID, name, nullableString(chamber))
	if err != nil {
		return 0, fmt.Errorf("insert conference: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertConferenceMember(ctx context.Context, member ConferenceMember) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conference_members (conference_id, politician_id, role, start_date, end_date)
         VALUES (?, ?, ?, ?, ?)`,
		member.ConferenceID, member.PoliticianID, nullableString(member.Role),
		member.StartDate.Format(DateLayout), nullableDate(member.EndDate))
	if err != nil {
		return 0, fmt.Errorf("insert conference member: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertMeeting(ctx context.Context, conferenceID int64, name string, date *time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO meetings (conference_id, name, date) VALUES (?, ?, ?)",
		conferenceID, name, nullableDate(date))
	if err != nil {
		return 0, fmt.Errorf("insert meeting: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertMinutes(ctx context.Context, meetingID int64, roleNameMap map[string]string) (int64, error) {
	var encoded any
	if len(roleNameMap) > 0 {
		raw, err := json.Marshal(roleNameMap)
		if err != nil {
			return 0, fmt.Errorf("encode role name map: %w", err)
		}
		encoded = string(raw)
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO minutes (meeting_id, role_name_map) VALUES (?, ?)",
		meetingID, encoded)
	if err != nil {
		return 0, fmt.Errorf("insert minutes: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertConversation(ctx context.Context, minutesID, speakerID int64, sequence int, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (minutes_id, speaker_id, sequence, content) VALUES (?, ?, ?, ?)",
		minutesID, speakerID, sequence, content)
	if err != nil {
		return 0, fmt.Errorf("insert conversation: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertSpeaker(ctx context.Context, speaker *Speaker) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO speakers (name, furigana, type, political_party_name, position, is_politician,
             politician_id, matched_by_user_id, is_manually_verified, matching_confidence,
             matching_reason, skip_reason, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		speaker.Name,
		nullableString(speaker.Furigana),
		nullableString(speaker.Type),
		nullableString(speaker.PoliticalPartyName),
		nullableString(speaker.Position),
		boolToInt(speaker.IsPolitician),
		nullableInt64(speaker.PoliticianID),
		nullableString(speaker.MatchedByUserID),
		boolToInt(speaker.IsManuallyVerified),
		nullableFloat64(speaker.MatchingConfidence),
		nullableString(speaker.MatchingReason),
		nullableString(speaker.SkipReason),
		now, now)
	if err != nil {
		return 0, fmt.Errorf("insert speaker: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert speaker: last id: %w", err)
	}
	speaker.ID = id
	return id, nil
}

func (s *Store) InsertElection(ctx context.Context, election Election) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO elections (governing_body_id, chamber, term_number, election_date, election_type)
         VALUES (?, ?, ?, ?, ?)`,
		election.GoverningBodyID, election.Chamber, election.TermNumber,
		election.ElectionDate.Format(DateLayout), nullableString(election.ElectionType))
	if err != nil {
		return 0, fmt.Errorf("insert election: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertElectionMember(ctx context.Context, member ElectionMember) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO election_members (election_id, politician_id, result, votes, rank)
         VALUES (?, ?, ?, ?, ?)`,
		member.ElectionID, member.PoliticianID, member.Result,
		nullableInt64(member.Votes), nullableInt64(member.Rank))
	if err != nil {
		return 0, fmt.Errorf("insert election member: %w", err)
	}
	return res.LastInsertId()
}
