package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"polilink/internal/classify"
)

const speakerColumns = "id, name, furigana, type, political_party_name, position, is_politician, politician_id, matched_by_user_id, is_manually_verified, matching_confidence, matching_reason, skip_reason, created_at, updated_at"

func scanSpeaker(scanner interface{ Scan(dest ...any) error }) (*Speaker, error) {
	var (
		id              int64
		name            string
		furigana        sql.NullString
		speakerType     sql.NullString
		partyName       sql.NullString
		position        sql.NullString
		isPolitician    int64
		politicianID    sql.NullInt64
		matchedByUserID sql.NullString
		manuallyVerify  int64
		confidence      sql.NullFloat64
		reason          sql.NullString
		skipReason      sql.NullString
		createdRaw      string
		updatedRaw      string
	)

	if err := scanner.Scan(
		&id,
		&name,
		&furigana,
		&speakerType,
		&partyName,
		&position,
		&isPolitician,
		&politicianID,
		&matchedByUserID,
		&manuallyVerify,
		&confidence,
		&reason,
		&skipReason,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	speaker := &Speaker{
		ID:                 id,
		Name:               name,
		Furigana:           furigana.String,
		Type:               speakerType.String,
		PoliticalPartyName: partyName.String,
		Position:           position.String,
		IsPolitician:       isPolitician != 0,
		MatchedByUserID:    matchedByUserID.String,
		IsManuallyVerified: manuallyVerify != 0,
		MatchingReason:     reason.String,
		SkipReason:         skipReason.String,
		CreatedAt:          parseTimestamp(createdRaw),
		UpdatedAt:          parseTimestamp(updatedRaw),
	}
	if politicianID.Valid {
		value := politicianID.Int64
		speaker.PoliticianID = &value
	}
	if confidence.Valid {
		value := confidence.Float64
		speaker.MatchingConfidence = &value
	}
	return speaker, nil
}

// SpeakerByID fetches one speaker.
func (s *Store) SpeakerByID(ctx context.Context, id int64) (*Speaker, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+speakerColumns+" FROM speakers WHERE id = ?", id)
	speaker, err := scanSpeaker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: speaker %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query speaker %d: %w", id, err)
	}
	return speaker, nil
}

// SpeakersByIDs fetches the speakers for the given ids. Missing ids are
// silently absent from the result.
func (s *Store) SpeakersByIDs(ctx context.Context, ids []int64) ([]*Speaker, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+speakerColumns+" FROM speakers WHERE id IN ("+placeholders(len(ids))+") ORDER BY id",
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	var speakers []*Speaker
	for rows.Next() {
		speaker, err := scanSpeaker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		speakers = append(speakers, speaker)
	}
	return speakers, rows.Err()
}

// UpdateSpeaker persists the mutable matching fields of a speaker. The
// manual-verification guard is enforced here as well as in the orchestrator:
// a verified record is never overwritten by this call path unless the update
// itself is the manual action (force).
func (s *Store) UpdateSpeaker(ctx context.Context, speaker *Speaker) error {
	return s.updateSpeaker(ctx, speaker, false)
}

// UpdateSpeakerManual persists a human correction, which may overwrite a
// verified record.
func (s *Store) UpdateSpeakerManual(ctx context.Context, speaker *Speaker) error {
	return s.updateSpeaker(ctx, speaker, true)
}

func (s *Store) updateSpeaker(ctx context.Context, speaker *Speaker, manual bool) error {
	if speaker == nil || speaker.ID == 0 {
		return errors.New("update speaker: missing id")
	}
	query := `UPDATE speakers SET
        name = ?, furigana = ?, type = ?, political_party_name = ?, position = ?,
        is_politician = ?, politician_id = ?, matched_by_user_id = ?,
        is_manually_verified = ?, matching_confidence = ?, matching_reason = ?,
        skip_reason = ?, updated_at = ?
        WHERE id = ?`
	args := []any{
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
		time.Now().UTC().Format(time.RFC3339Nano),
	}
	if !manual {
		query = strings.Replace(query, "WHERE id = ?", "WHERE id = ? AND is_manually_verified = 0", 1)
	}
	args = append(args, speaker.ID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update speaker %d: %w", speaker.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update speaker %d: rows affected: %w", speaker.ID, err)
	}
	if affected == 0 {
		if !manual {
			return fmt.Errorf("update speaker %d: record is manually verified or missing", speaker.ID)
		}
		return fmt.Errorf("%w: speaker %d", ErrNotFound, speaker.ID)
	}
	return nil
}

// ListPendingReview returns speakers matched inside the given confidence band
// that have not yet been manually verified.
func (s *Store) ListPendingReview(ctx context.Context, minConfidence, maxConfidence float64) ([]*Speaker, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+speakerColumns+` FROM speakers
         WHERE politician_id IS NOT NULL
           AND is_manually_verified = 0
           AND matching_confidence >= ?
           AND matching_confidence < ?
         ORDER BY matching_confidence DESC, id`,
		minConfidence, maxConfidence)
	if err != nil {
		return nil, fmt.Errorf("query pending review: %w", err)
	}
	defer rows.Close()

	var speakers []*Speaker
	for rows.Next() {
		speaker, err := scanSpeaker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		speakers = append(speakers, speaker)
	}
	return speakers, rows.Err()
}

// ClassifyCounts summarizes a bulk reclassification pass.
type ClassifyCounts struct {
	UpdatedToPolitician int
	KeptNonPolitician   int
}

// BulkClassifyNonPoliticians resets the politician flag across all unlinked,
// unverified speakers and then re-marks the structurally non-political names
// per category, recording each category's skip reason. Linked and manually
// verified records are never touched.
func (s *Store) BulkClassifyNonPoliticians(ctx context.Context, categories []classify.Category) (ClassifyCounts, error) {
	var counts ClassifyCounts

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin classify tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := tx.ExecContext(ctx,
		`UPDATE speakers SET is_politician = 1, skip_reason = NULL, updated_at = ?
         WHERE is_manually_verified = 0 AND politician_id IS NULL`, now)
	if err != nil {
		return counts, fmt.Errorf("reset politician flags: %w", err)
	}
	reset, err := res.RowsAffected()
	if err != nil {
		return counts, fmt.Errorf("reset politician flags: rows affected: %w", err)
	}

	kept := int64(0)
	for _, category := range categories {
		clauses := make([]string, 0, 2)
		args := []any{string(category.Reason), now}

		if len(category.Exact) > 0 {
			names := make([]any, 0, len(category.Exact))
			for name := range category.Exact {
				names = append(names, name)
			}
			clauses = append(clauses, "TRIM(name) IN ("+placeholders(len(names))+")")
			args = append(args, names...)
		}
		for _, prefix := range category.Prefixes {
			clauses = append(clauses, "TRIM(name) LIKE ? ESCAPE '\\'")
			args = append(args, escapeLike(prefix)+"%")
		}
		if len(clauses) == 0 {
			continue
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE speakers SET is_politician = 0, skip_reason = ?, updated_at = ?
             WHERE is_manually_verified = 0 AND politician_id IS NULL
               AND (`+strings.Join(clauses, " OR ")+`)`, args...)
		if err != nil {
			return counts, fmt.Errorf("classify category %s: %w", category.Reason, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return counts, fmt.Errorf("classify category %s: rows affected: %w", category.Reason, err)
		}
		kept += affected
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit classify tx: %w", err)
	}

	counts.UpdatedToPolitician = int(reset - kept)
	counts.KeptNonPolitician = int(kept)
	return counts, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
