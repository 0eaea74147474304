package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"polilink/internal/nameutil"
)

const politicianColumns = `p.id, p.name, p.furigana, p.party_id, COALESCE(pa.name, '')
        FROM politicians p LEFT JOIN parties pa ON pa.id = p.party_id`

func scanPolitician(scanner interface{ Scan(dest ...any) error }) (*Politician, error) {
	var (
		id        int64
		name      string
		furigana  sql.NullString
		partyID   sql.NullInt64
		partyName string
	)
	if err := scanner.Scan(&id, &name, &furigana, &partyID, &partyName); err != nil {
		return nil, err
	}
	politician := &Politician{
		ID:        id,
		Name:      name,
		Furigana:  furigana.String,
		PartyName: partyName,
	}
	if partyID.Valid {
		value := partyID.Int64
		politician.PartyID = &value
	}
	return politician, nil
}

// PoliticianByID fetches one politician with its party name resolved.
func (s *Store) PoliticianByID(ctx context.Context, id int64) (*Politician, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+politicianColumns+" WHERE p.id = ?", id)
	politician, err := scanPolitician(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: politician %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query politician %d: %w", id, err)
	}
	return politician, nil
}

// PoliticiansByIDs fetches the politicians for the given ids, party names
// resolved. Missing ids are silently absent from the result.
func (s *Store) PoliticiansByIDs(ctx context.Context, ids []int64) ([]*Politician, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+politicianColumns+" WHERE p.id IN ("+placeholders(len(ids))+") ORDER BY p.id",
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query politicians: %w", err)
	}
	defer rows.Close()
	return collectPoliticians(rows)
}

// AllPoliticians returns every politician, the unrestricted candidate pool
// used when no scoped source yields candidates.
func (s *Store) AllPoliticians(ctx context.Context) ([]*Politician, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+politicianColumns+" ORDER BY p.id")
	if err != nil {
		return nil, fmt.Errorf("query all politicians: %w", err)
	}
	defer rows.Close()
	return collectPoliticians(rows)
}

func collectPoliticians(rows *sql.Rows) ([]*Politician, error) {
	var politicians []*Politician
	for rows.Next() {
		politician, err := scanPolitician(rows)
		if err != nil {
			return nil, fmt.Errorf("scan politician: %w", err)
		}
		politicians = append(politicians, politician)
	}
	return politicians, rows.Err()
}

// SearchByNormalizedName returns the politicians whose display name
// normalizes to the same form as name. Normalization happens in Go since the
// folding rules are not expressible in SQL.
func (s *Store) SearchByNormalizedName(ctx context.Context, name string) ([]*Politician, error) {
	target := nameutil.Normalize(name)
	if target == "" {
		return nil, nil
	}
	all, err := s.AllPoliticians(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*Politician
	for _, politician := range all {
		if nameutil.Normalize(politician.Name) == target {
			matches = append(matches, politician)
		}
	}
	return matches, nil
}

// PartyByID fetches one party.
func (s *Store) PartyByID(ctx context.Context, id int64) (*Party, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name FROM parties WHERE id = ?", id)
	var party Party
	err := row.Scan(&party.ID, &party.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: party %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query party %d: %w", id, err)
	}
	return &party, nil
}
