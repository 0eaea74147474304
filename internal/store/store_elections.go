package store

import (
	"context"
	"fmt"
	"time"
)

// ElectionsByChamber returns every election held for a chamber of the
// governing body, oldest first. Candidate scoping and the bulk term walk both
// consume this ordering.
func (s *Store) ElectionsByChamber(ctx context.Context, governingBodyID int64, chamber string) ([]*Election, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, governing_body_id, chamber, term_number, election_date, election_type
         FROM elections
         WHERE governing_body_id = ? AND chamber = ?
         ORDER BY election_date, term_number`,
		governingBodyID, chamber)
	if err != nil {
		return nil, fmt.Errorf("query elections: %w", err)
	}
	defer rows.Close()

	var elections []*Election
	for rows.Next() {
		var (
			election Election
			dateRaw  string
		)
		if err := rows.Scan(&election.ID, &election.GoverningBodyID, &election.Chamber,
			&election.TermNumber, &dateRaw, &election.ElectionType); err != nil {
			return nil, fmt.Errorf("scan election: %w", err)
		}
		date, err := time.Parse(DateLayout, dateRaw)
		if err != nil {
			return nil, fmt.Errorf("parse election date %q: %w", dateRaw, err)
		}
		election.ElectionDate = date
		elections = append(elections, &election)
	}
	return elections, rows.Err()
}

// ElectedPoliticianIDs returns the politicians who won a seat in the given
// elections. Pass one election id for the lower house, or the two ids of a
// staggered upper-house pair.
func (s *Store) ElectedPoliticianIDs(ctx context.Context, electionIDs []int64) ([]int64, error) {
	if len(electionIDs) == 0 {
		return nil, nil
	}
	results := make([]any, 0, len(ElectedResults()))
	for _, result := range ElectedResults() {
		results = append(results, result)
	}
	args := append(int64Args(electionIDs), results...)
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT politician_id FROM election_members
         WHERE election_id IN (`+placeholders(len(electionIDs))+`)
           AND result IN (`+placeholders(len(results))+`)
         ORDER BY politician_id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query elected politicians: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}
