package candidates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polilink/internal/match"
	"polilink/internal/store"
)

// Source tags where a candidate set came from, for logging and reports.
type Source string

const (
	SourceRoster        Source = "roster"
	SourcePlenaryRoster Source = "plenary_roster"
	SourceElection      Source = "election"
	SourceElectionPair  Source = "election_pair"
	SourceUnrestricted  Source = "unrestricted"
	SourceNone          Source = "none"
)

// Set is the materialized candidate pool for one meeting.
type Set struct {
	Source     Source
	Candidates []match.Candidate
}

// Repository is the store surface the builder needs.
type Repository interface {
	ConferenceByID(ctx context.Context, id int64) (*store.Conference, error)
	ConferenceByName(ctx context.Context, governingBodyID int64, name string) (*store.Conference, error)
	MemberPoliticianIDsAt(ctx context.Context, conferenceID int64, date time.Time) ([]int64, error)
	ElectionsByChamber(ctx context.Context, governingBodyID int64, chamber string) ([]*store.Election, error)
	ElectedPoliticianIDs(ctx context.Context, electionIDs []int64) ([]int64, error)
	PoliticiansByIDs(ctx context.Context, ids []int64) ([]*store.Politician, error)
	AllPoliticians(ctx context.Context) ([]*store.Politician, error)
}

// Builder assembles candidate sets. Safe for reuse across meetings; it holds
// no per-meeting state.
type Builder struct {
	repo Repository
}

func NewBuilder(repo Repository) *Builder {
	return &Builder{repo: repo}
}

type strategy struct {
	name  string
	build func(ctx context.Context, conf *store.Conference, date time.Time) ([]int64, Source, error)
}

// Build runs the full sourcing cascade for the conference at the meeting
// date: roster, plenary roster, election winners, unrestricted pool.
func (b *Builder) Build(ctx context.Context, conferenceID int64, date time.Time) (*Set, error) {
	return b.run(ctx, conferenceID, date, []strategy{
		{name: "roster", build: b.rosterCandidates},
		{name: "election", build: b.electionCandidates},
	})
}

// BuildBroad skips the roster strategies and sources straight from election
// winners. Used by era-spanning bulk runs where membership records are too
// sparse to trust.
func (b *Builder) BuildBroad(ctx context.Context, conferenceID int64, date time.Time) (*Set, error) {
	return b.run(ctx, conferenceID, date, []strategy{
		{name: "election", build: b.electionCandidates},
	})
}

func (b *Builder) run(ctx context.Context, conferenceID int64, date time.Time, strategies []strategy) (*Set, error) {
	conf, err := b.repo.ConferenceByID(ctx, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("resolve conference %d: %w", conferenceID, err)
	}

	for _, strat := range strategies {
		ids, source, err := strat.build(ctx, conf, date)
		if err != nil {
			return nil, fmt.Errorf("%s strategy: %w", strat.name, err)
		}
		if len(ids) == 0 {
			continue
		}
		set, err := b.materialize(ctx, ids, source)
		if err != nil {
			return nil, err
		}
		return set, nil
	}

	// Last resort: the unrestricted pool, for eras with no roster or
	// election data at all.
	politicians, err := b.repo.AllPoliticians(ctx)
	if err != nil {
		return nil, fmt.Errorf("unrestricted strategy: %w", err)
	}
	return &Set{Source: SourceUnrestricted, Candidates: toCandidates(politicians)}, nil
}

func (b *Builder) rosterCandidates(ctx context.Context, conf *store.Conference, date time.Time) ([]int64, Source, error) {
	ids, err := b.repo.MemberPoliticianIDsAt(ctx, conf.ID, date)
	if err != nil {
		return nil, SourceNone, err
	}
	if len(ids) > 0 {
		return ids, SourceRoster, nil
	}

	// Committees without membership records borrow the body's plenary
	// roster. The plenary itself must not recurse into this branch.
	if conf.Name == store.PlenaryName {
		return nil, SourceNone, nil
	}
	plenary, err := b.repo.ConferenceByName(ctx, conf.GoverningBodyID, store.PlenaryName)
	if errors.Is(err, store.ErrNotFound) {
		return nil, SourceNone, nil
	}
	if err != nil {
		return nil, SourceNone, err
	}
	ids, err = b.repo.MemberPoliticianIDsAt(ctx, plenary.ID, date)
	if err != nil {
		return nil, SourceNone, err
	}
	if len(ids) == 0 {
		return nil, SourceNone, nil
	}
	return ids, SourcePlenaryRoster, nil
}

func (b *Builder) electionCandidates(ctx context.Context, conf *store.Conference, date time.Time) ([]int64, Source, error) {
	if conf.Chamber == "" {
		return nil, SourceNone, nil
	}
	elections, err := b.repo.ElectionsByChamber(ctx, conf.GoverningBodyID, conf.Chamber)
	if err != nil {
		return nil, SourceNone, err
	}
	active := ActiveElectionsAt(elections, date)
	if len(active) == 0 {
		return nil, SourceNone, nil
	}
	electionIDs := make([]int64, len(active))
	for i, election := range active {
		electionIDs[i] = election.ID
	}
	ids, err := b.repo.ElectedPoliticianIDs(ctx, electionIDs)
	if err != nil {
		return nil, SourceNone, err
	}
	if len(ids) == 0 {
		return nil, SourceNone, nil
	}
	source := SourceElection
	if len(active) > 1 {
		source = SourceElectionPair
	}
	return ids, source, nil
}

func (b *Builder) materialize(ctx context.Context, ids []int64, source Source) (*Set, error) {
	politicians, err := b.repo.PoliticiansByIDs(ctx, dedup(ids))
	if err != nil {
		return nil, fmt.Errorf("materialize candidates: %w", err)
	}
	return &Set{Source: source, Candidates: toCandidates(politicians)}, nil
}

// ActiveElectionsAt selects the elections whose winners were seated on the
// given date: the most recent election held at or before it, plus the one
// before that for the half-renewing upper house. Elections must be sorted
// oldest first, as ElectionsByChamber returns them.
func ActiveElectionsAt(elections []*store.Election, date time.Time) []*store.Election {
	latest := -1
	for i, election := range elections {
		if !election.ElectionDate.After(date) {
			latest = i
		}
	}
	if latest < 0 {
		return nil
	}
	active := []*store.Election{elections[latest]}
	if elections[latest].IsUpperHouse() && latest > 0 {
		active = append(active, elections[latest-1])
	}
	return active
}

func dedup(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toCandidates(politicians []*store.Politician) []match.Candidate {
	candidates := make([]match.Candidate, 0, len(politicians))
	seen := make(map[int64]struct{}, len(politicians))
	for _, p := range politicians {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		candidates = append(candidates, match.Candidate{
			PoliticianID: p.ID,
			Name:         p.Name,
			Furigana:     p.Furigana,
			PartyName:    p.PartyName,
		})
	}
	return candidates
}
