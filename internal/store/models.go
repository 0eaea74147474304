package store

import (
	"strconv"
	"time"
)

// DateLayout is the canonical storage format for calendar dates.
const DateLayout = "2006-01-02"

// Chamber names as they appear in the source records.
const (
	ChamberRepresentatives = "衆議院"
	ChamberCouncillors     = "参議院"
)

// Speaker is a transcript-derived record linking a raw name to a politician.
type Speaker struct {
	ID                 int64
	Name               string
	Furigana           string
	Type               string
	PoliticalPartyName string
	Position           string
	IsPolitician       bool
	PoliticianID       *int64
	MatchedByUserID    string
	IsManuallyVerified bool
	MatchingConfidence *float64
	MatchingReason     string
	SkipReason         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CanBeUpdatedByMatcher reports whether an automated pass may mutate this
// record. A human-verified link is never overridden.
func (s *Speaker) CanBeUpdatedByMatcher() bool {
	return !s.IsManuallyVerified
}

// Party is a political party referenced by politicians.
type Party struct {
	ID   int64
	Name string
}

// Politician is a canonical politician record.
type Politician struct {
	ID       int64
	Name     string
	Furigana string
	PartyID  *int64
	// PartyName is populated by queries that join the parties table.
	PartyName string
}

// Conference is a committee, chamber, or plenary body that holds meetings.
type Conference struct {
	ID              int64
	GoverningBodyID int64
	Name            string
	Chamber         string
}

// PlenaryName is the conference name of a chamber's plenary session, the
// roster fallback for committees with no membership records.
const PlenaryName = "本会議"

// ConferenceMember records one politician's membership interval in a
// conference.
type ConferenceMember struct {
	ID           int64
	ConferenceID int64
	PoliticianID int64
	Role         string
	StartDate    time.Time
	EndDate      *time.Time
}

/// Meeting is one sitting of a conference. Date is nullable: very old records
// sometimes lack one, which blocks candidate scoping.
type Meeting struct {
	ID           int64
	ConferenceID int64
	Name         string
	Date         *time.Time
}

// Minutes is the transcript container for a meeting. RoleNameMap translates
// role labels appearing as speaker names to the real name holding that role
// at this meeting.
type Minutes struct {
	ID          int64
	MeetingID   int64
	RoleNameMap map[string]string
}

// Election is one held election of a governing body.
type Election struct {
	ID              int64
	GoverningBodyID int64
	Chamber         string
	TermNumber      int
	ElectionDate    time.Time
	ElectionType    string
}

// IsUpperHouse reports whether this election is for the house with staggered
// half-renewal terms.
func (e Election) IsUpperHouse() bool {
	return e.Chamber == ChamberCouncillors
}

// TermLabel renders the election's term for report breakdowns.
func (e Election) TermLabel() string {
	return "第" + strconv.Itoa(e.TermNumber) + "回"
}

// Election result values as recorded in the source data.
const (
	ResultElected             = "当選"
	ResultLost                = "落選"
	ResultRunnerUp            = "次点"
	ResultElevated            = "繰上当選"
	ResultUncontested         = "無投票当選"
	ResultProportional        = "比例当選"
	ResultProportionalRevival = "比例復活"
)

var electedResults = map[string]struct{}{
	ResultElected:             {},
	ResultElevated:            {},
	ResultUncontested:         {},
	ResultProportional:        {},
	ResultProportionalRevival: {},
}

// ElectionMember records one politician's result in an election.
type ElectionMember struct {
	ID           int64
	ElectionID   int64
	PoliticianID int64
	Result       string
	Votes        *int64
	Rank         *int64
}

// IsElected reports whether the result represents a won seat.
func (m ElectionMember) IsElected() bool {
	_, ok := electedResults[m.Result]
	return ok
}

// ElectedResults lists every result value that represents a won seat.
func ElectedResults() []string {
	return []string{
		ResultElected,
		ResultElevated,
		ResultUncontested,
		ResultProportional,
		ResultProportionalRevival,
	}
}
