package match

// Method identifies which tier produced a match.
type Method string

const (
	MethodExactName   Method = "EXACT_NAME"
	MethodYomi        Method = "YOMI"
	MethodSurnameOnly Method = "SURNAME_ONLY"
	MethodFallback    Method = "FALLBACK"
	MethodNone        Method = "NONE"
)

// Tier confidences. The cascade order is also a strict confidence ordering;
// no other values are produced by the engine.
const (
	ConfidenceExactName   = 1.0
	ConfidenceYomi        = 0.9
	ConfidenceSurnameOnly = 0.8
)

// Candidate is one politician a speaker may resolve to. Candidates exist only
// for the duration of a resolution pass and are never persisted.
type Candidate struct {
	PoliticianID int64
	Name         string
	Furigana     string
	PartyName    string
}

// Result is the outcome of matching one speaker against a candidate set.
// Method MethodNone implies zero confidence and no politician.
type Result struct {
	SpeakerID      int64
	SpeakerName    string
	PoliticianID   int64
	PoliticianName string
	Confidence     float64
	Method         Method

	// Ambiguous is set when two or more candidates tied within a tier and
	// the engine refused to choose. AmbiguousCount carries the tie size.
	Ambiguous      bool
	AmbiguousCount int
}

// Matched reports whether the result carries a politician link.
func (r Result) Matched() bool {
	return r.Method != MethodNone && r.PoliticianID != 0
}
