package match

import "polilink/internal/nameutil"

// Surname length bounds in runes. Japanese surnames run one to four
// characters; anything longer is a full name and never a surname-only form.
const (
	minSurnameLen = 1
	maxSurnameLen = 4
)

// Match runs the tier cascade for one speaker against a candidate set. Tiers
// are tried strictly in order and the first hit wins; tiers never blend. A
// tie within a tier yields no match with the Ambiguous flag set.
func Match(speakerID int64, speakerName, speakerReading string, candidates []Candidate) Result {
	normalized := nameutil.Normalize(speakerName)
	noMatch := Result{
		SpeakerID:   speakerID,
		SpeakerName: speakerName,
		Method:      MethodNone,
	}
	if normalized == "" || len(candidates) == 0 {
		return noMatch
	}

	if result, ok := matchExact(noMatch, normalized, candidates); ok {
		return result
	}
	if reading := nameutil.NormalizeKana(speakerReading); reading != "" {
		if result, ok := matchYomi(noMatch, reading, candidates); ok {
			return result
		}
	}
	if result, ok := matchSurname(noMatch, normalized, candidates); ok {
		return result
	}
	return noMatch
}

func matchExact(base Result, normalized string, candidates []Candidate) (Result, bool) {
	hits := make([]Candidate, 0, 1)
	for _, candidate := range candidates {
		if nameutil.Normalize(candidate.Name) == normalized {
			hits = append(hits, candidate)
		}
	}
	return resolveTier(base, hits, ConfidenceExactName, MethodExactName)
}

func matchYomi(base Result, reading string, candidates []Candidate) (Result, bool) {
	hits := make([]Candidate, 0, 1)
	for _, candidate := range candidates {
		// Candidates without a recorded reading are simply not eligible.
		if candidate.Furigana == "" {
			continue
		}
		if nameutil.NormalizeKana(candidate.Furigana) == reading {
			hits = append(hits, candidate)
		}
	}
	return resolveTier(base, hits, ConfidenceYomi, MethodYomi)
}

func matchSurname(base Result, normalized string, candidates []Candidate) (Result, bool) {
	runes := []rune(normalized)
	if len(runes) < minSurnameLen || len(runes) > maxSurnameLen {
		return base, false
	}
	hits := make([]Candidate, 0, 1)
	for _, candidate := range candidates {
		candidateName := nameutil.Normalize(candidate.Name)
		if candidateName == "" {
			continue
		}
		candidateRunes := []rune(candidateName)
		if len(runes) >= len(candidateRunes) {
			continue
		}
		if string(candidateRunes[:len(runes)]) == normalized {
			hits = append(hits, candidate)
		}
	}
	return resolveTier(base, hits, ConfidenceSurnameOnly, MethodSurnameOnly)
}

// resolveTier applies the uniqueness rule shared by all tiers: one hit is a
// match, two or more is an unresolved homonym that must propagate to the
// caller instead of silently picking a winner.
func resolveTier(base Result, hits []Candidate, confidence float64, method Method) (Result, bool) {
	switch len(hits) {
	case 0:
		return base, false
	case 1:
		base.PoliticianID = hits[0].PoliticianID
		base.PoliticianName = hits[0].Name
		base.Confidence = confidence
		base.Method = method
		return base, true
	default:
		base.Ambiguous = true
		base.AmbiguousCount = len(hits)
		return base, true
	}
}
