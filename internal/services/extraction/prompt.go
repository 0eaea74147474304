package extraction

import (
	"encoding/json"
	"strings"
)

// matchPrompt captures the instructions sent to the extraction service when
// resolving a transcript speaker against a bounded candidate list. Keep
// updates centralized here so it is easy to tweak without hunting through
// call sites.
const matchPrompt = `You resolve a speaker name from Japanese parliamentary minutes to a politician from a fixed candidate list.

Rules:

- You may only select a politician from the provided candidates; never invent one.
- Account for honorifics, surname-only forms, old kanji variants, and party context.
- If no candidate is a plausible match, respond with matched=false.
- Confidence is your certainty in the selection, between 0.0 and 1.0.

You must respond ONLY with a JSON object like:
{"matched": true, "politician_id": 12, "politician_name": "岸田文雄", "confidence": 0.9, "reason": "short explanation"}`

type promptCandidate struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Furigana  string `json:"furigana,omitempty"`
	PartyName string `json:"party_name,omitempty"`
}

type promptPayload struct {
	SpeakerName  string            `json:"speaker_name"`
	SpeakerType  string            `json:"speaker_type,omitempty"`
	SpeakerParty string            `json:"speaker_party,omitempty"`
	Candidates   []promptCandidate `json:"candidates"`
}

func buildUserPrompt(resolvedName string, req Request) (string, error) {
	payload := promptPayload{
		SpeakerName:  resolvedName,
		SpeakerType:  strings.TrimSpace(req.SpeakerType),
		SpeakerParty: strings.TrimSpace(req.SpeakerParty),
		Candidates:   make([]promptCandidate, 0, len(req.Candidates)),
	}
	for _, candidate := range req.Candidates {
		payload.Candidates = append(payload.Candidates, promptCandidate{
			ID:        candidate.PoliticianID,
			Name:      candidate.Name,
			Furigana:  candidate.Furigana,
			PartyName: candidate.PartyName,
		})
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
