package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"polilink/internal/match"
	"polilink/internal/services"
)

func completionBody(t *testing.T, content string) string {
	t.Helper()
	body := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal completion: %v", err)
	}
	return string(encoded)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		Config{APIKey: "key", BaseURL: server.URL, Model: "test-model"},
		WithSleeper(func(time.Duration) {}),
	)
}

var testCandidates = []match.Candidate{
	{PoliticianID: 1, Name: "岸田文雄", PartyName: "自由民主党"},
	{PoliticianID: 2, Name: "石破茂"},
}

func TestFindMatchParsesVerdict(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing auth header")
		}
		w.Write([]byte(completionBody(t, `{"matched":true,"politician_id":1,"politician_name":"岸田文雄","confidence":0.85,"reason":"surname with party context"}`)))
	})

	verdict, err := client.FindMatch(context.Background(), Request{
		SpeakerName: "岸田",
		Candidates:  testCandidates,
	})
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if !verdict.Matched || verdict.PoliticianID != 1 || verdict.Confidence != 0.85 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestFindMatchRejectsUnknownPolitician(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(t, `{"matched":true,"politician_id":99,"confidence":0.9}`)))
	})

	_, err := client.FindMatch(context.Background(), Request{
		SpeakerName: "岸田",
		Candidates:  testCandidates,
	})
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestFindMatchResolvesRoleLabel(t *testing.T) {
	var gotPrompt promptPayload
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if err := json.Unmarshal([]byte(req.Messages[1].Content), &gotPrompt); err != nil {
			t.Errorf("decode prompt: %v", err)
		}
		w.Write([]byte(completionBody(t, `{"matched":true,"politician_id":1,"politician_name":"岸田文雄","confidence":0.95,"reason":"chair mapping"}`)))
	})

	verdict, err := client.FindMatch(context.Background(), Request{
		SpeakerName: "議長",
		Candidates:  testCandidates,
		RoleNameMap: map[string]string{"議長": "岸田文雄"},
	})
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if !verdict.Matched || verdict.PoliticianID != 1 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
	if gotPrompt.SpeakerName != "岸田文雄" {
		t.Fatalf("role label not resolved in prompt: %q", gotPrompt.SpeakerName)
	}
}

func TestFindMatchUnmappedRoleLabelSkipsService(t *testing.T) {
	called := false
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	verdict, err := client.FindMatch(context.Background(), Request{
		SpeakerName: "委員長",
		Candidates:  testCandidates,
	})
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if verdict.Matched {
		t.Fatalf("unmapped role produced a match: %+v", verdict)
	}
	if called {
		t.Fatal("unmapped role label reached the extraction service")
	}
}

func TestFindMatchRetriesServerErrors(t *testing.T) {
	attempts := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(completionBody(t, `{"matched":false,"confidence":0.0,"reason":"no plausible candidate"}`)))
	})

	verdict, err := client.FindMatch(context.Background(), Request{
		SpeakerName: "誰か",
		Candidates:  testCandidates,
	})
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if verdict.Matched {
		t.Fatalf("unexpected match: %+v", verdict)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestFindMatchToleratesFencedJSON(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(t, "```json\n{\"matched\":true,\"politician_id\":2,\"politician_name\":\"石破茂\",\"confidence\":0.8,\"reason\":\"x\"}\n```")))
	})

	verdict, err := client.FindMatch(context.Background(), Request{
		SpeakerName: "石破",
		Candidates:  testCandidates,
	})
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if !verdict.Matched || verdict.PoliticianID != 2 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestFindMatchNoCandidates(t *testing.T) {
	client := NewClient(Config{APIKey: "key", BaseURL: "http://unused"})
	verdict, err := client.FindMatch(context.Background(), Request{SpeakerName: "岸田"})
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if verdict.Matched {
		t.Fatalf("match without candidates: %+v", verdict)
	}
}

func TestFindMatchRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"})
	_, err := client.FindMatch(context.Background(), Request{SpeakerName: "岸田", Candidates: testCandidates})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestDecodeMatchClampsConfidence(t *testing.T) {
	verdict, err := decodeMatch(`{"matched":true,"politician_id":1,"confidence":1.7}`)
	if err != nil {
		t.Fatalf("decodeMatch: %v", err)
	}
	if verdict.Confidence != 1.0 {
		t.Fatalf("confidence not clamped: %v", verdict.Confidence)
	}
	verdict, err = decodeMatch(`{"matched":false,"politician_id":5,"politician_name":"x","confidence":-0.2}`)
	if err != nil {
		t.Fatalf("decodeMatch: %v", err)
	}
	if verdict.Confidence != 0 || verdict.PoliticianID != 0 || verdict.PoliticianName != "" {
		t.Fatalf("unmatched verdict not cleared: %+v", verdict)
	}
}
