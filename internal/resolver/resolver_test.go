package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"polilink/internal/services/extraction"
	"polilink/internal/store"
	"polilink/internal/testsupport"
)

type stubFallback struct {
	verdicts map[string]extraction.Match
	err      error
	calls    []string
}

func (s *stubFallback) Name() string { return "stub" }

func (s *stubFallback) FindMatch(_ context.Context, req extraction.Request) (extraction.Match, error) {
	s.calls = append(s.calls, req.SpeakerName)
	if s.err != nil {
		return extraction.Match{}, s.err
	}
	return s.verdicts[req.SpeakerName], nil
}

type fixture struct {
	store     *store.Store
	meetingID int64
	minutesID int64
	seq       int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	ctx := context.Background()
	confID, err := st.InsertConference(ctx, 1, "予算委員会", store.ChamberRepresentatives)
	if err != nil {
		t.Fatalf("InsertConference: %v", err)
	}
	meetingDate := day(t, "2024-02-05")
	meetingID, err := st.InsertMeeting(ctx, confID, "第5号", &meetingDate)
	if err != nil {
		t.Fatalf("InsertMeeting: %v", err)
	}
	minutesID, err := st.InsertMinutes(ctx, meetingID, map[string]string{"委員長": "高見沢清隆"})
	if err != nil {
		t.Fatalf("InsertMinutes: %v", err)
	}

	f := &fixture{store: st, meetingID: meetingID, minutesID: minutesID}

	// Committee roster: three members, two of them sharing the surname 田中.
	politicians := []struct {
		name     string
		furigana string
	}{
		{"岸田文雄", "きしだふみお"},
		{"田中太郎", "たなかたろう"},
		{"田中花子", "たなかはなこ"},
		{"高見沢清隆", "たかみさわきよたか"},
	}
	for _, p := range politicians {
		id, err := st.InsertPolitician(ctx, p.name, p.furigana, nil)
		if err != nil {
			t.Fatalf("InsertPolitician: %v", err)
		}
		member := store.ConferenceMember{ConferenceID: confID, PoliticianID: id, StartDate: day(t, "2023-01-01")}
		if _, err := st.InsertConferenceMember(ctx, member); err != nil {
			t.Fatalf("InsertConferenceMember: %v", err)
		}
	}
	return f
}

func (f *fixture) addSpeaker(t *testing.T, speaker *store.Speaker) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := f.store.InsertSpeaker(ctx, speaker)
	if err != nil {
		t.Fatalf("InsertSpeaker(%s): %v", speaker.Name, err)
	}
	f.seq++
	if _, err := f.store.InsertConversation(ctx, f.minutesID, id, f.seq, "発言"); err != nil {
		t.Fatalf("InsertConversation: %v", err)
	}
	return id
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(store.DateLayout, value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func defaultRequest(meetingID int64) MeetingRequest {
	return MeetingRequest{MeetingID: meetingID, AutoThreshold: 0.9, ReviewThreshold: 0.7}
}

func TestRunMeetingNotFound(t *testing.T) {
	f := newFixture(t)
	r := New(f.store, nil, nil)

	report, err := r.Run(context.Background(), defaultRequest(999))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success {
		t.Error("report succeeded for a missing meeting")
	}
	if report.Message == "" {
		t.Error("failure report carries no message")
	}
}

func TestRunMeetingWithoutDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	confID, _ := f.store.InsertConference(ctx, 1, "古い委員会", store.ChamberRepresentatives)
	meetingID, err := f.store.InsertMeeting(ctx, confID, "日付なし", nil)
	if err != nil {
		t.Fatalf("InsertMeeting: %v", err)
	}

	report, err := New(f.store, nil, nil).Run(ctx, defaultRequest(meetingID))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success {
		t.Error("report succeeded for an undated meeting")
	}
}

func TestRunResolvesSpeakers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exact := f.addSpeaker(t, &store.Speaker{Name: "岸田文雄君"})
	yomi := f.addSpeaker(t, &store.Speaker{Name: "たかみさわ清隆", Furigana: "タカミサワキヨタカ"})
	nonPol := f.addSpeaker(t, &store.Speaker{Name: "政府参考人"})
	homonym := f.addSpeaker(t, &store.Speaker{Name: "田中"})
	linked := int64(1)
	skipped := f.addSpeaker(t, &store.Speaker{Name: "既存", PoliticianID: &linked, IsPolitician: true})

	report, err := New(f.store, nil, nil).Run(ctx, defaultRequest(f.meetingID))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Success {
		t.Fatalf("report failed: %s", report.Message)
	}
	if report.TotalSpeakers != 5 {
		t.Errorf("total = %d, want 5", report.TotalSpeakers)
	}
	if report.AutoMatched != 2 {
		t.Errorf("auto matched = %d, want exact and yomi", report.AutoMatched)
	}
	if report.NonPoliticians != 1 || report.Skipped != 1 || report.Pending != 1 {
		t.Errorf("non-politicians=%d skipped=%d pending=%d, want 1/1/1",
			report.NonPoliticians, report.Skipped, report.Pending)
	}

	got, err := f.store.SpeakerByID(ctx, exact)
	if err != nil {
		t.Fatalf("SpeakerByID: %v", err)
	}
	if got.PoliticianID == nil || got.MatchingConfidence == nil || *got.MatchingConfidence != 1.0 {
		t.Errorf("exact speaker not auto-linked: %+v", got)
	}
	if got.MatchingReason != "EXACT_NAME" {
		t.Errorf("exact reason = %q", got.MatchingReason)
	}

	got, _ = f.store.SpeakerByID(ctx, yomi)
	if got.MatchingConfidence == nil || *got.MatchingConfidence != 0.9 {
		t.Errorf("yomi speaker confidence = %v, want 0.9", got.MatchingConfidence)
	}

	got, _ = f.store.SpeakerByID(ctx, nonPol)
	if got.IsPolitician || got.SkipReason != "government_official" {
		t.Errorf("non-politician speaker: %+v", got)
	}

	got, _ = f.store.SpeakerByID(ctx, homonym)
	if got.PoliticianID != nil {
		t.Error("homonym surname auto-resolved, want none")
	}
	if got.SkipReason != "homonym" {
		t.Errorf("homonym skip reason = %q", got.SkipReason)
	}

	got, _ = f.store.SpeakerByID(ctx, skipped)
	if got.Name != "既存" || *got.PoliticianID != linked {
		t.Errorf("already-linked speaker mutated: %+v", got)
	}
}

func TestRunSurnameReviewBand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addSpeaker(t, &store.Speaker{Name: "岸田"})

	report, err := New(f.store, nil, nil).Run(ctx, defaultRequest(f.meetingID))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ReviewMatched != 1 {
		t.Fatalf("review matched = %d, want 1 surname hit", report.ReviewMatched)
	}
	got, _ := f.store.SpeakerByID(ctx, id)
	if got.MatchingConfidence == nil || *got.MatchingConfidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", got.MatchingConfidence)
	}
	if got.MatchingReason != "SURNAME_ONLY" {
		t.Errorf("reason = %q", got.MatchingReason)
	}
}

func TestRunNeverMutatesVerifiedSpeakers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wrong := int64(99)
	id := f.addSpeaker(t, &store.Speaker{
		Name:               "岸田文雄",
		PoliticianID:       &wrong,
		IsPolitician:       true,
		IsManuallyVerified: true,
		MatchingReason:     "manual link",
	})

	before, _ := f.store.SpeakerByID(ctx, id)
	report, err := New(f.store, nil, nil).Run(ctx, defaultRequest(f.meetingID))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want the verified speaker", report.Skipped)
	}
	after, _ := f.store.SpeakerByID(ctx, id)
	if *after.PoliticianID != *before.PoliticianID || after.MatchingReason != before.MatchingReason ||
		after.UpdatedAt != before.UpdatedAt {
		t.Errorf("verified speaker mutated: before %+v after %+v", before, after)
	}
}

func TestRunFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addSpeaker(t, &store.Speaker{Name: "委員長"})

	fallback := &stubFallback{verdicts: map[string]extraction.Match{}}
	req := defaultRequest(f.meetingID)
	req.EnableFallback = true

	// The classifier claims 委員長 before the fallback tier is reached.
	report, err := New(f.store, fallback, nil).Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.NonPoliticians != 1 || len(fallback.calls) != 0 {
		t.Fatalf("classifier hit escalated to fallback: %+v calls=%v", report, fallback.calls)
	}

	// An ordinary unmatched name does reach the fallback matcher.
	unknownID := f.addSpeaker(t, &store.Speaker{Name: "見知らぬ名前"})
	fallback.verdicts["見知らぬ名前"] = extraction.Match{
		Matched:        true,
		PoliticianID:   1,
		PoliticianName: "岸田文雄",
		Confidence:     0.95,
		Reason:         "文脈一致",
	}
	report, err = New(f.store, fallback, nil).Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FallbackMatched != 1 || report.AutoMatched != 1 {
		t.Errorf("fallback=%d auto=%d, want 1/1", report.FallbackMatched, report.AutoMatched)
	}
	got, _ := f.store.SpeakerByID(ctx, unknownID)
	if got.PoliticianID == nil || *got.PoliticianID != 1 {
		t.Errorf("fallback match not persisted: %+v", got)
	}
	if got.MatchingReason != "FALLBACK" {
		t.Errorf("reason = %q, want FALLBACK", got.MatchingReason)
	}
	if id == unknownID {
		t.Fatal("fixture reused speaker id")
	}
}

func TestRunFallbackFailureIsPerSpeaker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addSpeaker(t, &store.Speaker{Name: "見知らぬ名前"})
	f.addSpeaker(t, &store.Speaker{Name: "岸田文雄"})

	fallback := &stubFallback{err: errors.New("service unavailable")}
	req := defaultRequest(f.meetingID)
	req.EnableFallback = true

	report, err := New(f.store, fallback, nil).Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Pending != 1 {
		t.Errorf("pending = %d, want the failed speaker downgraded", report.Pending)
	}
	if report.AutoMatched != 1 {
		t.Errorf("auto matched = %d, fallback failure must not affect other speakers", report.AutoMatched)
	}
}

func TestRunFallbackSuccessClearsHomonymFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addSpeaker(t, &store.Speaker{Name: "田中"})

	fallback := &stubFallback{verdicts: map[string]extraction.Match{
		"田中": {Matched: true, PoliticianID: 2, PoliticianName: "田中太郎", Confidence: 0.95},
	}}
	req := defaultRequest(f.meetingID)
	req.EnableFallback = true

	report, err := New(f.store, fallback, nil).Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FallbackMatched != 1 {
		t.Fatalf("fallback matched = %d, want 1", report.FallbackMatched)
	}
	got, _ := f.store.SpeakerByID(ctx, id)
	if got.SkipReason != "" {
		t.Errorf("skip reason = %q, positive identification must clear the homonym flag", got.SkipReason)
	}
	if got.PoliticianID == nil || *got.PoliticianID != 2 {
		t.Errorf("politician id = %v, want 2", got.PoliticianID)
	}
}

func TestRunFillsPartyFromCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	partyID, err := f.store.InsertParty(ctx, "新緑風会")
	if err != nil {
		t.Fatalf("InsertParty: %v", err)
	}
	polID, err := f.store.InsertPolitician(ctx, "緑川一郎", "みどりかわいちろう", &partyID)
	if err != nil {
		t.Fatalf("InsertPolitician: %v", err)
	}
	member := store.ConferenceMember{ConferenceID: 1, PoliticianID: polID, StartDate: day(t, "2023-01-01")}
	if _, err := f.store.InsertConferenceMember(ctx, member); err != nil {
		t.Fatalf("InsertConferenceMember: %v", err)
	}
	id := f.addSpeaker(t, &store.Speaker{Name: "緑川一郎"})

	if _, err := New(f.store, nil, nil).Run(ctx, defaultRequest(f.meetingID)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := f.store.SpeakerByID(ctx, id)
	if got.PoliticalPartyName != "新緑風会" {
		t.Errorf("party name = %q, want filled from the politician's party", got.PoliticalPartyName)
	}
}
