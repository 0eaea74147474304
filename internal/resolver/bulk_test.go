package resolver

import (
	"context"
	"testing"

	"polilink/internal/store"
)

func TestRunBulkAcrossTermsWithFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	elections := []store.Election{
		{GoverningBodyID: 1, Chamber: store.ChamberRepresentatives, TermNumber: 48, ElectionDate: day(t, "2017-10-22")},
		{GoverningBodyID: 1, Chamber: store.ChamberRepresentatives, TermNumber: 49, ElectionDate: day(t, "2021-10-31")},
	}
	for _, e := range elections {
		if _, err := f.store.InsertElection(ctx, e); err != nil {
			t.Fatalf("InsertElection: %v", err)
		}
	}

	// The fixture meeting (2024-02-05, term 49) gets one resolvable speaker.
	f.addSpeaker(t, &store.Speaker{Name: "岸田文雄"})

	// A second meeting in term 48 with its own transcript.
	oldDate := day(t, "2019-03-01")
	oldMeeting, err := f.store.InsertMeeting(ctx, 1, "第2号", &oldDate)
	if err != nil {
		t.Fatalf("InsertMeeting: %v", err)
	}
	oldMinutes, err := f.store.InsertMinutes(ctx, oldMeeting, nil)
	if err != nil {
		t.Fatalf("InsertMinutes: %v", err)
	}
	oldSpeaker, err := f.store.InsertSpeaker(ctx, &store.Speaker{Name: "田中太郎"})
	if err != nil {
		t.Fatalf("InsertSpeaker: %v", err)
	}
	if _, err := f.store.InsertConversation(ctx, oldMinutes, oldSpeaker, 1, "発言"); err != nil {
		t.Fatalf("InsertConversation: %v", err)
	}

	// A third meeting with no minutes at all: must be recorded as a failure
	// without aborting the batch.
	brokenDate := day(t, "2024-03-01")
	if _, err := f.store.InsertMeeting(ctx, 1, "欠落", &brokenDate); err != nil {
		t.Fatalf("InsertMeeting: %v", err)
	}

	req := BulkRequest{
		GoverningBodyID: 1,
		Chamber:         store.ChamberRepresentatives,
		DateFrom:        day(t, "2019-01-01"),
		DateTo:          day(t, "2024-12-31"),
		AutoThreshold:   0.9,
		ReviewThreshold: 0.7,
	}
	bulk, err := New(f.store, nil, nil).RunBulk(ctx, req)
	if err != nil {
		t.Fatalf("RunBulk: %v", err)
	}

	if bulk.Meetings != 3 {
		t.Errorf("meetings = %d, want 3", bulk.Meetings)
	}
	if bulk.AutoMatched != 2 {
		t.Errorf("auto matched = %d, want one per resolvable meeting", bulk.AutoMatched)
	}
	if len(bulk.Failures) != 1 || bulk.Failures[0].Name != "欠落" {
		t.Errorf("failures = %+v, want the minutes-less meeting", bulk.Failures)
	}

	term48, term49 := bulk.Terms["第48回"], bulk.Terms["第49回"]
	if term48.Meetings != 1 || term48.AutoMatched != 1 {
		t.Errorf("term 48 stats = %+v", term48)
	}
	if term49.Meetings != 2 || term49.AutoMatched != 1 || term49.Errors != 1 {
		t.Errorf("term 49 stats = %+v", term49)
	}
}

func TestRunBulkDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addSpeaker(t, &store.Speaker{Name: "岸田文雄"})

	req := BulkRequest{
		GoverningBodyID: 1,
		Chamber:         store.ChamberRepresentatives,
		DateFrom:        day(t, "2024-01-01"),
		DateTo:          day(t, "2024-12-31"),
		AutoThreshold:   0.9,
		ReviewThreshold: 0.7,
		DryRun:          true,
	}
	bulk, err := New(f.store, nil, nil).RunBulk(ctx, req)
	if err != nil {
		t.Fatalf("RunBulk: %v", err)
	}
	if bulk.Meetings != 1 || bulk.TotalSpeakers != 0 {
		t.Errorf("dry run report = %+v, want meetings counted but nothing processed", bulk)
	}
	got, _ := f.store.SpeakerByID(ctx, id)
	if got.PoliticianID != nil {
		t.Error("dry run linked a speaker")
	}
}

func TestRunBulkValidatesRange(t *testing.T) {
	f := newFixture(t)
	req := BulkRequest{
		GoverningBodyID: 1,
		Chamber:         store.ChamberRepresentatives,
		DateFrom:        day(t, "2024-12-31"),
		DateTo:          day(t, "2024-01-01"),
	}
	if _, err := New(f.store, nil, nil).RunBulk(context.Background(), req); err == nil {
		t.Error("RunBulk accepted an inverted date range")
	}
	req.DateTo = req.DateFrom
	req.Chamber = ""
	if _, err := New(f.store, nil, nil).RunBulk(context.Background(), req); err == nil {
		t.Error("RunBulk accepted an empty chamber")
	}
}
