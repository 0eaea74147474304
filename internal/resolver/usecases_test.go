package resolver

import (
	"context"
	"testing"

	"polilink/internal/store"
)

const testUserID = "1b671a64-40d5-491e-99b0-da01ff1f3341"

func TestLinkSpeakerClearsSkipReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := New(f.store, nil, nil)

	id := f.addSpeaker(t, &store.Speaker{Name: "田中", SkipReason: "homonym"})

	speaker, err := r.LinkSpeaker(ctx, LinkRequest{
		SpeakerID:    id,
		PoliticianID: 2,
		UserID:       testUserID,
		Verify:       true,
	})
	if err != nil {
		t.Fatalf("LinkSpeaker: %v", err)
	}
	if !speaker.IsPolitician || speaker.SkipReason != "" {
		t.Errorf("linked speaker = %+v, want politician with cleared skip reason", speaker)
	}
	if !speaker.IsManuallyVerified || speaker.MatchedByUserID != testUserID {
		t.Errorf("verification not recorded: %+v", speaker)
	}

	// Marking back as non-politician must clear the link again.
	speaker, err = r.MarkNonPolitician(ctx, id, "reference_person", testUserID)
	if err != nil {
		t.Fatalf("MarkNonPolitician: %v", err)
	}
	if speaker.PoliticianID != nil || speaker.IsPolitician {
		t.Errorf("marked speaker = %+v, want link cleared", speaker)
	}
	if speaker.SkipReason != "reference_person" {
		t.Errorf("skip reason = %q", speaker.SkipReason)
	}
}

func TestLinkSpeakerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := New(f.store, nil, nil)
	id := f.addSpeaker(t, &store.Speaker{Name: "山本一郎"})

	if _, err := r.LinkSpeaker(ctx, LinkRequest{SpeakerID: id, PoliticianID: 2, UserID: "not-a-uuid"}); err == nil {
		t.Error("LinkSpeaker accepted a malformed user id")
	}
	if _, err := r.LinkSpeaker(ctx, LinkRequest{SpeakerID: id, PoliticianID: 9999}); err == nil {
		t.Error("LinkSpeaker accepted a missing politician")
	}
	if _, err := r.MarkNonPolitician(ctx, id, "no_such_reason", ""); err == nil {
		t.Error("MarkNonPolitician accepted an unknown skip reason")
	}
}

func TestManualVerificationSurvivesFullPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := New(f.store, nil, nil)

	// The automated pass would link 岸田文雄 to politician 1; a human first
	// links it elsewhere and verifies. Re-running the pass must change
	// nothing.
	id := f.addSpeaker(t, &store.Speaker{Name: "岸田文雄"})
	if _, err := r.LinkSpeaker(ctx, LinkRequest{SpeakerID: id, PoliticianID: 4, UserID: testUserID, Verify: true}); err != nil {
		t.Fatalf("LinkSpeaker: %v", err)
	}
	before, _ := f.store.SpeakerByID(ctx, id)

	if _, err := r.Run(ctx, defaultRequest(f.meetingID)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	after, _ := f.store.SpeakerByID(ctx, id)
	if *after.PoliticianID != 4 || after.UpdatedAt != before.UpdatedAt {
		t.Errorf("verified link mutated by automated pass: before %+v after %+v", before, after)
	}
}

func TestClassifyAllAndPendingReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := New(f.store, nil, nil)

	f.addSpeaker(t, &store.Speaker{Name: "政府参考人"})
	reviewed := f.addSpeaker(t, &store.Speaker{Name: "岸田"})

	counts, err := r.ClassifyAll(ctx)
	if err != nil {
		t.Fatalf("ClassifyAll: %v", err)
	}
	if counts.KeptNonPolitician != 1 {
		t.Errorf("kept non-politician = %d, want 1", counts.KeptNonPolitician)
	}

	if _, err := r.Run(ctx, defaultRequest(f.meetingID)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	pending, err := r.PendingReview(ctx, 0.7, 0.9)
	if err != nil {
		t.Fatalf("PendingReview: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != reviewed {
		t.Errorf("pending = %+v, want the surname-band match", pending)
	}
}
