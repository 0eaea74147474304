package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"polilink/internal/classify"
	"polilink/internal/logging"
	"polilink/internal/store"
)

// LinkRequest is a human-issued link between a speaker and a politician.
type LinkRequest struct {
	SpeakerID    int64
	PoliticianID int64
	// UserID identifies who made the correction; must be a UUID.
	UserID string
	// Verify marks the link as human-confirmed, shielding it from every
	// automated pass.
	Verify bool
}

// LinkSpeaker applies a manual link. It clears any recorded skip reason,
// sets is_politician, and may overwrite a previously verified record since
// the action itself is the manual pass.
func (r *Resolver) LinkSpeaker(ctx context.Context, req LinkRequest) (*store.Speaker, error) {
	if req.UserID != "" {
		if _, err := uuid.Parse(req.UserID); err != nil {
			return nil, fmt.Errorf("link speaker: user id must be a UUID: %w", err)
		}
	}
	speaker, err := r.store.SpeakerByID(ctx, req.SpeakerID)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.PoliticianByID(ctx, req.PoliticianID); err != nil {
		return nil, err
	}

	speaker.IsPolitician = true
	speaker.PoliticianID = &req.PoliticianID
	speaker.MatchedByUserID = req.UserID
	speaker.SkipReason = ""
	speaker.MatchingReason = "manual link"
	confidence := 1.0
	speaker.MatchingConfidence = &confidence
	if req.Verify {
		speaker.IsManuallyVerified = true
	}
	if err := r.store.UpdateSpeakerManual(ctx, speaker); err != nil {
		return nil, err
	}
	r.logger.Info("speaker linked manually",
		logging.Int64("speaker_id", speaker.ID),
		logging.Int64("politician_id", req.PoliticianID),
		logging.Bool("verified", req.Verify))
	return speaker, nil
}

// MarkNonPolitician records that a speaker is structurally not a politician.
// The reverse of LinkSpeaker: the politician link is cleared.
func (r *Resolver) MarkNonPolitician(ctx context.Context, speakerID int64, reason string, userID string) (*store.Speaker, error) {
	if !classify.Valid(reason) {
		return nil, fmt.Errorf("mark non-politician: unknown skip reason %q", reason)
	}
	if userID != "" {
		if _, err := uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("mark non-politician: user id must be a UUID: %w", err)
		}
	}
	speaker, err := r.store.SpeakerByID(ctx, speakerID)
	if err != nil {
		return nil, err
	}

	speaker.IsPolitician = false
	speaker.PoliticianID = nil
	speaker.MatchedByUserID = userID
	speaker.SkipReason = reason
	speaker.MatchingConfidence = nil
	speaker.MatchingReason = ""
	if err := r.store.UpdateSpeakerManual(ctx, speaker); err != nil {
		return nil, err
	}
	r.logger.Info("speaker marked non-politician",
		logging.Int64("speaker_id", speaker.ID),
		logging.String("skip_reason", reason))
	return speaker, nil
}

// ClassifyAll reclassifies the politician flag across every unlinked,
// unverified speaker using the non-politician name tables.
func (r *Resolver) ClassifyAll(ctx context.Context) (store.ClassifyCounts, error) {
	counts, err := r.store.BulkClassifyNonPoliticians(ctx, classify.Categories())
	if err != nil {
		return counts, err
	}
	r.logger.Info("bulk classification finished",
		logging.Int("politicians", counts.UpdatedToPolitician),
		logging.Int("non_politicians", counts.KeptNonPolitician))
	return counts, nil
}

// PendingReview lists speakers matched inside the review confidence band,
// awaiting a human pass.
func (r *Resolver) PendingReview(ctx context.Context, reviewThreshold, autoThreshold float64) ([]*store.Speaker, error) {
	return r.store.ListPendingReview(ctx, reviewThreshold, autoThreshold)
}
