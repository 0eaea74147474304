package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"polilink/internal/candidates"
	"polilink/internal/classify"
	"polilink/internal/logging"
	"polilink/internal/match"
	"polilink/internal/services/extraction"
	"polilink/internal/store"
)

// FallbackMatcher is the external matcher consulted for speakers the
// deterministic tiers could not resolve. Implementations must be safe for
// sequential reuse across speakers; any error is downgraded to a non-match
// for that speaker only.
type FallbackMatcher interface {
	Name() string
	FindMatch(ctx context.Context, req extraction.Request) (extraction.Match, error)
}

// MeetingRequest asks for one meeting's resolution pass.
type MeetingRequest struct {
	MeetingID int64

	// AutoThreshold and ReviewThreshold band match confidence into
	// auto-match, manual-review, and pending. Setting them equal collapses
	// review into a single pass/fail cut.
	AutoThreshold   float64
	ReviewThreshold float64

	EnableFallback bool

	// UseBroadStrategy sources candidates from election winners instead of
	// the conference roster, for era-spanning runs.
	UseBroadStrategy bool
}

// Report is the outcome of one meeting's pass. A missing meeting, missing
// minutes, or undated meeting yields Success=false with a message rather
// than an error.
type Report struct {
	MeetingID       int64
	Success         bool
	Message         string
	CandidateSource candidates.Source

	TotalSpeakers   int
	AutoMatched     int
	ReviewMatched   int
	Skipped         int
	NonPoliticians  int
	FallbackMatched int
	Pending         int

	Results []match.Result
}

// Resolver drives resolution passes against one store.
type Resolver struct {
	store    *store.Store
	builder  *candidates.Builder
	fallback FallbackMatcher
	logger   *slog.Logger
}

// New builds a resolver. fallback may be nil when no external matcher is
// configured; requests asking for it then proceed without one.
func New(st *store.Store, fallback FallbackMatcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		store:    st,
		builder:  candidates.NewBuilder(st),
		fallback: fallback,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

func failure(meetingID int64, format string, args ...any) *Report {
	return &Report{MeetingID: meetingID, Success: false, Message: fmt.Sprintf(format, args...)}
}

// Run resolves every unlinked speaker appearing in one meeting's transcript.
// Setup errors from the store propagate; absent data is reported as a failed
// Report instead.
func (r *Resolver) Run(ctx context.Context, req MeetingRequest) (*Report, error) {
	meeting, err := r.store.MeetingByID(ctx, req.MeetingID)
	if errors.Is(err, store.ErrNotFound) {
		return failure(req.MeetingID, "meeting %d not found", req.MeetingID), nil
	}
	if err != nil {
		return nil, err
	}
	if meeting.Date == nil {
		return failure(req.MeetingID, "meeting %d has no date; candidates cannot be scoped", req.MeetingID), nil
	}

	minutes, err := r.store.MinutesByMeeting(ctx, meeting.ID)
	if errors.Is(err, store.ErrNotFound) {
		return failure(req.MeetingID, "meeting %d has no minutes", req.MeetingID), nil
	}
	if err != nil {
		return nil, err
	}

	speakerIDs, err := r.store.SpeakerIDsForMinutes(ctx, minutes.ID)
	if err != nil {
		return nil, err
	}
	if len(speakerIDs) == 0 {
		return failure(req.MeetingID, "meeting %d has an empty transcript", req.MeetingID), nil
	}

	build := r.builder.Build
	if req.UseBroadStrategy {
		build = r.builder.BuildBroad
	}
	set, err := build(ctx, meeting.ConferenceID, *meeting.Date)
	if err != nil {
		return nil, fmt.Errorf("build candidates for meeting %d: %w", meeting.ID, err)
	}

	speakers, err := r.store.SpeakersByIDs(ctx, speakerIDs)
	if err != nil {
		return nil, err
	}

	report := &Report{
		MeetingID:       meeting.ID,
		Success:         true,
		CandidateSource: set.Source,
		TotalSpeakers:   len(speakers),
	}
	parties := newPartyCache(r.store)

	r.logger.Info("meeting pass started",
		logging.Int64("meeting_id", meeting.ID),
		logging.String("candidate_source", string(set.Source)),
		logging.Int("candidates", len(set.Candidates)),
		logging.Int("speakers", len(speakers)))

	for _, speaker := range speakers {
		r.resolveSpeaker(ctx, speaker, set, minutes.RoleNameMap, req, parties, report)
	}

	report.Message = fmt.Sprintf("meeting %d: %d speakers, %d auto, %d review, %d fallback, %d non-politician, %d skipped, %d pending",
		meeting.ID, report.TotalSpeakers, report.AutoMatched, report.ReviewMatched,
		report.FallbackMatched, report.NonPoliticians, report.Skipped, report.Pending)
	r.logger.Info("meeting pass finished", logging.String("summary", report.Message))
	return report, nil
}

// resolveSpeaker applies the per-speaker cascade and records the outcome on
// the report. Persistence failures for one speaker are logged and downgrade
// that speaker to pending rather than failing the meeting.
func (r *Resolver) resolveSpeaker(ctx context.Context, speaker *store.Speaker, set *candidates.Set,
	roleNameMap map[string]string, req MeetingRequest, parties *partyCache, report *Report) {

	if speaker.PoliticianID != nil || !speaker.CanBeUpdatedByMatcher() {
		report.Skipped++
		return
	}

	if reason := classify.Classify(speaker.Name); reason != "" {
		speaker.IsPolitician = false
		speaker.SkipReason = string(reason)
		if err := r.store.UpdateSpeaker(ctx, speaker); err != nil {
			r.speakerError(speaker, "persist classification", err, report)
			return
		}
		report.NonPoliticians++
		return
	}

	result := match.Match(speaker.ID, speaker.Name, speaker.Furigana, set.Candidates)
	if result.Matched() {
		action := match.Decide(result.Confidence, req.AutoThreshold, req.ReviewThreshold)
		if action != match.ActionPending {
			if err := r.persistMatch(ctx, speaker, result, parties); err != nil {
				r.speakerError(speaker, "persist match", err, report)
				return
			}
			report.Results = append(report.Results, result)
			if action == match.ActionAutoMatch {
				report.AutoMatched++
			} else {
				report.ReviewMatched++
			}
			return
		}
	}

	if result.Ambiguous {
		// An unresolved homonym is recorded, never resolved arbitrarily.
		speaker.SkipReason = string(classify.SkipHomonym)
		if err := r.store.UpdateSpeaker(ctx, speaker); err != nil {
			r.speakerError(speaker, "persist homonym flag", err, report)
			return
		}
	}

	if req.EnableFallback && r.fallback != nil {
		if done := r.tryFallback(ctx, speaker, set, roleNameMap, req, parties, report); done {
			return
		}
	}

	report.Pending++
}

// tryFallback consults the external matcher. Every failure path is swallowed
// per speaker: the caller falls through to pending.
func (r *Resolver) tryFallback(ctx context.Context, speaker *store.Speaker, set *candidates.Set,
	roleNameMap map[string]string, req MeetingRequest, parties *partyCache, report *Report) bool {

	verdict, err := r.fallback.FindMatch(ctx, extraction.Request{
		SpeakerName:  speaker.Name,
		SpeakerType:  speaker.Type,
		SpeakerParty: speaker.PoliticalPartyName,
		Candidates:   set.Candidates,
		RoleNameMap:  roleNameMap,
	})
	if err != nil {
		r.logger.Warn("fallback matcher failed",
			logging.Int64("speaker_id", speaker.ID),
			logging.String("speaker", speaker.Name),
			logging.Error(err))
		return false
	}
	if !verdict.Matched {
		return false
	}

	action := match.Decide(verdict.Confidence, req.AutoThreshold, req.ReviewThreshold)
	if action == match.ActionPending {
		return false
	}

	result := match.Result{
		SpeakerID:      speaker.ID,
		SpeakerName:    speaker.Name,
		PoliticianID:   verdict.PoliticianID,
		PoliticianName: verdict.PoliticianName,
		Confidence:     verdict.Confidence,
		Method:         match.MethodFallback,
	}
	if err := r.persistMatch(ctx, speaker, result, parties); err != nil {
		r.speakerError(speaker, "persist fallback match", err, report)
		return true
	}
	report.Results = append(report.Results, result)
	report.FallbackMatched++
	if action == match.ActionAutoMatch {
		report.AutoMatched++
	} else {
		report.ReviewMatched++
	}
	return true
}

// persistMatch writes a resolved link. A positive identification supersedes
// any previously recorded skip reason, including a homonym flag.
func (r *Resolver) persistMatch(ctx context.Context, speaker *store.Speaker, result match.Result, parties *partyCache) error {
	speaker.IsPolitician = true
	speaker.PoliticianID = &result.PoliticianID
	confidence := result.Confidence
	speaker.MatchingConfidence = &confidence
	speaker.MatchingReason = string(result.Method)
	speaker.SkipReason = ""

	if speaker.PoliticalPartyName == "" {
		name, err := parties.nameForPolitician(ctx, result.PoliticianID)
		if err != nil {
			r.logger.Warn("party lookup failed",
				logging.Int64("politician_id", result.PoliticianID),
				logging.Error(err))
		} else {
			speaker.PoliticalPartyName = name
		}
	}
	return r.store.UpdateSpeaker(ctx, speaker)
}

func (r *Resolver) speakerError(speaker *store.Speaker, operation string, err error, report *Report) {
	r.logger.Warn("speaker update failed",
		logging.Int64("speaker_id", speaker.ID),
		logging.String("operation", operation),
		logging.Error(err))
	report.Pending++
}
