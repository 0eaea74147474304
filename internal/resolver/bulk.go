package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"polilink/internal/candidates"
	"polilink/internal/logging"
	"polilink/internal/store"
)

// TermUnknown labels meetings whose date precedes every recorded election.
const TermUnknown = "不明"

// BulkRequest asks for a resolution pass over every meeting of a chamber in
// a date range.
type BulkRequest struct {
	GoverningBodyID int64
	Chamber         string
	DateFrom        time.Time
	DateTo          time.Time

	AutoThreshold   float64
	ReviewThreshold float64

	EnableFallback   bool
	UseBroadStrategy bool

	// DryRun enumerates the meetings and their term breakdown without
	// resolving or writing anything.
	DryRun bool
}

// TermStats is the per-election-term slice of a bulk run.
type TermStats struct {
	Meetings        int
	Speakers        int
	AutoMatched     int
	ReviewMatched   int
	FallbackMatched int
	NonPoliticians  int
	Skipped         int
	Pending         int
	Errors          int
}

// MeetingFailure records one meeting whose pass failed without aborting the
// batch.
type MeetingFailure struct {
	MeetingID int64
	Name      string
	Date      *time.Time
	Message   string
}

// BulkReport aggregates every meeting's Report plus the per-term breakdown.
type BulkReport struct {
	Meetings        int
	TotalSpeakers   int
	AutoMatched     int
	ReviewMatched   int
	Skipped         int
	NonPoliticians  int
	FallbackMatched int
	Pending         int

	Terms    map[string]TermStats
	Failures []MeetingFailure
}

// RunBulk processes every dated meeting of the chamber inside [DateFrom,
// DateTo], sequentially. One meeting's failure is recorded and the batch
// continues. A file lock next to the database keeps concurrent bulk runs
// off the same store.
func (r *Resolver) RunBulk(ctx context.Context, req BulkRequest) (*BulkReport, error) {
	if req.Chamber == "" {
		return nil, fmt.Errorf("bulk run: chamber required")
	}
	if req.DateTo.Before(req.DateFrom) {
		return nil, fmt.Errorf("bulk run: date range ends before it starts")
	}

	lock := flock.New(r.store.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire bulk lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another bulk run holds %s", r.store.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	meetings, err := r.store.MeetingsByChamberAndDateRange(ctx, req.GoverningBodyID, req.Chamber, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	elections, err := r.store.ElectionsByChamber(ctx, req.GoverningBodyID, req.Chamber)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}

	bulk := &BulkReport{Terms: make(map[string]TermStats)}
	r.logger.Info("bulk run started",
		logging.String("chamber", req.Chamber),
		logging.String("from", req.DateFrom.Format(store.DateLayout)),
		logging.String("to", req.DateTo.Format(store.DateLayout)),
		logging.Int("meetings", len(meetings)),
		logging.Bool("dry_run", req.DryRun))

	for _, meeting := range meetings {
		term := termLabelFor(elections, meeting)
		stats := bulk.Terms[term]
		bulk.Meetings++
		stats.Meetings++

		if req.DryRun {
			bulk.Terms[term] = stats
			continue
		}

		report, err := r.Run(ctx, MeetingRequest{
			MeetingID:        meeting.ID,
			AutoThreshold:    req.AutoThreshold,
			ReviewThreshold:  req.ReviewThreshold,
			EnableFallback:   req.EnableFallback,
			UseBroadStrategy: req.UseBroadStrategy,
		})
		if err != nil {
			stats.Errors++
			bulk.Terms[term] = stats
			bulk.Failures = append(bulk.Failures, MeetingFailure{
				MeetingID: meeting.ID,
				Name:      meeting.Name,
				Date:      meeting.Date,
				Message:   err.Error(),
			})
			r.logger.Error("meeting pass failed",
				logging.Int64("meeting_id", meeting.ID),
				logging.Error(err))
			continue
		}
		if !report.Success {
			stats.Errors++
			bulk.Terms[term] = stats
			bulk.Failures = append(bulk.Failures, MeetingFailure{
				MeetingID: meeting.ID,
				Name:      meeting.Name,
				Date:      meeting.Date,
				Message:   report.Message,
			})
			continue
		}

		bulk.TotalSpeakers += report.TotalSpeakers
		bulk.AutoMatched += report.AutoMatched
		bulk.ReviewMatched += report.ReviewMatched
		bulk.Skipped += report.Skipped
		bulk.NonPoliticians += report.NonPoliticians
		bulk.FallbackMatched += report.FallbackMatched
		bulk.Pending += report.Pending

		stats.Speakers += report.TotalSpeakers
		stats.AutoMatched += report.AutoMatched
		stats.ReviewMatched += report.ReviewMatched
		stats.FallbackMatched += report.FallbackMatched
		stats.NonPoliticians += report.NonPoliticians
		stats.Skipped += report.Skipped
		stats.Pending += report.Pending
		bulk.Terms[term] = stats
	}

	r.logger.Info("bulk run finished",
		logging.Int("meetings", bulk.Meetings),
		logging.Int("speakers", bulk.TotalSpeakers),
		logging.Int("auto_matched", bulk.AutoMatched),
		logging.Int("failures", len(bulk.Failures)))
	return bulk, nil
}

// termLabelFor resolves which election term was active on a meeting's date.
func termLabelFor(elections []*store.Election, meeting *store.Meeting) string {
	if meeting.Date == nil {
		return TermUnknown
	}
	active := candidates.ActiveElectionsAt(elections, *meeting.Date)
	if len(active) == 0 {
		return TermUnknown
	}
	return active[0].TermLabel()
}
