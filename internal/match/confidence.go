package match

// Action is the policy outcome for a match confidence.
type Action string

const (
	// ActionAutoMatch persists the link and marks the record resolved
	// without a human pass.
	ActionAutoMatch Action = "auto_match"
	// ActionManualReview persists the link but leaves it queued for human
	// verification.
	ActionManualReview Action = "manual_review"
	// ActionPending writes nothing.
	ActionPending Action = "pending"
)

// Decide bands a confidence against the configured thresholds. The narrow
// roster-scoped flow passes autoThreshold == reviewThreshold, collapsing the
// review band to a single pass/fail cut.
func Decide(confidence, autoThreshold, reviewThreshold float64) Action {
	switch {
	case confidence >= autoThreshold:
		return ActionAutoMatch
	case confidence >= reviewThreshold:
		return ActionManualReview
	default:
		return ActionPending
	}
}
