// Package resolver orchestrates speaker-to-politician resolution. A run
// walks one meeting's transcript speakers through a fixed cascade: skip
// already-linked or human-verified records, classify structurally
// non-political names, try the deterministic matching tiers, then (when
// enabled) consult the external fallback matcher. Bulk runs repeat this per
// meeting across a chamber and date range, tolerating per-meeting failures
// and reporting a per-election-term breakdown.
package resolver
