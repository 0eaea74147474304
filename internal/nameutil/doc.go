// Package nameutil normalizes Japanese speaker and politician names for
// comparison.
//
// Transcript names are noisy: they carry trailing honorifics and role titles,
// full-width and half-width spacing, pre-reform (kyujitai) kanji variants, and
// phonetic readings supplied in either kana script. Normalize collapses all of
// that into a canonical comparison form; NormalizeKana folds a reading into
// hiragana so readings from different sources compare equal.
//
// All functions are pure, deterministic, and idempotent.
package nameutil
