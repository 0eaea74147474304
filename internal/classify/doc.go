// Package classify recognizes transcript speaker labels that can never
// resolve to a politician: bare role titles, witness and testimony labels,
// non-elected government officials, and chamber staff.
//
// Classification runs before any matching tier so that structurally
// non-matchable names are filtered out instead of being escalated to the
// external fallback matcher.
package classify
