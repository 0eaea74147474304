// Package match implements the rule-based speaker to politician matching
// engine and the confidence banding that turns a match score into an action.
//
// Matching runs an ordered cascade of tiers against a bounded candidate set:
// exact normalized name, phonetic reading, then unique-surname prefix. Each
// tier produces a fixed confidence so the tier ordering is also a strict
// confidence ordering. Surname collisions between candidates are surfaced as
// an ambiguity signal rather than resolved arbitrarily.
package match
