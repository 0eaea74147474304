// Package candidates builds the politician candidate set for one meeting,
// scoped by the meeting's conference, date, and chamber. Sourcing strategies
// are tried in a fixed order: the conference roster at the meeting date, the
// plenary roster of the same body, the winners of the most recent election
// (paired for the half-renewing upper house), and finally the unrestricted
// politician pool. The builder carries no cache across calls.
package candidates
