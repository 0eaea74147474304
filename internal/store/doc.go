// Package store provides SQLite-backed persistence for speakers, politicians,
// meetings, and the electoral records that scope candidate sets.
//
// One Store owns the database handle and exposes the repository surface the
// resolution engine consumes: speaker reads and guarded writes, politician and
// party lookups, conference rosters effective at a date, and election results
// by governing body. Schema creation and version checking happen on Open.
package store
