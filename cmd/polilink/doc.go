// Command polilink resolves raw transcript speaker names in parliamentary
// minutes to canonical politician records, per meeting or in bulk across a
// chamber and date range.
package main
