// Package extraction implements the structured-extraction fallback matcher
// client. It is consulted only for speakers the rule engine could not resolve
// and the classifier did not reject, and its failures are always downgraded to
// "no match" by the caller.
package extraction
