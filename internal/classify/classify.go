package classify

import "strings"

// SkipReason identifies why a speaker was excluded from politician matching.
type SkipReason string

const (
	SkipRoleOnly           SkipReason = "role_only"
	SkipReferencePerson    SkipReason = "reference_person"
	SkipGovernmentOfficial SkipReason = "government_official"
	SkipOtherNonPolitician SkipReason = "other_non_politician"
	// SkipHomonym marks an unresolved surname collision, recorded by the
	// matching pass rather than by name classification.
	SkipHomonym SkipReason = "homonym"
)

// Valid reports whether value is a known skip reason.
func Valid(value string) bool {
	switch SkipReason(value) {
	case SkipRoleOnly, SkipReferencePerson, SkipGovernmentOfficial,
		SkipOtherNonPolitician, SkipHomonym:
		return true
	}
	return false
}

// Assembly role titles that identify a seat, not a person.
var roleOnlyNames = newNameSet(
	"委員長",
	"副委員長",
	"議長",
	"副議長",
	"仮議長",
)

// Invited witnesses and testimony labels.
var referencePersonNames = newNameSet(
	"参考人",
	"証人",
	"公述人",
)

// Government-side attendees who are not elected members.
var governmentOfficialNames = newNameSet(
	"説明員",
	"政府委員",
	"政府参考人",
)

// Clerical staff and record metadata that leak into the speaker column.
var otherNonPoliticianNames = newNameSet(
	"事務局長",
	"事務局次長",
	"事務総長",
	"法制局長",
	"書記官長",
	"書記",
	"速記者",
	"幹事",
	"会議録情報",
)

// Prefix forms cover the Diet record's 役職名（人名君） spelling, e.g.
// 政府参考人（山田太郎君）. Role titles such as 議長（ are deliberately
// absent: the parenthesized form of those names a sitting politician.
var referencePersonPrefixes = []string{"参考人（", "証人（", "公述人（"}

var governmentOfficialPrefixes = []string{"説明員（", "政府委員（", "政府参考人（"}

var otherNonPoliticianPrefixes = []string{
	"事務総長（", "事務局長（", "事務局次長（", "法制局長（", "書記官長（",
}

// Category binds a skip reason to its exact names and prefix patterns.
// Adding a category is a single entry here.
type Category struct {
	Reason   SkipReason
	Exact    map[string]struct{}
	Prefixes []string
}

// Categories returns the classification table in evaluation order. The
// underlying sets are shared; callers must not mutate them.
func Categories() []Category {
	return []Category{
		{Reason: SkipRoleOnly, Exact: roleOnlyNames},
		{Reason: SkipReferencePerson, Exact: referencePersonNames, Prefixes: referencePersonPrefixes},
		{Reason: SkipGovernmentOfficial, Exact: governmentOfficialNames, Prefixes: governmentOfficialPrefixes},
		{Reason: SkipOtherNonPolitician, Exact: otherNonPoliticianNames, Prefixes: otherNonPoliticianPrefixes},
	}
}

// Classify returns the non-politician category for a speaker name, or empty
// if the name could still belong to a politician. Matching is exact on the
// trimmed name; honorifics are not stripped first.
func Classify(name string) SkipReason {
	stripped := strings.TrimSpace(name)
	if stripped == "" {
		return ""
	}
	for _, category := range Categories() {
		if _, ok := category.Exact[stripped]; ok {
			return category.Reason
		}
	}
	return ""
}

// ClassifyWithPrefixes extends Classify with the parenthesized role forms.
// Used by the bulk reclassification pass, where the record's 役職名（人名）
// spellings should keep their category too.
func ClassifyWithPrefixes(name string) SkipReason {
	if reason := Classify(name); reason != "" {
		return reason
	}
	stripped := strings.TrimSpace(name)
	for _, category := range Categories() {
		for _, prefix := range category.Prefixes {
			if strings.HasPrefix(stripped, prefix) {
				return category.Reason
			}
		}
	}
	return ""
}

// ExactNames returns every exact-match non-politician name across categories.
func ExactNames() []string {
	var names []string
	for _, category := range Categories() {
		for name := range category.Exact {
			names = append(names, name)
		}
	}
	return names
}

// PrefixPatterns returns every prefix pattern across categories.
func PrefixPatterns() []string {
	var prefixes []string
	for _, category := range Categories() {
		prefixes = append(prefixes, category.Prefixes...)
	}
	return prefixes
}

func newNameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
