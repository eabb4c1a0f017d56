package hierarchy

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/ansuz/internal/models"
)

// disallowedRe strips every character outside the sortable allow-list: ASCII
// letters and digits, space, common Latin and Greek accented letters, and
// basic punctuation.
var disallowedRe = regexp.MustCompile(`[^0-9A-Za-z àâäæçèéêëîïôœùûüÿÀÂÄÆÇÈÉÊËÎÏÔŒÙÛÜŸáíóúñÁÍÓÚÑöÖßαβγδεζηθικλμνξοπρστυφχψωΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ.,:;!?'()\-]+`)

var coll = collate.New(language.Und)

// sortKey projects a display string onto its sortable form: disallowed
// characters stripped, trimmed, lower-cased.
func sortKey(s string) string {
	return strings.ToLower(strings.TrimSpace(disallowedRe.ReplaceAllString(s, "")))
}

// CompareDisplay orders two display strings by locale comparison of their
// sortable projections.
func CompareDisplay(a, b string) int {
	return coll.CompareString(sortKey(a), sortKey(b))
}

// SortRefs sorts document references in place by display name.
func SortRefs(refs []models.DocRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		return CompareDisplay(refs[i].Name, refs[j].Name) < 0
	})
}

// sortNodes orders sibling nodes by their formatted headings, not raw paths.
func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return CompareDisplay(nodes[i].Heading(), nodes[j].Heading()) < 0
	})
}
