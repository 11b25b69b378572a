package normalize

import "strings"

// areaCodePrefixes lists the bare DC-metro area codes the map data
// carries; these get rewritten into the parenthesized display form.
var areaCodePrefixes = []string{"301", "240", "202"}

// FormatPhone strips a leading "+1 " country code and rewrites bare
// "NNN-" area-code prefixes as "(NNN) ". Numbers with no recognized
// prefix pass through unchanged.
func FormatPhone(s string) string {
	out := strings.ReplaceAll(s, "+1 ", "")
	for _, code := range areaCodePrefixes {
		out = strings.ReplaceAll(out, code+"-", "("+code+") ")
	}
	return out
}
