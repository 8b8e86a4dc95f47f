package timeline

import "strings"

// DescriptionSeparator joins the parts of a composed event description.
const DescriptionSeparator = " · "

// JoinParts joins the non-blank parts in order, or returns fallback when
// nothing is left.
func JoinParts(fallback string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, DescriptionSeparator)
}
