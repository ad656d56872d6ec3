package menu

import (
	"strings"

	"github.com/soyeahso/obiefood/internal/domain"
)

// uponRequestMarker is stripped from item labels before display and
// deduplication.
const uponRequestMarker = "(upon request)"

// filterMenu applies the restriction filter and inclusion rules, returning
// surviving sections with cleaned labels. Duplicate labels are dropped
// across the whole response, not per section; the first occurrence wins,
// so per-cafe grouping is preserved for the items kept.
func filterMenu(m domain.Menu, restriction domain.Restriction) []domain.CafeSection {
	codes := restriction.IconCodes()
	seen := make(map[string]bool)

	var out []domain.CafeSection
	for _, sec := range m.Sections {
		var kept []domain.MenuItem
		for _, item := range sec.Items {
			if len(codes) > 0 {
				// Items without icon data cannot be matched against an
				// active filter, so they are excluded rather than guessed at.
				if len(item.IconCodes) == 0 || !item.HasIconCode(codes) {
					continue
				}
			}

			label := strings.TrimSpace(strings.ReplaceAll(item.Label, uponRequestMarker, ""))
			if label == "" || strings.EqualFold(label, "closed") {
				continue
			}
			if seen[label] {
				continue
			}
			seen[label] = true

			item.Label = label
			kept = append(kept, item)
		}
		if len(kept) > 0 {
			out = append(out, domain.CafeSection{Cafe: sec.Cafe, Items: kept})
		}
	}
	return out
}
