package leveling

import (
	"strings"
	"unicode"
)

// groupLineItems partitions items into comparable cohorts keyed by CSI code
// plus normalized description. Cohorts come back in first-seen order so the
// same input always yields the same report. No items are dropped; a cohort
// of one is valid.
func groupLineItems(items []BidLineItem) []GroupedLineItem {
	index := make(map[string]int)
	groups := make([]GroupedLineItem, 0)

	for _, item := range items {
		key := item.CSICode + "-" + normalizeDescription(item.Description)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, GroupedLineItem{
				GroupKey:    key,
				CSICode:     item.CSICode,
				Description: item.Description,
			})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	return groups
}

// normalizeDescription lowercases, trims, strips punctuation, and collapses
// runs of whitespace so near-identical descriptions land in one cohort.
func normalizeDescription(desc string) string {
	lower := strings.ToLower(desc)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
