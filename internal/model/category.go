package model

import "sort"

// ReconcileCategories merges a possibly-new category name into the ordered
// list. An exact-name match returns the input unchanged; names differing
// only in case are treated as distinct. A new name is appended with
// priority max(existing)+1 and the list re-sorted priority-ascending.
// Idempotent.
func ReconcileCategories(categories CategoryList, candidate string) CategoryList {
	if candidate == "" {
		return categories
	}
	for _, c := range categories {
		if c.Name == candidate {
			return categories
		}
	}

	maxPriority := 0
	for _, c := range categories {
		if c.Priority > maxPriority {
			maxPriority = c.Priority
		}
	}

	out := make(CategoryList, len(categories), len(categories)+1)
	copy(out, categories)
	out = append(out, Category{Name: candidate, Priority: maxPriority + 1})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// CategoryNames returns the names in display order (priority ascending),
// the form the enrichment prompts consume.
func CategoryNames(categories CategoryList) []string {
	sorted := make(CategoryList, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.Name
	}
	return names
}
