package discovery

import (
	"strings"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

// AllCategory is the pseudo-category that clears the selection.
const AllCategory = "all"

// Categories returns the selectable chips for a snapshot: AllCategory first,
// then every tech entry in order of first appearance. Deduplication is
// case-sensitive, so "SQL" and "sql" are two chips. A tech entry spelled like
// AllCategory in any case is dropped; that chip could never be selected.
func Categories(projects []domain.Project) []string {
	out := []string{AllCategory}
	seen := make(map[string]struct{})
	for _, p := range projects {
		for _, tech := range p.TechStack {
			if t := strings.TrimSpace(tech); t == "" || strings.EqualFold(t, AllCategory) {
				continue
			}
			if _, ok := seen[tech]; ok {
				continue
			}
			seen[tech] = struct{}{}
			out = append(out, tech)
		}
	}
	return out
}

// Toggle adds category to selected or removes it when already present.
// Toggling AllCategory clears the selection. selected is not modified.
func Toggle(selected []string, category string) []string {
	if strings.EqualFold(strings.TrimSpace(category), AllCategory) {
		return Clear()
	}

	out := make([]string, 0, len(selected)+1)
	removed := false
	for _, s := range selected {
		if s == category {
			removed = true
			continue
		}
		out = append(out, s)
	}
	if !removed {
		out = append(out, category)
	}
	return out
}

// Clear returns the empty selection, meaning "show all".
func Clear() []string {
	return []string{}
}
