// Package discovery computes which projects are visible on the portfolio page
// for a given search term, category selection and page number.
//
// Every function here is a pure transform over the snapshot it is handed: the
// input slice is never modified and no state survives between calls, so the
// functions are safe to call concurrently on every keystroke.
package discovery

import (
	"strings"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

// DefaultPageSize is the number of non-featured projects shown per page.
const DefaultPageSize = 6

// Query holds the caller-owned filter and paging state.
type Query struct {
	Search     string
	Categories []string
	Page       int // 1-based
	PageSize   int
}

// Result is the visible slice of the filtered snapshot.
//
// Featured projects are never paginated. TotalFiltered counts every project
// that passed both filters, featured or not; TotalPages counts pages of the
// non-featured remainder only.
type Result struct {
	Visible       []domain.Project `json:"visible"`
	Featured      []domain.Project `json:"featured"`
	TotalFiltered int              `json:"total_filtered"`
	TotalPages    int              `json:"total_pages"`
}

// OutOfRange reports whether the requested page lies past the filtered set.
// Callers are expected to reset to page 1 whenever search or categories change.
func (r Result) OutOfRange() bool {
	return len(r.Visible) == 0 && r.TotalPages > 0
}

// Compute runs search, category filtering, the featured partition and
// pagination over projects. Pages outside [1, TotalPages] yield an empty
// Visible slice rather than being clamped.
func Compute(projects []domain.Project, q Query) Result {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	term := strings.ToLower(q.Search)
	wanted := foldSet(q.Categories)

	res := Result{
		Visible:  []domain.Project{},
		Featured: []domain.Project{},
	}
	var rest []domain.Project

	for _, p := range projects {
		if !matchesSearch(p, term) || !matchesCategory(p, wanted) {
			continue
		}
		res.TotalFiltered++
		if p.Featured {
			res.Featured = append(res.Featured, p)
			continue
		}
		rest = append(rest, p)
	}

	res.TotalPages = (len(rest) + pageSize - 1) / pageSize

	// compare pages before multiplying so huge page numbers cannot overflow
	if q.Page < 1 || q.Page > res.TotalPages {
		return res
	}
	start := (q.Page - 1) * pageSize
	end := min(start+pageSize, len(rest))
	res.Visible = append(res.Visible, rest[start:end]...)

	return res
}

// matchesSearch expects term to be lower-cased already. An empty term matches.
func matchesSearch(p domain.Project, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tech := range p.TechStack {
		if strings.Contains(strings.ToLower(tech), term) {
			return true
		}
	}
	return false
}

// matchesCategory is an OR across wanted: one exact, case-insensitive hit on
// any tech entry is enough. An empty wanted set matches everything.
func matchesCategory(p domain.Project, wanted map[string]struct{}) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, tech := range p.TechStack {
		key := strings.ToLower(strings.TrimSpace(tech))
		if key == "" {
			continue
		}
		if _, ok := wanted[key]; ok {
			return true
		}
	}
	return false
}

// foldSet lower-cases the selection and drops blanks. Any "all" entry means
// no category filtering at all.
func foldSet(categories []string) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		if key == AllCategory {
			return nil
		}
		set[key] = struct{}{}
	}
	return set
}
