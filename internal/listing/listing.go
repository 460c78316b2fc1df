// Package listing holds the in-memory search/filter/sort pipeline for
// the projects page. Apply is pure: the same inputs always produce the
// same ordered result, and the input slice is never mutated.
package listing

import (
	"sort"
	"strings"

	"github.com/kerryjj/community-votes-action/internal/models"
)

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// TypeAll disables category filtering.
const TypeAll = "all"

type Query struct {
	Search string
	Type   string
	Sort   SortOrder
}

// ParseSort coerces a raw sort parameter; anything but "asc" means
// descending, the default the projects page opens with.
func ParseSort(raw string) SortOrder {
	if raw == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

// Toggle flips the sort order.
func (s SortOrder) Toggle() SortOrder {
	if s == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Apply derives the visible set: case-insensitive substring search over
// title, description and location, then category filter, then a stable
// sort by vote count. Ties keep the arrival order of the input.
func (q Query) Apply(all []models.Project) []models.Project {
	visible := make([]models.Project, 0, len(all))

	term := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range all {
		if term != "" && !matches(p, term) {
			continue
		}
		if q.Type != "" && q.Type != TypeAll && string(p.Type) != q.Type {
			continue
		}
		visible = append(visible, p)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if q.Sort == SortAsc {
			return visible[i].Votes < visible[j].Votes
		}
		return visible[i].Votes > visible[j].Votes
	})

	return visible
}

func matches(p models.Project, term string) bool {
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Location), term)
}

// Featured returns the top n projects by votes, used by the home page.
func Featured(all []models.Project, n int) []models.Project {
	top := Query{Type: TypeAll, Sort: SortDesc}.Apply(all)
	if len(top) > n {
		top = top[:n]
	}
	return top
}
