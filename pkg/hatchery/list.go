package hatchery

import "sort"

// SortGeese orders geese in place. Ties are broken by slug so pages are stable.
func SortGeese(geese []*Goose, key SortKey) {
	sort.Slice(geese, func(i, j int) bool {
		a, b := geese[i], geese[j]
		switch key {
		case SortNameDesc:
			if a.Name != b.Name {
				return a.Name > b.Name
			}
		case SortTimeAsc:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.Before(b.Timestamp)
			}
		case SortTimeDesc:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.After(b.Timestamp)
			}
		default:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.Slug < b.Slug
	})
}

// PageGeese returns the slice of geese selected by params.
func PageGeese(geese []*Goose, params ListParams) []*Goose {
	start := params.Offset()
	if params.Limit <= 0 || start >= len(geese) {
		return []*Goose{}
	}
	end := len(geese)
	if params.Limit < end-start {
		end = start + params.Limit
	}
	return geese[start:end]
}
