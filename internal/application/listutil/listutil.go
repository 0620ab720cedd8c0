package listutil

import (
	"net/url"
	"sort"
	"strings"
)

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // column name, "" for the API's order
	Dir  string // "asc" or "desc"
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string            // free-text search query
	Filters map[string]string // exact-match filters, e.g. group=3
}

// ListParams combines the list view parameters.
type ListParams struct {
	SortParams
	FilterParams
}

// ParseSortParams extracts sort and dir from URL query values.
// POST: Sort is "" or one of allowedColumns; Dir is always "asc" or "desc"
func ParseSortParams(q url.Values, allowedColumns []string) SortParams {
	col := q.Get("sort")
	dir := q.Get("dir")

	if !isAllowedColumn(col, allowedColumns) {
		col = ""
	}
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}
	return SortParams{Sort: col, Dir: dir}
}

// ParseFilterParams extracts search and named filters from URL query values.
// PRE: filterKeys lists the allowed filter parameter names
// POST: returns FilterParams with only recognised keys
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
	}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// ParseListParams parses all list parameters from URL query values.
func ParseListParams(q url.Values, allowedSortCols []string, filterKeys []string) ListParams {
	return ListParams{
		SortParams:   ParseSortParams(q, allowedSortCols),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// Matches reports whether any of fields contains the search term, case-insensitively.
// An empty search matches everything.
func (f FilterParams) Matches(fields ...string) bool {
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// Filter returns the items for which keep is true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Less compares two items on one column; it reports a < b.
type Less[T any] func(a, b T) bool

// Sort orders items in place by the selected column.
// Unknown or empty columns leave the order untouched.
// INVARIANT: the sort is stable, so ties keep the API's order
func Sort[T any](items []T, p SortParams, columns map[string]Less[T]) {
	less, ok := columns[p.Sort]
	if !ok {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if p.Dir == "desc" {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// NextDir returns the direction a column header link should request.
func (p SortParams) NextDir(col string) string {
	if p.Sort == col && p.Dir == "asc" {
		return "desc"
	}
	return "asc"
}

func isAllowedColumn(col string, allowed []string) bool {
	for _, a := range allowed {
		if col == a {
			return true
		}
	}
	return false
}
