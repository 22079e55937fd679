package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Category selects one status class, or all of them.
type Category string

const (
	CategoryAll Category = "all"
	Category1xx Category = "1xx"
	Category2xx Category = "2xx"
	Category3xx Category = "3xx"
	Category4xx Category = "4xx"
	Category5xx Category = "5xx"
)

var ErrUnknownCategory = errors.New("unknown category")

// Categories lists the selectable categories in display order.
func Categories() []Category {
	return []Category{CategoryAll, Category1xx, Category2xx, Category3xx, Category4xx, Category5xx}
}

// ParseCategory validates user input. The empty string means all.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAll, nil
	}
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// All reports whether the category excludes nothing.
func (c Category) All() bool {
	return c == CategoryAll || c == ""
}

// Class returns the hundreds digit the category selects, or -1 when the
// category does not start with a digit. A class outside 1-5 matches nothing.
func (c Category) Class() int {
	if c == "" {
		return -1
	}
	d, err := strconv.Atoi(string(c[:1]))
	if err != nil {
		return -1
	}
	return d
}

// FilterState is the active view: search text plus category. It is a plain
// value; assigning it copies it.
type FilterState struct {
	Search   string   `json:"search"`
	Category Category `json:"category"`
}

// DefaultFilter is the state a fresh view starts with.
func DefaultFilter() FilterState {
	return FilterState{Search: "", Category: CategoryAll}
}

// Filter returns the records matching both the category and the search text,
// in their original order.
func Filter(in []StatusRecord, f FilterState) []StatusRecord {
	out := make([]StatusRecord, 0, len(in))
	all, class := f.Category.All(), f.Category.Class()
	term := strings.ToLower(f.Search)
	for _, r := range in {
		if !all && r.Code/100 != class {
			continue
		}
		if term != "" && !matchesSearch(r, term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r StatusRecord, term string) bool {
	return strings.Contains(strconv.Itoa(r.Code), term) ||
		strings.Contains(strings.ToLower(r.Message), term)
}

// Summary is the line shown above the results.
func Summary(f FilterState, n int) string {
	if f.Search == "" {
		return fmt.Sprintf("Showing %d results", n)
	}
	return fmt.Sprintf("Showing %d results for \"%s\"", n, f.Search)
}
