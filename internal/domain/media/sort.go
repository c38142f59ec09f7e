package media

import (
	"sort"
	"strings"
)

// normalizeTitle folds a title for comparison. Empty titles compare as
// "unknown".
func normalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return "unknown"
	}
	return t
}

// CompareTitles orders two titles case-insensitively, ignoring surrounding
// whitespace. It returns -1, 0 or 1.
func CompareTitles(a, b string) int {
	left, right := normalizeTitle(a), normalizeTitle(b)
	switch {
	case left == right:
		return 0
	case left < right:
		return -1
	default:
		return 1
	}
}

// SortByTitle sorts items in place with CompareTitles. Items with equal
// titles keep their relative order.
func SortByTitle[T any](items []T, title func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return CompareTitles(title(items[i]), title(items[j])) < 0
	})
}

// SortEntities sorts entities by title.
func SortEntities(items []*Entity) {
	SortByTitle(items, func(e *Entity) string { return e.Title })
}

// MatchesPrefix reports whether title starts with prefix after both are
// lowercased and trimmed. An empty prefix matches everything.
func MatchesPrefix(title, prefix string) bool {
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(title)), p)
}

// FilterByPrefix returns the items whose title matches prefix, preserving
// order. The input slice is never modified.
func FilterByPrefix[T any](items []T, prefix string, title func(T) string) []T {
	if strings.TrimSpace(prefix) == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if MatchesPrefix(title(item), prefix) {
			out = append(out, item)
		}
	}
	return out
}

// FilterKind returns the entities of the given kind, preserving order.
func FilterKind(items []*Entity, kind Kind) []*Entity {
	out := make([]*Entity, 0, len(items))
	for _, e := range items {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// IndexOf finds target in items by identity, or returns -1.
func IndexOf(items []*Entity, target *Entity) int {
	for i, e := range items {
		if e == target {
			return i
		}
	}
	return -1
}
