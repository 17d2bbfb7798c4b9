// Package gallery is the headless state behind the story-card gallery: a
// paged, two-view (active / archived) card grid with a single edit slot and a
// confirmation gate in front of regeneration.
//
// Nothing in this package does I/O. Hosts (the terminal UI, tests) feed it
// collections and flags, forward user intents to it, and implement Actions to
// carry the resulting mutations to the backend.
package gallery

// PageSize is the number of cards per page (a 3x2 grid).
const PageSize = 6

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage clamps page into [0, TotalPages(n)-1]. It returns 0 for an empty collection.
func ClampPage(page, n int) int {
	last := TotalPages(n) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}

// PageSlice returns the items shown on page. Out-of-range pages yield an empty slice.
// The result shares its backing array with items; callers must not append to it.
func PageSlice[T any](items []T, page int) []T {
	start := page * PageSize
	if page < 0 || start >= len(items) {
		return nil
	}
	end := min(start+PageSize, len(items))
	return items[start:end:end]
}
