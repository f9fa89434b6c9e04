package discovery

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

const windowDelta = 2

// PageWindow returns the page numbers to render for pagination controls: the
// first and last page, current±2 in between, and Ellipsis wherever pages are
// skipped. It returns nil when there is at most one page.
func PageWindow(current, totalPages int) []int {
	if totalPages <= 1 {
		return nil
	}

	// out-of-range pages draw the window of the nearest real page
	current = max(1, min(current, totalPages))

	out := []int{1}
	if current-windowDelta > 2 {
		out = append(out, Ellipsis)
	}
	for i := max(2, current-windowDelta); i <= min(totalPages-1, current+windowDelta); i++ {
		out = append(out, i)
	}
	if current+windowDelta < totalPages-1 {
		out = append(out, Ellipsis)
	}
	return append(out, totalPages)
}
