package search

// AtBottom reports whether a list scrolled to offset, showing visible of total
// lines, is within threshold lines of its end. Content that fits entirely
// counts as scrolled to the bottom. A threshold of 0 requires the last line to
// be visible.
func AtBottom(offset, visible, total, threshold int) bool {
	if visible <= 0 {
		return false
	}
	if threshold < 0 {
		threshold = 0
	}
	if total <= visible {
		return true
	}
	return offset+visible >= total-threshold
}
