package logic

// MoveSelection moves index by delta within [0, count). An empty list always
// yields 0.
func MoveSelection(index, delta, count int) int {
	if count <= 0 {
		return 0
	}
	index += delta
	if index < 0 {
		index = 0
	}
	if index >= count {
		index = count - 1
	}
	return index
}

// EnsureVisible returns a viewport offset that keeps item index (each item
// itemHeight lines tall) fully inside a viewport of height lines, moving the
// current offset as little as possible
func EnsureVisible(index, itemHeight, offset, height, totalLines int) int {
	if itemHeight < 1 {
		itemHeight = 1
	}
	if height < 1 {
		return 0
	}

	top := index * itemHeight
	bottom := top + itemHeight

	// If selected item is above viewport, scroll up
	if top < offset {
		offset = top
	}
	// If selected item is below viewport, scroll down
	if bottom > offset+height {
		offset = bottom - height
	}

	// Don't leave empty space below the last line
	maxOffset := totalLines - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// PageSize returns how many whole items fit in height lines, at least 1
func PageSize(itemHeight, height int) int {
	if itemHeight < 1 {
		itemHeight = 1
	}
	if n := height / itemHeight; n > 1 {
		return n
	}
	return 1
}
