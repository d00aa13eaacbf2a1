// Package pagination converts 1-based page numbers into offset/limit windows.
package pagination

import "math"

// Page is the window for one page of results.
type Page struct {
	Offset     int
	Limit      int
	TotalPages int
}

// Paginate computes the window for page (1-based) with pageSize items per page
// over totalCount items. Page is not validated: a page below 1 yields a negative
// offset, and callers are expected to normalize it first. Pages too large for
// the offset to fit in an int are clamped.
func Paginate(page, pageSize int, totalCount int64) Page {
	page = clampPage(page, pageSize)
	p := Page{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if pageSize > 0 && totalCount > 0 {
		size := int64(pageSize)
		p.TotalPages = int((totalCount + size - 1) / size)
	}
	return p
}

// Normalize clamps request input: page below 1 becomes 1, a non-positive size
// becomes defaultSize, and sizes above maxSize are capped (maxSize <= 0 means no cap).
// A page whose offset would overflow is lowered to the last representable page,
// which is always past the end of the data.
func Normalize(page, size, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return clampPage(page, size), size
}

func clampPage(page, size int) int {
	if size > 0 && page > math.MaxInt/size {
		return math.MaxInt / size
	}
	return page
}
