// Package pagination slices lists into pages and computes the page links
// shown under them.
package pagination

// DefaultPerPage is the page size used when none is given.
const DefaultPerPage = 10

// Data contains pagination information for display.
type Data struct {
	CurrentPage int
	TotalPages  int
	PerPage     int
	Total       int
	HasPrevious bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// Pages returns the page links to render. -1 marks an ellipsis.
func (d Data) Pages() []int {
	return PageRange(d.CurrentPage, d.TotalPages)
}

// New computes pagination for total items. page is clamped into range.
func New(total, page, perPage int) Data {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return Data{
		CurrentPage: page,
		TotalPages:  totalPages,
		PerPage:     perPage,
		Total:       total,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
	}
}

// Paginate returns the items on page and the pagination for the full list.
func Paginate[T any](items []T, page, perPage int) ([]T, Data) {
	d := New(len(items), page, perPage)
	start := (d.CurrentPage - 1) * d.PerPage
	if start >= len(items) {
		return []T{}, d
	}
	end := start + d.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], d
}

// PageRange returns a slice of page numbers for pagination display.
// Returns -1 for ellipsis positions.
func PageRange(currentPage, totalPages int) []int {
	if totalPages <= 7 {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	pages := []int{1}

	start := currentPage - 1
	end := currentPage + 1

	if start <= 2 {
		start = 2
	}
	if end >= totalPages {
		end = totalPages - 1
	}

	if start > 2 {
		pages = append(pages, -1) // ellipsis
	}

	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}

	if end < totalPages-1 {
		pages = append(pages, -1) // ellipsis
	}

	pages = append(pages, totalPages)

	return pages
}
