package pagination

const (
	// DefaultPageSize is the standard page size when none is provided.
	DefaultPageSize = 12
	// MaxPageSize caps how many rows any listing can request.
	MaxPageSize = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Window is a resolved slice range over a result set of known length.
type Window struct {
	Page       int
	PageSize   int
	Start      int
	End        int
	TotalPages int
}

// NormalizePageSize enforces the default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NormalizePage clamps page numbers to 1-based.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Resolve computes the [Start, End) range for the requested page. Pages past the end
// yield an empty window rather than an error.
func Resolve(params Params, total int) Window {
	size := NormalizePageSize(params.PageSize)
	page := NormalizePage(params.Page)
	if total < 0 {
		total = 0
	}

	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return Window{
		Page:       page,
		PageSize:   size,
		Start:      start,
		End:        end,
		TotalPages: (total + size - 1) / size,
	}
}
