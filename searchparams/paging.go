package searchparams

// MaxPageIndex caps how deep any result listing can be paged.
const MaxPageIndex = 40

// Paging converts a 1-based page index into SQL offsets.
type Paging struct {
	PageSize int
	MaxPages int
}

var (
	ForumPaging = Paging{PageSize: 10, MaxPages: MaxPageIndex}
	UserPaging  = Paging{PageSize: 9, MaxPages: MaxPageIndex}
)

// ClampPage forces pageIndex into [1, MaxPages].
func (p Paging) ClampPage(pageIndex int) int {
	if pageIndex < 1 {
		return 1
	}
	if p.MaxPages > 0 && pageIndex > p.MaxPages {
		return p.MaxPages
	}
	return pageIndex
}

// Offset returns the number of rows to skip for pageIndex.
func (p Paging) Offset(pageIndex int) int {
	return (p.ClampPage(pageIndex) - 1) * p.PageSize
}

// PageCount returns how many pages total results fill, capped at MaxPages.
func (p Paging) PageCount(total int) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	n := (total + p.PageSize - 1) / p.PageSize
	if p.MaxPages > 0 && n > p.MaxPages {
		return p.MaxPages
	}
	return n
}
