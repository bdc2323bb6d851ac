package etprimitive

// 分页默认值
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination 分页参数
type Pagination struct {
	Page  int
	Limit int
	Total int64
}

// NewPagination 规范化分页参数：page 最小为 1，limit 默认 10、最大 100
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset 查询偏移量
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages 总页数
func (p Pagination) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// HasNext 是否有下一页
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrevious 是否有上一页
func (p Pagination) HasPrevious() bool {
	return p.Page > 1
}
