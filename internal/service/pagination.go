package service

// Pagination 列表响应的分页元信息
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizeLimit(limit, def, max int) int {
	if limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func newPagination(total int64, page, limit int) *Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}
