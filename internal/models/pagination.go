package models

const DefaultPageLimit = 10

type Pagination struct {
	Total   int64 `json:"total"`
	Count   int   `json:"count"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

func NewPagination(total int64, count, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Count:   count,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+count) < total,
	}
}
