package routes

const defaultPageSize = 100

type PaginatedRequest struct {
	Offset int `json:"offset" validate:"gte=0"`
	Limit  int `json:"limit" validate:"gte=0,lte=100"` // 0 for the default page size
}

func (r PaginatedRequest) pageSize() int {
	if r.Limit == 0 {
		return defaultPageSize
	}
	return r.Limit
}
