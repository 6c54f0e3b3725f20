package dto

// PaginationRequest is embedded by list query DTOs.
type PaginationRequest struct {
	Page     int `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=10" binding:"omitempty,min=1,max=100"`
}

// Offset converts page/page_size into a SQL offset.
func (p *PaginationRequest) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.Limit()
}

// Limit returns the effective page size.
func (p *PaginationRequest) Limit() int {
	if p.PageSize < 1 {
		return 10
	}
	return p.PageSize
}
