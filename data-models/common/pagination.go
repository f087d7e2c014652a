package common

// PaginationInput 分页输入接口，定义分页参数的获取方法
type PaginationInput interface {
	GetPageNum() int
	GetPageSize() int
}

// BasePaginationInput 基础分页输入结构，供其他结构嵌入使用
type BasePaginationInput struct {
	PageNum  int `query:"pageNum" default:"1" doc:"当前页码（从 1 开始计数）"`
	PageSize int `query:"pageSize" default:"10" doc:"每页返回的数据条数"`
}

// GetPageNum 实现 PaginationInput 接口
func (p *BasePaginationInput) GetPageNum() int {
	if p.PageNum <= 0 {
		return 1
	}
	return p.PageNum
}

// GetPageSize 实现 PaginationInput 接口
func (p *BasePaginationInput) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	return p.PageSize
}

// PaginationInfo 分页信息结构，供全项目共用
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" doc:"当前页码"`
	PageSize    int   `json:"pageSize" doc:"每页数据条数"`
	TotalItems  int64 `json:"totalItems" doc:"总数据条数"`
	TotalPages  int   `json:"totalPages" doc:"总页数"`
}

// NewPaginationInfo 创建分页信息
func NewPaginationInfo(pageNum, pageSize int, totalItems int64) PaginationInfo {
	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	return PaginationInfo{
		CurrentPage: pageNum,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
	}
}

// CalculateOffset 计算跳过的记录数量
func CalculateOffset(pageNum, pageSize int) int {
	return (pageNum - 1) * pageSize
}
