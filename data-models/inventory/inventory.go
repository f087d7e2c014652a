package inventory

import (
	"mogutou-backend/data-models/common"
	"mogutou-backend/model"
)

// GetGoodsInput 查询库存商品列表
type GetGoodsInput struct {
	common.BasePaginationInput
	Keyword string `query:"keyword" doc:"商品名称关键字，可选"`
}

// GoodsData 库存列表数据
type GoodsData struct {
	Goods      []*model.Goods        `json:"goods"`
	Pagination common.PaginationInfo `json:"pagination"`
}

// GoodsResponse 库存列表响应
type GoodsResponse struct {
	Body GoodsData
}

// StockInput 出入库操作
type StockInput struct {
	Body struct {
		Name     string `json:"name" minLength:"1" example:"苹果" doc:"商品名称"`
		Quantity int    `json:"quantity" minimum:"1" example:"10" doc:"数量"`
	}
}

// StockData 出入库结果
type StockData struct {
	Name    string `json:"name" doc:"商品名称"`
	Stock   int    `json:"stock" doc:"操作后的库存"`
	Message string `json:"message" doc:"结果说明"`
}

// StockResponse 出入库响应
type StockResponse struct {
	Body StockData
}
