package order

import (
	"mogutou-backend/data-models/common"
	"mogutou-backend/model"
)

// GetOrdersInput 查询订单列表
type GetOrdersInput struct {
	common.BasePaginationInput
	Type   string `query:"type" enum:"SALE,PURCHASE," doc:"订单类型过滤，可选"`
	Status string `query:"status" doc:"订单状态过滤，可选"`
}

// CreateOrderInput 创建订单
type CreateOrderInput struct {
	Body struct {
		Type     model.OrderType      `json:"type" enum:"SALE,PURCHASE" example:"SALE" doc:"订单类型"`
		Customer string               `json:"customer" minLength:"1" example:"张三" doc:"客户或供应商名称"`
		Products []model.OrderProduct `json:"products" minItems:"1" doc:"商品明细"`
	}
}

// OrderResponse 单笔订单响应
type OrderResponse struct {
	Body *model.Order
}

// OrdersData 订单列表数据
type OrdersData struct {
	Orders     []*model.Order        `json:"orders"`
	Pagination common.PaginationInfo `json:"pagination"`
}

// OrdersResponse 订单列表响应
type OrdersResponse struct {
	Body OrdersData
}

// OrderIDInput 按业务订单号操作
type OrderIDInput struct {
	OrderID int64 `path:"orderID" minimum:"1" example:"123" doc:"业务订单号"`
}

// ConfirmOrderInput 确认订单
type ConfirmOrderInput struct {
	OrderID int64 `path:"orderID" minimum:"1" example:"123" doc:"业务订单号"`
	Body    struct {
		Freight float64 `json:"freight" minimum:"0" example:"20" doc:"运费"`
	}
}

// DeleteOrderData 删除结果
type DeleteOrderData struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"订单已删除"`
}

// DeleteOrderResponse 删除订单响应
type DeleteOrderResponse struct {
	Body DeleteOrderData
}
