package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderProduct 订单内单项商品
type OrderProduct struct {
	Name      string  `json:"name" bson:"name" example:"苹果" doc:"商品名称"`
	Quantity  int     `json:"quantity" bson:"quantity" example:"10" doc:"数量"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price" example:"5.0" doc:"单价，0 表示暂未确定"`
}

// Amount 单项金额
func (p OrderProduct) Amount() float64 {
	return float64(p.Quantity) * p.UnitPrice
}

// Order 订单文档，存于 orders 集合
type Order struct {
	ID        *primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty" doc:"文档ID"`
	OrderID   int64               `json:"order_id" bson:"order_id" example:"123" doc:"业务订单号"`
	Type      OrderType           `json:"type" bson:"type" example:"SALE" doc:"订单类型"`
	Status    OrderStatus         `json:"status" bson:"status" example:"待确认" doc:"订单状态"`
	Customer  string              `json:"customer" bson:"customer" example:"张三" doc:"客户或供应商名称"`
	Products  []OrderProduct      `json:"products" bson:"products" doc:"商品明细"`
	Freight   float64             `json:"freight,omitempty" bson:"freight,omitempty" doc:"运费，确认时填入"`
	Amount    float64             `json:"amount" bson:"amount" doc:"商品总额"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at" doc:"创建时间"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at" doc:"更新时间"`
}

// TotalAmount 计算商品总额
func (o *Order) TotalAmount() float64 {
	var total float64
	for _, p := range o.Products {
		total += p.Amount()
	}
	return total
}
