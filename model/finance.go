package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Finance 月度经营数据文档，存于 finance 集合
type Finance struct {
	ID            *primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty" doc:"文档ID"`
	Month         string              `json:"month" bson:"month" example:"2026-08" doc:"月份"`
	Profit        float64             `json:"profit" bson:"profit" doc:"利润"`
	Turnover      float64             `json:"turnover" bson:"turnover" doc:"营业额"`
	OrderQuantity int                 `json:"order_quantity" bson:"order_quantity" doc:"订单数量"`
}
