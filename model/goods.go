package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goods 库存商品文档，存于 goods 集合
type Goods struct {
	ID        *primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty" doc:"文档ID"`
	Name      string              `json:"name" bson:"name" example:"苹果" doc:"商品名称"`
	Category  string              `json:"category,omitempty" bson:"category,omitempty" example:"水果" doc:"商品分类"`
	Stock     int                 `json:"stock" bson:"stock" example:"100" doc:"当前库存数量"`
	Price     float64             `json:"price" bson:"price" example:"5.0" doc:"参考单价"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at" doc:"更新时间"`
}
