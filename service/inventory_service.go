package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mogutou-backend/data-models/common"
	"mogutou-backend/infra"
	"mogutou-backend/metrics"
	"mogutou-backend/model"
)

// InventoryService 库存业务服务
type InventoryService struct {
	logger  zerolog.Logger
	mongodb *infra.MongoDB
}

func NewInventoryService(logger zerolog.Logger, mongodb *infra.MongoDB) *InventoryService {
	return &InventoryService{
		logger:  logger.With().Str("module", "inventory_service").Logger(),
		mongodb: mongodb,
	}
}

// GetGoods 分页查询库存商品，支持名称关键字过滤
func (s *InventoryService) GetGoods(ctx context.Context, keyword string, pageNum, pageSize int) ([]*model.Goods, int64, error) {
	coll := s.mongodb.GetCollection(infra.CollectionGoods)

	filter := bson.M{}
	if keyword != "" {
		filter["name"] = bson.M{"$regex": keyword}
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("统计库存商品失败: %w", err)
	}

	skip := int64(common.CalculateOffset(pageNum, pageSize))
	findOpts := options.Find().
		SetSort(bson.M{"name": 1}).
		SetSkip(skip).
		SetLimit(int64(pageSize))

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("查询库存商品失败: %w", err)
	}
	defer cursor.Close(ctx)

	var goods []*model.Goods
	if err := cursor.All(ctx, &goods); err != nil {
		return nil, 0, fmt.Errorf("解析库存商品失败: %w", err)
	}
	return goods, total, nil
}

// GetGoodsByName 按名称查询单个商品
func (s *InventoryService) GetGoodsByName(ctx context.Context, name string) (*model.Goods, error) {
	coll := s.mongodb.GetCollection(infra.CollectionGoods)

	var goods model.Goods
	err := coll.FindOne(ctx, bson.M{"name": name}).Decode(&goods)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	return &goods, nil
}

// StockIn 入库。商品不存在时自动建档。
func (s *InventoryService) StockIn(ctx context.Context, name string, quantity int) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("商品名称不能为空")
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("入库数量必须大于 0")
	}

	start := time.Now()
	coll := s.mongodb.GetCollection(infra.CollectionGoods)

	var goods model.Goods
	err := coll.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{
			"$inc": bson.M{"stock": quantity},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&goods)
	if err != nil {
		metrics.RecordServiceOperation(metrics.ServiceTypeInventory, metrics.OperationStockIn, metrics.StatusError, metrics.SourceAPI, time.Since(start))
		return 0, fmt.Errorf("入库失败: %w", err)
	}

	metrics.RecordServiceOperation(metrics.ServiceTypeInventory, metrics.OperationStockIn, metrics.StatusSuccess, metrics.SourceAPI, time.Since(start))
	s.logger.Info().Str("name", name).Int("quantity", quantity).Int("stock", goods.Stock).Msg("入库完成")
	return goods.Stock, nil
}

// StockOut 出库。库存不足时拒绝并报告当前库存。
func (s *InventoryService) StockOut(ctx context.Context, name string, quantity int) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("商品名称不能为空")
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("出库数量必须大于 0")
	}

	start := time.Now()
	coll := s.mongodb.GetCollection(infra.CollectionGoods)

	// 条件更新保证扣减不会把库存打成负数
	var goods model.Goods
	err := coll.FindOneAndUpdate(ctx,
		bson.M{"name": name, "stock": bson.M{"$gte": quantity}},
		bson.M{
			"$inc": bson.M{"stock": -quantity},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&goods)
	if err == nil {
		metrics.RecordServiceOperation(metrics.ServiceTypeInventory, metrics.OperationStockOut, metrics.StatusSuccess, metrics.SourceAPI, time.Since(start))
		s.logger.Info().Str("name", name).Int("quantity", quantity).Int("stock", goods.Stock).Msg("出库完成")
		return goods.Stock, nil
	}
	metrics.RecordServiceOperation(metrics.ServiceTypeInventory, metrics.OperationStockOut, metrics.StatusError, metrics.SourceAPI, time.Since(start))
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("出库失败: %w", err)
	}

	existing, lookupErr := s.GetGoodsByName(ctx, name)
	if lookupErr != nil {
		return 0, lookupErr
	}
	if existing == nil {
		return 0, fmt.Errorf("商品「%s」不存在", name)
	}
	return existing.Stock, fmt.Errorf("库存不足，当前库存: %d", existing.Stock)
}

// InventorySummary 库存概览文本，供销售/库存查询指令使用
func (s *InventoryService) InventorySummary(ctx context.Context, limit int) (string, error) {
	goods, _, err := s.GetGoods(ctx, "", 1, limit)
	if err != nil {
		return "", err
	}
	if len(goods) == 0 {
		return "当前没有库存记录", nil
	}

	summary := fmt.Sprintf("共 %d 种商品：\n", len(goods))
	for _, g := range goods {
		summary += fmt.Sprintf("• %s：%d 件\n", g.Name, g.Stock)
	}
	return summary, nil
}
