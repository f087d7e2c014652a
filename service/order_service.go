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
	"mogutou-backend/model"
)

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("订单不存在")
	// ErrOrderAlreadyConfirmed 订单已确认，不可重复确认
	ErrOrderAlreadyConfirmed = errors.New("订单请勿重复确认")
)

// OrderService 订单业务服务
type OrderService struct {
	logger    zerolog.Logger
	mongodb   *infra.MongoDB
	inventory *InventoryService
}

func NewOrderService(logger zerolog.Logger, mongodb *infra.MongoDB, inventory *InventoryService) *OrderService {
	return &OrderService{
		logger:    logger.With().Str("module", "order_service").Logger(),
		mongodb:   mongodb,
		inventory: inventory,
	}
}

// nextOrderID 从计数器集合分配递增的业务订单号
func (s *OrderService) nextOrderID(ctx context.Context) (int64, error) {
	coll := s.mongodb.GetCollection(infra.CollectionCounters)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := coll.FindOneAndUpdate(ctx,
		bson.M{"_id": "order_id"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("分配订单号失败: %w", err)
	}
	return counter.Seq, nil
}

// CreateOrder 创建订单，类型归一为 SALE/PURCHASE，默认 SALE
func (s *OrderService) CreateOrder(ctx context.Context, orderType model.OrderType, customer string, products []model.OrderProduct) (*model.Order, error) {
	if customer == "" {
		return nil, fmt.Errorf("客户名称不能为空")
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("商品明细不能为空")
	}
	for _, p := range products {
		if p.Name == "" {
			return nil, fmt.Errorf("商品名称不能为空")
		}
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("商品「%s」数量必须大于 0", p.Name)
		}
		if p.UnitPrice < 0 {
			return nil, fmt.Errorf("商品「%s」单价不能为负数", p.Name)
		}
	}

	if orderType != model.OrderTypePurchase {
		orderType = model.OrderTypeSale
	}

	orderID, err := s.nextOrderID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		OrderID:   orderID,
		Type:      orderType,
		Status:    model.OrderStatusPending,
		Customer:  customer,
		Products:  products,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.Amount = order.TotalAmount()

	coll := s.mongodb.GetCollection(infra.CollectionOrders)
	if _, err := coll.InsertOne(ctx, order); err != nil {
		return nil, fmt.Errorf("保存订单失败: %w", err)
	}

	s.logger.Info().Int64("order_id", orderID).Str("type", string(orderType)).
		Str("customer", customer).Float64("amount", order.Amount).Msg("订单创建成功")
	return order, nil
}

// GetOrders 分页查询订单，支持类型与状态过滤
func (s *OrderService) GetOrders(ctx context.Context, orderType, status string, pageNum, pageSize int) ([]*model.Order, int64, error) {
	coll := s.mongodb.GetCollection(infra.CollectionOrders)

	filter := bson.M{}
	if orderType != "" {
		filter["type"] = orderType
	}
	if status != "" {
		filter["status"] = status
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("统计订单数量失败: %w", err)
	}

	skip := int64(common.CalculateOffset(pageNum, pageSize))
	findOpts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(skip).
		SetLimit(int64(pageSize))

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("查询订单列表失败: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("解析订单列表失败: %w", err)
	}
	return orders, total, nil
}

// GetOrderByID 按业务订单号查询
func (s *OrderService) GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error) {
	coll := s.mongodb.GetCollection(infra.CollectionOrders)

	var order model.Order
	err := coll.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	return &order, nil
}

// GetOrdersByCustomer 查询某客户的订单
func (s *OrderService) GetOrdersByCustomer(ctx context.Context, customer string, limit int64) ([]*model.Order, error) {
	coll := s.mongodb.GetCollection(infra.CollectionOrders)

	findOpts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cursor, err := coll.Find(ctx, bson.M{"customer": customer}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("查询客户订单失败: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("解析客户订单失败: %w", err)
	}
	return orders, nil
}

// GetRecentOrders 取最近的订单，供分析使用
func (s *OrderService) GetRecentOrders(ctx context.Context, limit int64) ([]*model.Order, error) {
	coll := s.mongodb.GetCollection(infra.CollectionOrders)

	findOpts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cursor, err := coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("解析订单失败: %w", err)
	}
	return orders, nil
}

// DeleteOrder 删除订单，不存在时返回 ErrOrderNotFound
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	coll := s.mongodb.GetCollection(infra.CollectionOrders)

	result, err := coll.DeleteOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return fmt.Errorf("删除订单失败: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrOrderNotFound
	}

	s.logger.Info().Int64("order_id", orderID).Msg("订单已删除")
	return nil
}

// ConfirmOrder 确认订单：写入运费、状态置为已完成，并联动库存。
// 采购订单入库，销售订单出库；已完成订单不可重复确认。
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID int64, freight float64) (*model.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusCompleted {
		return nil, ErrOrderAlreadyConfirmed
	}

	for _, p := range order.Products {
		if order.Type == model.OrderTypePurchase {
			if _, err := s.inventory.StockIn(ctx, p.Name, p.Quantity); err != nil {
				return nil, err
			}
		} else {
			if _, err := s.inventory.StockOut(ctx, p.Name, p.Quantity); err != nil {
				return nil, err
			}
		}
	}

	coll := s.mongodb.GetCollection(infra.CollectionOrders)
	update := bson.M{"$set": bson.M{
		"status":     model.OrderStatusCompleted,
		"freight":    freight,
		"updated_at": time.Now(),
	}}
	if _, err := coll.UpdateOne(ctx, bson.M{"order_id": orderID}, update); err != nil {
		return nil, fmt.Errorf("更新订单状态失败: %w", err)
	}

	order.Status = model.OrderStatusCompleted
	order.Freight = freight

	s.logger.Info().Int64("order_id", orderID).Float64("freight", freight).Msg("订单确认完成")
	return order, nil
}
