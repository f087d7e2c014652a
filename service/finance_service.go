package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mogutou-backend/infra"
	"mogutou-backend/model"
)

// FinanceService 经营数据服务，为分析类指令提供数据源
type FinanceService struct {
	logger  zerolog.Logger
	mongodb *infra.MongoDB
}

func NewFinanceService(logger zerolog.Logger, mongodb *infra.MongoDB) *FinanceService {
	return &FinanceService{
		logger:  logger.With().Str("module", "finance_service").Logger(),
		mongodb: mongodb,
	}
}

// GetLatest 取最近一个月的经营数据，没有任何记录时返回 nil
func (s *FinanceService) GetLatest(ctx context.Context) (*model.Finance, error) {
	coll := s.mongodb.GetCollection(infra.CollectionFinance)

	var finance model.Finance
	err := coll.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.M{"month": -1})).Decode(&finance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询经营数据失败: %w", err)
	}
	return &finance, nil
}

// GetRecentMonths 按月份倒序取最近 limit 个月的经营数据
func (s *FinanceService) GetRecentMonths(ctx context.Context, limit int) ([]*model.Finance, error) {
	coll := s.mongodb.GetCollection(infra.CollectionFinance)

	findOpts := options.Find().
		SetSort(bson.M{"month": -1}).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("查询经营数据失败: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.Finance
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("解析经营数据失败: %w", err)
	}
	return records, nil
}

// UpsertMonth 写入或更新某个月份的经营数据
func (s *FinanceService) UpsertMonth(ctx context.Context, record *model.Finance) error {
	if record.Month == "" {
		return fmt.Errorf("月份不能为空")
	}

	coll := s.mongodb.GetCollection(infra.CollectionFinance)
	_, err := coll.UpdateOne(ctx,
		bson.M{"month": record.Month},
		bson.M{"$set": bson.M{
			"profit":         record.Profit,
			"turnover":       record.Turnover,
			"order_quantity": record.OrderQuantity,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("写入经营数据失败: %w", err)
	}
	return nil
}

// FinanceSummary 经营数据摘要文本，供分析提示词与本地兜底分析使用
func (s *FinanceService) FinanceSummary(ctx context.Context) (string, error) {
	latest, err := s.GetLatest(ctx)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "暂无经营数据记录", nil
	}
	return fmt.Sprintf("最新月份 %s：利润 %.2f 元，营业额 %.2f 元，订单 %d 笔",
		latest.Month, latest.Profit, latest.Turnover, latest.OrderQuantity), nil
}
