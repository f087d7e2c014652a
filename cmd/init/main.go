package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"mogutou-backend/infra"
	"mogutou-backend/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

type Config struct {
	MongoDB struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongodb"`
}

func main() {
	// 读取配置，自动寻找配置文件位置
	configPaths := []string{
		"config.yml",       // 当前目录
		"../config.yml",    // 上层目录 (cmd/init -> 项目根目录)
		"../../config.yml", // 上上层目录
	}

	var configData []byte
	var err error
	var usedPath string

	for _, path := range configPaths {
		configData, err = os.ReadFile(path)
		if err == nil {
			usedPath = path
			break
		}
	}

	if err != nil {
		log.Fatalf("❌ 无法找到 config.yml 配置文件，已尝试路径: %v", configPaths)
	}

	fmt.Printf("✅ 找到配置文件: %s\n", usedPath)

	var cfg Config
	if err := yaml.Unmarshal(configData, &cfg); err != nil {
		log.Fatalf("❌ 解析 config.yml 失败: %v", err)
	}

	// 连接 MongoDB
	mongoConfig := infra.MongoConfig{
		URI:      cfg.MongoDB.URI,
		Database: cfg.MongoDB.Database,
	}
	mongoDB, err := infra.NewMongoDB(mongoConfig)
	if err != nil {
		log.Fatalf("❌ 连接 MongoDB 失败: %v", err)
	}
	defer mongoDB.Close(context.Background())

	ctx := context.Background()

	fmt.Println("🚀 开始初始化蘑菇头 ERP 数据库...")
	fmt.Println("🎯 针对以下场景优化：")
	fmt.Println("   • 按业务订单号的查询、删除与确认")
	fmt.Println("   • 客户维度与时间范围的订单列表")
	fmt.Println("   • 库存商品的名称查询与出入库")
	fmt.Println("   • 月度经营数据的分析查询")
	fmt.Println()

	if err := createOptimizedIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("❌ 创建索引失败: %v", err)
	}

	if err := seedDemoData(ctx, mongoDB); err != nil {
		log.Fatalf("❌ 写入演示数据失败: %v", err)
	}

	if err := printIndexInfo(ctx, mongoDB); err != nil {
		fmt.Printf("⚠️  显示索引信息失败: %v\n", err)
	}

	fmt.Println("✅ 数据库初始化完成！")
}

// createOptimizedIndexes 创建核心查询索引
func createOptimizedIndexes(ctx context.Context, mongoDB *infra.MongoDB) error {
	fmt.Println("📝 创建核心索引...")

	ordersCollection := mongoDB.GetCollection(infra.CollectionOrders)
	fmt.Println("🎯 优化 orders 集合...")

	orderIndexes := []mongo.IndexModel{
		// 【业务订单号索引】自然语言指令按订单号操作
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_order_id"),
		},

		// 【客户订单查询】支持按客户查最近订单
		{
			Keys: bson.D{
				{Key: "customer", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("customer_orders_query"),
		},

		// 【状态筛选索引】支持待确认订单列表
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("order_status_query"),
		},

		// 【时间范围查询】支持统计与分析
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("time_range_query"),
		},

		// 【类型统计索引】销售/采购维度统计
		{
			Keys: bson.D{
				{Key: "type", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("order_type_query"),
		},
	}

	if err := createIndexesSafely(ctx, ordersCollection, orderIndexes, "orders"); err != nil {
		return err
	}
	fmt.Println("✅ orders 集合索引创建完成")

	goodsCollection := mongoDB.GetCollection(infra.CollectionGoods)
	fmt.Println("🎯 优化 goods 集合...")

	goodsIndexes := []mongo.IndexModel{
		// 【商品名称唯一索引】出入库按名称定位
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_goods_name"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetName("goods_category_query"),
		},
	}

	if err := createIndexesSafely(ctx, goodsCollection, goodsIndexes, "goods"); err != nil {
		return err
	}
	fmt.Println("✅ goods 集合索引创建完成")

	financeCollection := mongoDB.GetCollection(infra.CollectionFinance)
	fmt.Println("🎯 优化 finance 集合...")

	financeIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "month", Value: -1}},
			Options: options.Index().SetUnique(true).SetName("unique_finance_month"),
		},
	}

	if err := createIndexesSafely(ctx, financeCollection, financeIndexes, "finance"); err != nil {
		return err
	}
	fmt.Println("✅ finance 集合索引创建完成")

	return nil
}

// createIndexesSafely 安全地创建索引，跳过已存在的索引
func createIndexesSafely(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel, collectionName string) error {
	for _, index := range indexes {
		// 逐一创建索引，避免批量操作因单一冲突而失败
		_, err := collection.Indexes().CreateOne(ctx, index)
		if err != nil {
			// 检查是否为索引已存在或重复键错误
			if strings.Contains(err.Error(), "IndexOptionsConflict") ||
				strings.Contains(err.Error(), "already exists") ||
				strings.Contains(err.Error(), "DuplicateKey") ||
				strings.Contains(err.Error(), "E11000 duplicate key") {
				if name := index.Options.Name; name != nil {
					fmt.Printf("   ⚠️  索引 %s 存在冲突，跳过创建 (可能已存在或数据重复)\n", *name)
				} else {
					fmt.Printf("   ⚠️  索引存在冲突，跳过创建\n")
				}
				continue
			}
			return fmt.Errorf("创建 %s 索引失败: %v", collectionName, err)
		} else {
			if name := index.Options.Name; name != nil {
				fmt.Printf("   ✅ 索引 %s 创建成功\n", *name)
			} else {
				fmt.Printf("   ✅ 索引创建成功\n")
			}
		}
	}
	return nil
}

// seedDemoData 写入演示数据，已有数据时跳过
func seedDemoData(ctx context.Context, mongoDB *infra.MongoDB) error {
	fmt.Println("🎯 写入演示数据...")

	goodsCollection := mongoDB.GetCollection(infra.CollectionGoods)
	count, err := goodsCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("检查 goods 集合失败: %v", err)
	}
	if count > 0 {
		fmt.Println("   ⚠️  goods 集合已有数据，跳过演示数据")
		return nil
	}

	now := time.Now()
	demoGoods := []interface{}{
		model.Goods{Name: "苹果", Category: "水果", Stock: 100, Price: 5, UpdatedAt: now},
		model.Goods{Name: "矿泉水", Category: "饮料", Stock: 200, Price: 2, UpdatedAt: now},
		model.Goods{Name: "可乐", Category: "饮料", Stock: 150, Price: 3, UpdatedAt: now},
		model.Goods{Name: "大米", Category: "粮油", Stock: 80, Price: 60, UpdatedAt: now},
	}
	if _, err := goodsCollection.InsertMany(ctx, demoGoods); err != nil {
		return fmt.Errorf("写入演示商品失败: %v", err)
	}
	fmt.Printf("   ✅ 已写入 %d 种演示商品\n", len(demoGoods))

	financeCollection := mongoDB.GetCollection(infra.CollectionFinance)
	month := now.Format("2006-01")
	demoFinance := model.Finance{Month: month, Profit: 12000, Turnover: 45000, OrderQuantity: 86}
	if _, err := financeCollection.UpdateOne(ctx,
		bson.M{"month": month},
		bson.M{"$set": bson.M{
			"profit":         demoFinance.Profit,
			"turnover":       demoFinance.Turnover,
			"order_quantity": demoFinance.OrderQuantity,
		}},
		options.Update().SetUpsert(true),
	); err != nil {
		return fmt.Errorf("写入演示经营数据失败: %v", err)
	}
	fmt.Printf("   ✅ 已写入 %s 演示经营数据\n", month)

	return nil
}

// printIndexInfo 显示各集合的索引信息
func printIndexInfo(ctx context.Context, mongoDB *infra.MongoDB) error {
	collections := []string{
		infra.CollectionOrders,
		infra.CollectionGoods,
		infra.CollectionFinance,
		infra.CollectionCounters,
	}

	fmt.Println("\n📊 索引创建报告:")
	fmt.Println(strings.Repeat("=", 60))

	for _, collName := range collections {
		collection := mongoDB.GetCollection(collName)
		cursor, err := collection.Indexes().List(ctx)
		if err != nil {
			continue // 集合可能不存在
		}

		var indexes []bson.M
		if err := cursor.All(ctx, &indexes); err != nil {
			continue
		}

		if len(indexes) > 0 {
			fmt.Printf("📁 %s: %d 个索引\n", collName, len(indexes))
			for i, index := range indexes {
				if name, ok := index["name"].(string); ok {
					if keys, ok := index["key"].(bson.M); ok {
						var keyStrs []string
						for key, direction := range keys {
							dir := "1"
							if d, ok := direction.(int32); ok && d == -1 {
								dir = "-1"
							}
							keyStrs = append(keyStrs, fmt.Sprintf("%s:%s", key, dir))
						}

						unique := ""
						if u, ok := index["unique"].(bool); ok && u {
							unique = " [UNIQUE]"
						}

						fmt.Printf("   %d. %s%s\n", i+1, name, unique)
						fmt.Printf("      └─ %v\n", keyStrs)
					}
				}
			}
			fmt.Println()
		}
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("🎯 关键优化说明:")
	fmt.Println("   • unique_order_id: 业务订单号唯一，指令按订单号操作走索引")
	fmt.Println("   • customer_orders_query: 客户维度查询最近订单")
	fmt.Println("   • unique_goods_name: 出入库按商品名称原子更新")
	fmt.Println("   • unique_finance_month: 月度经营数据按月份幂等写入")
	fmt.Println(strings.Repeat("=", 60))

	return nil
}
