package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"mogutou-backend/data-models/common"
	inventoryModels "mogutou-backend/data-models/inventory"
	"mogutou-backend/service"
)

// InventoryController 库存查询与出入库
type InventoryController struct {
	logger           zerolog.Logger
	inventoryService *service.InventoryService
}

func NewInventoryController(logger zerolog.Logger, inventoryService *service.InventoryService) *InventoryController {
	return &InventoryController{
		logger:           logger.With().Str("module", "inventory_controller").Logger(),
		inventoryService: inventoryService,
	}
}

func (c *InventoryController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-goods",
		Method:      http.MethodGet,
		Path:        "/inventory/goods",
		Summary:     "查询库存商品列表",
		Tags:        []string{"Inventory"},
	}, c.handleGetGoods)

	huma.Register(api, huma.Operation{
		OperationID: "stock-in",
		Method:      http.MethodPost,
		Path:        "/inventory/stock-in",
		Summary:     "商品入库",
		Description: "商品不存在时自动建档",
		Tags:        []string{"Inventory"},
	}, c.handleStockIn)

	huma.Register(api, huma.Operation{
		OperationID: "stock-out",
		Method:      http.MethodPost,
		Path:        "/inventory/stock-out",
		Summary:     "商品出库",
		Description: "库存不足时拒绝出库",
		Tags:        []string{"Inventory"},
	}, c.handleStockOut)
}

func (c *InventoryController) handleGetGoods(ctx context.Context, req *inventoryModels.GetGoodsInput) (*inventoryModels.GoodsResponse, error) {
	pageNum := req.GetPageNum()
	pageSize := req.GetPageSize()

	goods, total, err := c.inventoryService.GetGoods(ctx, req.Keyword, pageNum, pageSize)
	if err != nil {
		c.logger.Error().Err(err).Msg("查询库存商品失败")
		return nil, huma.Error500InternalServerError("查询库存商品失败")
	}

	return &inventoryModels.GoodsResponse{
		Body: inventoryModels.GoodsData{
			Goods:      goods,
			Pagination: common.NewPaginationInfo(pageNum, pageSize, total),
		},
	}, nil
}

func (c *InventoryController) handleStockIn(ctx context.Context, req *inventoryModels.StockInput) (*inventoryModels.StockResponse, error) {
	stock, err := c.inventoryService.StockIn(ctx, req.Body.Name, req.Body.Quantity)
	if err != nil {
		c.logger.Error().Err(err).Str("name", req.Body.Name).Msg("入库失败")
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	return &inventoryModels.StockResponse{
		Body: inventoryModels.StockData{
			Name:    req.Body.Name,
			Stock:   stock,
			Message: fmt.Sprintf("入库成功，当前库存 %d", stock),
		},
	}, nil
}

func (c *InventoryController) handleStockOut(ctx context.Context, req *inventoryModels.StockInput) (*inventoryModels.StockResponse, error) {
	stock, err := c.inventoryService.StockOut(ctx, req.Body.Name, req.Body.Quantity)
	if err != nil {
		c.logger.Warn().Err(err).Str("name", req.Body.Name).Msg("出库失败")
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	return &inventoryModels.StockResponse{
		Body: inventoryModels.StockData{
			Name:    req.Body.Name,
			Stock:   stock,
			Message: fmt.Sprintf("出库成功，当前库存 %d", stock),
		},
	}, nil
}
