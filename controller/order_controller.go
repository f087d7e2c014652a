package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"mogutou-backend/data-models/common"
	orderModels "mogutou-backend/data-models/order"
	"mogutou-backend/service"
)

// OrderController 订单增删查与确认
type OrderController struct {
	logger       zerolog.Logger
	orderService *service.OrderService
}

func NewOrderController(logger zerolog.Logger, orderService *service.OrderService) *OrderController {
	return &OrderController{
		logger:       logger.With().Str("module", "order_controller").Logger(),
		orderService: orderService,
	}
}

func (c *OrderController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-orders",
		Method:      http.MethodGet,
		Path:        "/orders",
		Summary:     "查询订单列表",
		Tags:        []string{"Order"},
	}, c.handleGetOrders)

	huma.Register(api, huma.Operation{
		OperationID:   "create-order",
		Method:        http.MethodPost,
		Path:          "/orders",
		Summary:       "创建订单",
		Tags:          []string{"Order"},
		DefaultStatus: http.StatusCreated,
	}, c.handleCreateOrder)

	huma.Register(api, huma.Operation{
		OperationID: "get-order",
		Method:      http.MethodGet,
		Path:        "/orders/{orderID}",
		Summary:     "查询单笔订单",
		Tags:        []string{"Order"},
	}, c.handleGetOrder)

	huma.Register(api, huma.Operation{
		OperationID: "delete-order",
		Method:      http.MethodDelete,
		Path:        "/orders/{orderID}",
		Summary:     "删除订单",
		Tags:        []string{"Order"},
	}, c.handleDeleteOrder)

	huma.Register(api, huma.Operation{
		OperationID: "confirm-order",
		Method:      http.MethodPost,
		Path:        "/orders/{orderID}/confirm",
		Summary:     "确认订单并设置运费",
		Description: "确认后联动库存：采购订单入库，销售订单出库",
		Tags:        []string{"Order"},
	}, c.handleConfirmOrder)
}

func (c *OrderController) handleGetOrders(ctx context.Context, req *orderModels.GetOrdersInput) (*orderModels.OrdersResponse, error) {
	pageNum := req.GetPageNum()
	pageSize := req.GetPageSize()

	orders, total, err := c.orderService.GetOrders(ctx, req.Type, req.Status, pageNum, pageSize)
	if err != nil {
		c.logger.Error().Err(err).Msg("查询订单列表失败")
		return nil, huma.Error500InternalServerError("查询订单列表失败")
	}

	return &orderModels.OrdersResponse{
		Body: orderModels.OrdersData{
			Orders:     orders,
			Pagination: common.NewPaginationInfo(pageNum, pageSize, total),
		},
	}, nil
}

func (c *OrderController) handleCreateOrder(ctx context.Context, req *orderModels.CreateOrderInput) (*orderModels.OrderResponse, error) {
	order, err := c.orderService.CreateOrder(ctx, req.Body.Type, req.Body.Customer, req.Body.Products)
	if err != nil {
		c.logger.Error().Err(err).Str("customer", req.Body.Customer).Msg("创建订单失败")
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	c.logger.Info().Int64("order_id", order.OrderID).Str("customer", order.Customer).Msg("订单创建成功")
	return &orderModels.OrderResponse{Body: order}, nil
}

func (c *OrderController) handleGetOrder(ctx context.Context, req *orderModels.OrderIDInput) (*orderModels.OrderResponse, error) {
	order, err := c.orderService.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return nil, huma.Error404NotFound(fmt.Sprintf("订单 %d 不存在", req.OrderID))
		}
		c.logger.Error().Err(err).Int64("order_id", req.OrderID).Msg("查询订单失败")
		return nil, huma.Error500InternalServerError("查询订单失败")
	}
	return &orderModels.OrderResponse{Body: order}, nil
}

func (c *OrderController) handleDeleteOrder(ctx context.Context, req *orderModels.OrderIDInput) (*orderModels.DeleteOrderResponse, error) {
	if err := c.orderService.DeleteOrder(ctx, req.OrderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return nil, huma.Error404NotFound(fmt.Sprintf("订单 %d 不存在", req.OrderID))
		}
		c.logger.Error().Err(err).Int64("order_id", req.OrderID).Msg("删除订单失败")
		return nil, huma.Error500InternalServerError("删除订单失败")
	}

	c.logger.Info().Int64("order_id", req.OrderID).Msg("订单已删除")
	return &orderModels.DeleteOrderResponse{
		Body: orderModels.DeleteOrderData{
			Success: true,
			Message: fmt.Sprintf("订单 %d 已删除", req.OrderID),
		},
	}, nil
}

func (c *OrderController) handleConfirmOrder(ctx context.Context, req *orderModels.ConfirmOrderInput) (*orderModels.OrderResponse, error) {
	order, err := c.orderService.ConfirmOrder(ctx, req.OrderID, req.Body.Freight)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return nil, huma.Error404NotFound(fmt.Sprintf("订单 %d 不存在", req.OrderID))
		case errors.Is(err, service.ErrOrderAlreadyConfirmed):
			return nil, huma.Error409Conflict("订单请勿重复确认")
		}
		c.logger.Error().Err(err).Int64("order_id", req.OrderID).Msg("确认订单失败")
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	c.logger.Info().Int64("order_id", order.OrderID).Float64("freight", order.Freight).Msg("订单确认完成")
	return &orderModels.OrderResponse{Body: order}, nil
}
