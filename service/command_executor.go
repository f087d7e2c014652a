package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mogutou-backend/infra"
	"mogutou-backend/metrics"
	"mogutou-backend/model"
)

// CommandExecutor 指令调度器。每个动作对应一个处理方法，
// 已知的业务失败转成友好回复，未知失败以 error 上抛。
type CommandExecutor struct {
	logger    zerolog.Logger
	ai        infra.ChatClient
	orders    *OrderService
	inventory *InventoryService
	finance   *FinanceService
}

func NewCommandExecutor(logger zerolog.Logger, ai infra.ChatClient, orders *OrderService, inventory *InventoryService, finance *FinanceService) *CommandExecutor {
	return &CommandExecutor{
		logger:    logger.With().Str("module", "command_executor").Logger(),
		ai:        ai,
		orders:    orders,
		inventory: inventory,
		finance:   finance,
	}
}

// Execute 按动作分发指令并返回业务结果文本
func (e *CommandExecutor) Execute(ctx context.Context, cmd *model.Command) (string, error) {
	start := time.Now()
	result, err := e.dispatch(ctx, cmd)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	metrics.RecordPipelineOperation(metrics.OperationDispatch, status, metrics.SourceAPI, time.Since(start))

	if err != nil {
		e.logger.Error().Err(err).Str("action", string(cmd.Action)).Msg("指令执行失败")
		return "", err
	}
	e.logger.Info().Str("action", string(cmd.Action)).Dur("duration", time.Since(start)).Msg("指令执行完成")
	return result, nil
}

func (e *CommandExecutor) dispatch(ctx context.Context, cmd *model.Command) (string, error) {
	switch cmd.Action {
	case model.ActionCreateOrder:
		return e.handleCreateOrder(ctx, cmd)
	case model.ActionQueryOrder:
		return e.handleQueryOrder(ctx, cmd)
	case model.ActionDeleteOrder:
		return e.handleDeleteOrder(ctx, cmd)
	case model.ActionConfirmOrder:
		return e.handleConfirmOrder(ctx, cmd)
	case model.ActionQuerySales:
		return e.handleQuerySales(ctx)
	case model.ActionQueryInventory:
		return e.handleQueryInventory(ctx, cmd)
	case model.ActionAnalyzeFinance:
		return e.handleAnalyzeFinance(ctx)
	case model.ActionAnalyzeOrder:
		return e.handleAnalyzeOrder(ctx)
	default:
		return e.helpMessage(), nil
	}
}

func (e *CommandExecutor) handleCreateOrder(ctx context.Context, cmd *model.Command) (string, error) {
	start := time.Now()
	order, err := e.orders.CreateOrder(ctx, cmd.OrderType, cmd.Customer, cmd.Products)
	if err != nil {
		metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationCreate, metrics.StatusError, metrics.SourceAPI, time.Since(start))
		return "", err
	}
	metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationCreate, metrics.StatusSuccess, metrics.SourceAPI, time.Since(start))

	typeLabel := "销售"
	if order.Type == model.OrderTypePurchase {
		typeLabel = "采购"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s订单创建成功！\n\n", typeLabel)
	fmt.Fprintf(&b, "订单号：%d\n", order.OrderID)
	fmt.Fprintf(&b, "客户：%s\n", order.Customer)
	for _, p := range order.Products {
		fmt.Fprintf(&b, "商品：%s × %d，单价 %.2f 元\n", p.Name, p.Quantity, p.UnitPrice)
	}
	fmt.Fprintf(&b, "总金额：%.2f 元\n", order.Amount)
	fmt.Fprintf(&b, "状态：%s", order.Status)
	return b.String(), nil
}

func (e *CommandExecutor) handleQueryOrder(ctx context.Context, cmd *model.Command) (string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationQuery, metrics.StatusSuccess, metrics.SourceAPI, time.Since(start))
	}()

	if cmd.OrderID > 0 {
		order, err := e.orders.GetOrderByID(ctx, cmd.OrderID)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				return fmt.Sprintf("没有找到订单 %d，请检查订单号是否正确", cmd.OrderID), nil
			}
			return "", err
		}
		return formatOrderDetail(order), nil
	}

	if cmd.Customer != "" {
		orders, err := e.orders.GetOrdersByCustomer(ctx, cmd.Customer, 10)
		if err != nil {
			return "", err
		}
		if len(orders) == 0 {
			return fmt.Sprintf("客户「%s」暂无订单记录", cmd.Customer), nil
		}
		return formatOrderList(fmt.Sprintf("客户「%s」最近 %d 笔订单：", cmd.Customer, len(orders)), orders), nil
	}

	orders, err := e.orders.GetRecentOrders(ctx, 10)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "当前还没有任何订单，发送「为张三创建订单，苹果10个单价5元」试试吧", nil
	}
	return formatOrderList(fmt.Sprintf("最近 %d 笔订单：", len(orders)), orders), nil
}

func (e *CommandExecutor) handleDeleteOrder(ctx context.Context, cmd *model.Command) (string, error) {
	start := time.Now()
	if err := e.orders.DeleteOrder(ctx, cmd.OrderID); err != nil {
		metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationDelete, metrics.StatusError, metrics.SourceAPI, time.Since(start))
		if errors.Is(err, ErrOrderNotFound) {
			return fmt.Sprintf("没有找到订单 %d，无法删除", cmd.OrderID), nil
		}
		return "", err
	}
	metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationDelete, metrics.StatusSuccess, metrics.SourceAPI, time.Since(start))
	return fmt.Sprintf("订单 %d 已删除", cmd.OrderID), nil
}

func (e *CommandExecutor) handleConfirmOrder(ctx context.Context, cmd *model.Command) (string, error) {
	start := time.Now()
	order, err := e.orders.ConfirmOrder(ctx, cmd.OrderID, cmd.Freight)
	if err != nil {
		metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationConfirm, metrics.StatusError, metrics.SourceAPI, time.Since(start))
		switch {
		case errors.Is(err, ErrOrderNotFound):
			return fmt.Sprintf("没有找到订单 %d，无法确认", cmd.OrderID), nil
		case errors.Is(err, ErrOrderAlreadyConfirmed):
			return fmt.Sprintf("订单 %d 已经确认过了，请勿重复确认", cmd.OrderID), nil
		case strings.Contains(err.Error(), "库存不足"):
			return fmt.Sprintf("订单 %d 确认失败：%s", cmd.OrderID, err.Error()), nil
		}
		return "", err
	}

	metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationConfirm, metrics.StatusSuccess, metrics.SourceAPI, time.Since(start))
	return formatConfirmReply(order), nil
}

func formatConfirmReply(order *model.Order) string {
	stockNote := "已联动出库"
	if order.Type == model.OrderTypePurchase {
		stockNote = "已联动入库"
	}
	// 总金额含运费
	return fmt.Sprintf("订单 %d 确认完成，%s\n运费：%.2f 元\n总金额：%.2f 元",
		order.OrderID, stockNote, order.Freight, order.TotalAmount()+order.Freight)
}

func (e *CommandExecutor) handleQuerySales(ctx context.Context) (string, error) {
	orders, err := e.orders.GetRecentOrders(ctx, 50)
	if err != nil {
		return "", err
	}

	var saleCount int
	var saleTotal float64
	for _, o := range orders {
		if o.Type == model.OrderTypeSale {
			saleCount++
			saleTotal += o.Amount
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "销售统计（最近 %d 笔订单）：\n", len(orders))
	fmt.Fprintf(&b, "销售订单：%d 笔\n", saleCount)
	fmt.Fprintf(&b, "销售金额：%.2f 元\n", saleTotal)

	if summary, err := e.finance.FinanceSummary(ctx); err == nil {
		fmt.Fprintf(&b, "\n%s", summary)
	}
	return b.String(), nil
}

func (e *CommandExecutor) handleQueryInventory(ctx context.Context, cmd *model.Command) (string, error) {
	if cmd.Keyword == "" {
		return e.inventory.InventorySummary(ctx, 50)
	}

	goods, total, err := e.inventory.GetGoods(ctx, cmd.Keyword, 1, 20)
	if err != nil {
		return "", err
	}
	if len(goods) == 0 {
		return fmt.Sprintf("没有找到名称含「%s」的商品", cmd.Keyword), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "找到 %d 种名称含「%s」的商品：", total, cmd.Keyword)
	for _, g := range goods {
		fmt.Fprintf(&b, "\n• %s：%d 件", g.Name, g.Stock)
	}
	return b.String(), nil
}

func (e *CommandExecutor) handleAnalyzeFinance(ctx context.Context) (string, error) {
	records, err := e.finance.GetRecentMonths(ctx, 6)
	if err != nil {
		return "", err
	}

	dataContext := buildFinanceContext(records)
	start := time.Now()
	reply, aiErr := e.ai.Chat(ctx, buildAnalysisPrompt("FINANCE"), dataContext, model.AIModeAnalysis)
	if aiErr == nil {
		metrics.RecordServiceOperation(metrics.ServiceTypeFinance, metrics.OperationAnalyze, metrics.StatusSuccess, metrics.SourceAI, time.Since(start))
		return infra.CleanAIContent(reply), nil
	}

	e.logger.Warn().Err(aiErr).Msg("AI 经营分析不可用，使用本地统计分析")
	metrics.RecordServiceOperation(metrics.ServiceTypeFinance, metrics.OperationAnalyze, metrics.StatusSuccess, metrics.SourceFallback, time.Since(start))
	return localFinanceAnalysis(records), nil
}

func (e *CommandExecutor) handleAnalyzeOrder(ctx context.Context) (string, error) {
	orders, err := e.orders.GetRecentOrders(ctx, 30)
	if err != nil {
		return "", err
	}

	dataContext := buildOrderContext(orders)
	start := time.Now()
	reply, aiErr := e.ai.Chat(ctx, orderAnalysisPrompt, dataContext, model.AIModeOrderAnalysis)
	if aiErr == nil {
		metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationAnalyze, metrics.StatusSuccess, metrics.SourceAI, time.Since(start))
		return infra.CleanAIContent(reply), nil
	}

	e.logger.Warn().Err(aiErr).Msg("AI 订单分析不可用，使用本地统计分析")
	metrics.RecordServiceOperation(metrics.ServiceTypeOrder, metrics.OperationAnalyze, metrics.StatusSuccess, metrics.SourceFallback, time.Since(start))
	return localOrderAnalysis(orders), nil
}

func (e *CommandExecutor) helpMessage() string {
	return "暂时不支持这个操作，我可以帮您：\n" +
		"• 创建订单：为张三创建订单，苹果10个单价5元\n" +
		"• 查询订单：查询最近的订单\n" +
		"• 删除订单：删除订单123\n" +
		"• 确认订单：确认订单123，运费20元\n" +
		"• 查询销售：查询本月销售数据\n" +
		"• 查询库存：查看当前库存\n" +
		"• 经营分析：分析经营情况"
}

func formatOrderDetail(order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "订单 %d\n", order.OrderID)
	fmt.Fprintf(&b, "类型：%s\n", order.Type)
	fmt.Fprintf(&b, "客户：%s\n", order.Customer)
	fmt.Fprintf(&b, "状态：%s\n", order.Status)
	for _, p := range order.Products {
		fmt.Fprintf(&b, "商品：%s × %d，单价 %.2f 元\n", p.Name, p.Quantity, p.UnitPrice)
	}
	if order.Freight > 0 {
		fmt.Fprintf(&b, "运费：%.2f 元\n", order.Freight)
	}
	fmt.Fprintf(&b, "总金额：%.2f 元\n", order.TotalAmount())
	fmt.Fprintf(&b, "创建时间：%s", order.CreatedAt.Format("2006-01-02 15:04"))
	return b.String()
}

func formatOrderList(title string, orders []*model.Order) string {
	var b strings.Builder
	b.WriteString(title)
	for _, o := range orders {
		fmt.Fprintf(&b, "\n• 订单 %d | %s | %s | %.2f 元 | %s",
			o.OrderID, o.Type, o.Customer, o.TotalAmount(), o.Status)
	}
	return b.String()
}

func buildFinanceContext(records []*model.Finance) string {
	if len(records) == 0 {
		return "暂无经营数据记录"
	}
	var b strings.Builder
	b.WriteString("月度经营数据：\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%s：利润 %.2f 元，营业额 %.2f 元，订单 %d 笔\n",
			r.Month, r.Profit, r.Turnover, r.OrderQuantity)
	}
	return b.String()
}

func buildOrderContext(orders []*model.Order) string {
	if len(orders) == 0 {
		return "暂无订单记录"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "最近 %d 笔订单：\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "订单 %d | %s | 客户 %s | 金额 %.2f 元 | %s | %s\n",
			o.OrderID, o.Type, o.Customer, o.TotalAmount(), o.Status, o.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}
