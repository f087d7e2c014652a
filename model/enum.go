package model

// OrderType 订单类型
type OrderType string

const (
	OrderTypeSale     OrderType = "SALE"     // 销售订单
	OrderTypePurchase OrderType = "PURCHASE" // 采购订单
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "待确认" // 已创建，等待确认
	OrderStatusCompleted OrderStatus = "已完成" // 已确认完成
)

// IntentType 意图类型
type IntentType string

const (
	IntentCommand      IntentType = "COMMAND"      // 业务指令
	IntentConversation IntentType = "CONVERSATION" // 闲聊对话
	IntentMixed        IntentType = "MIXED"        // 指令与对话混合
)

// ActionType 指令动作
type ActionType string

const (
	ActionCreateOrder    ActionType = "create_order"    // 创建订单
	ActionQueryOrder     ActionType = "query_order"     // 查询订单
	ActionDeleteOrder    ActionType = "delete_order"    // 删除订单
	ActionConfirmOrder   ActionType = "confirm_order"   // 确认订单
	ActionQuerySales     ActionType = "query_sales"     // 查询销售情况
	ActionQueryInventory ActionType = "query_inventory" // 查询库存
	ActionAnalyzeFinance ActionType = "analyze_finance" // 财务分析
	ActionAnalyzeOrder   ActionType = "analyze_order"   // 订单分析
	ActionChat           ActionType = "chat"            // 闲聊
	ActionDeleteGoods    ActionType = "delete_goods"    // 保留，未接线
	ActionResetPassword  ActionType = "reset_password"  // 保留，未接线
)

// AIMode AI 调用模式，决定超时档位与提示词
type AIMode string

const (
	AIModeIntent        AIMode = "intent"         // 意图分类
	AIModeCommand       AIMode = "command"        // 指令结构化
	AIModeChat          AIMode = "chat"           // 闲聊对话
	AIModeAnalysis      AIMode = "analysis"       // 一般分析
	AIModeOrderAnalysis AIMode = "order_analysis" // 订单分析
)

// DangerousActions 需要二次确认的动作集合
var DangerousActions = map[ActionType]bool{
	ActionDeleteOrder: true,
}

// IsDangerous 判断动作是否需要确认
func IsDangerous(action ActionType) bool {
	return DangerousActions[action]
}
