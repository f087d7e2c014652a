package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"mogutou-backend/model"
)

// actionEmoji 动作对应的回复前缀
var actionEmoji = map[model.ActionType]string{
	model.ActionCreateOrder:    "📝",
	model.ActionQueryOrder:     "🔍",
	model.ActionDeleteOrder:    "🗑️",
	model.ActionConfirmOrder:   "✅",
	model.ActionQuerySales:     "💰",
	model.ActionQueryInventory: "📦",
	model.ActionAnalyzeFinance: "📊",
	model.ActionAnalyzeOrder:   "📊",
}

var (
	boldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern     = regexp.MustCompile(`\*([^*]+)\*`)
	codeBlockPattern  = regexp.MustCompile("(?s)```[a-zA-Z]*\\n?(.*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
)

// ResponseComposer 回复组装器，把业务结果包装成最终用户回复
type ResponseComposer struct {
	logger zerolog.Logger
}

func NewResponseComposer(logger zerolog.Logger) *ResponseComposer {
	return &ResponseComposer{
		logger: logger.With().Str("module", "response_composer").Logger(),
	}
}

// Compose 组装成功回复：表情前缀 + 去格式化结果 + 相关操作建议
func (c *ResponseComposer) Compose(action model.ActionType, result string) string {
	emoji, ok := actionEmoji[action]
	if !ok {
		emoji = "🤖"
	}

	reply := fmt.Sprintf("%s %s", emoji, StripMarkdown(result))
	return appendSuggestions(action, reply)
}

// ComposeConfirm 敏感操作的二次确认提示
func (c *ResponseComposer) ComposeConfirm(cmd *model.Command) string {
	if cmd.Action == model.ActionDeleteOrder {
		return fmt.Sprintf("🗑️ 确认删除订单 %d？\n\n⚠️ 删除后无法恢复\n\n回复'是'确认，'否'取消", cmd.OrderID)
	}
	return fmt.Sprintf("🤔 检测到敏感操作：%s\n\n回复'是'确认，'否'取消", cmd.Action)
}

// ComposeError 把内部错误翻译成带解决建议的用户回复
func (c *ResponseComposer) ComposeError(input string, err error) string {
	msg := err.Error()

	var body string
	switch {
	case strings.Contains(msg, "JSON") || strings.Contains(msg, "json"):
		body = "🔧 指令解析出了点问题\n\n解决建议：\n• 换一种更直接的说法\n• 参考格式：为张三创建订单，苹果10个单价5元"
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "超时") || strings.Contains(msg, "连接"):
		body = "🌐 网络连接出现问题\n\n解决建议：\n• 稍等片刻后重试\n• 检查网络连接是否正常"
	default:
		body = "🛠️ 处理过程中出现异常\n\n解决建议：\n• 稍后重试\n• 如果问题持续，请联系管理员"
	}

	return fmt.Sprintf("%s\n\n💬 您的输入：%s\n🔧 技术细节：%s", body, input, msg)
}

// appendSuggestions 按动作追加相关操作建议
func appendSuggestions(action model.ActionType, reply string) string {
	var suggestions []string
	switch action {
	case model.ActionCreateOrder:
		suggestions = []string{"查询刚创建的订单", "确认订单并设置运费", "查看今日订单统计"}
	case model.ActionQueryOrder:
		suggestions = []string{"查询销售数据", "分析订单趋势", "导出订单报表"}
	case model.ActionQuerySales:
		suggestions = []string{"查看详细订单", "分析客户数据", "生成销售报告"}
	default:
		suggestions = []string{"继续其他操作", "查看系统帮助"}
	}

	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\n💡 您还可以：")
	for _, s := range suggestions {
		b.WriteString("\n• ")
		b.WriteString(s)
	}
	return b.String()
}

// StripMarkdown 去掉 AI 回复里的 markdown 标记，保留纯文本
func StripMarkdown(text string) string {
	text = codeBlockPattern.ReplaceAllString(text, "$1")
	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// localFinanceAnalysis AI 不可用时的本地经营统计分析
func localFinanceAnalysis(records []*model.Finance) string {
	if len(records) == 0 {
		return "暂无经营数据，无法生成分析报告"
	}

	var totalProfit, totalTurnover float64
	var totalOrders int
	for _, r := range records {
		totalProfit += r.Profit
		totalTurnover += r.Turnover
		totalOrders += r.OrderQuantity
	}

	var b strings.Builder
	fmt.Fprintf(&b, "经营情况统计（近 %d 个月）：\n", len(records))
	fmt.Fprintf(&b, "累计利润：%.2f 元\n", totalProfit)
	fmt.Fprintf(&b, "累计营业额：%.2f 元\n", totalTurnover)
	fmt.Fprintf(&b, "累计订单：%d 笔\n", totalOrders)

	if totalTurnover > 0 {
		margin := totalProfit / totalTurnover * 100
		fmt.Fprintf(&b, "毛利率：%.1f%%\n", margin)
		switch {
		case margin > 50:
			b.WriteString("盈利能力优秀，可以考虑扩大经营规模")
		case margin > 20:
			b.WriteString("盈利能力良好，建议保持当前经营策略")
		default:
			b.WriteString("毛利率偏低，建议检查采购成本和定价策略")
		}
	}
	return b.String()
}

// localOrderAnalysis AI 不可用时的本地订单统计分析
func localOrderAnalysis(orders []*model.Order) string {
	if len(orders) == 0 {
		return "暂无订单数据，无法生成分析报告"
	}

	var saleCount, purchaseCount int
	var totalAmount float64
	customerAmounts := make(map[string]float64)
	for _, o := range orders {
		if o.Type == model.OrderTypePurchase {
			purchaseCount++
		} else {
			saleCount++
		}
		totalAmount += o.TotalAmount()
		customerAmounts[o.Customer] += o.TotalAmount()
	}

	type customerStat struct {
		name   string
		amount float64
	}
	stats := make([]customerStat, 0, len(customerAmounts))
	for name, amount := range customerAmounts {
		stats = append(stats, customerStat{name, amount})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].amount > stats[j].amount })

	var b strings.Builder
	fmt.Fprintf(&b, "订单情况统计（最近 %d 笔）：\n", len(orders))
	fmt.Fprintf(&b, "销售订单：%d 笔，采购订单：%d 笔\n", saleCount, purchaseCount)
	fmt.Fprintf(&b, "订单总额：%.2f 元，平均单笔 %.2f 元\n", totalAmount, totalAmount/float64(len(orders)))

	topN := 3
	if len(stats) < topN {
		topN = len(stats)
	}
	if topN > 0 {
		b.WriteString("主要客户：")
		var topAmount float64
		for i := 0; i < topN; i++ {
			if i > 0 {
				b.WriteString("、")
			}
			fmt.Fprintf(&b, "%s（%.2f 元）", stats[i].name, stats[i].amount)
			topAmount += stats[i].amount
		}
		if totalAmount > 0 {
			fmt.Fprintf(&b, "\n前 %d 名客户贡献了 %.1f%% 的订单金额", topN, topAmount/totalAmount*100)
			if topAmount/totalAmount > 0.7 {
				b.WriteString("，客户集中度偏高，建议拓展新客户")
			}
		}
	}
	return b.String()
}
