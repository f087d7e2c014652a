package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mogutou-backend/model"
)

func newTestComposer() *ResponseComposer {
	return NewResponseComposer(zerolog.Nop())
}

// TestCompose 表情前缀与相关操作建议
func TestCompose(t *testing.T) {
	composer := newTestComposer()

	testCases := []struct {
		name           string
		action         model.ActionType
		wantEmoji      string
		wantSuggestion string
	}{
		{"创建订单", model.ActionCreateOrder, "📝", "查询刚创建的订单"},
		{"查询订单", model.ActionQueryOrder, "🔍", "分析订单趋势"},
		{"查询销售", model.ActionQuerySales, "💰", "生成销售报告"},
		{"查询库存", model.ActionQueryInventory, "📦", "继续其他操作"},
		{"未知动作", model.ActionType("unknown"), "🤖", "查看系统帮助"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reply := composer.Compose(tc.action, "操作完成")
			if !strings.HasPrefix(reply, tc.wantEmoji) {
				t.Fatalf("表情前缀错误: 期望以 %s 开头，实际 %q", tc.wantEmoji, reply)
			}
			if !strings.Contains(reply, "💡 您还可以：") {
				t.Fatalf("缺少操作建议: %q", reply)
			}
			if !strings.Contains(reply, tc.wantSuggestion) {
				t.Fatalf("建议内容错误: 期望包含 %q，实际 %q", tc.wantSuggestion, reply)
			}
		})
	}
}

// TestComposeStripsMarkdown 回复中的 markdown 标记被去除
func TestComposeStripsMarkdown(t *testing.T) {
	composer := newTestComposer()

	reply := composer.Compose(model.ActionAnalyzeFinance, "**经营情况**良好，*利润*稳定")
	if strings.Contains(reply, "**") || strings.Contains(reply, "*利润*") {
		t.Fatalf("markdown 标记未去除: %q", reply)
	}
	if !strings.Contains(reply, "经营情况") || !strings.Contains(reply, "利润") {
		t.Fatalf("正文内容丢失: %q", reply)
	}
}

// TestComposeConfirm 删除订单的二次确认提示
func TestComposeConfirm(t *testing.T) {
	composer := newTestComposer()

	cmd := &model.Command{Action: model.ActionDeleteOrder, OrderID: 123}
	msg := composer.ComposeConfirm(cmd)

	if !strings.Contains(msg, "确认删除订单 123") {
		t.Fatalf("确认提示缺少订单号: %q", msg)
	}
	if !strings.Contains(msg, "⚠️ 删除后无法恢复") {
		t.Fatalf("确认提示缺少警告: %q", msg)
	}
	if !strings.Contains(msg, "回复'是'确认，'否'取消") {
		t.Fatalf("确认提示缺少操作说明: %q", msg)
	}
}

// TestComposeError 错误分类与解决建议
func TestComposeError(t *testing.T) {
	composer := newTestComposer()

	testCases := []struct {
		name     string
		err      error
		wantMark string
	}{
		{"JSON解析错误", errors.New("AI 输出无法解析为 JSON: invalid character"), "🔧"},
		{"网络超时", errors.New("请求 AI 服务失败: 连接超时"), "🌐"},
		{"其他异常", errors.New("数据库写入失败"), "🛠️"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reply := composer.ComposeError("删除订单123", tc.err)
			if !strings.Contains(reply, tc.wantMark) {
				t.Fatalf("错误分类标记错误: 期望包含 %s，实际 %q", tc.wantMark, reply)
			}
			if !strings.Contains(reply, "💬 您的输入：删除订单123") {
				t.Fatalf("缺少原始输入回显: %q", reply)
			}
			if !strings.Contains(reply, "🔧 技术细节：") {
				t.Fatalf("缺少技术细节: %q", reply)
			}
		})
	}
}

// TestStripMarkdown 各类标记的去除
func TestStripMarkdown(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"加粗", "**重点**内容", "重点内容"},
		{"斜体", "*强调*内容", "强调内容"},
		{"行内代码", "执行 `create_order` 操作", "执行 create_order 操作"},
		{"代码块", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"纯文本不变", "普通文本", "普通文本"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := StripMarkdown(tc.in)
			if got != tc.want {
				t.Fatalf("去除标记错误: 输入 %q，期望 %q，实际 %q", tc.in, tc.want, got)
			}
		})
	}
}

// TestLocalFinanceAnalysis 本地经营分析的毛利率分档
func TestLocalFinanceAnalysis(t *testing.T) {
	testCases := []struct {
		name     string
		profit   float64
		turnover float64
		wantHint string
	}{
		{"毛利率优秀", 600, 1000, "扩大经营规模"},
		{"毛利率良好", 300, 1000, "保持当前经营策略"},
		{"毛利率偏低", 100, 1000, "定价策略"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records := []*model.Finance{
				{Month: "2026-08", Profit: tc.profit, Turnover: tc.turnover, OrderQuantity: 10},
			}
			report := localFinanceAnalysis(records)
			if !strings.Contains(report, tc.wantHint) {
				t.Fatalf("分档建议错误: 期望包含 %q，实际 %q", tc.wantHint, report)
			}
		})
	}

	if report := localFinanceAnalysis(nil); !strings.Contains(report, "暂无经营数据") {
		t.Fatalf("空数据报告错误: %q", report)
	}
}

// TestLocalOrderAnalysis 本地订单分析的统计与客户集中度
func TestLocalOrderAnalysis(t *testing.T) {
	orders := []*model.Order{
		{OrderID: 1, Type: model.OrderTypeSale, Customer: "张三",
			Products: []model.OrderProduct{{Name: "苹果", Quantity: 10, UnitPrice: 5}}},
		{OrderID: 2, Type: model.OrderTypeSale, Customer: "张三",
			Products: []model.OrderProduct{{Name: "可乐", Quantity: 20, UnitPrice: 3}}},
		{OrderID: 3, Type: model.OrderTypePurchase, Customer: "供货商A",
			Products: []model.OrderProduct{{Name: "大米", Quantity: 2, UnitPrice: 10}}},
	}

	report := localOrderAnalysis(orders)
	if !strings.Contains(report, "销售订单：2 笔") {
		t.Fatalf("销售笔数错误: %q", report)
	}
	if !strings.Contains(report, "采购订单：1 笔") {
		t.Fatalf("采购笔数错误: %q", report)
	}
	if !strings.Contains(report, "张三") {
		t.Fatalf("主要客户缺失: %q", report)
	}
	if !strings.Contains(report, "客户集中度偏高") {
		t.Fatalf("集中度提示缺失: %q", report)
	}

	if report := localOrderAnalysis(nil); !strings.Contains(report, "暂无订单数据") {
		t.Fatalf("空数据报告错误: %q", report)
	}
}
