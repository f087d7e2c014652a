package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"mogutou-backend/model"
)

// fakeChatClient 测试用的 AI 客户端替身
type fakeChatClient struct {
	reply    string
	err      error
	calls    int
	lastMode model.AIMode
}

func (f *fakeChatClient) Chat(ctx context.Context, systemPrompt, userText string, mode model.AIMode) (string, error) {
	f.calls++
	f.lastMode = mode
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestParser(ai *fakeChatClient) *CommandParser {
	return NewCommandParser(zerolog.Nop(), ai, newTestExtractor())
}

// TestRepairJSON 常见格式问题的修复
func TestRepairJSON(t *testing.T) {
	testCases := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"单引号换双引号", `{'action': 'create_order'}`, true},
		{"裸键名加引号", `{action: "create_order", order_id: 123}`, true},
		{"缺少花括号", `"action": "query_order"`, true},
		{"markdown围栏", "```json\n{\"action\": \"chat\"}\n```", true},
		{"空输入", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixed := RepairJSON(tc.raw)
			var out map[string]interface{}
			err := json.Unmarshal([]byte(fixed), &out)
			if tc.valid && err != nil {
				t.Fatalf("修复后仍无法解析: 输入 %q，修复结果 %q，错误 %v", tc.raw, fixed, err)
			}
		})
	}
}

// TestParseWithAI AI 正常返回时直接采用其结果
func TestParseWithAI(t *testing.T) {
	ai := &fakeChatClient{reply: `{"action": "delete_order", "order_id": 123}`}
	parser := newTestParser(ai)

	cmd, err := parser.Parse(context.Background(), "删除订单123", "删除订单123")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if cmd.Action != model.ActionDeleteOrder {
		t.Fatalf("动作错误: 期望 delete_order，实际 %s", cmd.Action)
	}
	if cmd.OrderID != 123 {
		t.Fatalf("订单号错误: 期望 123，实际 %d", cmd.OrderID)
	}
	if ai.lastMode != model.AIModeCommand {
		t.Fatalf("调用模式错误: 期望 command，实际 %s", ai.lastMode)
	}
}

// TestParseRepairsBrokenJSON 单引号输出经修复后解析成功
func TestParseRepairsBrokenJSON(t *testing.T) {
	ai := &fakeChatClient{reply: `{'action': 'delete_order', 'order_id': 45}`}
	parser := newTestParser(ai)

	cmd, err := parser.Parse(context.Background(), "删除订单45", "删除订单45")
	if err != nil {
		t.Fatalf("修复后解析失败: %v", err)
	}
	if cmd.Action != model.ActionDeleteOrder || cmd.OrderID != 45 {
		t.Fatalf("修复后结果错误: %+v", cmd)
	}
}

// TestParseFillsMissingFields AI 遗漏的字段由提取器补全
func TestParseFillsMissingFields(t *testing.T) {
	ai := &fakeChatClient{reply: `{"action": "create_order", "customer": "张三"}`}
	parser := newTestParser(ai)

	cmd, err := parser.Parse(context.Background(), "为张三创建订单，苹果10个单价5元", "为张三创建订单，苹果10个单价5元")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if cmd.Customer != "张三" {
		t.Fatalf("客户错误: %q", cmd.Customer)
	}
	if !cmd.HasProducts() || cmd.Products[0].Name != "苹果" || cmd.Products[0].Quantity != 10 {
		t.Fatalf("商品补全错误: %+v", cmd.Products)
	}
	if cmd.OrderType != model.OrderTypeSale {
		t.Fatalf("订单类型归一错误: %s", cmd.OrderType)
	}
}

// TestParseBackfillsFromRawInput 解析片段缺字段时从完整输入补全
func TestParseBackfillsFromRawInput(t *testing.T) {
	ai := &fakeChatClient{reply: `{"action": "delete_order"}`}
	parser := newTestParser(ai)

	cmd, err := parser.Parse(context.Background(), "删除订单", "你好，帮我删除订单123")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if cmd.Action != model.ActionDeleteOrder {
		t.Fatalf("动作错误: %s", cmd.Action)
	}
	if cmd.OrderID != 123 {
		t.Fatalf("订单号应从完整输入补全: 期望 123，实际 %d", cmd.OrderID)
	}
	if cmd.OriginalInput != "你好，帮我删除订单123" {
		t.Fatalf("原始输入记录错误: %q", cmd.OriginalInput)
	}
}

// TestParseFallsBackToRules AI 不可用时走规则提取
func TestParseFallsBackToRules(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	parser := newTestParser(ai)

	cmd, err := parser.Parse(context.Background(), "查询最近的订单", "查询最近的订单")
	if err != nil {
		t.Fatalf("规则兜底失败: %v", err)
	}
	if cmd.Action != model.ActionQueryOrder {
		t.Fatalf("兜底动作错误: %s", cmd.Action)
	}
}

// TestParseFailsWhenBothPathsFail AI 与规则都无法识别时返回错误
func TestParseFailsWhenBothPathsFail(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	parser := newTestParser(ai)

	_, err := parser.Parse(context.Background(), "今天天气真好", "今天天气真好")
	if err == nil {
		t.Fatal("期望解析失败返回错误")
	}
}

// TestParseGarbageOutputFallsBack AI 输出修复后仍无效时走规则提取
func TestParseGarbageOutputFallsBack(t *testing.T) {
	ai := &fakeChatClient{reply: "抱歉，我无法处理这个请求"}
	parser := newTestParser(ai)

	cmd, err := parser.Parse(context.Background(), "删除订单123", "删除订单123")
	if err != nil {
		t.Fatalf("规则兜底失败: %v", err)
	}
	if cmd.Action != model.ActionDeleteOrder || cmd.OrderID != 123 {
		t.Fatalf("兜底结果错误: %+v", cmd)
	}
}

// TestValidateCommand 必填字段校验与补全提示
func TestValidateCommand(t *testing.T) {
	testCases := []struct {
		name   string
		cmd    *model.Command
		wantOK bool
	}{
		{
			"创建订单缺客户",
			&model.Command{Action: model.ActionCreateOrder},
			false,
		},
		{
			"创建订单缺商品",
			&model.Command{Action: model.ActionCreateOrder, Customer: "张三"},
			false,
		},
		{
			"创建订单完整",
			&model.Command{
				Action:   model.ActionCreateOrder,
				Customer: "张三",
				Products: []model.OrderProduct{{Name: "苹果", Quantity: 10, UnitPrice: 5}},
			},
			true,
		},
		{
			"删除订单缺订单号",
			&model.Command{Action: model.ActionDeleteOrder},
			false,
		},
		{
			"确认订单完整",
			&model.Command{Action: model.ActionConfirmOrder, OrderID: 123},
			true,
		},
		{
			"查询订单无必填字段",
			&model.Command{Action: model.ActionQueryOrder},
			true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := ValidateCommand(tc.cmd)
			if ok != tc.wantOK {
				t.Fatalf("校验结果错误: 期望 %v，实际 %v (提示: %q)", tc.wantOK, ok, msg)
			}
			if !ok && msg == "" {
				t.Fatal("校验失败时应返回补全提示")
			}
		})
	}
}
