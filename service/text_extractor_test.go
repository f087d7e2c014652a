package service

import (
	"testing"

	"github.com/rs/zerolog"

	"mogutou-backend/model"
)

func newTestExtractor() *TextExtractor {
	return NewTextExtractor(zerolog.Nop())
}

// TestExtractOrderType 采购特征先于销售特征，都未命中时默认销售
func TestExtractOrderType(t *testing.T) {
	extractor := newTestExtractor()

	testCases := []struct {
		name string
		text string
		want model.OrderType
	}{
		{"采购关键词", "从供应商采购100箱矿泉水", model.OrderTypePurchase},
		{"从某人处买", "从哈振宇那里买了5瓶水", model.OrderTypePurchase},
		{"采购销售同时出现时采购优先", "采购一批货用于销售", model.OrderTypePurchase},
		{"销售关键词", "卖给李四20个苹果", model.OrderTypeSale},
		{"无特征默认销售", "为张三创建订单，苹果10个", model.OrderTypeSale},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractor.ExtractOrderType(tc.text)
			if got != tc.want {
				t.Fatalf("订单类型判定错误: 输入 %q，期望 %s，实际 %s", tc.text, tc.want, got)
			}
		})
	}
}

// TestExtractCustomer 按规则顺序提取，黑名单命中时继续尝试后续规则
func TestExtractCustomer(t *testing.T) {
	extractor := newTestExtractor()

	testCases := []struct {
		name string
		text string
		want string
	}{
		{"为某人创建", "为张三创建订单，苹果10个单价5元", "张三"},
		{"从某人处", "从哈振宇那里买了5瓶水，一瓶3元", "哈振宇"},
		{"卖给某人", "卖给李四20个苹果", "李四"},
		{"标注客户", "客户：王五，需要3箱可乐", "王五"},
		{"黑名单词被拒绝", "为客户创建订单", ""},
		{"无客户信息", "查询库存", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractor.ExtractCustomer(tc.text)
			if got != tc.want {
				t.Fatalf("客户提取错误: 输入 %q，期望 %q，实际 %q", tc.text, tc.want, got)
			}
		})
	}
}

// TestExtractProduct 词典优先，数量覆盖两种语序，单价可独立提取
func TestExtractProduct(t *testing.T) {
	extractor := newTestExtractor()

	testCases := []struct {
		name      string
		text      string
		wantName  string
		wantQty   int
		wantPrice float64
	}{
		{"商品在数量前", "为张三创建订单，苹果10个单价5元", "苹果", 10, 5},
		{"数量在商品前", "从哈振宇那里买了5瓶水，一瓶3元", "水", 5, 3},
		{"每单位计价", "牛奶20瓶，每瓶4.5元", "牛奶", 20, 4.5},
		{"价格在前", "可乐12瓶，3元一瓶", "可乐", 12, 3},
		{"仅有单价", "单价5元", "", 0, 5},
		{"无商品信息", "查询最近的订单", "", 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractor.ExtractProduct(tc.text)
			if got.Name != tc.wantName {
				t.Fatalf("商品名错误: 输入 %q，期望 %q，实际 %q", tc.text, tc.wantName, got.Name)
			}
			if got.Quantity != tc.wantQty {
				t.Fatalf("数量错误: 输入 %q，期望 %d，实际 %d", tc.text, tc.wantQty, got.Quantity)
			}
			if got.UnitPrice != tc.wantPrice {
				t.Fatalf("单价错误: 输入 %q，期望 %v，实际 %v", tc.text, tc.wantPrice, got.UnitPrice)
			}
		})
	}
}

// TestExtractOrderID 订单号提取
func TestExtractOrderID(t *testing.T) {
	extractor := newTestExtractor()

	testCases := []struct {
		name string
		text string
		want int64
	}{
		{"订单加数字", "删除订单123", 123},
		{"带冒号", "单号：456", 456},
		{"第N号", "确认第 78 号", 78},
		{"N号订单", "把45号订单删掉", 45},
		{"无订单号", "删除订单", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractor.ExtractOrderID(tc.text)
			if got != tc.want {
				t.Fatalf("订单号提取错误: 输入 %q，期望 %d，实际 %d", tc.text, tc.want, got)
			}
		})
	}
}

// TestExtractCommand 纯规则兜底的动作判定
func TestExtractCommand(t *testing.T) {
	extractor := newTestExtractor()

	testCases := []struct {
		name       string
		text       string
		wantAction model.ActionType
		wantNil    bool
	}{
		{"删除订单", "删除订单123", model.ActionDeleteOrder, false},
		{"确认订单", "确认订单123", model.ActionConfirmOrder, false},
		{"创建订单", "为张三创建订单，苹果10个单价5元", model.ActionCreateOrder, false},
		{"查询库存", "查看当前库存", model.ActionQueryInventory, false},
		{"查询销售", "查询销售数据", model.ActionQuerySales, false},
		{"订单分析", "分析这些订单", model.ActionAnalyzeOrder, false},
		{"经营分析", "分析一下经营情况", model.ActionAnalyzeFinance, false},
		{"查询订单", "查询最近的订单", model.ActionQueryOrder, false},
		{"无法识别", "今天天气真好", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := extractor.ExtractCommand(tc.text)
			if tc.wantNil {
				if cmd != nil {
					t.Fatalf("期望无法识别返回 nil，实际得到动作 %s", cmd.Action)
				}
				return
			}
			if cmd == nil {
				t.Fatalf("输入 %q 期望动作 %s，实际返回 nil", tc.text, tc.wantAction)
			}
			if cmd.Action != tc.wantAction {
				t.Fatalf("动作判定错误: 输入 %q，期望 %s，实际 %s", tc.text, tc.wantAction, cmd.Action)
			}
		})
	}
}

// TestExtractCommandFillsFields 兜底指令同时补全字段
func TestExtractCommandFillsFields(t *testing.T) {
	extractor := newTestExtractor()

	cmd := extractor.ExtractCommand("为张三创建订单，苹果10个单价5元")
	if cmd == nil {
		t.Fatal("期望识别为创建订单指令")
	}
	if cmd.Customer != "张三" {
		t.Fatalf("客户补全错误: 期望 张三，实际 %q", cmd.Customer)
	}
	if len(cmd.Products) != 1 || cmd.Products[0].Name != "苹果" ||
		cmd.Products[0].Quantity != 10 || cmd.Products[0].UnitPrice != 5 {
		t.Fatalf("商品补全错误: %+v", cmd.Products)
	}

	cmd = extractor.ExtractCommand("删除订单123")
	if cmd == nil || cmd.OrderID != 123 {
		t.Fatalf("订单号补全错误: %+v", cmd)
	}
}

// TestFillCommandKeepsExistingFields 已有字段不被提取器覆盖
func TestFillCommandKeepsExistingFields(t *testing.T) {
	extractor := newTestExtractor()

	cmd := &model.Command{
		Action:        model.ActionCreateOrder,
		Customer:      "李四",
		OriginalInput: "为张三创建订单，苹果10个单价5元",
	}
	extractor.FillCommand(cmd)

	if cmd.Customer != "李四" {
		t.Fatalf("已有客户被覆盖: 期望 李四，实际 %q", cmd.Customer)
	}
	if !cmd.HasProducts() {
		t.Fatal("缺失的商品行应当被补全")
	}
	if cmd.OrderType != model.OrderTypeSale {
		t.Fatalf("订单类型默认值错误: %s", cmd.OrderType)
	}
}

// TestFillCommandPartialProducts 已有商品行仅补数量与单价
func TestFillCommandPartialProducts(t *testing.T) {
	extractor := newTestExtractor()

	cmd := &model.Command{
		Action:        model.ActionCreateOrder,
		Customer:      "张三",
		Products:      []model.OrderProduct{{Name: "苹果"}},
		OriginalInput: "为张三创建订单，苹果10个单价5元",
	}
	extractor.FillCommand(cmd)

	if cmd.Products[0].Quantity != 10 {
		t.Fatalf("数量补全错误: 期望 10，实际 %d", cmd.Products[0].Quantity)
	}
	if cmd.Products[0].UnitPrice != 5 {
		t.Fatalf("单价补全错误: 期望 5，实际 %v", cmd.Products[0].UnitPrice)
	}
}
