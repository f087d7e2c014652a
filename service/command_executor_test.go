package service

import (
	"strings"
	"testing"

	"mogutou-backend/model"
)

// TestFormatConfirmReply 确认回复的总金额应为商品总额加运费
func TestFormatConfirmReply(t *testing.T) {
	order := &model.Order{
		OrderID: 123,
		Type:    model.OrderTypeSale,
		Freight: 12.5,
		Products: []model.OrderProduct{
			{Name: "苹果", Quantity: 10, UnitPrice: 5},
		},
	}

	reply := formatConfirmReply(order)
	if !strings.Contains(reply, "总金额：62.50 元") {
		t.Fatalf("总金额应含运费: %q", reply)
	}
	if !strings.Contains(reply, "运费：12.50 元") {
		t.Fatalf("运费展示错误: %q", reply)
	}
	if !strings.Contains(reply, "已联动出库") {
		t.Fatalf("销售订单应提示出库: %q", reply)
	}

	order.Type = model.OrderTypePurchase
	if reply := formatConfirmReply(order); !strings.Contains(reply, "已联动入库") {
		t.Fatalf("采购订单应提示入库: %q", reply)
	}
}
