package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"mogutou-backend/model"
)

var orderIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:订单|单号|编号)\s*[:：#]?\s*(\d+)`),
	regexp.MustCompile(`第\s*(\d+)\s*号`),
	regexp.MustCompile(`(\d+)\s*号订单`),
}

// TextExtractor 规则式字段提取器。AI 解析失败或字段缺漏时，
// 按模式库从原始文本中尽力提取结构化字段。
type TextExtractor struct {
	logger zerolog.Logger
}

func NewTextExtractor(logger zerolog.Logger) *TextExtractor {
	return &TextExtractor{
		logger: logger.With().Str("module", "text_extractor").Logger(),
	}
}

// ExtractOrderType 判定订单类型。采购特征先于销售特征检查，
// 两类都命中时采购获胜，都未命中时默认销售。
func (e *TextExtractor) ExtractOrderType(text string) model.OrderType {
	for _, p := range purchasePatterns {
		if p.re.MatchString(text) {
			return model.OrderTypePurchase
		}
	}
	for _, p := range salePatterns {
		if p.re.MatchString(text) {
			return model.OrderTypeSale
		}
	}
	return model.OrderTypeSale
}

// ExtractCustomer 按规则表顺序提取客户/供应商名称。
// 捕获命中黑名单时放弃该捕获并继续尝试后续规则。
func (e *TextExtractor) ExtractCustomer(text string) string {
	for _, p := range customerPatterns {
		m := p.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		name := strings.TrimSpace(m[1])
		if isInvalidCustomerName(name) {
			e.logger.Debug().Str("pattern", p.note).Str("captured", name).Msg("捕获命中黑名单，尝试下一规则")
			continue
		}
		return name
	}
	return ""
}

// ExtractProduct 提取商品行：先查词典，再试通用模式，最后兜底模式。
// 名称与数量缺失时单价仍可独立提取。
func (e *TextExtractor) ExtractProduct(text string) model.OrderProduct {
	name := e.extractProductName(text)

	product := model.OrderProduct{
		Name:      name,
		Quantity:  e.extractQuantity(text, name),
		UnitPrice: e.extractUnitPrice(text),
	}
	return product
}

func (e *TextExtractor) extractProductName(text string) string {
	for _, word := range productDictionary {
		if strings.Contains(text, word) {
			return word
		}
	}

	if m := genericProductPattern.FindStringSubmatch(text); len(m) >= 2 {
		if !isInvalidProductName(m[1]) {
			return m[1]
		}
	}

	for _, re := range fallbackProductPatterns {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			if !isInvalidProductName(m[1]) {
				return m[1]
			}
		}
	}
	return ""
}

func (e *TextExtractor) extractQuantity(text, product string) int {
	for _, re := range buildQuantityPatterns(product) {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			qty, err := strconv.Atoi(m[1])
			if err == nil && qty > 0 {
				return qty
			}
		}
	}
	return 0
}

func (e *TextExtractor) extractUnitPrice(text string) float64 {
	for _, re := range pricePatterns {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			price, err := strconv.ParseFloat(m[1], 64)
			if err == nil && price >= 0 {
				return price
			}
		}
	}
	return 0
}

// ExtractOrderID 提取业务订单号，未找到返回 0
func (e *TextExtractor) ExtractOrderID(text string) int64 {
	for _, re := range orderIDPatterns {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil && id > 0 {
				return id
			}
		}
	}
	return 0
}

// FillCommand 补全指令缺失字段。AI 产出的字段优先，
// 提取器只填充空缺，不覆盖已有值。
func (e *TextExtractor) FillCommand(cmd *model.Command) {
	text := cmd.OriginalInput
	if text == "" {
		return
	}

	switch cmd.Action {
	case model.ActionCreateOrder:
		if cmd.OrderType != model.OrderTypeSale && cmd.OrderType != model.OrderTypePurchase {
			cmd.OrderType = e.ExtractOrderType(text)
		}
		if cmd.Customer == "" {
			cmd.Customer = e.ExtractCustomer(text)
		}
		if !cmd.HasProducts() {
			product := e.ExtractProduct(text)
			if product.Name != "" || product.Quantity > 0 || product.UnitPrice > 0 {
				cmd.Products = []model.OrderProduct{product}
			}
		} else {
			// 已有商品行仅补缺失的数量与单价
			for i := range cmd.Products {
				if cmd.Products[i].Quantity <= 0 {
					cmd.Products[i].Quantity = e.extractQuantity(text, cmd.Products[i].Name)
				}
				if cmd.Products[i].UnitPrice <= 0 {
					cmd.Products[i].UnitPrice = e.extractUnitPrice(text)
				}
			}
		}
	case model.ActionDeleteOrder, model.ActionConfirmOrder:
		if cmd.OrderID <= 0 {
			cmd.OrderID = e.ExtractOrderID(text)
		}
	}
}

// ExtractCommand 纯规则兜底：在 AI 完全不可用时从文本直接构造指令
func (e *TextExtractor) ExtractCommand(text string) *model.Command {
	cmd := &model.Command{OriginalInput: text}

	switch {
	case strings.Contains(text, "删除") && strings.Contains(text, "订单"):
		cmd.Action = model.ActionDeleteOrder
	case strings.Contains(text, "确认") && strings.Contains(text, "订单"):
		cmd.Action = model.ActionConfirmOrder
	case strings.Contains(text, "创建") || strings.Contains(text, "下单") ||
		e.looksLikeCreateOrder(text):
		cmd.Action = model.ActionCreateOrder
	case strings.Contains(text, "库存"):
		cmd.Action = model.ActionQueryInventory
	case strings.Contains(text, "销售") && (strings.Contains(text, "查询") || strings.Contains(text, "统计")):
		cmd.Action = model.ActionQuerySales
	case strings.Contains(text, "分析") && strings.Contains(text, "订单"):
		cmd.Action = model.ActionAnalyzeOrder
	case strings.Contains(text, "分析") || strings.Contains(text, "经营"):
		cmd.Action = model.ActionAnalyzeFinance
	case strings.Contains(text, "查询") || strings.Contains(text, "订单"):
		cmd.Action = model.ActionQueryOrder
	default:
		return nil
	}

	e.FillCommand(cmd)
	return cmd
}

// looksLikeCreateOrder 无明确动词时，出现客户与商品特征也按创建订单处理
func (e *TextExtractor) looksLikeCreateOrder(text string) bool {
	if e.ExtractCustomer(text) == "" {
		return false
	}
	product := e.ExtractProduct(text)
	return product.Name != "" && product.Quantity > 0
}
