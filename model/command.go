package model

// IntentResult 意图分类结果，仅在单次请求内存活
type IntentResult struct {
	Type             IntentType `json:"intent_type"`
	Confidence       float64    `json:"confidence"`
	ExtractedCommand string     `json:"command,omitempty"`
}

// Command 结构化业务指令。action 为唯一必填字段，
// 其余字段按动作需要填充，AI 结果优先，文本提取仅补缺。
type Command struct {
	Action        ActionType     `json:"action"`
	OrderType     OrderType      `json:"order_type,omitempty"`
	Customer      string         `json:"customer,omitempty"`
	Products      []OrderProduct `json:"products,omitempty"`
	OrderID       int64          `json:"order_id,omitempty"`
	Freight       float64        `json:"freight,omitempty"`
	Keyword       string         `json:"keyword,omitempty"`
	OriginalInput string         `json:"original_input"`
}

// HasProducts 是否已有可用商品行
func (c *Command) HasProducts() bool {
	for _, p := range c.Products {
		if p.Name != "" && p.Quantity > 0 {
			return true
		}
	}
	return false
}
