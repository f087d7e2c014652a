package service

import (
	"regexp"
	"strings"
)

// 模式库：所有规则表按声明顺序求值，顺序即优先级。
// 调整优先级（例如采购先于销售）只需调整表项位置。

// orderTypePattern 订单类型判定规则
type orderTypePattern struct {
	re   *regexp.Regexp
	note string
}

// 采购特征，先于销售检查，两类关键词同时出现时采购优先
var purchasePatterns = []orderTypePattern{
	{regexp.MustCompile(`采购`), "采购"},
	{regexp.MustCompile(`进货`), "进货"},
	{regexp.MustCompile(`购买`), "购买"},
	{regexp.MustCompile(`进料`), "进料"},
	{regexp.MustCompile(`补货`), "补货"},
	{regexp.MustCompile(`订购`), "订购"},
	{regexp.MustCompile(`从供应商`), "从供应商"},
	{regexp.MustCompile(`向厂家`), "向厂家"},
	{regexp.MustCompile(`批发`), "批发"},
	{regexp.MustCompile(`从[\p{Han}A-Za-z]{1,6}(?:那里|这里|处)?买`), "从某人处买"},
}

// 销售特征，未命中时默认也是销售
var salePatterns = []orderTypePattern{
	{regexp.MustCompile(`销售`), "销售"},
	{regexp.MustCompile(`出售`), "出售"},
	{regexp.MustCompile(`卖给`), "卖给"},
	{regexp.MustCompile(`售给`), "售给"},
	{regexp.MustCompile(`发货`), "发货"},
	{regexp.MustCompile(`交付`), "交付"},
	{regexp.MustCompile(`为客户`), "为客户"},
	{regexp.MustCompile(`给客户`), "给客户"},
}

// customerPattern 客户/供应商名称提取规则，首个通过黑名单过滤的捕获获胜
type customerPattern struct {
	re   *regexp.Regexp
	note string
}

var customerPatterns = []customerPattern{
	{regexp.MustCompile(`[为给帮]([\p{Han}A-Za-z]{1,6}?)(?:创建|下单|下了|订购|买)`), "为某人创建"},
	{regexp.MustCompile(`从([\p{Han}A-Za-z]{1,6}?)(?:那里|这里|处)`), "从某人处"},
	{regexp.MustCompile(`从([\p{Han}A-Za-z]{1,6}?)(?:购买|买|进)`), "从某人买"},
	{regexp.MustCompile(`向([\p{Han}A-Za-z]{1,6}?)(?:购买|买|订)`), "向某人买"},
	{regexp.MustCompile(`(?:卖给|售给|发给|交付给|出售给)([\p{Han}A-Za-z]{1,6})`), "卖给某人"},
	{regexp.MustCompile(`(?:客户|供应商)[:：]\s*([\p{Han}A-Za-z]{1,6})`), "标注客户"},
	{regexp.MustCompile(`([\p{Han}A-Za-z]{1,4})(?:的订单|订购|说|需要|想要|要)`), "某人的订单"},
	{regexp.MustCompile(`[和跟]([\p{Han}A-Za-z]{1,6})`), "和某人"},
}

// 客户名黑名单：动作词、商品词、单位词命中即放弃该捕获，继续尝试后续规则
var invalidCustomerNames = []string{
	"创建", "查询", "删除", "修改", "统计", "分析", "导出", "确认", "添加",
	"订单", "客户", "供应商", "采购", "进货", "购买", "销售", "出售", "批发",
	"个", "瓶", "件", "只", "袋", "箱", "斤", "公斤",
}

// 已知商品词典，按类别分组，声明顺序即匹配顺序
var productDictionary = []string{
	// 饮品
	"可乐", "雪碧", "牛奶", "果汁", "咖啡", "啤酒", "矿泉水", "水", "茶",
	// 水果
	"苹果", "香蕉", "橙子", "葡萄", "西瓜", "桃子", "草莓", "梨",
	// 主食
	"大米", "面粉", "面条", "馒头", "面包", "鸡蛋",
	// 肉类
	"猪肉", "牛肉", "鸡肉", "鱼",
	// 蔬菜
	"白菜", "土豆", "西红柿", "黄瓜", "萝卜",
	// 日用品
	"纸巾", "洗衣粉", "肥皂", "牙膏", "毛巾",
}

// 通用商品模式：1-4 个汉字 + 商品类后缀
var genericProductPattern = regexp.MustCompile(`([\p{Han}]{1,4})(?:商品|产品|货物|用品)`)

// 兜底商品模式：单位词旁 2-6 个汉字
var fallbackProductPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*(?:个|瓶|件|只|袋|箱|斤|公斤)\s*([\p{Han}]{2,6})`),
	regexp.MustCompile(`([\p{Han}]{2,6})\s*\d+\s*(?:个|瓶|件|只|袋|箱|斤|公斤)`),
}

// 商品名黑名单
var invalidProductNames = []string{
	"订单", "客户", "供应商", "公司", "先生", "女士",
	"创建", "查询", "删除", "修改", "统计", "分析", "导出", "确认", "添加",
	"单价", "价格", "数量", "运费",
}

const unitWords = `个|瓶|件|只|袋|箱|斤|公斤`

// buildQuantityPatterns 围绕已接受的商品名构造数量模式，
// 覆盖 "<数量><单位><商品>" 与 "<商品><数量><单位>" 两种语序
func buildQuantityPatterns(product string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, 3)
	if product != "" {
		quoted := regexp.QuoteMeta(product)
		patterns = append(patterns,
			regexp.MustCompile(`(\d+)\s*(?:`+unitWords+`)\s*`+quoted),
			regexp.MustCompile(quoted+`\s*(\d+)\s*(?:`+unitWords+`)`),
		)
	}
	patterns = append(patterns,
		regexp.MustCompile(`(?:买了?|要|需要)\s*(\d+)\s*(?:`+unitWords+`)`),
	)
	return patterns
}

// 单价模式，取首个命中的非负值
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[一每]\s*(?:` + unitWords + `)?\s*(\d+(?:\.\d+)?)\s*元`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:元|块|钱)\s*一`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:元|块|钱|￥|¥)`),
}

// isInvalidCustomerName 名称过滤：黑名单词或纯数字视为无效
func isInvalidCustomerName(name string) bool {
	return isBlacklisted(name, invalidCustomerNames)
}

// isInvalidProductName 商品名过滤
func isInvalidProductName(name string) bool {
	return isBlacklisted(name, invalidProductNames)
}

var pureNumberPattern = regexp.MustCompile(`^\d+$`)

func isBlacklisted(name string, blacklist []string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	lower := strings.ToLower(name)
	for _, word := range blacklist {
		if lower == strings.ToLower(word) {
			return true
		}
	}
	return pureNumberPattern.MatchString(name)
}
