package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mogutou-backend/infra"
	"mogutou-backend/metrics"
	"mogutou-backend/model"
)

// 未加引号的 JSON 键名
var bareKeyPattern = regexp.MustCompile(`([{,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)(\s*:)`)

// CommandParser 指令解析器：AI 结构化输出为主，
// 文本提取器补缺，解析失败时修复 JSON 再试一次。
type CommandParser struct {
	logger    zerolog.Logger
	ai        infra.ChatClient
	extractor *TextExtractor
}

func NewCommandParser(logger zerolog.Logger, ai infra.ChatClient, extractor *TextExtractor) *CommandParser {
	return &CommandParser{
		logger:    logger.With().Str("module", "command_parser").Logger(),
		ai:        ai,
		extractor: extractor,
	}
}

// Parse 将自然语言转为结构化指令。
// commandText 是送给 AI 的指令文本（可能是意图阶段截取的片段），
// rawInput 是用户的完整原始输入，字段补缺始终基于 rawInput，
// 避免片段里没有而原文里有的信息丢失。
// AI 与规则提取都无法确定动作时才返回错误。
func (p *CommandParser) Parse(ctx context.Context, commandText, rawInput string) (*model.Command, error) {
	if rawInput == "" {
		rawInput = commandText
	}
	start := time.Now()

	cmd, err := p.parseWithAI(ctx, commandText)
	if err != nil {
		p.logger.Warn().Err(err).Str("input", rawInput).Msg("AI 指令解析失败，使用规则提取")
		cmd = p.extractor.ExtractCommand(rawInput)
		if cmd == nil || cmd.Action == "" {
			metrics.RecordPipelineOperation(metrics.OperationParseCommand, metrics.StatusError, metrics.SourceFallback, time.Since(start))
			return nil, fmt.Errorf("无法识别操作类型: %w", err)
		}
		metrics.RecordPipelineOperation(metrics.OperationParseCommand, metrics.StatusSuccess, metrics.SourceFallback, time.Since(start))
		return cmd, nil
	}

	// AI 字段优先，提取器只补空缺
	cmd.OriginalInput = rawInput
	p.extractor.FillCommand(cmd)
	p.normalize(cmd)

	metrics.RecordPipelineOperation(metrics.OperationParseCommand, metrics.StatusSuccess, metrics.SourceAI, time.Since(start))
	return cmd, nil
}

func (p *CommandParser) parseWithAI(ctx context.Context, input string) (*model.Command, error) {
	reply, err := p.ai.Chat(ctx, commandPrompt, input, model.AIModeCommand)
	if err != nil {
		return nil, err
	}

	cmd, err := p.decodeCommand(reply)
	if err != nil {
		// 修复常见格式问题后恰好重试一次
		fixed := RepairJSON(reply)
		p.logger.Debug().Str("fixed", fixed).Msg("JSON 解析失败，尝试修复后重试")
		cmd, err = p.decodeCommand(fixed)
		if err != nil {
			return nil, fmt.Errorf("AI 输出无法解析为 JSON: %w", err)
		}
	}

	if cmd.Action == "" {
		return nil, fmt.Errorf("AI 输出缺少 action 字段")
	}
	return cmd, nil
}

func (p *CommandParser) decodeCommand(raw string) (*model.Command, error) {
	var cmd model.Command
	if err := json.Unmarshal([]byte(infra.CleanAIContent(raw)), &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}

// normalize 派发前的最终归一：订单类型只允许 SALE/PURCHASE
func (p *CommandParser) normalize(cmd *model.Command) {
	if cmd.Action == model.ActionCreateOrder {
		switch strings.ToUpper(string(cmd.OrderType)) {
		case string(model.OrderTypePurchase):
			cmd.OrderType = model.OrderTypePurchase
		case string(model.OrderTypeSale):
			cmd.OrderType = model.OrderTypeSale
		default:
			cmd.OrderType = p.extractor.ExtractOrderType(cmd.OriginalInput)
		}
	}
}

// RepairJSON 修复 AI 输出的常见 JSON 格式问题：
// 去掉 markdown 围栏、单引号换双引号、给裸键名加引号、补齐花括号。
func RepairJSON(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "{}"
	}

	fixed := strings.TrimSpace(raw)

	if strings.HasPrefix(fixed, "```") {
		fixed = regexp.MustCompile("```[a-zA-Z]*").ReplaceAllString(fixed, "")
		fixed = strings.ReplaceAll(fixed, "```", "")
		fixed = strings.TrimSpace(fixed)
	}

	if !strings.HasPrefix(fixed, "{") {
		fixed = "{" + fixed
	}
	if !strings.HasSuffix(fixed, "}") {
		fixed = fixed + "}"
	}

	fixed = strings.ReplaceAll(fixed, "'", "\"")
	fixed = bareKeyPattern.ReplaceAllString(fixed, `$1"$2"$3`)

	return fixed
}

// ValidateCommand 按动作校验必填字段，返回提示语与是否通过。
// 校验失败产生面向用户的补全提示，而不是错误。
func ValidateCommand(cmd *model.Command) (string, bool) {
	switch cmd.Action {
	case model.ActionCreateOrder:
		if cmd.Customer == "" {
			return "😅 请告诉我客户（或供应商）的名称。\n\n💡 例如：'为张三创建订单，苹果10个单价5元'", false
		}
		if !cmd.HasProducts() {
			return "😅 请告诉我商品名称和数量。\n\n💡 例如：'为" + cmd.Customer + "创建订单，苹果10个单价5元'", false
		}
		for _, product := range cmd.Products {
			if product.Quantity <= 0 {
				return fmt.Sprintf("😅 商品「%s」的数量需要大于 0。\n\n💡 例如：'%s10个'", product.Name, product.Name), false
			}
			if product.UnitPrice < 0 {
				return fmt.Sprintf("😅 商品「%s」的单价不能为负数。", product.Name), false
			}
		}
	case model.ActionDeleteOrder, model.ActionConfirmOrder:
		if cmd.OrderID <= 0 {
			return "😅 请告诉我订单号。\n\n💡 例如：'删除订单123'", false
		}
	}
	return "", true
}
