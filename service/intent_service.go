package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mogutou-backend/infra"
	"mogutou-backend/metrics"
	"mogutou-backend/model"
)

// 关键词规则兜底使用的两类标记词
var (
	commandKeywords      = []string{"创建", "查询", "删除", "修改", "统计", "分析", "导出", "确认", "添加"}
	conversationKeywords = []string{"你好", "谢谢", "再见", "怎么样", "是什么", "为什么", "天气"}
)

// IntentService 意图分类器。优先走 AI 分类，
// 任何调用或解析失败都降级为关键词规则，从不向调用方抛错。
type IntentService struct {
	logger zerolog.Logger
	ai     infra.ChatClient
}

func NewIntentService(logger zerolog.Logger, ai infra.ChatClient) *IntentService {
	return &IntentService{
		logger: logger.With().Str("module", "intent_service").Logger(),
		ai:     ai,
	}
}

// Classify 对输入做意图分类，幂等且无副作用
func (s *IntentService) Classify(ctx context.Context, text string) model.IntentResult {
	start := time.Now()

	result, err := s.classifyWithAI(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Str("input", text).Msg("意图识别失败，使用关键词规则判断")
		fallback := s.fallbackClassify(text)
		metrics.RecordPipelineOperation(metrics.OperationClassifyIntent, metrics.StatusSuccess, metrics.SourceFallback, time.Since(start))
		return fallback
	}

	metrics.RecordPipelineOperation(metrics.OperationClassifyIntent, metrics.StatusSuccess, metrics.SourceAI, time.Since(start))
	return result
}

func (s *IntentService) classifyWithAI(ctx context.Context, text string) (model.IntentResult, error) {
	reply, err := s.ai.Chat(ctx, intentPrompt, text, model.AIModeIntent)
	if err != nil {
		return model.IntentResult{}, err
	}

	var raw struct {
		IntentType string  `json:"intent_type"`
		Confidence float64 `json:"confidence"`
		Command    string  `json:"command"`
	}
	if err := json.Unmarshal([]byte(infra.CleanAIContent(reply)), &raw); err != nil {
		return model.IntentResult{}, err
	}

	intentType := model.IntentType(strings.ToUpper(raw.IntentType))
	switch intentType {
	case model.IntentCommand, model.IntentConversation, model.IntentMixed:
	default:
		intentType = model.IntentConversation
	}

	confidence := raw.Confidence
	if confidence <= 0 {
		confidence = 0.5
	}

	return model.IntentResult{
		Type:             intentType,
		Confidence:       confidence,
		ExtractedCommand: raw.Command,
	}, nil
}

// fallbackClassify 基于关键词的确定性规则。
// "分析"+"订单/这些" 的快捷通道先于通用规则。
func (s *IntentService) fallbackClassify(text string) model.IntentResult {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "分析") && (strings.Contains(lower, "订单") || strings.Contains(lower, "这些")) {
		s.logger.Debug().Msg("快速识别: 订单分析指令")
		return model.IntentResult{Type: model.IntentCommand, Confidence: 0.95, ExtractedCommand: "分析订单"}
	}

	hasCommand := containsAny(lower, commandKeywords)
	hasConversation := containsAny(lower, conversationKeywords)

	switch {
	case hasCommand && hasConversation:
		return model.IntentResult{Type: model.IntentMixed, Confidence: 0.8, ExtractedCommand: text}
	case hasCommand:
		return model.IntentResult{Type: model.IntentCommand, Confidence: 0.9, ExtractedCommand: text}
	default:
		return model.IntentResult{Type: model.IntentConversation, Confidence: 0.7}
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
