package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mogutou-backend/infra"
	"mogutou-backend/metrics"
	"mogutou-backend/model"
)

// CommandDispatcher 执行已结构化的指令并返回业务结果文本
type CommandDispatcher interface {
	Execute(ctx context.Context, cmd *model.Command) (string, error)
}

// PendingCommandStore 危险操作待确认指令的短时缓存
type PendingCommandStore interface {
	GetPendingCommand(ctx context.Context, key string) (string, error)
	SetPendingCommand(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	DelPendingCommand(ctx context.Context, key string) error
}

// AIService 自然语言交互编排器。
// 流水线：意图分类 → 指令结构化 → 确认闸门 → 调度执行 → 回复组装。
// Interpret 永远返回可展示的回复，不向调用方泄漏内部错误。
type AIService struct {
	logger     zerolog.Logger
	ai         infra.ChatClient
	pending    PendingCommandStore
	intent     *IntentService
	parser     *CommandParser
	executor   CommandDispatcher
	composer   *ResponseComposer
	orders     *OrderService
	finance    *FinanceService
	modelName  string
	pendingTTL time.Duration
}

func NewAIService(
	logger zerolog.Logger,
	ai infra.ChatClient,
	pending PendingCommandStore,
	intent *IntentService,
	parser *CommandParser,
	executor CommandDispatcher,
	composer *ResponseComposer,
	orders *OrderService,
	finance *FinanceService,
) *AIService {
	ttlSecs := infra.AppConfig.Confirmation.PendingTTLSecs
	if ttlSecs <= 0 {
		ttlSecs = 300
	}
	modelName := infra.AppConfig.DeepSeek.Model
	if modelName == "" {
		modelName = "deepseek-chat"
	}
	return &AIService{
		logger:     logger.With().Str("module", "ai_service").Logger(),
		ai:         ai,
		pending:    pending,
		intent:     intent,
		parser:     parser,
		executor:   executor,
		composer:   composer,
		orders:     orders,
		finance:    finance,
		modelName:  modelName,
		pendingTTL: time.Duration(ttlSecs) * time.Second,
	}
}

// Interpret 处理一条用户输入，返回回复文本与是否需要二次确认
func (s *AIService) Interpret(ctx context.Context, input string, confirmed bool) (reply string, needConfirm bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("input", input).Msg("流水线发生 panic")
			reply = "😅 抱歉，处理您的请求时出了点问题，请稍后重试"
			needConfirm = false
		}
	}()

	input = strings.TrimSpace(input)
	if input == "" {
		return "😅 请告诉我您想做什么，例如：'为张三创建订单，苹果10个单价5元'", false
	}

	// 已确认的敏感操作优先回放缓存的指令，避免二次解析产生偏差
	if confirmed {
		if cmd := s.loadPendingCommand(ctx, input); cmd != nil {
			return s.executeAndCompose(ctx, cmd), false
		}
	}

	classifyCtx, span := infra.StartPipelineSpan(ctx, "classify_intent")
	intent := s.intent.Classify(classifyCtx, input)
	infra.RecordPipelineSuccess(span, string(intent.Type),
		infra.AttrIntentType(string(intent.Type)),
		infra.AttrFloat64("nli.confidence", intent.Confidence))
	span.End()
	s.logger.Info().
		Str("intent_type", string(intent.Type)).
		Float64("confidence", intent.Confidence).
		Msg("意图分类完成")

	// 意图阶段截取的指令片段只用于 AI 解析，补缺仍基于完整输入
	commandText := intent.ExtractedCommand
	if commandText == "" {
		commandText = input
	}

	switch intent.Type {
	case model.IntentConversation:
		return s.chat(ctx, input), false
	case model.IntentMixed:
		return s.handleCommand(ctx, input, commandText, confirmed, true)
	default:
		return s.handleCommand(ctx, input, commandText, confirmed, false)
	}
}

// handleCommand 指令路径：解析、校验、确认闸门、执行、组装
func (s *AIService) handleCommand(ctx context.Context, input, commandText string, confirmed, mixed bool) (string, bool) {
	parseCtx, span := infra.StartPipelineSpan(ctx, "parse_command")
	cmd, err := s.parser.Parse(parseCtx, commandText, input)
	if err != nil {
		infra.RecordPipelineError(span, err, "", "指令解析失败")
		span.End()
		return s.composer.ComposeError(input, err), false
	}
	infra.RecordPipelineSuccess(span, string(cmd.Action))
	span.End()

	if remediation, ok := ValidateCommand(cmd); !ok {
		return remediation, false
	}

	if model.IsDangerous(cmd.Action) && !confirmed {
		s.storePendingCommand(ctx, input, cmd)
		return s.composer.ComposeConfirm(cmd), true
	}

	result := s.executeAndCompose(ctx, cmd)
	if mixed {
		return s.wrapMixedReply(ctx, input, result), false
	}
	return result, false
}

func (s *AIService) executeAndCompose(ctx context.Context, cmd *model.Command) string {
	execCtx, span := infra.StartPipelineSpan(ctx, "dispatch_command", infra.AttrAction(string(cmd.Action)))
	defer span.End()

	result, err := s.executor.Execute(execCtx, cmd)
	if err != nil {
		infra.RecordPipelineError(span, err, string(cmd.Action), "指令执行失败")
		return s.composer.ComposeError(cmd.OriginalInput, err)
	}
	infra.RecordPipelineSuccess(span, string(cmd.Action))
	return s.composer.Compose(cmd.Action, result)
}

// chat 闲聊路径，AI 不可用时给出固定的兜底回复
func (s *AIService) chat(ctx context.Context, input string) string {
	start := time.Now()
	reply, err := s.ai.Chat(ctx, chatPrompt, input, model.AIModeChat)
	if err != nil {
		s.logger.Warn().Err(err).Msg("闲聊调用失败")
		metrics.RecordPipelineOperation(metrics.OperationChat, metrics.StatusError, metrics.SourceAI, time.Since(start))
		return "😊 我是小蘑菇，可以帮您管理订单、库存和经营数据。您可以试试：'为张三创建订单，苹果10个单价5元'"
	}
	metrics.RecordPipelineOperation(metrics.OperationChat, metrics.StatusSuccess, metrics.SourceAI, time.Since(start))
	return StripMarkdown(reply)
}

// wrapMixedReply 混合意图时用闲聊口吻包装执行结果，包装失败则原样返回
func (s *AIService) wrapMixedReply(ctx context.Context, input, result string) string {
	question := fmt.Sprintf("用户输入：%s\n\n系统执行结果：\n%s\n\n请把执行结果转述给用户，并回应用户输入中的闲聊部分。", input, result)
	reply, err := s.ai.Chat(ctx, smartChatPrompt, question, model.AIModeChat)
	if err != nil {
		s.logger.Warn().Err(err).Msg("混合意图包装失败，返回原始结果")
		return result
	}
	return StripMarkdown(reply)
}

// Insights 经营洞察问答，AI 不可用时退回本地统计分析
func (s *AIService) Insights(ctx context.Context, question string) (analysis, source string) {
	records, err := s.finance.GetRecentMonths(ctx, 6)
	if err != nil {
		s.logger.Error().Err(err).Msg("读取经营数据失败")
		records = nil
	}
	orders, err := s.orders.GetRecentOrders(ctx, 30)
	if err != nil {
		s.logger.Error().Err(err).Msg("读取订单数据失败")
		orders = nil
	}

	dataContext := fmt.Sprintf("%s\n%s\n\n用户问题：%s",
		buildFinanceContext(records), buildOrderContext(orders), question)

	start := time.Now()
	reply, aiErr := s.ai.Chat(ctx, buildAnalysisPrompt(detectAnalysisType(question)), dataContext, model.AIModeAnalysis)
	if aiErr == nil {
		metrics.RecordPipelineOperation(metrics.OperationAnalyze, metrics.StatusSuccess, metrics.SourceAI, time.Since(start))
		return StripMarkdown(reply), "ai"
	}

	s.logger.Warn().Err(aiErr).Msg("AI 分析不可用，使用本地统计分析")
	metrics.RecordPipelineOperation(metrics.OperationAnalyze, metrics.StatusSuccess, metrics.SourceFallback, time.Since(start))
	return localFinanceAnalysis(records) + "\n\n" + localOrderAnalysis(orders), "fallback"
}

// Status 探测 AI 后端可用性
func (s *AIService) Status(ctx context.Context) (available bool, modelName, message string) {
	_, err := s.ai.Chat(ctx, "你是连接测试助手，收到消息后只回复：连接正常", "测试连接", model.AIModeChat)
	if err != nil {
		return false, s.modelName, fmt.Sprintf("AI 服务不可用: %s", err.Error())
	}
	return true, s.modelName, "AI 服务连接正常"
}

// loadPendingCommand 回放待确认指令，命中后立即删除缓存键
func (s *AIService) loadPendingCommand(ctx context.Context, input string) *model.Command {
	if s.pending == nil {
		return nil
	}
	start := time.Now()
	key := pendingCommandKey(input)
	raw, err := s.pending.GetPendingCommand(ctx, key)
	if err != nil || raw == "" {
		return nil
	}
	s.pending.DelPendingCommand(ctx, key)

	var cmd model.Command
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		s.logger.Warn().Err(err).Msg("解析缓存指令失败")
		return nil
	}
	metrics.RecordPipelineOperation(metrics.OperationParseCommand, metrics.StatusSuccess, metrics.SourceCache, time.Since(start))
	s.logger.Info().Str("action", string(cmd.Action)).Msg("回放缓存指令")
	return &cmd
}

func (s *AIService) storePendingCommand(ctx context.Context, input string, cmd *model.Command) {
	if s.pending == nil {
		return
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		s.logger.Warn().Err(err).Msg("序列化缓存指令失败")
		return
	}
	key := pendingCommandKey(input)
	if err := s.pending.SetPendingCommand(ctx, key, payload, s.pendingTTL); err != nil {
		// 缓存失败不阻断流程，确认时会重新解析
		s.logger.Warn().Err(err).Msg("写入缓存指令失败")
	}
}

func pendingCommandKey(input string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(input)))
	return infra.PendingCommandKeyPrefix + hex.EncodeToString(sum[:])
}

// detectAnalysisType 从问题文本推断分析类别
func detectAnalysisType(question string) string {
	switch {
	case strings.Contains(question, "订单"):
		return "ORDER"
	case strings.Contains(question, "销售"):
		return "SALES"
	case strings.Contains(question, "库存"):
		return "INVENTORY"
	case strings.Contains(question, "财务") || strings.Contains(question, "利润") || strings.Contains(question, "经营"):
		return "FINANCE"
	}
	return ""
}
