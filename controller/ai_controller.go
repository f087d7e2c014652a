package controller

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	aiModels "mogutou-backend/data-models/ai"
	"mogutou-backend/service"
)

// AIController 自然语言交互入口
type AIController struct {
	logger    zerolog.Logger
	aiService *service.AIService
}

func NewAIController(logger zerolog.Logger, aiService *service.AIService) *AIController {
	return &AIController{
		logger:    logger.With().Str("module", "ai_controller").Logger(),
		aiService: aiService,
	}
}

func (c *AIController) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "parse-natural-language",
		Method:        http.MethodPost,
		Path:          "/ai/parse",
		Summary:       "自然语言指令解析",
		Description:   "把自然语言输入转换为业务操作并执行，敏感操作需要二次确认",
		Tags:          []string{"AI"},
		DefaultStatus: http.StatusOK,
	}, c.handleParse)

	huma.Register(api, huma.Operation{
		OperationID:   "ai-insights",
		Method:        http.MethodPost,
		Path:          "/ai/insights",
		Summary:       "经营洞察分析",
		Description:   "基于订单与经营数据生成分析报告，AI 不可用时退回本地统计",
		Tags:          []string{"AI"},
		DefaultStatus: http.StatusOK,
	}, c.handleInsights)

	huma.Register(api, huma.Operation{
		OperationID: "ai-status",
		Method:      http.MethodGet,
		Path:        "/ai/status",
		Summary:     "AI 服务状态",
		Tags:        []string{"AI"},
	}, c.handleStatus)

	huma.Register(api, huma.Operation{
		OperationID: "ai-health",
		Method:      http.MethodGet,
		Path:        "/ai/health",
		Summary:     "AI 模块健康检查",
		Tags:        []string{"AI"},
	}, c.handleHealth)
}

func (c *AIController) handleParse(ctx context.Context, req *aiModels.ParseInput) (*aiModels.ParseResponse, error) {
	interactionID := uuid.New().String()
	c.logger.Info().
		Str("interaction_id", interactionID).
		Str("input", req.Body.Input).
		Bool("confirmed", req.Body.Confirmed).
		Msg("收到自然语言解析请求")

	reply, needConfirm := c.aiService.Interpret(ctx, req.Body.Input, req.Body.Confirmed)

	return &aiModels.ParseResponse{
		Body: aiModels.ParseData{
			InteractionID: interactionID,
			Reply:         reply,
			NeedConfirm:   needConfirm,
		},
	}, nil
}

func (c *AIController) handleInsights(ctx context.Context, req *aiModels.InsightsInput) (*aiModels.InsightsResponse, error) {
	question := req.Body.Question
	if question == "" {
		question = "请分析当前整体经营情况"
	}

	analysis, source := c.aiService.Insights(ctx, question)

	return &aiModels.InsightsResponse{
		Body: aiModels.InsightsData{
			Analysis: analysis,
			Source:   source,
		},
	}, nil
}

func (c *AIController) handleStatus(ctx context.Context, req *struct{}) (*aiModels.StatusResponse, error) {
	available, modelName, message := c.aiService.Status(ctx)

	return &aiModels.StatusResponse{
		Body: aiModels.StatusData{
			Available: available,
			Model:     modelName,
			Message:   message,
		},
	}, nil
}

func (c *AIController) handleHealth(ctx context.Context, req *struct{}) (*aiModels.HealthResponse, error) {
	return &aiModels.HealthResponse{
		Body: aiModels.HealthData{Status: "ok"},
	}, nil
}
