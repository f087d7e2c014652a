package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mogutou-backend/middleware"
	"mogutou-backend/model"
)

// ChatClient AI 聊天补全的抽象接口，测试时注入假实现
type ChatClient interface {
	Chat(ctx context.Context, systemPrompt, userText string, mode model.AIMode) (string, error)
}

type DeepSeekConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	MaxAttempts   int
	BaseDelay     time.Duration
	Timeouts      map[model.AIMode]time.Duration
	DefaultWindow time.Duration
}

// DefaultDeepSeekConfig 按配置文件生成客户端配置，未配置项取默认档位
func DefaultDeepSeekConfig() DeepSeekConfig {
	cfg := AppConfig.DeepSeek
	secs := func(v, fallback int) time.Duration {
		if v <= 0 {
			v = fallback
		}
		return time.Duration(v) * time.Second
	}

	attempts := cfg.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	baseDelay := secs(cfg.Retry.BaseDelaySecs, 1)

	return DeepSeekConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxAttempts: attempts,
		BaseDelay:   baseDelay,
		Timeouts: map[model.AIMode]time.Duration{
			model.AIModeIntent:        secs(cfg.TimeoutSecs.Intent, 15),
			model.AIModeCommand:       secs(cfg.TimeoutSecs.Command, 20),
			model.AIModeChat:          secs(cfg.TimeoutSecs.Chat, 25),
			model.AIModeAnalysis:      secs(cfg.TimeoutSecs.Analysis, 60),
			model.AIModeOrderAnalysis: secs(cfg.TimeoutSecs.OrderAnalysis, 90),
		},
		DefaultWindow: 30 * time.Second,
	}
}

type DeepSeekClient struct {
	logger     zerolog.Logger
	config     DeepSeekConfig
	httpClient *http.Client
	sleep      func(time.Duration) // 测试时替换，避免真实等待
}

func NewDeepSeekClient(logger zerolog.Logger, config DeepSeekConfig) *DeepSeekClient {
	if config.Model == "" {
		config.Model = "deepseek-chat"
	}
	return &DeepSeekClient{
		logger:     logger.With().Str("module", "deepseek_client").Logger(),
		config:     config,
		httpClient: &http.Client{},
		sleep:      time.Sleep,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat 调用 chat/completions，按模式取超时档位，失败时指数退避重试
func (d *DeepSeekClient) Chat(ctx context.Context, systemPrompt, userText string, mode model.AIMode) (string, error) {
	timeout, ok := d.config.Timeouts[mode]
	if !ok {
		timeout = d.config.DefaultWindow
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= d.config.MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		content, err := d.doChat(callCtx, systemPrompt, userText)
		cancel()
		if err == nil {
			middleware.RecordAICall(string(mode), "success", time.Since(start))
			return content, nil
		}
		lastErr = err

		d.logger.Warn().Err(err).
			Str("mode", string(mode)).
			Int("attempt", attempt).
			Msg("AI 调用失败")

		if attempt < d.config.MaxAttempts {
			// 退避 1s、2s、4s
			delay := d.config.BaseDelay * time.Duration(1<<(attempt-1))
			d.sleep(delay)
		}
	}
	middleware.RecordAICall(string(mode), "error", time.Since(start))
	return "", fmt.Errorf("AI 调用重试 %d 次后仍失败: %w", d.config.MaxAttempts, lastErr)
}

func (d *DeepSeekClient) doChat(ctx context.Context, systemPrompt, userText string) (string, error) {
	reqBody := chatRequest{
		Model: d.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
		TopP:        0.9,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	url := strings.TrimSuffix(d.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.config.APIKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求 AI 服务失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI 服务返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("AI 服务返回错误: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("AI 响应缺少 choices")
	}

	return CleanAIContent(chatResp.Choices[0].Message.Content), nil
}

// CleanAIContent 去除 AI 回复外层的 markdown 代码围栏
func CleanAIContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
