package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"mogutou-backend/model"
)

// TestClassifyWithAI AI 正常返回时采用其分类结果
func TestClassifyWithAI(t *testing.T) {
	ai := &fakeChatClient{reply: `{"intent_type": "COMMAND", "confidence": 0.92, "command": "创建订单"}`}
	svc := NewIntentService(zerolog.Nop(), ai)

	result := svc.Classify(context.Background(), "为张三创建订单")
	if result.Type != model.IntentCommand {
		t.Fatalf("意图类型错误: %s", result.Type)
	}
	if result.Confidence != 0.92 {
		t.Fatalf("置信度错误: %v", result.Confidence)
	}
	if result.ExtractedCommand != "创建订单" {
		t.Fatalf("指令部分错误: %q", result.ExtractedCommand)
	}
	if ai.lastMode != model.AIModeIntent {
		t.Fatalf("调用模式错误: %s", ai.lastMode)
	}
}

// TestClassifyInvalidAITypeDefaultsToConversation 非法类型归为闲聊
func TestClassifyInvalidAITypeDefaultsToConversation(t *testing.T) {
	ai := &fakeChatClient{reply: `{"intent_type": "SOMETHING_ELSE", "confidence": 0}`}
	svc := NewIntentService(zerolog.Nop(), ai)

	result := svc.Classify(context.Background(), "随便说点什么")
	if result.Type != model.IntentConversation {
		t.Fatalf("非法类型应归为 CONVERSATION，实际 %s", result.Type)
	}
	if result.Confidence != 0.5 {
		t.Fatalf("非正置信度应取 0.5，实际 %v", result.Confidence)
	}
}

// TestClassifyFallback AI 不可用时走关键词规则
func TestClassifyFallback(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	svc := NewIntentService(zerolog.Nop(), ai)

	testCases := []struct {
		name           string
		text           string
		wantType       model.IntentType
		wantConfidence float64
	}{
		{"指令关键词", "删除订单123", model.IntentCommand, 0.9},
		{"闲聊关键词", "你好呀", model.IntentConversation, 0.7},
		{"混合意图", "你好，帮我查询订单", model.IntentMixed, 0.8},
		{"订单分析快捷通道", "帮我分析这些订单", model.IntentCommand, 0.95},
		{"无任何关键词", "嗯嗯", model.IntentConversation, 0.7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := svc.Classify(context.Background(), tc.text)
			if result.Type != tc.wantType {
				t.Fatalf("意图类型错误: 输入 %q，期望 %s，实际 %s", tc.text, tc.wantType, result.Type)
			}
			if result.Confidence != tc.wantConfidence {
				t.Fatalf("置信度错误: 输入 %q，期望 %v，实际 %v", tc.text, tc.wantConfidence, result.Confidence)
			}
		})
	}
}

// TestClassifyFallbackOnBadJSON AI 返回非 JSON 时同样降级
func TestClassifyFallbackOnBadJSON(t *testing.T) {
	ai := &fakeChatClient{reply: "我觉得这是一条指令"}
	svc := NewIntentService(zerolog.Nop(), ai)

	result := svc.Classify(context.Background(), "查询订单")
	if result.Type != model.IntentCommand {
		t.Fatalf("降级分类错误: %s", result.Type)
	}
}

// TestClassifyAnalysisShortcutCommand 快捷通道携带提取的指令文本
func TestClassifyAnalysisShortcutCommand(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	svc := NewIntentService(zerolog.Nop(), ai)

	result := svc.Classify(context.Background(), "分析这些订单的趋势")
	if result.ExtractedCommand != "分析订单" {
		t.Fatalf("快捷通道指令错误: %q", result.ExtractedCommand)
	}
}
