package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mogutou-backend/infra"
	"mogutou-backend/model"
)

// fakeModeChatClient 按调用模式返回不同回复的 AI 替身
type fakeModeChatClient struct {
	replies map[model.AIMode]string
	calls   int
}

func (f *fakeModeChatClient) Chat(ctx context.Context, systemPrompt, userText string, mode model.AIMode) (string, error) {
	f.calls++
	if reply, ok := f.replies[mode]; ok {
		return reply, nil
	}
	return "", errors.New("连接超时")
}

// fakePendingStore 内存版待确认指令缓存
type fakePendingStore struct {
	entries map[string]string
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{entries: map[string]string{}}
}

func (f *fakePendingStore) GetPendingCommand(ctx context.Context, key string) (string, error) {
	return f.entries[key], nil
}

func (f *fakePendingStore) SetPendingCommand(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	f.entries[key] = string(payload)
	return nil
}

func (f *fakePendingStore) DelPendingCommand(ctx context.Context, key string) error {
	delete(f.entries, key)
	return nil
}

// fakeDispatcher 统计执行次数的调度替身
type fakeDispatcher struct {
	calls   int
	lastCmd *model.Command
	result  string
}

func (f *fakeDispatcher) Execute(ctx context.Context, cmd *model.Command) (string, error) {
	f.calls++
	f.lastCmd = cmd
	return f.result, nil
}

func newTestAIService(ai *fakeChatClient) *AIService {
	// 待确认缓存与调度器缺席时确认流程退化为重新解析
	return newGatedAIService(ai, nil, nil)
}

func newGatedAIService(ai infra.ChatClient, pending PendingCommandStore, executor CommandDispatcher) *AIService {
	logger := zerolog.Nop()
	extractor := NewTextExtractor(logger)
	return NewAIService(
		logger,
		ai,
		pending,
		NewIntentService(logger, ai),
		NewCommandParser(logger, ai, extractor),
		executor,
		NewResponseComposer(logger),
		nil,
		nil,
	)
}

// TestInterpretDangerousCommandRequiresConfirmation 敏感操作先确认后执行
func TestInterpretDangerousCommandRequiresConfirmation(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	svc := newTestAIService(ai)

	reply, needConfirm := svc.Interpret(context.Background(), "删除订单123", false)
	if !needConfirm {
		t.Fatal("删除订单应要求二次确认")
	}
	if !strings.Contains(reply, "确认删除订单 123") {
		t.Fatalf("确认提示错误: %q", reply)
	}
	if !strings.Contains(reply, "⚠️ 删除后无法恢复") {
		t.Fatalf("确认提示缺少警告: %q", reply)
	}
}

// TestInterpretMixedInputKeepsFullContext 混合输入中截取片段丢掉的字段仍能从完整输入找回
func TestInterpretMixedInputKeepsFullContext(t *testing.T) {
	ai := &fakeModeChatClient{replies: map[model.AIMode]string{
		model.AIModeIntent:  `{"intent_type": "MIXED", "confidence": 0.9, "command": "删除订单"}`,
		model.AIModeCommand: `{"action": "delete_order"}`,
	}}
	svc := newGatedAIService(ai, newFakePendingStore(), &fakeDispatcher{})

	reply, needConfirm := svc.Interpret(context.Background(), "你好，帮我删除订单123", false)
	if !needConfirm {
		t.Fatalf("混合输入中的删除指令应要求二次确认: %q", reply)
	}
	if !strings.Contains(reply, "确认删除订单 123") {
		t.Fatalf("订单号应从完整输入补全: %q", reply)
	}
}

// TestInterpretGateBlocksUnconfirmedExecution 未确认的敏感操作只入缓存不执行
func TestInterpretGateBlocksUnconfirmedExecution(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	store := newFakePendingStore()
	exec := &fakeDispatcher{result: "订单 123 已删除"}
	svc := newGatedAIService(ai, store, exec)

	_, needConfirm := svc.Interpret(context.Background(), "删除订单123", false)
	if !needConfirm {
		t.Fatal("删除订单应要求二次确认")
	}
	if exec.calls != 0 {
		t.Fatalf("未确认时不应执行指令，实际执行 %d 次", exec.calls)
	}
	if len(store.entries) != 1 {
		t.Fatalf("待确认指令应入缓存，缓存条目数 %d", len(store.entries))
	}
}

// TestInterpretConfirmedReplaysPendingCommand 确认后回放缓存指令且只执行一次
func TestInterpretConfirmedReplaysPendingCommand(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	store := newFakePendingStore()
	exec := &fakeDispatcher{result: "订单 123 已删除"}
	svc := newGatedAIService(ai, store, exec)

	svc.Interpret(context.Background(), "删除订单123", false)
	callsBeforeConfirm := ai.calls

	reply, needConfirm := svc.Interpret(context.Background(), "删除订单123", true)
	if needConfirm {
		t.Fatal("确认后不应再次要求确认")
	}
	if exec.calls != 1 {
		t.Fatalf("确认后应恰好执行一次，实际 %d 次", exec.calls)
	}
	if exec.lastCmd == nil || exec.lastCmd.OrderID != 123 {
		t.Fatalf("回放指令错误: %+v", exec.lastCmd)
	}
	if len(store.entries) != 0 {
		t.Fatalf("回放后缓存键应被删除，剩余 %d 条", len(store.entries))
	}
	if ai.calls != callsBeforeConfirm {
		t.Fatalf("回放路径不应重新解析，AI 调用从 %d 增至 %d", callsBeforeConfirm, ai.calls)
	}
	if !strings.Contains(reply, "订单 123 已删除") {
		t.Fatalf("回复应包含执行结果: %q", reply)
	}
}

// TestInterpretIncompleteCommandAsksForFields 字段缺失时返回补全提示
func TestInterpretIncompleteCommandAsksForFields(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	svc := newTestAIService(ai)

	reply, needConfirm := svc.Interpret(context.Background(), "创建订单", false)
	if needConfirm {
		t.Fatal("补全提示不应要求确认")
	}
	if !strings.Contains(reply, "请告诉我客户") {
		t.Fatalf("补全提示错误: %q", reply)
	}
}

// TestInterpretConversationFallback 闲聊且 AI 不可用时给出固定回复
func TestInterpretConversationFallback(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	svc := newTestAIService(ai)

	reply, needConfirm := svc.Interpret(context.Background(), "你好", false)
	if needConfirm {
		t.Fatal("闲聊不应要求确认")
	}
	if !strings.Contains(reply, "小蘑菇") {
		t.Fatalf("闲聊兜底回复错误: %q", reply)
	}
}

// TestInterpretConversationWithAI 闲聊走 AI 回复
func TestInterpretConversationWithAI(t *testing.T) {
	ai := &fakeChatClient{reply: `{"intent_type": "CONVERSATION", "confidence": 0.9}`}
	svc := newTestAIService(ai)

	// 第一次调用做意图分类，第二次调用生成闲聊回复
	reply, needConfirm := svc.Interpret(context.Background(), "今天过得怎么样", false)
	if needConfirm {
		t.Fatal("闲聊不应要求确认")
	}
	if reply == "" {
		t.Fatal("闲聊回复不应为空")
	}
	if ai.calls != 2 {
		t.Fatalf("AI 调用次数错误: 期望 2，实际 %d", ai.calls)
	}
}

// TestInterpretEmptyInput 空输入返回引导提示
func TestInterpretEmptyInput(t *testing.T) {
	ai := &fakeChatClient{err: errors.New("连接超时")}
	svc := newTestAIService(ai)

	reply, needConfirm := svc.Interpret(context.Background(), "   ", false)
	if needConfirm {
		t.Fatal("空输入不应要求确认")
	}
	if !strings.Contains(reply, "请告诉我您想做什么") {
		t.Fatalf("空输入提示错误: %q", reply)
	}
	if ai.calls != 0 {
		t.Fatalf("空输入不应触发 AI 调用，实际调用 %d 次", ai.calls)
	}
}

// TestInterpretNeverPanics 流水线内部异常不外泄
func TestInterpretNeverPanics(t *testing.T) {
	// executor 缺席时执行路径会触发空指针，应被兜底拦截
	ai := &fakeChatClient{err: errors.New("连接超时")}
	svc := newTestAIService(ai)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Interpret 不应向调用方抛出 panic: %v", r)
		}
	}()

	reply, needConfirm := svc.Interpret(context.Background(), "查询订单", false)
	if needConfirm {
		t.Fatal("异常兜底不应要求确认")
	}
	if !strings.Contains(reply, "😅") {
		t.Fatalf("异常时应返回道歉回复: %q", reply)
	}
}
