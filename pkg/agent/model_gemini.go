package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModelName = "gemini-1.5-flash"

// GeminiChatModel 基于 generative-ai-go 的 model.ToolCallingChatModel 实现。
// 每次调用通过 KeyRotator 选择密钥，客户端按密钥缓存。
type GeminiChatModel struct {
	modelName   string
	temperature float32
	rotator     *KeyRotator

	mu      sync.Mutex
	clients map[string]*genai.Client
}

var _ model.ToolCallingChatModel = (*GeminiChatModel)(nil)

// NewGeminiChatModel 创建 Gemini 模型
func NewGeminiChatModel(rotator *KeyRotator, modelName string, temperature float32) (*GeminiChatModel, error) {
	if rotator == nil {
		return nil, ErrNoAPIKeys
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultGeminiModelName
	}
	return &GeminiChatModel{
		modelName:   modelName,
		temperature: temperature,
		rotator:     rotator,
		clients:     make(map[string]*genai.Client),
	}, nil
}

func (g *GeminiChatModel) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}
	g.clients[apiKey] = c
	return c, nil
}

// Generate system 消息作为 SystemInstruction，其余消息按顺序拼为一次请求
func (g *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	apiKey, keyIndex := g.rotator.Next()
	c, err := g.client(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	gm := c.GenerativeModel(g.modelName)
	gm.SetTemperature(g.temperature)

	var system []string
	var parts []genai.Part
	for _, m := range messages {
		if m == nil || m.Content == "" {
			continue
		}
		if m.Role == schema.System {
			system = append(system, m.Content)
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(system) > 0 {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("Gemini 请求缺少用户消息")
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("Gemini 调用失败 (key #%d): %w", keyIndex, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("Gemini 返回空候选")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return schema.AssistantMessage(b.String(), nil), nil
}

// Stream 未实现
func (g *GeminiChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GeminiChatModel 的 Stream 方法未实现")
}

// WithTools 不支持工具调用，忽略工具并返回自身
func (g *GeminiChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return g, nil
}

// Close 关闭所有缓存的客户端
func (g *GeminiChatModel) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var firstErr error
	for key, c := range g.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(g.clients, key)
	}
	return firstErr
}
