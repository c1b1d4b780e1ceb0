package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-profiler/internal/constants"
	"resume-profiler/internal/logger"
	"resume-profiler/internal/tracing"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var llmTracer = otel.Tracer("resume-profiler/parser")

// llmCaller 封装带超时与指数退避重试的 LLM 调用
type llmCaller struct {
	model      model.ToolCallingChatModel
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	component  string
}

func newLLMCaller(m model.ToolCallingChatModel, component string) llmCaller {
	return llmCaller{
		model:      m,
		timeout:    constants.DefaultLLMTimeout,
		maxRetries: 2,
		retryDelay: 2 * time.Second,
		component:  component,
	}
}

// call 发送 system + user 两条消息，返回响应文本
func (c llmCaller) call(ctx context.Context, systemContent, userContent string) (string, error) {
	if c.model == nil {
		return "", fmt.Errorf("%s: LLM 模型未配置", c.component)
	}

	ctx, span := llmTracer.Start(ctx, c.component+".Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.component", c.component),
		attribute.Int("llm.prompt_length", len(systemContent)+len(userContent)),
	)

	messages := []*einoschema.Message{
		einoschema.SystemMessage(systemContent),
		einoschema.UserMessage(userContent),
	}

	log := logger.Op(c.component)
	log.Debug().Str("system", tracing.SafePrompt(systemContent)).Str("user", tracing.SafePrompt(userContent)).Msg("调用LLM")

	var response *einoschema.Message
	var err error
	retryDelay := c.retryDelay

	for retry := 0; retry <= c.maxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				tracing.RecordError(span, ctx.Err(), tracing.ErrorTypeTimeout)
				return "", fmt.Errorf("上下文已取消: %w", ctx.Err())
			case <-time.After(retryDelay):
				retryDelay *= 2
				log.Warn().Int("retry", retry).Msg("重试LLM调用")
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		response, err = c.model.Generate(callCtx, messages)
		cancel()

		if err == nil {
			break
		}
		if !isRetryableError(err) || retry >= c.maxRetries {
			log.Error().Err(err).Int("retries", retry).Msg("LLM调用最终失败")
			tracing.RecordError(span, err, tracing.ErrorTypeLLM)
			return "", fmt.Errorf("LLM Generate failed: %w", err)
		}
	}

	if response == nil {
		err = fmt.Errorf("LLM 返回空响应")
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return "", err
	}

	span.SetAttributes(attribute.Int("llm.response_length", len(response.Content)))
	log.Debug().Str("response", tracing.SafePrompt(response.Content)).Msg("LLM响应")
	return response.Content, nil
}

// isRetryableError 只有网络类和超时类错误才重试
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "503")
}
