package parser

import (
	"context"
	"encoding/json"
	"strings"

	"resume-profiler/internal/logger"
	"resume-profiler/internal/sanitizer"
	"resume-profiler/internal/tracing"
	"resume-profiler/internal/types"

	"github.com/cloudwego/eino/components/model"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// suggestionsSchema LLM 返回的语法建议必须满足的结构
const suggestionsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["field", "suggested"],
    "properties": {
      "field":     {"type": "string", "minLength": 1},
      "field_id":  {"type": "string"},
      "original":  {"type": "string"},
      "suggested": {"type": "string"},
      "reason":    {"type": "string"}
    }
  }
}`

var suggestionsSchemaLoader = gojsonschema.NewStringLoader(suggestionsSchema)

// Reviewer 调用 LLM 对自由文本字段给出语法建议
type Reviewer struct {
	llm llmCaller
}

// NewReviewer 创建 Reviewer
func NewReviewer(llmModel model.ToolCallingChatModel) *Reviewer {
	return &Reviewer{llm: newLLMCaller(llmModel, "reviewer")}
}

type reviewPayload struct {
	Field   string `json:"field"`
	FieldID string `json:"field_id"`
	Text    string `json:"text"`
}

// Review 返回建议列表，任何失败都记录日志并返回空列表
func (r *Reviewer) Review(ctx context.Context, fields []types.ReviewField) []types.Suggestion {
	log := logger.Op("review")
	result := []types.Suggestion{}
	if len(fields) == 0 {
		return result
	}

	sent := make(map[string]reviewPayload, len(fields))
	payload := make([]reviewPayload, 0, len(fields))
	for _, f := range fields {
		text := f.Text
		if f.Rich {
			text = sanitizer.PlainText(text)
		} else {
			text = sanitizer.PlainText(sanitizer.Plain(text))
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		item := reviewPayload{Field: f.Key, FieldID: f.ID, Text: text}
		payload = append(payload, item)
		sent[f.Key] = item
	}
	if len(payload) == 0 {
		return result
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("序列化待检查字段失败")
		return result
	}

	keys := make([]string, 0, len(payload))
	for _, item := range payload {
		keys = append(keys, item.Field)
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("review.fields", tracing.SafeAttributeValue("review.fields", strings.Join(keys, ","), tracing.DefaultMaxLength)),
	)

	content, err := r.llm.call(ctx, grammarSystemPrompt, "Text fields:\n"+string(body))
	if err != nil {
		log.Error().Err(err).Msg("语法检查调用失败")
		return result
	}

	raw := ExtractJSON(content)
	if raw == "" {
		log.Warn().Msg("语法检查响应中没有JSON")
		return result
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		log.Warn().Err(err).Msg("语法检查响应不是合法JSON")
		return result
	}

	validation, err := gojsonschema.Validate(suggestionsSchemaLoader, gojsonschema.NewGoLoader(decoded))
	if err != nil || !validation.Valid() {
		if validation != nil {
			for _, e := range validation.Errors() {
				log.Warn().Str("error", e.String()).Msg("语法建议不符合结构")
			}
		}
		return result
	}

	var suggestions []types.Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return result
	}
	for _, s := range suggestions {
		origin, ok := sent[s.Field]
		if !ok {
			log.Debug().Str("field", s.Field).Msg("丢弃未知字段的建议")
			continue
		}
		s.FieldID = origin.FieldID
		if s.Original == "" {
			s.Original = origin.Text
		}
		if s.Suggested == s.Original {
			continue
		}
		result = append(result, s)
	}
	log.Info().Int("fields", len(payload)).Int("suggestions", len(result)).Msg("语法检查完成")
	return result
}
