package parser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"resume-profiler/internal/logger"
	"resume-profiler/internal/tracing"
	"resume-profiler/internal/types"

	"github.com/cloudwego/eino/components/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyResponse LLM 响应中没有可用的 JSON 对象
var ErrEmptyResponse = errors.New("LLM 响应中没有可解析的结构化数据")

var richMarkupPattern = regexp.MustCompile(`(?i)</?(b|i|ul|ol|li)>`)

// HasRichMarkup 文本中是否已包含允许的富文本标签
func HasRichMarkup(text string) bool {
	return richMarkupPattern.MatchString(text)
}

// Synthesizer 调用 LLM 将规范化后的简历文本转换为 Profile
type Synthesizer struct {
	llm     llmCaller
	bullets bool
}

// SynthesizerOption Synthesizer 的配置选项
type SynthesizerOption func(*Synthesizer)

// WithBulletRewrite 是否对摘要与职责字段做二次要点化调用，默认开启
func WithBulletRewrite(enabled bool) SynthesizerOption {
	return func(s *Synthesizer) {
		s.bullets = enabled
	}
}

// WithSynthesisTimeout 设置单次 LLM 调用超时
func WithSynthesisTimeout(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		if d > 0 {
			s.llm.timeout = d
		}
	}
}

// WithSynthesisRetry 设置重试次数与初始退避
func WithSynthesisRetry(maxRetries int, delay time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		s.llm.maxRetries = maxRetries
		s.llm.retryDelay = delay
	}
}

// NewSynthesizer 创建 Synthesizer
func NewSynthesizer(llmModel model.ToolCallingChatModel, options ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		llm:     newLLMCaller(llmModel, "synthesizer"),
		bullets: true,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Synthesize 生成结构化 Profile。
// LLM 调用失败或响应中没有 JSON 对象时返回错误，其余缺失字段一律补默认值。
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*types.Profile, error) {
	log := logger.Op("synthesize")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: 输入文本为空", ErrEmptyResponse)
	}

	content, err := s.llm.call(ctx, synthesisSystemPrompt, "Resume:\n"+text)
	if err != nil {
		return nil, err
	}

	data := decodeLooseObject(content)
	if len(data) == 0 {
		log.Warn().Int("response_length", len(content)).Msg("LLM响应无法解析为JSON对象")
		return nil, ErrEmptyResponse
	}

	profile := types.ProfileFromMap(data)
	normalizeProfileDates(profile)

	if s.bullets {
		profile.ProfessionalSummary = s.bulletize(ctx, "professional_summary", profile.ProfessionalSummary)
		profile.RolesResponsibilities = s.bulletize(ctx, "roles_responsibilities", profile.RolesResponsibilities)
		for i := range profile.WorkExperience {
			w := &profile.WorkExperience[i]
			w.Responsibilities = s.bulletize(ctx, "work_experience_responsibilities_"+w.Role, w.Responsibilities)
		}
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("profile.name", tracing.SafeAttributeValue("profile.name", profile.Name, tracing.MaxResumeLength)),
		attribute.String("profile.total_experience", tracing.SafeAttributeValue("profile.total_experience", profile.TotalExperience, tracing.MaxResumeLength)),
		attribute.Int("profile.work_experience", len(profile.WorkExperience)),
	)
	log.Info().
		Int("education", len(profile.EducationTrainingCertifications)).
		Int("work_experience", len(profile.WorkExperience)).
		Bool("has_skills", profile.TechnicalSkills.HasAny()).
		Msg("结构化抽取完成")
	return profile, nil
}

// bulletize 对纯文本字段做二次要点化，失败时原样返回
func (s *Synthesizer) bulletize(ctx context.Context, field, text string) string {
	if strings.TrimSpace(text) == "" || HasRichMarkup(text) {
		return text
	}
	out, err := s.llm.call(ctx, bulletSystemPrompt, bulletPrompt(field, text))
	if err != nil {
		logger.Op("bulletize").Warn().Err(err).Str("field", field).Msg("要点化失败，保留原文")
		return text
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return text
	}
	return out
}

// normalizeProfileDates 将所有日期字段规范为 YYYY-MM
func normalizeProfileDates(p *types.Profile) {
	for i := range p.EducationTrainingCertifications {
		e := &p.EducationTrainingCertifications[i]
		e.StartDate = NormalizeDate(e.StartDate)
		e.EndDate = NormalizeDate(e.EndDate)
	}
	for i := range p.WorkExperience {
		w := &p.WorkExperience[i]
		w.StartDate = NormalizeDate(w.StartDate)
		w.EndDate = NormalizeDate(w.EndDate)
	}
	p.PersonalDetails.DateOfJoining = NormalizeDate(p.PersonalDetails.DateOfJoining)
	p.PersonalDetails.DateOfBirth = NormalizeDate(p.PersonalDetails.DateOfBirth)
}
