package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-profiler/internal/logger"
	"resume-profiler/internal/parser"
	"resume-profiler/internal/render"
	"resume-profiler/internal/sanitizer"
	"resume-profiler/internal/storage"
	"resume-profiler/internal/tracing"
	"resume-profiler/internal/types"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 定义tracer
var tracer = otel.Tracer("resume-profiler/processor")

// ErrComponentNotInit 必需组件未初始化
var ErrComponentNotInit = errors.New("component is not initialized")

// Upload 一次上传请求：文件或粘贴文本二选一，文件优先
type Upload struct {
	Filename string
	File     io.Reader
	Text     string
}

// ExportRequest 导出请求，Hidden 为 nil 时使用会话中保存的隐藏章节
type ExportRequest struct {
	Format     render.Format
	Hidden     types.HiddenSections
	SkillsOnly bool
}

// ProfileService 串联提取、规范化、抽取、清洗、存储与渲染
type ProfileService struct {
	components Components
	settings   Settings
}

// NewProfileService 创建服务；存储与导出组件是必需的
func NewProfileService(compOpts []ComponentOpt, setOpts ...SettingOpt) (*ProfileService, error) {
	var comp Components
	for _, opt := range compOpts {
		opt(&comp)
	}
	set := defaultSettings()
	for _, opt := range setOpts {
		opt(&set)
	}
	if comp.Store == nil {
		return nil, fmt.Errorf("session store: %w", ErrComponentNotInit)
	}
	if comp.Exporter == nil {
		return nil, fmt.Errorf("exporter: %w", ErrComponentNotInit)
	}
	if set.UploadDir == "" {
		set.UploadDir = os.TempDir()
	}
	return &ProfileService{components: comp, settings: set}, nil
}

// fail 记录 span 错误并原样返回；输入类错误一律归为 validation
func fail(span trace.Span, err error, errorType tracing.ErrorType) error {
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrUnsupportedFile) {
		errorType = tracing.ErrorTypeValidation
	}
	tracing.RecordError(span, err, errorType)
	return err
}

func (s *ProfileService) startSpan(ctx context.Context, op, sessionID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "ProfileService."+op)
	span.SetAttributes(attribute.String("session.id", sessionID))
	return logger.WithSession(ctx, sessionID), span
}

// Ingest 上传文件或粘贴文本 -> 规范化 -> 结构化抽取 -> 清洗 -> 存储
func (s *ProfileService) Ingest(ctx context.Context, sessionID string, in Upload) (*types.Session, error) {
	ctx, span := s.startSpan(ctx, "Ingest", sessionID)
	defer span.End()
	log := logger.Ctx(ctx).With().Str("op", "ingest").Logger()

	if s.components.Synthesizer == nil {
		return nil, fail(span, NewSynthesisError(sessionID, "synthesizer: "+ErrComponentNotInit.Error()), tracing.ErrorTypeInternal)
	}

	var (
		text string
		err  error
	)
	if in.File != nil && in.Filename != "" {
		text, err = s.extractUpload(ctx, sessionID, in)
		if err != nil {
			return nil, fail(span, err, tracing.ErrorTypeExtract)
		}
	} else {
		text = in.Text
		if strings.TrimSpace(text) == "" {
			return nil, fail(span, NewInputError(sessionID, "没有上传文件也没有输入文本"), tracing.ErrorTypeValidation)
		}
	}

	text = parser.Normalize(text)
	if text == "" {
		return nil, NewExtractError(sessionID, "规范化后文本为空")
	}
	log.Debug().Int("text_length", len(text)).Str("snippet", tracing.SafeResumeContent(text)).Msg("开始结构化抽取")

	profile, err := s.components.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		log.Error().Err(err).Msg("结构化抽取失败")
		return nil, NewSynthesisError(sessionID, err.Error())
	}

	sess := types.NewSession(sessionID, sanitizer.Sanitize(profile), types.CreationUpload)
	if err := s.save(ctx, sess); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, err
	}
	log.Info().Str("name", tracing.MaskPII(sess.Profile.Name)).Msg("简历已结构化并保存")
	return sess, nil
}

// extractUpload 校验扩展名，落盘后提取文本，临时文件总会被删除
func (s *ProfileService) extractUpload(ctx context.Context, sessionID string, in Upload) (string, error) {
	ext, ok := parser.AllowedExtension(in.Filename)
	if !ok {
		return "", NewUnsupportedFileError(sessionID, in.Filename)
	}
	if s.components.Extractor == nil {
		return "", NewExtractError(sessionID, "extractor: "+ErrComponentNotInit.Error())
	}
	if err := os.MkdirAll(s.settings.UploadDir, 0o755); err != nil {
		return "", NewExtractError(sessionID, err.Error())
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", NewExtractError(sessionID, err.Error())
	}
	path := filepath.Join(s.settings.UploadDir, fmt.Sprintf("upload_%s.%s", id.String(), ext))
	f, err := os.Create(path)
	if err != nil {
		return "", NewExtractError(sessionID, err.Error())
	}
	defer os.Remove(path)

	n, err := io.Copy(f, io.LimitReader(in.File, s.settings.MaxUploadSize+1))
	closeErr := f.Close()
	if err != nil || closeErr != nil {
		return "", NewExtractError(sessionID, fmt.Sprintf("保存上传文件失败: %v", errors.Join(err, closeErr)))
	}
	if n > s.settings.MaxUploadSize {
		return "", NewInputError(sessionID, fmt.Sprintf("文件超过大小上限 %d 字节", s.settings.MaxUploadSize))
	}
	if n == 0 {
		return "", NewExtractError(sessionID, "上传文件为空")
	}

	text := s.components.Extractor.Extract(ctx, path, ext)
	if strings.TrimSpace(text) == "" {
		return "", NewExtractError(sessionID, in.Filename)
	}
	return text, nil
}

// SubmitManual 手工填写的 Profile，不经过 LLM；全部字段为空时拒绝
func (s *ProfileService) SubmitManual(ctx context.Context, sessionID string, p *types.Profile) (*types.Session, error) {
	ctx, span := s.startSpan(ctx, "SubmitManual", sessionID)
	defer span.End()

	clean := sanitizer.Sanitize(p)
	if clean.IsEmpty() {
		return nil, fail(span, NewInputError(sessionID, "所有字段均为空"), tracing.ErrorTypeValidation)
	}
	sess := types.NewSession(sessionID, clean, types.CreationScratch)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get 读取当前会话记录
func (s *ProfileService) Get(ctx context.Context, sessionID string) (*types.Session, error) {
	ctx, span := s.startSpan(ctx, "Get", sessionID)
	defer span.End()
	return s.load(ctx, sessionID)
}

// Update 整体替换 Profile 与隐藏章节，写入前重新清洗
func (s *ProfileService) Update(ctx context.Context, sessionID string, p *types.Profile, hidden types.HiddenSections) (*types.Session, error) {
	ctx, span := s.startSpan(ctx, "Update", sessionID)
	defer span.End()

	if p == nil {
		return nil, fail(span, NewInputError(sessionID, "缺少 profile"), tracing.ErrorTypeValidation)
	}
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Profile = sanitizer.Sanitize(p)
	if hidden != nil {
		sess.HiddenSections = hidden
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Review 对提交的 Profile（为空时使用会话中的记录）做语法检查，从不返回错误
func (s *ProfileService) Review(ctx context.Context, sessionID string, p *types.Profile) []types.Suggestion {
	ctx, span := s.startSpan(ctx, "Review", sessionID)
	defer span.End()

	if s.components.Reviewer == nil {
		return []types.Suggestion{}
	}
	if p == nil {
		sess, err := s.load(ctx, sessionID)
		if err != nil {
			return []types.Suggestion{}
		}
		p = sess.Profile
	}
	suggestions := s.components.Reviewer.Review(ctx, types.ReviewFields(sanitizer.Sanitize(p)))
	if suggestions == nil {
		return []types.Suggestion{}
	}
	span.SetAttributes(attribute.Int("review.suggestions", len(suggestions)))
	return suggestions
}

// ApplySuggestions 把采纳的建议写回会话中的 Profile，返回实际生效的条数
func (s *ProfileService) ApplySuggestions(ctx context.Context, sessionID string, accepted []types.Suggestion) (*types.Session, int, error) {
	ctx, span := s.startSpan(ctx, "ApplySuggestions", sessionID)
	defer span.End()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	applied := 0
	for _, sug := range accepted {
		if types.ApplySuggestion(sess.Profile, sug.Field, sug.Suggested) {
			applied++
		}
	}
	if applied == 0 {
		return sess, 0, nil
	}
	sess.Profile = sanitizer.Sanitize(sess.Profile)
	if err := s.save(ctx, sess); err != nil {
		return nil, 0, err
	}
	return sess, applied, nil
}

// SetDesign 切换展示模板并返回渲染后的 HTML
func (s *ProfileService) SetDesign(ctx context.Context, sessionID, design string) (string, error) {
	ctx, span := s.startSpan(ctx, "SetDesign", sessionID)
	defer span.End()

	if !types.IsValidDesign(design) {
		return "", fail(span, NewInputError(sessionID, "未知的设计: "+design), tracing.ErrorTypeValidation)
	}
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	sess.Design = design
	if err := s.save(ctx, sess); err != nil {
		return "", err
	}
	return s.renderHTML(sess)
}

// RenderHTML 当前设计下的 HTML 视图
func (s *ProfileService) RenderHTML(ctx context.Context, sessionID string) (string, error) {
	ctx, span := s.startSpan(ctx, "RenderHTML", sessionID)
	defer span.End()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.renderHTML(sess)
}

func (s *ProfileService) renderHTML(sess *types.Session) (string, error) {
	out, err := s.components.Exporter.HTML(sess.Profile, sess.HiddenSections, sess.Design)
	if err != nil {
		return "", NewRenderError(sess.ID, err.Error())
	}
	return out, nil
}

// Export 导出文档；提供隐藏章节时同时保存到会话
func (s *ProfileService) Export(ctx context.Context, sessionID string, req ExportRequest) (*render.Artifact, error) {
	ctx, span := s.startSpan(ctx, "Export", sessionID)
	defer span.End()
	span.SetAttributes(attribute.String("export.format", string(req.Format)))

	if _, ok := render.ParseFormat(string(req.Format)); !ok {
		return nil, fail(span, NewInputError(sessionID, "不支持的导出格式: "+string(req.Format)), tracing.ErrorTypeValidation)
	}
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if req.Hidden != nil {
		sess.HiddenSections = req.Hidden
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
	}

	art, err := s.components.Exporter.Export(ctx, sanitizer.Sanitize(sess.Profile), render.ExportOptions{
		Format:     req.Format,
		Hidden:     sess.HiddenSections,
		Design:     sess.Design,
		SkillsOnly: req.SkillsOnly,
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRender)
		return nil, NewRenderError(sessionID, err.Error())
	}
	return art, nil
}

// Clear 删除会话记录
func (s *ProfileService) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.startSpan(ctx, "Clear", sessionID)
	defer span.End()

	if err := s.components.Store.Delete(ctx, sessionID); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return NewStoreError(sessionID, err.Error())
	}
	return nil
}

func (s *ProfileService) load(ctx context.Context, sessionID string) (*types.Session, error) {
	if sessionID == "" {
		return nil, NewNoProfileError(sessionID)
	}
	sess, err := s.components.Store.Get(ctx, sessionID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, NewNoProfileError(sessionID)
	}
	if err != nil {
		return nil, NewStoreError(sessionID, err.Error())
	}
	if sess.Profile == nil {
		sess.Profile = types.NewProfile()
	}
	if sess.HiddenSections == nil {
		sess.HiddenSections = types.HiddenSections{}
	}
	if !types.IsValidDesign(sess.Design) {
		sess.Design = types.DefaultDesign
	}
	return sess, nil
}

func (s *ProfileService) save(ctx context.Context, sess *types.Session) error {
	if err := s.components.Store.Save(ctx, sess); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("op", "session.save").Msg("保存会话失败")
		return NewStoreError(sess.ID, err.Error())
	}
	return nil
}
