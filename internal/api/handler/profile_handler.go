package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-profiler/internal/constants"
	"resume-profiler/internal/logger"
	"resume-profiler/internal/processor"
	"resume-profiler/internal/render"
	"resume-profiler/internal/tracing"
	"resume-profiler/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"
)

// MsgUnableToProcess 结构化抽取失败时返回给用户的统一提示
const MsgUnableToProcess = "unable to process"

// ProfileHandler 简历档案相关的 HTTP 处理器
type ProfileHandler struct {
	service    *processor.ProfileService
	sessionTTL time.Duration
}

// NewProfileHandler 创建处理器
func NewProfileHandler(service *processor.ProfileService, sessionTTL time.Duration) *ProfileHandler {
	return &ProfileHandler{service: service, sessionTTL: sessionTTL}
}

// HandleUpload 上传文件（file_input 或 file）或粘贴文本并生成结构化简历
func (h *ProfileHandler) HandleUpload(ctx context.Context, c *app.RequestContext) {
	in, err := readUpload(c)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	if in.File != nil {
		if closer, ok := in.File.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	sess, err := h.service.Ingest(ctx, resolveSession(c), in)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	issueSession(c, sess.ID, h.cookieMaxAge())
	c.JSON(consts.StatusOK, sess)
}

// readUpload 文件优先，其次是表单或 JSON 中的 text_input
func readUpload(c *app.RequestContext) (processor.Upload, error) {
	for _, field := range []string{"file_input", "file"} {
		fh, err := c.FormFile(field)
		if err != nil || fh == nil || fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return processor.Upload{}, processor.NewInputError("", "打开上传文件失败")
		}
		return processor.Upload{Filename: fh.Filename, File: f}, nil
	}

	if isJSON(c) {
		var body struct {
			TextInput string `json:"text_input"`
		}
		if raw := c.Request.Body(); len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				return processor.Upload{}, processor.NewInputError("", "请求体不是合法的 JSON")
			}
		}
		return processor.Upload{Text: body.TextInput}, nil
	}
	return processor.Upload{Text: c.PostForm("text_input")}, nil
}

// HandleManual 手工填写的简历直接清洗后保存
func (h *ProfileHandler) HandleManual(ctx context.Context, c *app.RequestContext) {
	m, err := decodeObject(c)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	if nested, ok := m["profile"].(map[string]any); ok {
		m = nested
	}

	sess, err := h.service.SubmitManual(ctx, resolveSession(c), types.ProfileFromMap(m))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	issueSession(c, sess.ID, h.cookieMaxAge())
	c.JSON(consts.StatusOK, sess)
}

// HandleGet 读取当前会话记录
func (h *ProfileHandler) HandleGet(ctx context.Context, c *app.RequestContext) {
	sess, err := h.service.Get(ctx, SessionID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, sess)
}

// HandleUpdate 整体替换 Profile，同一请求体中可携带 hidden_sections
func (h *ProfileHandler) HandleUpdate(ctx context.Context, c *app.RequestContext) {
	m, err := decodeObject(c)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	var hidden types.HiddenSections
	if v, ok := m["hidden_sections"]; ok {
		hidden = types.HiddenSectionsFromValue(v)
	}
	if nested, ok := m["profile"].(map[string]any); ok {
		m = nested
	}

	sess, err := h.service.Update(ctx, SessionID(c), types.ProfileFromMap(m), hidden)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, sess)
}

// HandleGrammar 对提交的或会话中的简历做语法检查，始终返回建议数组
func (h *ProfileHandler) HandleGrammar(ctx context.Context, c *app.RequestContext) {
	var submitted *types.Profile
	if raw := bytes.TrimSpace(c.Request.Body()); len(raw) > 0 {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err == nil && len(m) > 0 {
			if nested, ok := m["profile"].(map[string]any); ok {
				m = nested
			}
			submitted = types.ProfileFromMap(m)
		}
	}
	c.JSON(consts.StatusOK, h.service.Review(ctx, SessionID(c), submitted))
}

// HandleApplySuggestions 接受 {"suggestions": [...]} 或裸数组
func (h *ProfileHandler) HandleApplySuggestions(ctx context.Context, c *app.RequestContext) {
	accepted, err := decodeSuggestions(c.Request.Body())
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	sess, applied, err := h.service.ApplySuggestions(ctx, SessionID(c), accepted)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, utils.H{"applied": applied, "profile": sess.Profile})
}

func decodeSuggestions(raw []byte) ([]types.Suggestion, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, processor.NewInputError("", "缺少 suggestions")
	}
	var list []types.Suggestion
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, processor.NewInputError("", "suggestions 格式错误")
		}
		return list, nil
	}
	var body struct {
		Suggestions []types.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, processor.NewInputError("", "suggestions 格式错误")
	}
	return body.Suggestions, nil
}

// HandleDesign 切换展示模板并返回渲染后的 HTML
func (h *ProfileHandler) HandleDesign(ctx context.Context, c *app.RequestContext) {
	design := c.PostForm("design")
	if isJSON(c) {
		var body struct {
			Design string `json:"design"`
		}
		if err := json.Unmarshal(c.Request.Body(), &body); err != nil {
			h.writeError(ctx, c, processor.NewInputError(SessionID(c), "请求体不是合法的 JSON"))
			return
		}
		design = body.Design
	}

	page, err := h.service.SetDesign(ctx, SessionID(c), strings.TrimSpace(design))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.Data(consts.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// HandleHTML 当前设计下的 HTML 预览
func (h *ProfileHandler) HandleHTML(ctx context.Context, c *app.RequestContext) {
	page, err := h.service.RenderHTML(ctx, SessionID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.Data(consts.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// HandleExport 返回按格式生成的处理器，响应体为附件
func (h *ProfileHandler) HandleExport(format render.Format) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		req, err := readExportRequest(c)
		if err != nil {
			h.writeError(ctx, c, err)
			return
		}
		req.Format = format
		if format != render.FormatXLSX {
			req.SkillsOnly = false
		}

		art, err := h.service.Export(ctx, SessionID(c), req)
		if err != nil {
			h.writeError(ctx, c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
		c.Data(consts.StatusOK, art.ContentType, art.Data)
	}
}

// readExportRequest hidden_sections 可以是 JSON 字符串或数组；缺省时沿用会话中的设置
func readExportRequest(c *app.RequestContext) (processor.ExportRequest, error) {
	var req processor.ExportRequest
	if isJSON(c) {
		raw := bytes.TrimSpace(c.Request.Body())
		if len(raw) == 0 {
			return req, nil
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return req, processor.NewInputError(SessionID(c), "请求体不是合法的 JSON")
		}
		if v, ok := m["hidden_sections"]; ok {
			req.Hidden = types.HiddenSectionsFromValue(v)
		}
		req.SkillsOnly = truthy(m["skills_only"])
		return req, nil
	}

	if raw := c.PostForm("hidden_sections"); raw != "" {
		req.Hidden = types.ParseHiddenSections(raw)
	}
	req.SkillsOnly = truthy(c.PostForm("skills_only"))
	return req, nil
}

// HandleClear 删除会话记录并清除 Cookie
func (h *ProfileHandler) HandleClear(ctx context.Context, c *app.RequestContext) {
	if id := SessionID(c); id != "" {
		if err := h.service.Clear(ctx, id); err != nil {
			h.writeError(ctx, c, err)
			return
		}
	}
	c.SetCookie(constants.SessionCookie, "", -1, "/", "", protocol.CookieSameSiteLaxMode, false, true)
	c.JSON(consts.StatusOK, utils.H{"status": "cleared"})
}

// writeError 将处理器错误映射为状态码与用户可见的提示，内部细节只写日志
func (h *ProfileHandler) writeError(ctx context.Context, c *app.RequestContext, err error) {
	status, msg := StatusFor(err)
	log := logger.Ctx(ctx).With().Str("op", "api").Str("session_id", SessionID(c)).Str("path", string(c.Path())).Logger()
	if status >= consts.StatusInternalServerError || status == consts.StatusUnprocessableEntity {
		log.Error().Err(err).Int("status", status).Msg("请求处理失败")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("请求参数错误")
	}
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
	c.JSON(status, utils.H{"error": msg})
}

// StatusFor 错误到 HTTP 状态码与提示的映射
func StatusFor(err error) (int, string) {
	var pe *processor.ProfileError
	detail := ""
	if errors.As(err, &pe) {
		detail = pe.Detail
	}
	withDetail := func(base error) string {
		if detail == "" {
			return base.Error()
		}
		return base.Error() + ": " + detail
	}

	switch {
	case errors.Is(err, processor.ErrInvalidInput):
		return consts.StatusBadRequest, withDetail(processor.ErrInvalidInput)
	case errors.Is(err, processor.ErrUnsupportedFile):
		return consts.StatusBadRequest, withDetail(processor.ErrUnsupportedFile)
	case errors.Is(err, processor.ErrNoUsableText):
		return consts.StatusBadRequest, processor.ErrNoUsableText.Error()
	case errors.Is(err, processor.ErrSynthesisFailed):
		return consts.StatusUnprocessableEntity, MsgUnableToProcess
	case errors.Is(err, processor.ErrNoProfile):
		return consts.StatusNotFound, processor.ErrNoProfile.Error()
	case errors.Is(err, processor.ErrRenderFailed):
		return consts.StatusInternalServerError, processor.ErrRenderFailed.Error()
	case errors.Is(err, processor.ErrSessionStore):
		return consts.StatusInternalServerError, processor.ErrSessionStore.Error()
	default:
		return consts.StatusInternalServerError, "服务器内部错误"
	}
}

func (h *ProfileHandler) cookieMaxAge() int {
	return int(h.sessionTTL / time.Second)
}

func isJSON(c *app.RequestContext) bool {
	return strings.HasPrefix(strings.ToLower(string(c.ContentType())), "application/json")
}

// decodeObject 读取 JSON 对象请求体，空请求体视为输入错误
func decodeObject(c *app.RequestContext) (map[string]any, error) {
	raw := bytes.TrimSpace(c.Request.Body())
	if len(raw) == 0 {
		return nil, processor.NewInputError(SessionID(c), "请求体为空")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, processor.NewInputError(SessionID(c), "请求体不是合法的 JSON 对象")
	}
	return m, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "on", "yes":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}
