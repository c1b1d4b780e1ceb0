package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/url"
	"strings"
	"testing"
	"time"

	"resume-profiler/internal/api/handler"
	"resume-profiler/internal/constants"
	"resume-profiler/internal/parser"
	"resume-profiler/internal/processor"
	"resume-profiler/internal/render"
	"resume-profiler/internal/storage"
	"resume-profiler/pkg/agent"

	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const synthesizedJSON = `{
  "name": "Sam Smith",
  "total_experience": "5 years",
  "professional_summary": "<ul><li>Built <b>APIs</b></li></ul>",
  "technical_skills": {"tools": ["git", "vim"]},
  "personal_details": {"designation": "Engineer"}
}`

type fakePDF struct{}

func (fakePDF) Render(context.Context, string, render.PDFOptions) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

type testServer struct {
	h        *server.Hertz
	store    *storage.MemorySessionStore
	synthLLM *agent.MockChatClient
}

func newTestServer(t *testing.T, synthErr error) *testServer {
	t.Helper()
	synthLLM := agent.NewMockChatClientFunc(func([]*schema.Message) (string, error) {
		if synthErr != nil {
			return "", synthErr
		}
		return synthesizedJSON, nil
	})
	reviewLLM := agent.NewMockChatClient(`[{"field": "name", "original": "Sam Smith", "suggested": "Samuel Smith", "reason": "full name"}]`, nil)

	html, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	store := storage.NewMemorySessionStore(time.Hour)

	svc, err := processor.NewProfileService([]processor.ComponentOpt{
		processor.WithcompExtractor(parser.NewExtractor(nil, nil)),
		processor.WithcompSynthesizer(parser.NewSynthesizer(synthLLM,
			parser.WithBulletRewrite(false),
			parser.WithSynthesisRetry(0, time.Millisecond))),
		processor.WithcompReviewer(parser.NewReviewer(reviewLLM)),
		processor.WithcompExporter(render.NewExporter(t.TempDir(), html, fakePDF{})),
		processor.WithcompStore(store),
	}, processor.WithsetUploadDir(t.TempDir()))
	require.NoError(t, err)

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	RegisterRoutes(h, handler.NewProfileHandler(svc, time.Hour))
	return &testServer{h: h, store: store, synthLLM: synthLLM}
}

func (s *testServer) do(method, path string, body []byte, headers ...ut.Header) *ut.ResponseRecorder {
	return ut.PerformRequest(s.h.Engine, method, path, &ut.Body{Body: bytes.NewReader(body), Len: len(body)}, headers...)
}

func sessionHeader(id string) ut.Header {
	return ut.Header{Key: constants.SessionHeader, Value: id}
}

var (
	jsonHeader = ut.Header{Key: "Content-Type", Value: "application/json"}
	formHeader = ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"}
)

// uploadText 通过表单提交文本，返回签发的会话 ID
func (s *testServer) uploadText(t *testing.T) string {
	t.Helper()
	form := url.Values{"text_input": {"Sam Smith\nEngineer, 5 years\n• Built APIs"}}
	resp := s.do("POST", "/api/v1/profile/upload", []byte(form.Encode()), formHeader)
	require.Equal(t, 200, resp.Code, resp.Body.String())
	id := resp.Header().Get(constants.SessionHeader)
	require.NotEmpty(t, id, "创建接口应签发会话 ID")
	return id
}

func decodeMap(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m), string(data))
	return m
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do("GET", "/api/v1/health", nil)
	assert.Equal(t, 200, resp.Code)
	assert.Contains(t, resp.Body.String(), "ok")
}

func TestUploadTextThenGet(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.uploadText(t)

	resp := s.do("GET", "/api/v1/profile", nil, sessionHeader(id))
	require.Equal(t, 200, resp.Code)
	m := decodeMap(t, resp.Body.Bytes())
	profile := m["profile"].(map[string]any)
	assert.Equal(t, "Sam Smith", profile["name"])
	assert.Equal(t, "<ul><li>Built <b>APIs</b></li></ul>", profile["professional_summary"])
	skills := profile["technical_skills"].(map[string]any)
	assert.Equal(t, []any{}, skills["databases"], "缺失的技能分类补为空列表")
	assert.Equal(t, "upload", m["creation_method"])
	assert.Equal(t, 1, s.store.Len())
}

func TestUploadFileWithCookieSession(t *testing.T) {
	s := newTestServer(t, nil)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file_input", "resume.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Sam Smith\nEngineer"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp := s.do("POST", "/api/v1/profile/upload", body.Bytes(),
		ut.Header{Key: "Content-Type", Value: writer.FormDataContentType()},
		ut.Header{Key: "Cookie", Value: constants.SessionCookie + "=cookie-session"})
	require.Equal(t, 200, resp.Code, resp.Body.String())
	assert.Equal(t, "cookie-session", resp.Header().Get(constants.SessionHeader), "沿用 Cookie 中的会话")

	resp = s.do("GET", "/api/v1/profile", nil, ut.Header{Key: "Cookie", Value: constants.SessionCookie + "=cookie-session"})
	assert.Equal(t, 200, resp.Code)
}

func TestUploadErrors(t *testing.T) {
	t.Run("不支持的文件类型", func(t *testing.T) {
		s := newTestServer(t, nil)
		body := new(bytes.Buffer)
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "resume.exe")
		require.NoError(t, err)
		_, _ = part.Write([]byte("MZ"))
		require.NoError(t, writer.Close())

		resp := s.do("POST", "/api/v1/profile/upload", body.Bytes(),
			ut.Header{Key: "Content-Type", Value: writer.FormDataContentType()})
		assert.Equal(t, 400, resp.Code)
		assert.Equal(t, 0, s.store.Len(), "输入错误不应写入会话")
		assert.Empty(t, resp.Header().Get(constants.SessionHeader), "被拒绝的请求不应签发会话")
		assert.Empty(t, resp.Header().Get("Set-Cookie"), "被拒绝的请求不应设置 Cookie")
	})

	t.Run("没有任何输入", func(t *testing.T) {
		s := newTestServer(t, nil)
		resp := s.do("POST", "/api/v1/profile/upload", []byte(`{"text_input": "  "}`), jsonHeader)
		assert.Equal(t, 400, resp.Code)
		assert.Empty(t, resp.Header().Get(constants.SessionHeader))
		assert.Empty(t, resp.Header().Get("Set-Cookie"))
	})

	t.Run("抽取失败返回422且不泄露供应商错误", func(t *testing.T) {
		s := newTestServer(t, errors.New("provider says: API key sk-secret invalid"))
		resp := s.do("POST", "/api/v1/profile/upload", []byte(`{"text_input": "Sam Smith"}`), jsonHeader)
		assert.Equal(t, 422, resp.Code)
		m := decodeMap(t, resp.Body.Bytes())
		assert.Equal(t, handler.MsgUnableToProcess, m["error"])
		assert.NotContains(t, resp.Body.String(), "sk-secret")
		assert.Empty(t, resp.Header().Get("Set-Cookie"), "抽取失败不应设置 Cookie")
	})
}

func TestGetWithoutSession(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, 404, s.do("GET", "/api/v1/profile", nil).Code)
	assert.Equal(t, 404, s.do("GET", "/api/v1/profile", nil, sessionHeader("missing")).Code)
	assert.Equal(t, 404, s.do("GET", "/api/v1/profile/html", nil, sessionHeader("missing")).Code)
}

func TestManualSubmission(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do("POST", "/api/v1/profile/manual", []byte(`{"name": "  ", "past_projects": []}`), jsonHeader)
	assert.Equal(t, 400, resp.Code, "所有字段为空时拒绝")

	resp = s.do("POST", "/api/v1/profile/manual", []byte(`{"name": "Ann <script>x</script>", "roles_responsibilities": "<b onclick=\"x\">Lead</b>"}`), jsonHeader)
	require.Equal(t, 200, resp.Code, resp.Body.String())
	m := decodeMap(t, resp.Body.Bytes())
	profile := m["profile"].(map[string]any)
	assert.NotContains(t, profile["name"], "<script>")
	assert.Equal(t, "<b>Lead</b>", profile["roles_responsibilities"])
	assert.Equal(t, "scratch", m["creation_method"])
	assert.Equal(t, 0, s.synthLLM.CallCount(), "手工提交不调用 LLM")
}

func TestUpdateAndExport(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.uploadText(t)

	update := `{"name": "Sam Smith", "hidden_sections": ["skills-section", "not-a-section"],
		"technical_skills": {"tools": ["git"]}}`
	resp := s.do("PUT", "/api/v1/profile", []byte(update), jsonHeader, sessionHeader(id))
	require.Equal(t, 200, resp.Code, resp.Body.String())
	m := decodeMap(t, resp.Body.Bytes())
	assert.Equal(t, []any{"skills-section"}, m["hidden_sections"], "枚举外的章节被丢弃")

	resp = s.do("POST", "/api/v1/export/docx", []byte(`{"hidden_sections": "[\"summary-section\"]"}`), jsonHeader, sessionHeader(id))
	require.Equal(t, 200, resp.Code, resp.Body.String())
	assert.Equal(t, `attachment; filename="Sam_Smith_Profile.docx"`, resp.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")), "DOCX 是 zip 包")

	resp = s.do("GET", "/api/v1/profile", nil, sessionHeader(id))
	m = decodeMap(t, resp.Body.Bytes())
	assert.Equal(t, []any{"summary-section"}, m["hidden_sections"], "导出时提交的隐藏章节被保存")

	resp = s.do("POST", "/api/v1/export/pdf", nil, sessionHeader(id))
	require.Equal(t, 200, resp.Code, resp.Body.String())
	assert.Equal(t, "%PDF-1.7", resp.Body.String())
	assert.Equal(t, "application/pdf", string(resp.Header().ContentType()))
	assert.Equal(t, `attachment; filename="Sam_Smith_Resume.pdf"`, resp.Header().Get("Content-Disposition"))

	form := url.Values{"skills_only": {"on"}, "hidden_sections": {"not json"}}
	resp = s.do("POST", "/api/v1/export/xlsx", []byte(form.Encode()), formHeader, sessionHeader(id))
	require.Equal(t, 200, resp.Code, resp.Body.String())
	assert.Equal(t, `attachment; filename="Sam_Smith_Skills.xlsx"`, resp.Header().Get("Content-Disposition"))
}

func TestExportWithoutProfile(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do("POST", "/api/v1/export/xlsx", nil, sessionHeader("nobody"))
	assert.Equal(t, 404, resp.Code)
}

func TestGrammarAndApply(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do("POST", "/api/v1/profile/grammar", nil, sessionHeader("nobody"))
	require.Equal(t, 200, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String(), "没有记录时返回空数组")

	id := s.uploadText(t)
	resp = s.do("POST", "/api/v1/profile/grammar", nil, sessionHeader(id))
	require.Equal(t, 200, resp.Code)
	var suggestions []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Samuel Smith", suggestions[0]["suggested"])

	resp = s.do("POST", "/api/v1/profile/grammar/apply", resp.Body.Bytes(), jsonHeader, sessionHeader(id))
	require.Equal(t, 200, resp.Code, resp.Body.String())
	m := decodeMap(t, resp.Body.Bytes())
	assert.Equal(t, float64(1), m["applied"])
	assert.Equal(t, "Samuel Smith", m["profile"].(map[string]any)["name"])

	resp = s.do("POST", "/api/v1/profile/grammar/apply", []byte(`{"suggestions": [{"field": "nope", "suggested": "x"}]}`), jsonHeader, sessionHeader(id))
	require.Equal(t, 200, resp.Code)
	assert.Equal(t, float64(0), decodeMap(t, resp.Body.Bytes())["applied"])

	resp = s.do("POST", "/api/v1/profile/grammar/apply", []byte(`not json`), jsonHeader, sessionHeader(id))
	assert.Equal(t, 400, resp.Code)
}

func TestDesignAndHTML(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.uploadText(t)

	resp := s.do("POST", "/api/v1/profile/design", []byte(`{"design": "d9"}`), jsonHeader, sessionHeader(id))
	assert.Equal(t, 400, resp.Code)

	resp = s.do("POST", "/api/v1/profile/design", []byte(url.Values{"design": {"d2"}}.Encode()), formHeader, sessionHeader(id))
	require.Equal(t, 200, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "design-d2")

	resp = s.do("GET", "/api/v1/profile/html", nil, sessionHeader(id))
	require.Equal(t, 200, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), "design-d2"), "设计切换被保存")
	assert.Contains(t, resp.Body.String(), "Sam Smith")
}

func TestClearSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.uploadText(t)

	resp := s.do("DELETE", "/api/v1/session", nil, sessionHeader(id))
	require.Equal(t, 200, resp.Code)
	assert.Equal(t, 404, s.do("GET", "/api/v1/profile", nil, sessionHeader(id)).Code)
	assert.Equal(t, 0, s.store.Len())
}
