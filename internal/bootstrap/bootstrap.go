// Package bootstrap 按配置组装服务端与命令行共用的组件
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"resume-profiler/internal/config"
	"resume-profiler/internal/constants"
	"resume-profiler/internal/logger"
	"resume-profiler/internal/parser"
	"resume-profiler/internal/processor"
	"resume-profiler/internal/render"
	"resume-profiler/internal/storage"
	"resume-profiler/pkg/agent"
	"resume-profiler/pkg/ratelimit"

	"github.com/cloudwego/eino/components/model"
)

// 任务名，对应 aliyun.task_models 的键
const (
	TaskSynthesis     = "profile_synthesis"
	TaskGrammarReview = "grammar_review"
)

// Models 抽取与语法检查使用的模型，Close 释放底层客户端
type Models struct {
	Synthesis model.ToolCallingChatModel
	Review    model.ToolCallingChatModel
	closers   []func() error
}

// Close 释放所有模型客户端
func (m *Models) Close() {
	for _, c := range m.closers {
		if err := c(); err != nil {
			logger.Op("bootstrap.models").Warn().Err(err).Msg("关闭模型客户端失败")
		}
	}
}

// NewModels 按 llm_provider 创建模型并包装限流与重试
func NewModels(cfg *config.Config) (*Models, error) {
	m := &Models{}
	for _, task := range []string{TaskSynthesis, TaskGrammarReview} {
		chat, name, closer, err := newChatModel(cfg, task)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("创建 %s 模型失败: %w", task, err)
		}
		if closer != nil {
			m.closers = append(m.closers, closer)
		}
		limited := ratelimit.NewLLMWithRateLimit(chat, ratelimit.Limits{
			QPM:           cfg.QPMFor(name),
			MaxRetries:    cfg.Synthesis.MaxRetries,
			RetryWaitTime: time.Duration(cfg.Synthesis.RetryWaitSeconds) * time.Second,
		})
		logger.Op("bootstrap.models").Info().Str("provider", cfg.LLMProvider).Str("task", task).
			Str("model", name).Int("qpm", cfg.QPMFor(name)).Msg("LLM 模型初始化成功")
		if task == TaskSynthesis {
			m.Synthesis = limited
		} else {
			m.Review = limited
		}
	}
	return m, nil
}

func newChatModel(cfg *config.Config, task string) (model.ToolCallingChatModel, string, func() error, error) {
	switch cfg.LLMProvider {
	case "qwen", "aliyun":
		rotator, err := agent.NewKeyRotator([]string{cfg.Aliyun.APIKey}, 0)
		if err != nil {
			return nil, "", nil, err
		}
		name := cfg.GetModelForTask(task)
		chat, err := agent.NewAliyunQwenChatModel(rotator, name, cfg.Aliyun.APIURL, cfg.Gemini.Temperature)
		return chat, name, nil, err
	case "gemini", "":
		rotator, err := agent.NewKeyRotator(cfg.Gemini.APIKeys, cfg.Gemini.RotateEvery)
		if err != nil {
			return nil, "", nil, err
		}
		chat, err := agent.NewGeminiChatModel(rotator, cfg.Gemini.Model, cfg.Gemini.Temperature)
		if err != nil {
			return nil, "", nil, err
		}
		return chat, cfg.Gemini.Model, chat.Close, nil
	}
	return nil, "", nil, fmt.Errorf("未知的 llm_provider: %s", cfg.LLMProvider)
}

// NewExtractor PDF 页面文本优先使用 eino 解析器，初始化失败时只依赖表格读取器
func NewExtractor(ctx context.Context) *parser.Extractor {
	pages, err := parser.NewEinoPDFTextExtractor(ctx, parser.WithEinoTimeout(constants.DefaultLLMTimeout))
	if err != nil {
		logger.Op("bootstrap.extractor").Warn().Err(err).Msg("Eino PDF 解析器初始化失败，仅使用表格读取器")
		return parser.NewExtractor(nil, parser.PDFTableReader{})
	}
	return parser.NewExtractor(pages, parser.PDFTableReader{})
}

// NewExporter 创建导出器，PDF 由 headless Chrome 生成
func NewExporter(cfg *config.Config) (*render.Exporter, error) {
	html, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("加载 HTML 模板失败: %w", err)
	}
	opts := []render.ChromeOption{
		render.WithWorkDir(cfg.Server.OutputDir),
		render.WithTimeouts(
			config.GetDuration(cfg.Render.LaunchTimeout, constants.DefaultBrowserTimeout),
			config.GetDuration(cfg.Render.SettleTimeout, constants.DefaultBrowserTimeout),
		),
	}
	if cfg.Render.ChromePath != "" {
		opts = append(opts, render.WithExecPath(cfg.Render.ChromePath))
	}
	return render.NewExporter(cfg.Server.OutputDir, html, render.NewChromePDF(opts...)), nil
}

// NewSynthesizer 按配置创建结构化抽取器
func NewSynthesizer(cfg *config.Config, llm model.ToolCallingChatModel) *parser.Synthesizer {
	return parser.NewSynthesizer(llm,
		parser.WithBulletRewrite(cfg.Synthesis.BulletRewrite),
		parser.WithSynthesisTimeout(config.GetDuration(cfg.Synthesis.Timeout, constants.DefaultLLMTimeout)),
		// 可重试错误由限流代理退避
		parser.WithSynthesisRetry(1, time.Duration(cfg.Synthesis.RetryWaitSeconds)*time.Second),
	)
}

// NewProfileService 组装完整的档案服务
func NewProfileService(ctx context.Context, cfg *config.Config, models *Models, store storage.SessionStore) (*processor.ProfileService, error) {
	exporter, err := NewExporter(cfg)
	if err != nil {
		return nil, err
	}
	maxUpload := int64(cfg.Server.MaxUploadMB) << 20
	if maxUpload <= 0 {
		maxUpload = constants.MaxUploadSize
	}
	return processor.NewProfileService([]processor.ComponentOpt{
		processor.WithcompExtractor(NewExtractor(ctx)),
		processor.WithcompSynthesizer(NewSynthesizer(cfg, models.Synthesis)),
		processor.WithcompReviewer(parser.NewReviewer(models.Review)),
		processor.WithcompExporter(exporter),
		processor.WithcompStore(store),
	}, processor.WithsetUploadDir(cfg.Server.UploadDir), processor.WithsetMaxUploadSize(maxUpload))
}
