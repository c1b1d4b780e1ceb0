package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-profiler/internal/logger"
	"resume-profiler/internal/tracing"
	"resume-profiler/internal/types"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var renderTracer = otel.Tracer("resume-profiler/render")

// Format 导出格式
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
)

// ParseFormat 校验导出格式
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatPDF, FormatDOCX, FormatXLSX:
		return f, true
	}
	return "", false
}

// 各格式的 Content-Type
var contentTypes = map[Format]string{
	FormatPDF:  "application/pdf",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportOptions 单次导出参数
type ExportOptions struct {
	Format     Format
	Hidden     types.HiddenSections
	Design     string
	SkillsOnly bool
}

// Artifact 导出结果
type Artifact struct {
	Data        []byte
	Filename    string
	ContentType string
}

// FileRenderer 把 Profile 写到指定路径
type FileRenderer interface {
	RenderToFile(p *types.Profile, hidden types.HiddenSections, path string) error
}

// Exporter 统一管理导出与临时文件生命周期
type Exporter struct {
	outputDir  string
	html       *HTMLRenderer
	pdf        PDFEngine
	pdfOptions PDFOptions
	docx       FileRenderer
}

// NewExporter 创建导出器，outputDir 为空时使用系统临时目录
func NewExporter(outputDir string, html *HTMLRenderer, pdf PDFEngine) *Exporter {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	return &Exporter{
		outputDir:  outputDir,
		html:       html,
		pdf:        pdf,
		pdfOptions: DefaultPDFOptions(),
		docx:       NewDOCXRenderer(),
	}
}

// HTML 交互视图使用的 HTML
func (e *Exporter) HTML(p *types.Profile, hidden types.HiddenSections, design string) (string, error) {
	return e.html.Render(p, hidden, design)
}

// Export 渲染到 <outputDir>/profile_<uuidv7>.<ext>，读回字节后删除文件。
// 无论成功失败临时文件都会被删除。
func (e *Exporter) Export(ctx context.Context, p *types.Profile, opts ExportOptions) (*Artifact, error) {
	ctx, span := renderTracer.Start(ctx, "render.Export")
	defer span.End()
	span.SetAttributes(
		attribute.String("render.format", string(opts.Format)),
		attribute.Bool("render.skills_only", opts.SkillsOnly),
	)
	log := logger.Ctx(ctx).With().Str("op", "render.Export").Str("format", string(opts.Format)).Logger()

	if p == nil {
		p = types.NewProfile()
	}
	contentType, ok := contentTypes[opts.Format]
	if !ok {
		return nil, fmt.Errorf("不支持的导出格式: %s", opts.Format)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成临时文件名失败: %w", err)
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(e.outputDir, fmt.Sprintf("profile_%s.%s", id.String(), opts.Format))
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("path", path).Msg("删除临时文件失败")
		}
	}()

	start := time.Now()
	if err := e.renderTo(ctx, p, opts, path); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRender)
		log.Error().Err(err).Msg("导出失败")
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRender)
		return nil, fmt.Errorf("读取导出文件失败: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("导出文件为空: %s", opts.Format)
	}

	log.Info().Int("bytes", len(data)).Dur("elapsed", time.Since(start)).Msg("导出完成")
	return &Artifact{
		Data:        data,
		Filename:    artifactName(p.Name, opts),
		ContentType: contentType,
	}, nil
}

func (e *Exporter) renderTo(ctx context.Context, p *types.Profile, opts ExportOptions, path string) error {
	switch opts.Format {
	case FormatPDF:
		if e.pdf == nil || e.html == nil {
			return fmt.Errorf("PDF 引擎未配置")
		}
		page, err := e.html.Render(p, opts.Hidden, opts.Design)
		if err != nil {
			return err
		}
		pdf, err := e.pdf.Render(ctx, page, e.pdfOptions)
		if err != nil {
			return err
		}
		if len(pdf) == 0 {
			return ErrEmptyPDF
		}
		return os.WriteFile(path, pdf, 0o600)
	case FormatDOCX:
		return e.docx.RenderToFile(p, opts.Hidden, path)
	case FormatXLSX:
		return NewXLSXRenderer(opts.SkillsOnly).RenderToFile(p, opts.Hidden, path)
	}
	return fmt.Errorf("不支持的导出格式: %s", opts.Format)
}

func artifactName(name string, opts ExportOptions) string {
	switch opts.Format {
	case FormatPDF:
		return DownloadName(name, "Resume", "_Resume.pdf")
	case FormatDOCX:
		return DownloadName(name, "Employee", "_Profile.docx")
	}
	if opts.SkillsOnly {
		return DownloadName(name, "Employee", "_Skills.xlsx")
	}
	return DownloadName(name, "Employee", "_Profile.xlsx")
}
