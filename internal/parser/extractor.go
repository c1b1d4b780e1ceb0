package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-profiler/internal/logger"
	"resume-profiler/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// 支持的上传格式
const (
	ExtPDF  = "pdf"
	ExtDOCX = "docx"
	ExtTXT  = "txt"
)

// AllowedExtension 校验文件名扩展名，返回小写扩展名
func AllowedExtension(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case ExtPDF, ExtDOCX, ExtTXT:
		return ext, true
	}
	return ext, false
}

// PageExtractor 按页提取 PDF 文本
type PageExtractor interface {
	ExtractPagesFromFile(ctx context.Context, path string) ([]string, error)
}

// TableReader 按页读取 PDF 表格行
type TableReader interface {
	ReadTables(path string) (map[int][]string, error)
}

// Extractor 按格式分派的文本提取器。
// 任何失败都记录日志并返回空串，不向上返回错误。
type Extractor struct {
	pages  PageExtractor
	tables TableReader
	docx   DOCXTextExtractor
}

// NewExtractor 创建提取器；pages 为 nil 时 PDF 只能依赖表格读取器的整行文本
func NewExtractor(pages PageExtractor, tables TableReader) *Extractor {
	if tables == nil {
		tables = PDFTableReader{}
	}
	return &Extractor{pages: pages, tables: tables}
}

// Extract 提取纯文本，ext 为不带点的小写扩展名
func (e *Extractor) Extract(ctx context.Context, path, ext string) string {
	ctx, span := llmTracer.Start(ctx, "Extractor.Extract")
	defer span.End()
	span.SetAttributes(attribute.String("file.ext", ext))

	log := logger.Op("extract").With().Str("path", tracing.TruncateString(filepath.Base(path), 80)).Str("ext", ext).Logger()

	var (
		text string
		err  error
	)
	switch ext {
	case ExtPDF:
		text, err = e.extractPDF(ctx, path)
	case ExtDOCX:
		text, err = e.docx.ExtractFromFile(path)
	case ExtTXT:
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		log.Warn().Msg("不支持的文件格式")
		return ""
	}
	if err != nil {
		log.Error().Err(err).Msg("文本提取失败")
		tracing.RecordError(span, err, tracing.ErrorTypeExtract)
		return ""
	}

	text = cleanExtracted(text)
	span.SetAttributes(attribute.Int("text.length", len(text)))
	log.Info().Int("chars", utf8.RuneCountInString(text)).Msg("文本提取完成")
	return text
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	tables, tableErr := e.tables.ReadTables(path)
	if tableErr != nil {
		logger.Op("extract_pdf").Warn().Err(tableErr).Msg("表格识别失败，仅保留页面文本")
	}
	if e.pages == nil {
		return "", tableErr
	}

	pages, err := e.pages.ExtractPagesFromFile(ctx, path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, page := range pages {
		if page != "" {
			b.WriteString(page)
			b.WriteByte('\n')
		}
		for _, row := range tables[i] {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// cleanExtracted 保证输出为合法 UTF-8，去除 NUL 与其它控制字符
func cleanExtracted(s string) string {
	s = strings.ToValidUTF8(s, "�")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
