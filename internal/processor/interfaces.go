package processor

import (
	"context"

	"resume-profiler/internal/render"
	"resume-profiler/internal/types"
)

//
// 文本提取相关接口
//

// TextExtractor 按扩展名提取上传文件中的文本，失败时返回空串
type TextExtractor interface {
	Extract(ctx context.Context, path, ext string) string
}

//
// LLM 相关接口
//

// ProfileSynthesizer 将简历文本转换为结构化 Profile
type ProfileSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*types.Profile, error)
}

// GrammarReviewer 对自由文本字段给出语法建议，失败时返回空列表
type GrammarReviewer interface {
	Review(ctx context.Context, fields []types.ReviewField) []types.Suggestion
}

//
// 渲染相关接口
//

// DocumentExporter 交互视图渲染与文档导出
type DocumentExporter interface {
	HTML(p *types.Profile, hidden types.HiddenSections, design string) (string, error)
	Export(ctx context.Context, p *types.Profile, opts render.ExportOptions) (*render.Artifact, error)
}
