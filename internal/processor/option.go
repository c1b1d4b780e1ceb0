package processor

import (
	"resume-profiler/internal/constants"
	"resume-profiler/internal/storage"
)

// Components 服务依赖的组件
type Components struct {
	Extractor   TextExtractor
	Synthesizer ProfileSynthesizer
	Reviewer    GrammarReviewer
	Exporter    DocumentExporter
	Store       storage.SessionStore
}

// Settings 服务设置
type Settings struct {
	UploadDir     string
	MaxUploadSize int64
}

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// WithcompExtractor 设置文本提取器组件
func WithcompExtractor(extractor TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = extractor
	}
}

// WithcompSynthesizer 设置结构化抽取组件
func WithcompSynthesizer(synthesizer ProfileSynthesizer) ComponentOpt {
	return func(c *Components) {
		c.Synthesizer = synthesizer
	}
}

// WithcompReviewer 设置语法检查组件
func WithcompReviewer(reviewer GrammarReviewer) ComponentOpt {
	return func(c *Components) {
		c.Reviewer = reviewer
	}
}

// WithcompExporter 设置导出组件
func WithcompExporter(exporter DocumentExporter) ComponentOpt {
	return func(c *Components) {
		c.Exporter = exporter
	}
}

// WithcompStore 设置会话存储组件
func WithcompStore(store storage.SessionStore) ComponentOpt {
	return func(c *Components) {
		c.Store = store
	}
}

// WithsetUploadDir 设置上传文件临时目录
func WithsetUploadDir(dir string) SettingOpt {
	return func(s *Settings) {
		s.UploadDir = dir
	}
}

// WithsetMaxUploadSize 设置上传大小上限（字节）
func WithsetMaxUploadSize(size int64) SettingOpt {
	return func(s *Settings) {
		if size > 0 {
			s.MaxUploadSize = size
		}
	}
}

func defaultSettings() Settings {
	return Settings{MaxUploadSize: constants.MaxUploadSize}
}
