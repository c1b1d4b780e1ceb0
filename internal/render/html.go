package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"resume-profiler/internal/sanitizer"
	"resume-profiler/internal/types"
)

//go:embed templates/profile.html.tmpl templates/base.css templates/designs/*.css
var templateFS embed.FS

type htmlData struct {
	Name      string
	Design    string
	BaseCSS   template.CSS
	DesignCSS template.CSS
	View      *profileView
}

// HTMLRenderer 交互视图与 PDF 共用的 HTML 表示
type HTMLRenderer struct {
	tmpl    *template.Template
	baseCSS template.CSS
	designs map[string]template.CSS
}

// NewHTMLRenderer 解析内嵌模板与全部设计样式
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("profile.html.tmpl").Funcs(template.FuncMap{
		// 富文本再过一次白名单，之后才能作为可信 HTML 输出
		"rich": func(s string) template.HTML { return template.HTML(sanitizer.Rich(s)) },
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/profile.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 模板失败: %w", err)
	}

	base, err := templateFS.ReadFile("templates/base.css")
	if err != nil {
		return nil, fmt.Errorf("读取基础样式失败: %w", err)
	}

	r := &HTMLRenderer{tmpl: tmpl, baseCSS: template.CSS(base), designs: make(map[string]template.CSS)}
	for _, design := range types.Designs {
		css, err := templateFS.ReadFile("templates/designs/" + design + ".css")
		if err != nil {
			return nil, fmt.Errorf("读取设计样式 %s 失败: %w", design, err)
		}
		r.designs[design] = template.CSS(css)
	}
	return r, nil
}

// Render 按设计渲染 HTML；未知设计返回错误
func (r *HTMLRenderer) Render(p *types.Profile, hidden types.HiddenSections, design string) (string, error) {
	if design == "" {
		design = types.DefaultDesign
	}
	css, ok := r.designs[design]
	if !ok {
		return "", fmt.Errorf("未知的设计: %s", design)
	}

	view := buildView(p, hidden)
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, htmlData{
		Name:      view.Name,
		Design:    design,
		BaseCSS:   r.baseCSS,
		DesignCSS: css,
		View:      view,
	})
	if err != nil {
		return "", fmt.Errorf("执行 HTML 模板失败: %w", err)
	}
	return buf.String(), nil
}
