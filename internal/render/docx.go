package render

import (
	"fmt"

	"resume-profiler/internal/types"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const styleListBullet = "List Bullet"

// DOCXRenderer 生成 Word 文档
type DOCXRenderer struct{}

// NewDOCXRenderer 创建 DOCX 渲染器
func NewDOCXRenderer() *DOCXRenderer {
	return &DOCXRenderer{}
}

type docxWriter struct {
	doc *docx.RootDoc
	err error
}

func (w *docxWriter) heading(text string, level uint) {
	if w.err != nil {
		return
	}
	_, w.err = w.doc.AddHeading(text, level)
}

func (w *docxWriter) paragraph(text string) *docx.Paragraph {
	return w.doc.AddParagraph(text)
}

func (w *docxWriter) bullet(text string) {
	w.doc.AddParagraph(text).Style(styleListBullet)
}

// rich 逐段逐块写入富文本，b/i 映射为粗体与斜体
func (w *docxWriter) rich(s string) {
	for _, para := range richParagraphs(s) {
		p := w.doc.AddParagraph("")
		if para.Bullet {
			p.Style(styleListBullet)
		}
		for _, run := range para.Runs {
			r := p.AddText(run.Text)
			if run.Bold {
				r.Bold(true)
			}
			if run.Italic {
				r.Italic(true)
			}
		}
	}
}

// RenderToFile 按章节顺序写出文档，隐藏或为空的章节不输出标题
func (r *DOCXRenderer) RenderToFile(p *types.Profile, hidden types.HiddenSections, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("创建 DOCX 文档失败: %w", err)
	}
	w := &docxWriter{doc: doc}
	v := buildView(p, hidden)

	w.heading(TitleDocument, 0)
	w.heading(orNA(v.Name), 1)

	if len(v.Education) > 0 {
		w.heading(TitleEducation, 1)
		for _, line := range v.Education {
			w.bullet(line)
		}
	}
	if v.TotalExperience != "" {
		w.heading(TitleExperience, 1)
		w.paragraph(v.TotalExperience)
	}
	if v.Summary != "" {
		w.heading(TitleSummary, 1)
		w.rich(v.Summary)
	}
	w.projects(TitleNetwebProjects, v.NetwebProjects)
	w.projects(TitlePastProjects, v.PastProjects)
	if v.Roles != "" {
		w.heading(TitleRoles, 1)
		w.rich(v.Roles)
	}
	if len(v.Work) > 0 {
		w.heading(TitleWorkExperience, 1)
		for _, job := range v.Work {
			w.heading(job.Heading, 2)
			w.rich(job.Responsibilities)
		}
	}
	if len(v.Skills) > 0 {
		w.heading(TitleSkills, 1)
		for _, g := range v.Skills {
			w.heading(g.Label, 2)
			for _, item := range g.Items {
				w.bullet(item)
			}
		}
	}
	if len(v.Personal) > 0 {
		w.heading(TitlePersonalDetails, 1)
		for _, d := range v.Personal {
			w.paragraph(d.Label + ": " + d.Value)
		}
	}

	if w.err != nil {
		return fmt.Errorf("写入 DOCX 标题失败: %w", w.err)
	}
	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("保存 DOCX 失败: %w", err)
	}
	return nil
}

func (w *docxWriter) projects(title string, items []projectView) {
	if len(items) == 0 {
		return
	}
	w.heading(title, 1)
	for _, pr := range items {
		w.heading(pr.Title, 2)
		w.rich(pr.Description)
	}
}
