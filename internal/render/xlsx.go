package render

import (
	"fmt"

	"resume-profiler/internal/types"

	"github.com/xuri/excelize/v2"
)

// 工作表名称
const (
	SheetResume = "Resume"
	SheetSkills = "Technical Skills"
)

// XLSXRenderer 生成 Excel 文档，SkillsOnly 时只输出技能表
type XLSXRenderer struct {
	SkillsOnly bool
}

// NewXLSXRenderer 创建 XLSX 渲染器
func NewXLSXRenderer(skillsOnly bool) *XLSXRenderer {
	return &XLSXRenderer{SkillsOnly: skillsOnly}
}

type sheetWriter struct {
	f      *excelize.File
	sheet  string
	header int
	data   int
	row    int
	err    error
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return borders
}

func newSheetWriter(f *excelize.File, sheet string, widths map[string]float64) (*sheetWriter, error) {
	w := &sheetWriter{f: f, sheet: sheet, row: 1}
	var err error
	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	for col, width := range widths {
		if err = f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}
	w.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 12, Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	w.data, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// set 写入当前行的单元格
func (w *sheetWriter) set(col int, value string, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
}

func (w *sheetWriter) next(n int) { w.row += n }

// RenderToFile 写出工作簿
func (r *XLSXRenderer) RenderToFile(p *types.Profile, hidden types.HiddenSections, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	var err error
	if r.SkillsOnly {
		err = writeSkillsSheet(f, buildView(p, hidden))
	} else {
		err = writeResumeSheet(f, buildView(p, hidden))
	}
	if err != nil {
		return fmt.Errorf("写入工作表失败: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存 XLSX 失败: %w", err)
	}
	return nil
}

const (
	colA = 1
	colB = 2
	colC = 3
)

func writeResumeSheet(f *excelize.File, v *profileView) error {
	w, err := newSheetWriter(f, SheetResume, map[string]float64{"A": 30, "B": 50, "C": 50})
	if err != nil {
		return err
	}

	if v.Name != "" {
		w.set(colA, "Name", w.header)
		w.set(colB, v.Name, w.data)
		w.next(2)
	}
	if len(v.Education) > 0 {
		w.set(colA, TitleEducation, w.header)
		w.next(1)
		for _, line := range v.Education {
			w.set(colB, line, w.data)
			w.next(1)
		}
		w.next(1)
	}
	writeInlineRow(w, TitleExperience, v.TotalExperience)
	writeInlineRow(w, TitleSummary, FlattenRich(v.Summary))
	writeProjectRows(w, TitleNetwebProjects, v.NetwebProjects)
	writeProjectRows(w, TitlePastProjects, v.PastProjects)
	writeInlineRow(w, TitleRoles, FlattenRich(v.Roles))
	if len(v.Work) > 0 {
		w.set(colA, TitleWorkExperience, w.header)
		w.next(1)
		for _, job := range v.Work {
			w.set(colB, job.Heading, w.header)
			w.next(1)
			if body := FlattenRich(job.Responsibilities); body != "" {
				w.set(colB, "Responsibilities", w.header)
				w.set(colC, body, w.data)
				w.next(1)
			}
			w.next(1)
		}
	}
	if len(v.Skills) > 0 {
		w.set(colA, TitleSkills, w.header)
		w.next(1)
		for _, g := range v.Skills {
			w.set(colB, g.Label, w.header)
			w.next(1)
			for _, item := range g.Items {
				w.set(colC, item, w.data)
				w.next(1)
			}
			w.next(1)
		}
	}
	if len(v.Personal) > 0 {
		w.set(colA, TitlePersonalDetails, w.header)
		w.next(1)
		for _, d := range v.Personal {
			w.set(colB, d.Label, w.header)
			w.set(colC, d.Value, w.data)
			w.next(1)
		}
	}
	return w.err
}

// writeInlineRow 标题与内容同一行，内容为空时整行省略
func writeInlineRow(w *sheetWriter, title, value string) {
	if value == "" {
		return
	}
	w.set(colA, title, w.header)
	w.set(colB, value, w.data)
	w.next(2)
}

func writeProjectRows(w *sheetWriter, title string, items []projectView) {
	if len(items) == 0 {
		return
	}
	w.set(colA, title, w.header)
	w.next(1)
	for _, pr := range items {
		if pr.Title != "" {
			w.set(colB, "Title: "+pr.Title, w.header)
			w.next(1)
		}
		if body := FlattenRich(pr.Description); body != "" {
			w.set(colB, "Description", w.header)
			w.set(colC, body, w.data)
			w.next(1)
		}
		w.next(1)
	}
}

// writeSkillsSheet 技能被隐藏或全部为空时输出不含任何行的空工作表
func writeSkillsSheet(f *excelize.File, v *profileView) error {
	w, err := newSheetWriter(f, SheetSkills, map[string]float64{"A": 30, "B": 50})
	if err != nil {
		return err
	}
	if len(v.Skills) == 0 {
		return nil
	}
	w.set(colA, TitleSkills, w.header)
	w.next(1)
	for _, g := range v.Skills {
		w.set(colB, g.Label, w.header)
		w.next(1)
		for _, item := range g.Items {
			w.set(colB, item, w.data)
			w.next(1)
		}
		w.next(1)
	}
	return w.err
}
