package parser

import (
	"fmt"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

const (
	// minCellGap 两个单元格之间的最小水平间距（单位 pt），按字号放大
	minCellGap = 12.0
	// minTableRows 连续多少行多单元格才视为表格
	minTableRows = 2
)

// PDFTableReader 基于带坐标的文本行识别 PDF 中的表格
type PDFTableReader struct{}

// ReadTables 返回每页的表格行，每行为 "cell | cell"；页码从 0 开始与页面文本对齐
func (PDFTableReader) ReadTables(path string) (map[int][]string, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开PDF失败: %w", err)
	}
	defer f.Close()

	tables := make(map[int][]string)
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		cellRows := make([][]string, 0, len(rows))
		for _, row := range rows {
			cellRows = append(cellRows, rowCells(row.Content))
		}
		if lines := tableLines(cellRows); len(lines) > 0 {
			tables[i-1] = lines
		}
	}
	return tables, nil
}

// rowCells 按水平间距把一行文本切分为单元格
func rowCells(texts lpdf.TextHorizontal) []string {
	if len(texts) == 0 {
		return nil
	}
	items := make([]lpdf.Text, len(texts))
	copy(items, texts)
	sort.SliceStable(items, func(i, j int) bool { return items[i].X < items[j].X })

	var cells []string
	var cur strings.Builder
	prevEnd := items[0].X
	for i, t := range items {
		gap := t.X - prevEnd
		threshold := minCellGap
		if t.FontSize*1.5 > threshold {
			threshold = t.FontSize * 1.5
		}
		if i > 0 && gap > threshold {
			cells = appendCell(cells, cur.String())
			cur.Reset()
		} else if i > 0 && gap > t.FontSize*0.2 && !strings.HasSuffix(cur.String(), " ") {
			cur.WriteByte(' ')
		}
		cur.WriteString(t.S)
		if end := t.X + t.W; end > prevEnd || i == 0 {
			prevEnd = end
		}
	}
	return appendCell(cells, cur.String())
}

func appendCell(cells []string, s string) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return cells
	}
	return append(cells, s)
}

// tableLines 取连续 minTableRows 行以上、每行至少两个单元格的片段
func tableLines(rows [][]string) []string {
	var lines, run []string
	flush := func() {
		if len(run) >= minTableRows {
			lines = append(lines, run...)
		}
		run = nil
	}
	for _, cells := range rows {
		if len(cells) >= 2 {
			run = append(run, strings.Join(cells, " | "))
			continue
		}
		flush()
	}
	flush()
	return lines
}
