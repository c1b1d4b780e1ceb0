package render

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// textRun 一段连续同格式文本
type textRun struct {
	Text   string
	Bold   bool
	Italic bool
}

// richParagraph DOCX 中的一个段落，Bullet 对应 List Bullet 样式
type richParagraph struct {
	Runs   []textRun
	Bullet bool
}

func (p richParagraph) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// parseRich 把清洗后的富文本拆成段落与文本块。
// li 开始新的列表段落并加 "- " 前缀，ul/ol 只展开内容，纯文本中的换行也分段。
func parseRich(s string) ([]richParagraph, error) {
	var (
		paras  []richParagraph
		cur    *richParagraph
		bold   int
		italic int
	)
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.text()) != "" {
			paras = append(paras, *cur)
		}
		cur = nil
	}
	open := func(bullet bool) {
		flush()
		cur = &richParagraph{Bullet: bullet}
		if bullet {
			cur.Runs = append(cur.Runs, textRun{Text: "- "})
		}
	}
	appendText := func(text string) {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			if i > 0 {
				bullet := cur != nil && cur.Bullet
				flush()
				if bullet {
					cur = &richParagraph{Bullet: true}
				}
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if cur == nil {
				cur = &richParagraph{}
			}
			cur.Runs = append(cur.Runs, textRun{Text: line, Bold: bold > 0, Italic: italic > 0})
		}
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			flush()
			return paras, nil
		case html.TextToken:
			appendText(string(z.Text()))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			start := tt != html.EndTagToken
			switch string(name) {
			case "b":
				bold += delta(start)
			case "i":
				italic += delta(start)
			case "li":
				if start {
					open(true)
				} else {
					flush()
				}
			case "ul", "ol":
				flush()
			}
			if bold < 0 {
				bold = 0
			}
			if italic < 0 {
				italic = 0
			}
		}
	}
}

// richParagraphs 解析失败时整段原文作为一个文本块
func richParagraphs(s string) []richParagraph {
	paras, err := parseRich(s)
	if err != nil {
		return []richParagraph{{Runs: []textRun{{Text: html.UnescapeString(s)}}}}
	}
	return paras
}

// FlattenRich 去掉标签得到单行文本，段落之间用 "; " 连接，用于表格单元格
func FlattenRich(s string) string {
	paras := richParagraphs(s)
	parts := make([]string, 0, len(paras))
	for _, p := range paras {
		text := p.text()
		if p.Bullet {
			text = strings.TrimPrefix(text, "- ")
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "; ")
}

func delta(start bool) int {
	if start {
		return 1
	}
	return -1
}
