package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// DOCXTextExtractor 读取 word/document.xml，输出段落文本，表格行追加在段落之后
type DOCXTextExtractor struct{}

// ExtractFromFile 提取正文段落与表格
func (DOCXTextExtractor) ExtractFromFile(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("打开DOCX失败: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("读取 %s 失败: %w", docxBodyPart, err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return "", fmt.Errorf("DOCX 中缺少 %s", docxBodyPart)
}

type docxState struct {
	paragraphs []string
	tableRows  []string

	para      strings.Builder
	paraStyle string

	tableDepth int
	row        []string
	cell       []string
}

func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	st := &docxState{}
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("解析DOCX正文失败: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				st.tableDepth++
			case "tr":
				if st.tableDepth == 1 {
					st.row = nil
				}
			case "tc":
				if st.tableDepth == 1 {
					st.cell = nil
				}
			case "p":
				st.para.Reset()
				st.paraStyle = ""
			case "pStyle":
				st.paraStyle = attrValue(t, "val")
			case "t":
				inText = true
			case "tab":
				st.para.WriteByte('\t')
			case "br", "cr":
				st.para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				st.endParagraph()
			case "tc":
				if st.tableDepth == 1 {
					st.row = append(st.row, strings.Join(st.cell, " "))
				}
			case "tr":
				if st.tableDepth == 1 {
					st.endRow()
				}
			case "tbl":
				st.tableDepth--
			}
		case xml.CharData:
			if inText {
				st.para.Write(t)
			}
		}
	}

	lines := make([]string, 0, len(st.paragraphs)+len(st.tableRows))
	lines = append(lines, st.paragraphs...)
	lines = append(lines, st.tableRows...)
	return strings.Join(lines, "\n"), nil
}

func (st *docxState) endParagraph() {
	text := strings.TrimSpace(st.para.String())
	st.para.Reset()
	if text == "" {
		return
	}
	if st.tableDepth > 0 {
		st.cell = append(st.cell, text)
		return
	}
	if isHeadingStyle(st.paraStyle) {
		text = "# " + text
	}
	st.paragraphs = append(st.paragraphs, text)
}

func (st *docxState) endRow() {
	cells := make([]string, 0, len(st.row))
	hasText := false
	for _, c := range st.row {
		c = strings.TrimSpace(c)
		if c != "" {
			hasText = true
		}
		cells = append(cells, c)
	}
	if hasText {
		st.tableRows = append(st.tableRows, strings.Join(cells, " | "))
	}
	st.row = nil
}

func isHeadingStyle(style string) bool {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.HasPrefix(s, "heading") || s == "title" || s == "subtitle"
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
