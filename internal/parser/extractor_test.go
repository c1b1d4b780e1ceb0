package parser

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Senior </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
    <w:p></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Skill</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Level</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>Go</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Expert</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
    <w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Experience</w:t></w:r></w:p>
    <w:p><w:r><w:t>NetWeb</w:t></w:r><w:r><w:tab/><w:t>2019</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeDOCX(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "resume.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDOCXExtraction(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), documentXML)

	text := NewExtractor(nil, nil).Extract(context.Background(), path, ExtDOCX)
	assert.Equal(t, "# Jane Doe\nSenior Engineer\n# Experience\nNetWeb\t2019\nSkill | Level\nGo | Expert", text)
}

func TestTXTExtraction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane\x00 Doe\n\xff\xfeSkills"), 0o600))

	text := NewExtractor(nil, nil).Extract(context.Background(), path, ExtTXT)
	assert.True(t, utf8.ValidString(text))
	assert.NotContains(t, text, "\x00")
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Skills")
}

func TestExtractFailuresYieldEmpty(t *testing.T) {
	dir := t.TempDir()
	e := NewExtractor(nil, nil)

	assert.Equal(t, "", e.Extract(context.Background(), filepath.Join(dir, "missing.txt"), ExtTXT))
	assert.Equal(t, "", e.Extract(context.Background(), filepath.Join(dir, "x.odt"), "odt"))

	notZip := filepath.Join(dir, "bad.docx")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o600))
	assert.Equal(t, "", e.Extract(context.Background(), notZip, ExtDOCX))

	brokenXML := writeDOCX(t, dir, "<w:document><w:body><w:p>")
	assert.Equal(t, "", e.Extract(context.Background(), brokenXML, ExtDOCX))
}

type fakePages struct {
	pages []string
	err   error
}

func (f fakePages) ExtractPagesFromFile(ctx context.Context, path string) ([]string, error) {
	return f.pages, f.err
}

type fakeTables map[int][]string

func (f fakeTables) ReadTables(path string) (map[int][]string, error) {
	return f, nil
}

func TestPDFPagesWithTables(t *testing.T) {
	e := NewExtractor(
		fakePages{pages: []string{"Page one", "Page two"}},
		fakeTables{0: {"Skill | Level", "Go | Expert"}},
	)
	text := e.Extract(context.Background(), "resume.pdf", ExtPDF)
	assert.Equal(t, "Page one\nSkill | Level\nGo | Expert\nPage two\n", text)

	failing := NewExtractor(fakePages{err: errors.New("corrupt")}, fakeTables{})
	assert.Equal(t, "", failing.Extract(context.Background(), "resume.pdf", ExtPDF))
}

func TestTableLines(t *testing.T) {
	rows := [][]string{
		{"Heading"},
		{"Skill", "Level"},
		{"Go", "Expert"},
		{"Single"},
		{"lonely", "row"},
	}
	assert.Equal(t, []string{"Skill | Level", "Go | Expert"}, tableLines(rows), "单独一行的多列不视为表格")
}

func TestAllowedExtension(t *testing.T) {
	for name, want := range map[string]bool{"a.PDF": true, "b.docx": true, "c.txt": true, "d.doc": false, "e": false} {
		_, ok := AllowedExtension(name)
		assert.Equal(t, want, ok, name)
	}
}
