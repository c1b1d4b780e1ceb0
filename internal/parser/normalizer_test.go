package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDates(t *testing.T) {
	cases := map[string]string{
		"March 2020":      "2020-03",
		"march 2020":      "2020-03",
		"Sept 2019":       "2019-09",
		"Dec. 2021":       "2021-12",
		"03-2020":         "2020-03",
		"3/2020":          "2020-03",
		"2020-03":         "2020-03",
		"2020/3":          "2020-03",
		"2020":            "2020-01",
		"since 2019":      "since 2019-01",
		"2020-13":         "2020-13",
		"Phone 98765":     "Phone 98765",
		"2020-03-15":      "2020-03-15",
		"Jan 2018 - 2020": "2018-01 - 2020-01",
		"05/2019-06/2020": "2019-05-2020-06",
		"2019-2021":       "2019-01-2021-01",
		"2019-05-2020-06": "2019-05-2020-06",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "输入: %q", in)
	}
}

func TestNormalizeFormatting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"项目符号与空行", "• Led team\n\n\n\nBuilt system", "- Led team\n\nBuilt system"},
		{"CRLF", "a\r\nb\rc", "a\nb\nc"},
		{"多余空白", "Skills:  Go\t\tRust   ", "Skills: Go Rust"},
		{"错误编码的项目符号", "Intro\nâ€¢Item", "Intro\n- Item"},
		{"短横线补空格", "Intro\n  -Item\n-   Other", "Intro\n- Item\n- Other"},
		{"分隔线不变", "Intro\n---\nEnd", "Intro\n---\nEnd"},
		{"标题", "##   Experience  \nbody", "# Experience\nbody"},
		{"仅空白行也折叠", "a\n  \n \n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"# Jane Doe\r\n\r\n\r\n●  Worked at NetWeb from March 2019 to 04/2021\n##Skills\n  - Go,   Python\nsince 2015",
		"Jan 2018 - 2020, 2019-2020",
		"•\tFirst\n·Second",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "规范化应幂等: %q", in)
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "", NormalizeDate("  "))
	assert.Equal(t, "2020-07", NormalizeDate("July 2020"))
	assert.Equal(t, "Present", NormalizeDate("Present"))
}
