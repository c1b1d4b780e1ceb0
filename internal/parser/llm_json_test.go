package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"代码块对象", "Here:\n```json\n{\"a\": 1}\n```\nthanks", `{"a": 1}`},
		{"代码块数组", "```json\n[{\"field\": \"name\"}]\n```", `[{"field": "name"}]`},
		{"无语言标记的代码块", "```\n{\"a\": 2}\n```", `{"a": 2}`},
		{"裸对象", `{"a": {"b": 1}}`, `{"a": {"b": 1}}`},
		{"前后有说明文字", `Sure! {"a": "x"} Hope this helps.`, `{"a": "x"}`},
		{"字符串中包含括号", `{"a": "}{"} trailing }`, `{"a": "}{"}`},
		{"转义引号", `{"a": "say \"}\""}`, `{"a": "say \"}\""}`},
		{"裸数组", `result: [] done`, `[]`},
		{"无JSON", "no json here", ""},
		{"不完整", `{"a": 1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDecodeLooseObject(t *testing.T) {
	assert.Equal(t, map[string]any{}, decodeLooseObject("garbage"))
	assert.Equal(t, map[string]any{}, decodeLooseObject("[1,2]"))
	assert.Equal(t, map[string]any{"name": "x"}, decodeLooseObject("```json\n{\"name\":\"x\"}\n```"))
}
