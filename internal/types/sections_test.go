package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHiddenSections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"合法数组", `["skills-section","summary-section"]`, []string{"summary-section", "skills-section"}},
		{"未知标识被丢弃", `["skills-section","bogus"]`, []string{"skills-section"}},
		{"非字符串元素被丢弃", `["roles-section", 3, null, {"a":1}]`, []string{"roles-section"}},
		{"非数组", `{"skills-section":true}`, []string{}},
		{"非法JSON", `[skills-section`, []string{}},
		{"空串", ``, []string{}},
		{"JSON字符串中嵌套数组", `"[\"education-section\"]"`, []string{"education-section"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got HiddenSections
			assert.NotPanics(t, func() { got = ParseHiddenSections(tt.raw) })
			assert.Equal(t, tt.want, got.List())
		})
	}
}

func TestHiddenSectionsJSON(t *testing.T) {
	h := NewHiddenSections("work-experience-section", "education-section")
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `["education-section","work-experience-section"]`, string(data))

	var back HiddenSections
	require.NoError(t, json.Unmarshal([]byte(`"not a list"`), &back))
	assert.Empty(t, back.List())

	var nilSet HiddenSections
	assert.False(t, nilSet.Hides(SectionSkills), "nil 集合不隐藏任何章节")
}
