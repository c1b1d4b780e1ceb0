package types

import (
	"encoding/json"
	"strings"
)

// SectionID 可隐藏的渲染章节标识
type SectionID string

const (
	SectionEducation       SectionID = "education-section"
	SectionExperience      SectionID = "experience-section"
	SectionSummary         SectionID = "summary-section"
	SectionProjects        SectionID = "projects-section"
	SectionRoles           SectionID = "roles-section"
	SectionSkills          SectionID = "skills-section"
	SectionPersonalDetails SectionID = "personal-details-section"
	SectionWorkExperience  SectionID = "work-experience-section"
)

// ValidSections 合法章节标识的完整枚举
var ValidSections = []SectionID{
	SectionEducation,
	SectionExperience,
	SectionSummary,
	SectionProjects,
	SectionRoles,
	SectionSkills,
	SectionPersonalDetails,
	SectionWorkExperience,
}

// IsValidSection 判断是否属于枚举
func IsValidSection(id string) bool {
	for _, s := range ValidSections {
		if string(s) == id {
			return true
		}
	}
	return false
}

// HiddenSections 渲染时需要整体省略的章节集合，不属于 Profile 本身
type HiddenSections map[SectionID]struct{}

// NewHiddenSections 由字符串构造集合，枚举外的值被静默丢弃
func NewHiddenSections(ids ...string) HiddenSections {
	h := HiddenSections{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if IsValidSection(id) {
			h[SectionID(id)] = struct{}{}
		}
	}
	return h
}

// ParseHiddenSections 解析 JSON 字符串形式的 hidden_sections。
// 非法 JSON、非数组、非字符串元素都不会报错，只会得到过滤后的合法集合。
func ParseHiddenSections(raw string) HiddenSections {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return HiddenSections{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return HiddenSections{}
	}
	return HiddenSectionsFromValue(v)
}

// HiddenSectionsFromValue 处理已解码的 JSON 值
func HiddenSectionsFromValue(v any) HiddenSections {
	switch t := v.(type) {
	case []any:
		ids := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}
		return NewHiddenSections(ids...)
	case []string:
		return NewHiddenSections(t...)
	case string:
		return ParseHiddenSections(t)
	}
	return HiddenSections{}
}

// Hides 渲染器共用的唯一过滤判断
func (h HiddenSections) Hides(id SectionID) bool {
	if h == nil {
		return false
	}
	_, ok := h[id]
	return ok
}

// List 按枚举顺序返回，便于存储与比较
func (h HiddenSections) List() []string {
	out := make([]string, 0, len(h))
	for _, id := range ValidSections {
		if h.Hides(id) {
			out = append(out, string(id))
		}
	}
	return out
}

// MarshalJSON 输出有序字符串数组
func (h HiddenSections) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.List())
}

// UnmarshalJSON 容忍任意 JSON，非法内容得到空集合
func (h *HiddenSections) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*h = HiddenSections{}
		return nil
	}
	*h = HiddenSectionsFromValue(v)
	return nil
}
