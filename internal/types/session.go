package types

import "time"

// 创建方式
const (
	CreationUpload  = "upload"
	CreationScratch = "scratch"
)

// DefaultDesign 默认展示模板
const DefaultDesign = "display_profile"

// Designs 可切换的展示模板
var Designs = []string{DefaultDesign, "d1", "d2", "d3"}

// IsValidDesign 判断模板名是否合法
func IsValidDesign(design string) bool {
	for _, d := range Designs {
		if d == design {
			return true
		}
	}
	return false
}

// Session 会话范围内的唯一记录：当前 Profile 及其伴随的隐藏章节
type Session struct {
	ID             string         `json:"id"`
	Profile        *Profile       `json:"profile"`
	HiddenSections HiddenSections `json:"hidden_sections"`
	CreationMethod string         `json:"creation_method"`
	Design         string         `json:"design"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewSession 创建会话记录
func NewSession(id string, profile *Profile, method string) *Session {
	if profile == nil {
		profile = NewProfile()
	}
	return &Session{
		ID:             id,
		Profile:        profile,
		HiddenSections: HiddenSections{},
		CreationMethod: method,
		Design:         DefaultDesign,
		UpdatedAt:      time.Now(),
	}
}
