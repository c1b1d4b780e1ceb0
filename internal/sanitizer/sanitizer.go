// Package sanitizer 对 Profile 的每个字段按类别做白名单清洗。
// 纯文本字段转义全部保留字符，富文本字段只保留 b、i、ul、ol、li 且不带属性。
// 所有函数都是全函数且幂等。
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"resume-profiler/internal/types"

	"github.com/microcosm-cc/bluemonday"
)

// RichTags 富文本允许的标签
var RichTags = []string{"b", "i", "ul", "ol", "li"}

const maxRichPasses = 4

var (
	policyOnce   sync.Once
	richPolicy   *bluemonday.Policy
	strictPolicy *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		richPolicy = bluemonday.NewPolicy()
		richPolicy.AllowElements(RichTags...)
		strictPolicy = bluemonday.StrictPolicy()
	})
	return richPolicy, strictPolicy
}

// Plain 转义纯文本字段；先反转义，保证重复调用结果不变
func Plain(s string) string {
	return html.EscapeString(html.UnescapeString(s))
}

// Rich 按白名单清洗富文本，迭代到不动点
func Rich(s string) string {
	rich, _ := policies()
	out := s
	for i := 0; i < maxRichPasses; i++ {
		next := rich.Sanitize(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

// PlainText 去除所有标签并解码实体，得到可读文本
func PlainText(s string) string {
	_, strict := policies()
	s = strings.NewReplacer("</li>", "</li>\n", "<br>", "\n", "<br/>", "\n").Replace(s)
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Sanitize 返回清洗后的新 Profile，nil 输入得到空 Profile
func Sanitize(p *types.Profile) *types.Profile {
	if p == nil {
		return types.NewProfile()
	}
	out := p.Clone()

	out.Name = Plain(out.Name)
	out.TotalExperience = Plain(out.TotalExperience)
	out.ProfessionalSummary = Rich(out.ProfessionalSummary)
	out.RolesResponsibilities = Rich(out.RolesResponsibilities)

	for i := range out.EducationTrainingCertifications {
		e := &out.EducationTrainingCertifications[i]
		e.Title = Plain(e.Title)
		e.StartDate = Plain(e.StartDate)
		e.EndDate = Plain(e.EndDate)
	}
	sanitizeProjects(out.NetwebProjects)
	sanitizeProjects(out.PastProjects)
	for i := range out.WorkExperience {
		w := &out.WorkExperience[i]
		w.CompanyName = Plain(w.CompanyName)
		w.StartDate = Plain(w.StartDate)
		w.EndDate = Plain(w.EndDate)
		w.Role = Plain(w.Role)
		w.Responsibilities = Rich(w.Responsibilities)
	}
	for _, cat := range types.SkillCategories {
		items := out.TechnicalSkills.Get(cat)
		for i := range items {
			items[i] = Plain(items[i])
		}
	}
	for _, key := range types.PersonalDetailKeys {
		out.PersonalDetails.Set(key, Plain(out.PersonalDetails.Get(key)))
	}
	out.EnsureDefaults()
	return out
}

// SanitizeAny 接收任意已解码的 JSON 值，非对象输入得到空 Profile
func SanitizeAny(v any) *types.Profile {
	return Sanitize(types.ProfileFromMap(v))
}

func sanitizeProjects(projects []types.Project) {
	for i := range projects {
		projects[i].Title = Plain(projects[i].Title)
		projects[i].Description = Rich(projects[i].Description)
	}
}
