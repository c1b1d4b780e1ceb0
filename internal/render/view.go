// Package render 把清洗后的 Profile 输出为 HTML、PDF、DOCX、XLSX。
// 所有格式共用同一个视图模型，隐藏章节只在 buildView 中过滤一次。
package render

import (
	"fmt"
	"html"
	"strings"

	"resume-profiler/internal/types"
)

// 章节标题
const (
	TitleDocument        = "Professional Resume"
	TitleEducation       = "Education, Training, and Certifications"
	TitleExperience      = "Total Experience"
	TitleSummary         = "Professional Achievements"
	TitleNetwebProjects  = "NetWeb Projects"
	TitlePastProjects    = "Past Projects"
	TitleRoles           = "Roles and Responsibilities"
	TitleWorkExperience  = "Work Experience"
	TitleSkills          = "Technical Skills"
	TitlePersonalDetails = "Personal Details"
)

type projectView struct {
	Title       string
	Description string // 富文本
}

type workView struct {
	Heading          string
	Responsibilities string // 富文本
}

type skillGroup struct {
	Key   string
	Label string
	Items []string
}

type detailLine struct {
	Key   string
	Label string
	Value string
}

// profileView 渲染器的输入。纯文本字段已解码实体，富文本保留清洗后的标签。
// 被隐藏或为空的章节在这里就是空值，渲染器只需判断是否为空。
type profileView struct {
	Name            string
	Education       []string
	TotalExperience string
	Summary         string
	NetwebProjects  []projectView
	PastProjects    []projectView
	Roles           string
	Work            []workView
	Skills          []skillGroup
	Personal        []detailLine
}

func buildView(p *types.Profile, hidden types.HiddenSections) *profileView {
	if p == nil {
		p = types.NewProfile()
	}
	v := &profileView{Name: plain(p.Name)}

	if !hidden.Hides(types.SectionEducation) {
		for _, e := range p.EducationTrainingCertifications {
			v.Education = append(v.Education, fmt.Sprintf("%s (%s - %s)",
				orNA(plain(e.Title)), types.FormatDisplayDate(plain(e.StartDate)), types.FormatDisplayDate(plain(e.EndDate))))
		}
	}
	if !hidden.Hides(types.SectionExperience) {
		v.TotalExperience = plain(p.TotalExperience)
	}
	if !hidden.Hides(types.SectionSummary) {
		v.Summary = strings.TrimSpace(p.ProfessionalSummary)
	}
	if !hidden.Hides(types.SectionProjects) {
		v.NetwebProjects = projects(p.NetwebProjects)
		v.PastProjects = projects(p.PastProjects)
	}
	if !hidden.Hides(types.SectionRoles) {
		v.Roles = strings.TrimSpace(p.RolesResponsibilities)
	}
	if !hidden.Hides(types.SectionWorkExperience) {
		for _, w := range p.WorkExperience {
			v.Work = append(v.Work, workView{
				Heading: fmt.Sprintf("%s - %s (%s - %s)",
					orNA(plain(w.CompanyName)), orNA(plain(w.Role)),
					types.FormatDisplayDate(plain(w.StartDate)), types.FormatDisplayDate(plain(w.EndDate))),
				Responsibilities: strings.TrimSpace(w.Responsibilities),
			})
		}
	}
	if !hidden.Hides(types.SectionSkills) {
		v.Skills = skillGroups(&p.TechnicalSkills)
	}
	if !hidden.Hides(types.SectionPersonalDetails) {
		for _, key := range types.PersonalDetailKeys {
			value := plain(p.PersonalDetails.Get(key))
			if value == "" {
				continue
			}
			if types.IsDateKey(key) {
				value = types.FormatDisplayDate(value)
			}
			v.Personal = append(v.Personal, detailLine{Key: key, Label: Label(key), Value: value})
		}
	}
	return v
}

// skillGroups 只返回非空分类；全部为空时返回 nil
func skillGroups(s *types.TechnicalSkills) []skillGroup {
	var groups []skillGroup
	for _, key := range types.SkillCategories {
		var items []string
		for _, item := range s.Get(key) {
			if item = plain(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			groups = append(groups, skillGroup{Key: key, Label: Label(key), Items: items})
		}
	}
	return groups
}

func projects(in []types.Project) []projectView {
	var out []projectView
	for _, pr := range in {
		title := plain(pr.Title)
		desc := strings.TrimSpace(pr.Description)
		if title == "" && desc == "" {
			continue
		}
		out = append(out, projectView{Title: orNA(title), Description: desc})
	}
	return out
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
