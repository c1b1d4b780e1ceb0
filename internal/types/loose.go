package types

import (
	"strconv"
	"strings"
)

// ProfileFromMap 将 LLM 或表单解码出的松散 JSON 转换为 Profile。
// 类型不符的值回退到默认值，数字转为字符串，字符串列表用换行拼接。
// 非 map 输入返回空 Profile。
func ProfileFromMap(v any) *Profile {
	p := NewProfile()
	m, ok := v.(map[string]any)
	if !ok {
		return p
	}

	p.Name = looseString(m["name"])
	p.TotalExperience = looseString(m["total_experience"])
	p.ProfessionalSummary = looseString(m["professional_summary"])
	p.RolesResponsibilities = looseString(m["roles_responsibilities"])

	for _, item := range looseList(m["education_training_certifications"]) {
		switch it := item.(type) {
		case map[string]any:
			p.EducationTrainingCertifications = append(p.EducationTrainingCertifications, Education{
				Title:     looseString(it["title"]),
				StartDate: looseString(it["start_date"]),
				EndDate:   looseString(it["end_date"]),
			})
		case string:
			p.EducationTrainingCertifications = append(p.EducationTrainingCertifications, Education{Title: it})
		}
	}

	p.NetwebProjects = looseProjects(m["netweb_projects"])
	p.PastProjects = looseProjects(m["past_projects"])

	if skills, ok := m["technical_skills"].(map[string]any); ok {
		for _, key := range SkillCategories {
			items := make([]string, 0)
			for _, s := range looseList(skills[key]) {
				if str := looseString(s); str != "" {
					items = append(items, str)
				}
			}
			p.TechnicalSkills.Set(key, items)
		}
	}

	if details, ok := m["personal_details"].(map[string]any); ok {
		for _, key := range PersonalDetailKeys {
			p.PersonalDetails.Set(key, looseString(details[key]))
		}
	}

	for _, item := range looseList(m["work_experience"]) {
		switch it := item.(type) {
		case map[string]any:
			p.WorkExperience = append(p.WorkExperience, WorkExperience{
				CompanyName:      looseString(it["company_name"]),
				StartDate:        looseString(it["start_date"]),
				EndDate:          looseString(it["end_date"]),
				Role:             looseString(it["role"]),
				Responsibilities: looseString(it["responsibilities"]),
			})
		case string:
			p.WorkExperience = append(p.WorkExperience, WorkExperience{Role: it})
		}
	}

	p.EnsureDefaults()
	return p
}

func looseProjects(v any) []Project {
	projects := make([]Project, 0)
	for _, item := range looseList(v) {
		switch it := item.(type) {
		case map[string]any:
			projects = append(projects, Project{
				Title:       looseString(it["title"]),
				Description: looseString(it["description"]),
			})
		case string:
			projects = append(projects, Project{Title: it})
		}
	}
	return projects
}

func looseList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return nil
}

func looseString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := looseString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}
