package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ReviewField 送去语法检查的单个字段
type ReviewField struct {
	Key  string `json:"field"`
	ID   string `json:"field_id"`
	Text string `json:"text"`
	Rich bool   `json:"-"` // 富文本在发送前需要去除标签
}

// Suggestion 语法建议
type Suggestion struct {
	Field     string `json:"field"`
	FieldID   string `json:"field_id"`
	Original  string `json:"original"`
	Suggested string `json:"suggested"`
	Reason    string `json:"reason"`
}

// ReviewFields 按表单字段命名规则展开 Profile 中所有非空的自由文本字段
func ReviewFields(p *Profile) []ReviewField {
	if p == nil {
		return nil
	}
	var fields []ReviewField
	add := func(key, id, text string, rich bool) {
		if strings.TrimSpace(text) == "" {
			return
		}
		fields = append(fields, ReviewField{Key: key, ID: id, Text: text, Rich: rich})
	}

	add("name", "name", p.Name, false)
	add("total_experience", "total_experience", p.TotalExperience, false)
	add("professional_summary", "professional_summary", p.ProfessionalSummary, true)
	add("roles_responsibilities", "roles_responsibilities", p.RolesResponsibilities, true)

	for i, e := range p.EducationTrainingCertifications {
		add(fmt.Sprintf("education_training_certifications[%d]", i), fmt.Sprintf("etc_%d", i), e.Title, false)
	}
	for i, pr := range p.NetwebProjects {
		add(fmt.Sprintf("netweb_projects[title][%d]", i), fmt.Sprintf("netweb_title_%d", i), pr.Title, false)
		add(fmt.Sprintf("netweb_projects[description][%d]", i), fmt.Sprintf("netweb_desc_%d", i), pr.Description, true)
	}
	for i, pr := range p.PastProjects {
		add(fmt.Sprintf("past_projects[title][%d]", i), fmt.Sprintf("past_title_%d", i), pr.Title, false)
		add(fmt.Sprintf("past_projects[description][%d]", i), fmt.Sprintf("past_desc_%d", i), pr.Description, true)
	}
	for i, w := range p.WorkExperience {
		add(fmt.Sprintf("work_experience[company_name][%d]", i), fmt.Sprintf("work_company_%d", i), w.CompanyName, false)
		add(fmt.Sprintf("work_experience[role][%d]", i), fmt.Sprintf("work_role_%d", i), w.Role, false)
		add(fmt.Sprintf("work_experience[responsibilities][%d]", i), fmt.Sprintf("work_resp_%d", i), w.Responsibilities, true)
	}
	for _, cat := range SkillCategories {
		prefix := strings.SplitN(cat, "_", 2)[0]
		for i, skill := range p.TechnicalSkills.Get(cat) {
			add(fmt.Sprintf("technical_skills[%s][%d]", cat, i), fmt.Sprintf("%s_%d", prefix, i), skill, false)
		}
	}
	for _, key := range PersonalDetailKeys {
		add(fmt.Sprintf("personal_details[%s]", key), key, p.PersonalDetails.Get(key), false)
	}
	return fields
}

var fieldKeyPattern = regexp.MustCompile(`^([a-z_]+)(?:\[([a-z_]+)\])?(?:\[(\d+)\])?$`)

// ApplySuggestion 按字段键把采纳的建议写回 Profile，键无法定位时返回 false
func ApplySuggestion(p *Profile, key, value string) bool {
	if p == nil {
		return false
	}
	m := fieldKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return false
	}
	root, sub := m[1], m[2]
	idx := -1
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return false
		}
		idx = n
	}

	switch root {
	case "name":
		p.Name = value
	case "total_experience":
		p.TotalExperience = value
	case "professional_summary":
		p.ProfessionalSummary = value
	case "roles_responsibilities":
		p.RolesResponsibilities = value
	case "education_training_certifications":
		if idx < 0 || idx >= len(p.EducationTrainingCertifications) {
			return false
		}
		p.EducationTrainingCertifications[idx].Title = value
	case "netweb_projects":
		return applyProject(p.NetwebProjects, sub, idx, value)
	case "past_projects":
		return applyProject(p.PastProjects, sub, idx, value)
	case "work_experience":
		if idx < 0 || idx >= len(p.WorkExperience) {
			return false
		}
		w := &p.WorkExperience[idx]
		switch sub {
		case "company_name":
			w.CompanyName = value
		case "role":
			w.Role = value
		case "responsibilities":
			w.Responsibilities = value
		default:
			return false
		}
	case "technical_skills":
		items := p.TechnicalSkills.Get(sub)
		if idx < 0 || idx >= len(items) {
			return false
		}
		items[idx] = value
	case "personal_details":
		return p.PersonalDetails.Set(sub, value)
	default:
		return false
	}
	return true
}

func applyProject(projects []Project, sub string, idx int, value string) bool {
	if idx < 0 || idx >= len(projects) {
		return false
	}
	switch sub {
	case "title":
		projects[idx].Title = value
	case "description":
		projects[idx].Description = value
	default:
		return false
	}
	return true
}
