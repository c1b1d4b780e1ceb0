package types

import "encoding/json"

// SkillCategories 技能分类键，顺序即渲染顺序
var SkillCategories = []string{
	"web_technologies",
	"scripting_languages",
	"frameworks",
	"databases",
	"web_servers",
	"tools",
}

// PersonalDetailKeys 个人信息键，顺序即渲染顺序
var PersonalDetailKeys = []string{
	"employee_id",
	"permanent_address",
	"local_address",
	"contact_number",
	"date_of_joining",
	"designation",
	"overall_experience",
	"date_of_birth",
	"passport_details",
}

// Education 教育、培训与证书条目
type Education struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Project 项目条目，Description 为富文本
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// WorkExperience 工作经历条目，Responsibilities 为富文本
type WorkExperience struct {
	CompanyName      string `json:"company_name"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Role             string `json:"role"`
	Responsibilities string `json:"responsibilities"`
}

// TechnicalSkills 固定六个分类的技能列表
type TechnicalSkills struct {
	WebTechnologies    []string `json:"web_technologies"`
	ScriptingLanguages []string `json:"scripting_languages"`
	Frameworks         []string `json:"frameworks"`
	Databases          []string `json:"databases"`
	WebServers         []string `json:"web_servers"`
	Tools              []string `json:"tools"`
}

// PersonalDetails 固定九个键的个人信息
type PersonalDetails struct {
	EmployeeID        string `json:"employee_id"`
	PermanentAddress  string `json:"permanent_address"`
	LocalAddress      string `json:"local_address"`
	ContactNumber     string `json:"contact_number"`
	DateOfJoining     string `json:"date_of_joining"`
	Designation       string `json:"designation"`
	OverallExperience string `json:"overall_experience"`
	DateOfBirth       string `json:"date_of_birth"`
	PassportDetails   string `json:"passport_details"`
}

// Profile 贯穿整个流程的结构化简历记录
type Profile struct {
	Name                            string           `json:"name"`
	EducationTrainingCertifications []Education      `json:"education_training_certifications"`
	TotalExperience                 string           `json:"total_experience"`
	ProfessionalSummary             string           `json:"professional_summary"`
	NetwebProjects                  []Project        `json:"netweb_projects"`
	PastProjects                    []Project        `json:"past_projects"`
	RolesResponsibilities           string           `json:"roles_responsibilities"`
	TechnicalSkills                 TechnicalSkills  `json:"technical_skills"`
	PersonalDetails                 PersonalDetails  `json:"personal_details"`
	WorkExperience                  []WorkExperience `json:"work_experience"`
}

// NewProfile 返回所有字段均为空默认值的 Profile
func NewProfile() *Profile {
	p := &Profile{}
	p.EnsureDefaults()
	return p
}

// EnsureDefaults 将所有 nil 列表替换为空列表，保证序列化后结构恒定
func (p *Profile) EnsureDefaults() {
	if p.EducationTrainingCertifications == nil {
		p.EducationTrainingCertifications = []Education{}
	}
	if p.NetwebProjects == nil {
		p.NetwebProjects = []Project{}
	}
	if p.PastProjects == nil {
		p.PastProjects = []Project{}
	}
	if p.WorkExperience == nil {
		p.WorkExperience = []WorkExperience{}
	}
	for _, key := range SkillCategories {
		if p.TechnicalSkills.Get(key) == nil {
			p.TechnicalSkills.Set(key, []string{})
		}
	}
}

type profileJSON Profile

// MarshalJSON 序列化前补齐默认值，列表永远输出为 [] 而不是 null
func (p Profile) MarshalJSON() ([]byte, error) {
	p.EnsureDefaults()
	return json.Marshal(profileJSON(p))
}

// Clone 深拷贝
func (p *Profile) Clone() *Profile {
	if p == nil {
		return NewProfile()
	}
	c := *p
	c.EducationTrainingCertifications = append([]Education(nil), p.EducationTrainingCertifications...)
	c.NetwebProjects = append([]Project(nil), p.NetwebProjects...)
	c.PastProjects = append([]Project(nil), p.PastProjects...)
	c.WorkExperience = append([]WorkExperience(nil), p.WorkExperience...)
	for _, key := range SkillCategories {
		c.TechnicalSkills.Set(key, append([]string(nil), p.TechnicalSkills.Get(key)...))
	}
	c.EnsureDefaults()
	return &c
}

// IsEmpty 所有字段都为空时返回 true，用于拒绝空白的手工提交
func (p *Profile) IsEmpty() bool {
	if p == nil {
		return true
	}
	if p.Name != "" || p.TotalExperience != "" || p.ProfessionalSummary != "" || p.RolesResponsibilities != "" {
		return false
	}
	if len(p.EducationTrainingCertifications) > 0 || len(p.NetwebProjects) > 0 ||
		len(p.PastProjects) > 0 || len(p.WorkExperience) > 0 {
		return false
	}
	return !p.TechnicalSkills.HasAny() && !p.PersonalDetails.HasAny()
}

// Get 按分类键取技能列表，未知键返回 nil
func (s *TechnicalSkills) Get(key string) []string {
	switch key {
	case "web_technologies":
		return s.WebTechnologies
	case "scripting_languages":
		return s.ScriptingLanguages
	case "frameworks":
		return s.Frameworks
	case "databases":
		return s.Databases
	case "web_servers":
		return s.WebServers
	case "tools":
		return s.Tools
	}
	return nil
}

// Set 按分类键写入技能列表，未知键返回 false
func (s *TechnicalSkills) Set(key string, items []string) bool {
	switch key {
	case "web_technologies":
		s.WebTechnologies = items
	case "scripting_languages":
		s.ScriptingLanguages = items
	case "frameworks":
		s.Frameworks = items
	case "databases":
		s.Databases = items
	case "web_servers":
		s.WebServers = items
	case "tools":
		s.Tools = items
	default:
		return false
	}
	return true
}

// HasAny 任一分类非空
func (s *TechnicalSkills) HasAny() bool {
	for _, key := range SkillCategories {
		if len(s.Get(key)) > 0 {
			return true
		}
	}
	return false
}

// Get 按键取个人信息，未知键返回空串
func (d *PersonalDetails) Get(key string) string {
	if f := d.field(key); f != nil {
		return *f
	}
	return ""
}

// Set 按键写入个人信息，未知键返回 false
func (d *PersonalDetails) Set(key, value string) bool {
	f := d.field(key)
	if f == nil {
		return false
	}
	*f = value
	return true
}

// HasAny 任一键非空
func (d *PersonalDetails) HasAny() bool {
	for _, key := range PersonalDetailKeys {
		if d.Get(key) != "" {
			return true
		}
	}
	return false
}

// IsDateKey 需要按日期显示的个人信息键
func IsDateKey(key string) bool {
	return key == "date_of_joining" || key == "date_of_birth"
}

func (d *PersonalDetails) field(key string) *string {
	switch key {
	case "employee_id":
		return &d.EmployeeID
	case "permanent_address":
		return &d.PermanentAddress
	case "local_address":
		return &d.LocalAddress
	case "contact_number":
		return &d.ContactNumber
	case "date_of_joining":
		return &d.DateOfJoining
	case "designation":
		return &d.Designation
	case "overall_experience":
		return &d.OverallExperience
	case "date_of_birth":
		return &d.DateOfBirth
	case "passport_details":
		return &d.PassportDetails
	}
	return nil
}
