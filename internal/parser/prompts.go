package parser

import "fmt"

// profileSchemaExample 提示词中展示的目标 JSON 结构
const profileSchemaExample = `{
  "name": "",
  "education_training_certifications": [{"title": "", "start_date": "", "end_date": ""}],
  "total_experience": "",
  "professional_summary": "",
  "netweb_projects": [{"title": "", "description": ""}],
  "past_projects": [{"title": "", "description": ""}],
  "roles_responsibilities": "",
  "technical_skills": {
    "web_technologies": [],
    "scripting_languages": [],
    "frameworks": [],
    "databases": [],
    "web_servers": [],
    "tools": []
  },
  "personal_details": {
    "employee_id": "",
    "permanent_address": "",
    "local_address": "",
    "contact_number": "",
    "date_of_joining": "",
    "designation": "",
    "overall_experience": "",
    "date_of_birth": "",
    "passport_details": ""
  },
  "work_experience": [{"company_name": "", "start_date": "", "end_date": "", "role": "", "responsibilities": ""}]
}`

// synthesisSystemPrompt 结构化抽取的系统提示词，简历文本通过 user message 传递
var synthesisSystemPrompt = `You are an expert HR resume parser with advanced natural language understanding. Convert the resume text you receive into structured JSON with exactly these fields:
` + profileSchemaExample + `
Instructions:
- Extract 'name' from the first line, prominent header, or personal details section.
- Identify 'education_training_certifications' from headers like 'Education', 'Certifications', or similar. Capture degrees and certificates with start and end dates. Standardize all dates to 'YYYY-MM'.
- Identify 'total_experience' from headers like 'Total Experience' or phrases indicating years of experience (e.g., '18 years').
- Extract 'professional_summary' from headers like 'Professional Summary' or similar. Focus exclusively on tangible professional achievements and specific roles held. Exclude personal traits (e.g., 'dedicated', 'motivated') and willingness-related terms (e.g., 'eager', 'willing', 'passionate'). Emphasize measurable accomplishments. If no clear summary exists, infer key achievements from work experience or projects.
- Identify 'netweb_projects' for projects explicitly mentioning 'NetWeb' or associated with the current company.
- Identify 'past_projects' for projects under previous employers or not associated with 'NetWeb'.
- Extract 'roles_responsibilities' from headers like 'Roles and Responsibilities' or 'Key Responsibilities'. If no explicit section exists, infer specific, actionable responsibilities from job descriptions or bullet points under work experience.
- Extract 'technical_skills' from skill lists, categorizing into web_technologies, scripting_languages, frameworks, databases, web_servers, and tools.
- For 'personal_details', extract the listed keys from sections like 'Personal Details'. Standardize 'date_of_joining' and 'date_of_birth' to 'YYYY-MM'.
- Extract 'work_experience' including company name, role, dates (standardized to 'YYYY-MM') and responsibilities. If responsibilities are missing, infer them from job descriptions or achievements in the same section.
- Leave fields empty if data is missing, but keep the JSON structure. Keep all text fields clean and concise.
Return ONLY the JSON object, without explanations.`

// bulletPrompt 把一段文本改写为 "- " 开头的要点列表
func bulletPrompt(field, text string) string {
	return fmt.Sprintf(`Convert the following text from the '%s' field into concise bullet points. Each bullet should be a complete sentence or idea ending in a period, keeping the content professional and concise. Return only the bullet-pointed text, one bullet per line, starting with '- '.
Text:
%s`, field, text)
}

const bulletSystemPrompt = "You rewrite resume text into concise professional bullet points."

// grammarSystemPrompt 语法检查提示词，字段列表以 JSON 形式放在 user message 中
const grammarSystemPrompt = `Analyze the text fields from a resume form that you receive and provide grammar suggestions.
Return a JSON array of suggestions:
[
  {
    "field": "field_name",
    "field_id": "field_id",
    "original": "original_text",
    "suggested": "corrected_text",
    "reason": "reason_for_suggestion"
  }
]
Use the exact "field" and "field_id" values you were given. Only include fields with grammar issues. Return an empty array if no suggestions are needed.`
