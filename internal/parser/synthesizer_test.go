package parser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resume-profiler/pkg/agent"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const synthesizedJSON = "```json\n" + `{
  "name": "Jane Doe",
  "total_experience": 18,
  "professional_summary": "Led a team of 5. Shipped the billing platform.",
  "roles_responsibilities": "<ul><li>Owns releases</li></ul>",
  "education_training_certifications": [{"title": "B.Tech", "start_date": "July 2006", "end_date": "2010"}],
  "work_experience": [{"company_name": "NetWeb", "role": "Lead", "start_date": "03/2019", "end_date": null, "responsibilities": "Managed infra."}],
  "personal_details": {"date_of_birth": "Jan 1990"}
}` + "\n```"

func userContent(input []*schema.Message) string {
	for _, m := range input {
		if m.Role == schema.User {
			return m.Content
		}
	}
	return ""
}

func TestSynthesize(t *testing.T) {
	var bulletFields []string
	mock := agent.NewMockChatClientFunc(func(input []*schema.Message) (string, error) {
		user := userContent(input)
		if strings.HasPrefix(user, "Convert the following text") {
			field := strings.SplitN(strings.SplitN(user, "'", 3)[1], "'", 2)[0]
			bulletFields = append(bulletFields, field)
			return "- Bullet one.\n- Bullet two.", nil
		}
		return synthesizedJSON, nil
	})

	p, err := NewSynthesizer(mock).Synthesize(context.Background(), "Jane Doe\nResume text")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "18", p.TotalExperience)
	assert.Equal(t, "- Bullet one.\n- Bullet two.", p.ProfessionalSummary)
	assert.Equal(t, "<ul><li>Owns releases</li></ul>", p.RolesResponsibilities, "已有富文本的字段不再要点化")
	assert.Equal(t, "- Bullet one.\n- Bullet two.", p.WorkExperience[0].Responsibilities)
	assert.Equal(t, []string{"professional_summary", "work_experience_responsibilities_Lead"}, bulletFields)

	assert.Equal(t, "2006-07", p.EducationTrainingCertifications[0].StartDate)
	assert.Equal(t, "2010-01", p.EducationTrainingCertifications[0].EndDate)
	assert.Equal(t, "2019-03", p.WorkExperience[0].StartDate)
	assert.Equal(t, "", p.WorkExperience[0].EndDate)
	assert.Equal(t, "1990-01", p.PersonalDetails.DateOfBirth)

	for _, cat := range []string{"web_technologies", "scripting_languages", "frameworks", "databases", "web_servers", "tools"} {
		items := p.TechnicalSkills.Get(cat)
		assert.NotNil(t, items, "缺失的技能分类应为空列表: %s", cat)
		assert.Empty(t, items)
	}
}

func TestSynthesizeBulletFailureKeepsText(t *testing.T) {
	mock := agent.NewMockChatClientSequential([]agent.MockResponse{
		{Content: `{"professional_summary": "Built things."}`},
		{Error: errors.New("quota exceeded")},
	})
	p, err := NewSynthesizer(mock).Synthesize(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Built things.", p.ProfessionalSummary)
}

func TestSynthesizeFailures(t *testing.T) {
	t.Run("LLM错误", func(t *testing.T) {
		mock := agent.NewMockChatClient("", errors.New("invalid api key"))
		_, err := NewSynthesizer(mock, WithSynthesisRetry(1, time.Millisecond)).Synthesize(context.Background(), "text")
		require.Error(t, err)
		assert.Equal(t, 1, mock.CallCount(), "不可重试错误不重试")
	})

	t.Run("可重试错误最多再试一次", func(t *testing.T) {
		mock := agent.NewMockChatClient("", errors.New("503 service unavailable"))
		_, err := NewSynthesizer(mock, WithBulletRewrite(false), WithSynthesisRetry(1, time.Millisecond)).Synthesize(context.Background(), "text")
		require.Error(t, err)
		assert.Equal(t, 2, mock.CallCount(), "重试次数为1时共调用两次")
	})

	t.Run("可重试错误重试后成功", func(t *testing.T) {
		mock := agent.NewMockChatClientSequential([]agent.MockResponse{
			{Error: errors.New("connection reset by peer")},
			{Content: `{"name": "A"}`},
		})
		s := NewSynthesizer(mock, WithBulletRewrite(false), WithSynthesisRetry(1, time.Millisecond))
		p, err := s.Synthesize(context.Background(), "text")
		require.NoError(t, err)
		assert.Equal(t, "A", p.Name)
	})

	t.Run("响应不是JSON", func(t *testing.T) {
		mock := agent.NewMockChatClient("I cannot help with that.", nil)
		_, err := NewSynthesizer(mock).Synthesize(context.Background(), "text")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("空输入", func(t *testing.T) {
		mock := agent.NewMockChatClient("{}", nil)
		_, err := NewSynthesizer(mock).Synthesize(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Zero(t, mock.CallCount())
	})
}

func TestHasRichMarkup(t *testing.T) {
	assert.True(t, HasRichMarkup("<B>x</B>"))
	assert.True(t, HasRichMarkup("a<li>b"))
	assert.False(t, HasRichMarkup("<p>x</p>"))
	assert.False(t, HasRichMarkup("- plain"))
}
