package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-profiler/internal/types"
	"resume-profiler/pkg/agent"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewFields() []types.ReviewField {
	return []types.ReviewField{
		{Key: "name", ID: "name", Text: "Jane Doe"},
		{Key: "professional_summary", ID: "professional_summary", Text: "<ul><li>Led <b>teams</b> of engineer</li></ul>", Rich: true},
	}
}

func TestReview(t *testing.T) {
	var sent string
	mock := agent.NewMockChatClientFunc(func(input []*schema.Message) (string, error) {
		sent = userContent(input)
		return "```json\n" + `[
  {"field": "professional_summary", "field_id": "wrong", "suggested": "Led teams of engineers", "reason": "plural"},
  {"field": "unknown_field", "field_id": "x", "original": "a", "suggested": "b", "reason": "c"},
  {"field": "name", "original": "Jane Doe", "suggested": "Jane Doe", "reason": "noop"}
]` + "\n```", nil
	})

	got := NewReviewer(mock).Review(context.Background(), reviewFields())
	require.Len(t, got, 1)
	assert.Equal(t, "professional_summary", got[0].Field)
	assert.Equal(t, "professional_summary", got[0].FieldID, "field_id 以发送的字段为准")
	assert.Equal(t, "Led teams of engineer", got[0].Original, "缺省 original 取发送的纯文本")
	assert.NotContains(t, sent, "<li>", "富文本发送前去除标签")
	assert.True(t, strings.Contains(sent, `"field_id": "professional_summary"`))
}

func TestReviewFailuresReturnEmpty(t *testing.T) {
	cases := []struct {
		name string
		resp agent.MockResponse
	}{
		{"LLM错误", agent.MockResponse{Error: errors.New("invalid key")}},
		{"非数组", agent.MockResponse{Content: `{"field": "name"}`}},
		{"结构不符", agent.MockResponse{Content: `[{"field": 3}]`}},
		{"非JSON", agent.MockResponse{Content: "Looks good to me."}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := agent.NewMockChatClientSequential([]agent.MockResponse{tc.resp})
			got := NewReviewer(mock).Review(context.Background(), reviewFields())
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}

	t.Run("无字段不调用LLM", func(t *testing.T) {
		mock := agent.NewMockChatClient("[]", nil)
		assert.Empty(t, NewReviewer(mock).Review(context.Background(), nil))
		assert.Zero(t, mock.CallCount())
	})
}
