package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRotator(t *testing.T) {
	_, err := NewKeyRotator([]string{" ", ""}, 2)
	require.ErrorIs(t, err, ErrNoAPIKeys)

	r, err := NewKeyRotator([]string{"k1", " k2 ", ""}, 2)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	var got []string
	for i := 0; i < 6; i++ {
		k, _ := r.Next()
		got = append(got, k)
	}
	assert.Equal(t, []string{"k1", "k1", "k2", "k2", "k1", "k1"}, got, "每个密钥用满次数后切换并循环")
}

func TestMockChatClientSequential(t *testing.T) {
	m := NewMockChatClientSequential([]MockResponse{{Content: "a"}, {Error: errors.New("boom")}})
	ctx := context.Background()

	msg, err := m.Generate(ctx, []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "a", msg.Content)

	_, err = m.Generate(ctx, nil)
	assert.EqualError(t, err, "boom")

	_, err = m.Generate(ctx, nil)
	assert.Error(t, err, "响应用完后应返回错误")
	assert.Equal(t, 3, m.CallCount())
	assert.Len(t, m.GetReceivedMessages(), 1)
}

func TestAliyunQwenChatModelGenerate(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		var req openAIChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"name\":\"x\"}"}}]}`))
	}))
	defer srv.Close()

	rot, err := NewKeyRotator([]string{"k1", "k2"}, 1)
	require.NoError(t, err)
	m, err := NewAliyunQwenChatModel(rot, "qwen-test", srv.URL, 0.2)
	require.NoError(t, err)

	msgs := []*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("user")}
	for i := 0; i < 2; i++ {
		out, err := m.Generate(context.Background(), msgs)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"x"}`, out.Content)
	}
	assert.Equal(t, []string{"Bearer k1", "Bearer k2"}, gotAuth)
}

func TestAliyunQwenChatModelHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	rot, _ := NewKeyRotator([]string{"k"}, 0)
	m, err := NewAliyunQwenChatModel(rot, "", srv.URL, 0)
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
