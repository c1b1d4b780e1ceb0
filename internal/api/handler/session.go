package handler

import (
	"context"

	"resume-profiler/internal/constants"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/google/uuid"
)

// sessionCtxKey 会话 ID 在 RequestContext 中的键
const sessionCtxKey = "session_id"

// SessionMiddleware 从请求头或 Cookie 中读取会话 ID 并放入上下文
func SessionMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if id := requestSessionID(c); id != "" {
			c.Set(sessionCtxKey, id)
		}
		c.Next(ctx)
	}
}

func requestSessionID(c *app.RequestContext) string {
	if id := string(c.GetHeader(constants.SessionHeader)); id != "" {
		return id
	}
	return string(c.Cookie(constants.SessionCookie))
}

// SessionID 当前请求的会话 ID，可能为空
func SessionID(c *app.RequestContext) string {
	if id := c.GetString(sessionCtxKey); id != "" {
		return id
	}
	return requestSessionID(c)
}

// resolveSession 创建类接口使用：沿用已有会话，否则生成新的 ID，不写响应
func resolveSession(c *app.RequestContext) string {
	if id := SessionID(c); id != "" {
		return id
	}
	return uuid.NewString()
}

// issueSession 会话保存成功后通过响应头与 Cookie 下发会话 ID
func issueSession(c *app.RequestContext, id string, ttlSeconds int) {
	c.Set(sessionCtxKey, id)
	c.Header(constants.SessionHeader, id)
	c.SetCookie(constants.SessionCookie, id, ttlSeconds, "/", "", protocol.CookieSameSiteLaxMode, false, true)
}
