package router

import (
	"context"

	"resume-profiler/internal/api/handler"
	"resume-profiler/internal/render"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, profileHandler *handler.ProfileHandler) {
	api := h.Group("/api/v1", handler.SessionMiddleware())

	profile := api.Group("/profile")
	profile.POST("/upload", profileHandler.HandleUpload)
	profile.POST("/manual", profileHandler.HandleManual)
	profile.GET("", profileHandler.HandleGet)
	profile.PUT("", profileHandler.HandleUpdate)
	profile.POST("/grammar", profileHandler.HandleGrammar)
	profile.POST("/grammar/apply", profileHandler.HandleApplySuggestions)
	profile.POST("/design", profileHandler.HandleDesign)
	profile.GET("/html", profileHandler.HandleHTML)

	export := api.Group("/export")
	for _, f := range []render.Format{render.FormatPDF, render.FormatDOCX, render.FormatXLSX} {
		export.POST("/"+string(f), profileHandler.HandleExport(f))
	}

	api.DELETE("/session", profileHandler.HandleClear)

	// 添加健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
