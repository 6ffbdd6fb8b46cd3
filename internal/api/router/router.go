package router

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"
	"github.com/hertz-contrib/keyauth"

	"resume-parser-go/internal/api/handler"
)

// APIKeyHeader 携带 API Key 的请求头
const APIKeyHeader = "X-API-Key"

// RegisterRoutes 注册 API 路由，同时挂载在根路径和 /api 下。
// apiKeys 非空时解析接口需要 X-API-Key 请求头。
func RegisterRoutes(r *route.Engine, resumeHandler *handler.ResumeHandler, apiKeys []string) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", APIKeyHeader},
		MaxAge:          12 * time.Hour,
	}))

	var parseMiddleware []app.HandlerFunc
	if len(apiKeys) > 0 {
		parseMiddleware = append(parseMiddleware, apiKeyAuth(apiKeys))
	}
	parse := append(parseMiddleware, resumeHandler.Parse)

	r.GET("/", resumeHandler.Root)
	r.POST("/parse", parse...)

	api := r.Group("/api")
	api.GET("/", resumeHandler.Root)
	api.POST("/parse", parse...)
}

func apiKeyAuth(keys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+APIKeyHeader, ""),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, nil
		}),
		keyauth.WithErrorHandler(func(_ context.Context, c *app.RequestContext, _ error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, handler.ErrorResponse{
				Success: false,
				Detail:  "Invalid or missing API key",
			})
		}),
	)
}
