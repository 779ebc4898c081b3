// Package httpapi builds the Gin engine of the chat server: the middleware
// chain, the public account routes and the token-protected chat routes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-direct-chat/docs" // registers the swagger document
	"github.com/tbourn/go-direct-chat/internal/auth"
	"github.com/tbourn/go-direct-chat/internal/config"
	"github.com/tbourn/go-direct-chat/internal/http/handlers"
	"github.com/tbourn/go-direct-chat/internal/http/middleware"
	"github.com/tbourn/go-direct-chat/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// RegisterRoutes mounts the middleware chain and every endpoint on r. users
// is the optional Redis user directory; nil serves /userlist from the
// database.
//
// The chain runs tracing, request id, scoped logger, access log, recovery,
// body limit, metrics, gzip, CORS, then security headers. Protected routes
// add RequireToken, and the two POST routes add the Idempotency-Key
// validator after it because replays are per user.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, users services.UserDirectory, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.ContextLogger(),
		middleware.RedactingLogger(middleware.RedactOptions{}),
		middleware.Recovery(),
		limitBody(maxBodyBytes),
	)

	// /metrics is registered before gzip so scrapes stay uncompressed.
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	// Reads revalidate so chatlist and chat ETags are honored.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		Revalidate:   true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	authSvc := &services.AuthService{
		DB:           db,
		Passwords:    auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:       tokens,
		Users:        users,
		StoreTimeout: cfg.DB.StoreTimeout,
	}
	chatSvc := services.NewChatService(db)
	chatSvc.Users = users
	if cfg.DB.StoreTimeout > 0 {
		chatSvc.StoreTimeout = cfg.DB.StoreTimeout
	}
	if cfg.MaxMessageRunes > 0 {
		chatSvc.MaxMessageRunes = cfg.MaxMessageRunes
	}
	if cfg.IdempotencyTTL > 0 {
		chatSvc.IdempotencyTTL = cfg.IdempotencyTTL
	}
	profileSvc := &services.ProfileService{DB: db, Users: users, StoreTimeout: cfg.DB.StoreTimeout}
	idemSvc := &services.IdempotencyService{DB: db, StoreTimeout: cfg.DB.StoreTimeout}

	h := handlers.New(authSvc, chatSvc, profileSvc)

	idem := middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID uint, scope, key string) (any, bool, error) {
			m, err := idemSvc.Replay(ctx, userID, scope, key)
			if err != nil || m == nil {
				return nil, false, err
			}
			return handlers.NewMessageResponse{NewMessage: m}, true, nil
		},
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Accounts
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
	}

	authed := api.Group("", middleware.RequireToken(tokens))
	{
		// Directory and profile
		authed.GET("/userlist", h.ListUsers)
		authed.PUT("/profile", h.UpdateProfile)

		// Chats
		authed.GET("/chatlist", h.ListChats)
		authed.GET("/chat/:chatId", h.GetChat)

		// Messages
		authed.POST("/new/chat/:user2", idem, h.StartChat)
		authed.POST("/new/message/:chatid", idem, h.PostMessage)
	}
}

// corsMiddleware returns the CORS handlers. With no allowlist every origin
// is allowed without credentials; otherwise the request Origin is echoed
// when listed.
func corsMiddleware(allowedOrigins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(allowedOrigins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = allowedOrigins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody makes body reads past maxBytes fail, which binding reports as
// invalid JSON.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
