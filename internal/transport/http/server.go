package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/auth"
	"github.com/vovakirdan/chatsync/internal/config"
	"github.com/vovakirdan/chatsync/internal/store"
)

// NewServer builds the HTTP server: the JSON API under /api, the
// real-time channel at /ws and a health probe.
func NewServer(hub *Hub, authService *auth.Service, st store.Store, cfg config.StubConfig, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	authHandlers := NewAuthHandlers(authService, st, logger)
	messageHandlers := NewMessageHandlers(st, hub, logger)
	groupHandlers := NewGroupHandlers(st, logger)
	requireAuth := AuthMiddleware(authService, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", authHandlers.Signup)
		authGroup.POST("/login", authHandlers.Login)
		authGroup.POST("/logout", authHandlers.Logout)
		authGroup.GET("/check-auth", requireAuth, authHandlers.CheckAuth)
		authGroup.PUT("/update-profile", requireAuth, authHandlers.UpdateProfile)

		message := api.Group("/message", requireAuth)
		message.GET("/users", messageHandlers.Users)
		message.GET("/:id", messageHandlers.Messages)
		message.POST("/send/:id", messageHandlers.Send)

		group := api.Group("/group", requireAuth)
		group.GET("", groupHandlers.List)
		group.POST("/create", groupHandlers.Create)
		group.GET("/:id", groupHandlers.Get)
		group.PUT("/:id", groupHandlers.Update)
		group.POST("/:id/members", groupHandlers.AddMembers)
		group.DELETE("/:id/members", groupHandlers.RemoveMembers)
	}

	// The websocket upgrade needs the raw ResponseWriter, so /ws bypasses gin.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg.SocketRateLimit, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
