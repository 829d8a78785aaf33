package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codelive/server/internal/config"
	"github.com/codelive/server/internal/core"
	"github.com/codelive/server/internal/store"
)

// NewServer builds the HTTP server: REST API for code blocks plus the
// websocket endpoint bridging clients into the hub.
func NewServer(hub *core.Hub, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	blocks := NewCodeBlockHandlers(st, logger)
	api := router.Group("/api")
	{
		api.GET("/codeblocks", blocks.List)
		api.GET("/codeblocks/:id", blocks.Get)
		api.POST("/codeblocks", blocks.Create)
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
