package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kiddieguard/sentinel/internal/adapters/ws"
	"github.com/kiddieguard/sentinel/internal/config"
	"github.com/kiddieguard/sentinel/internal/store"
	"github.com/kiddieguard/sentinel/internal/vault"
)

// ClientTokenMiddleware gives each browser a stable opaque token. It keys
// nothing security-critical; it exists so logs can correlate requests from
// one device.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires the web layer: parent dashboard and APIs, kid portal,
// read-only vault serving and the websocket upgrade into the hub.
func SetupRouter(ctx context.Context, cfg *config.Config, bunker *store.Bunker, snaps *vault.Vault, wsCtl *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SentinelSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.LoadHTMLGlob(cfg.TemplatesPath + "/*.tmpl")

	h := &Handlers{Store: bunker}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(302, "/parent/dashboard")
	})

	parent := r.Group("/parent")
	parent.GET("/dashboard", h.Dashboard)
	parent.GET("/enroll", h.EnrollForm)
	parent.POST("/enroll", h.Enroll)
	parent.POST("/api/library", h.AddLibrary)
	parent.POST("/api/library/assign", h.AssignLibrary)
	// Snapshot files; read-only, path must match the prefix new_snapshot
	// events advertise.
	parent.StaticFS("/vault", snaps.HTTPFileSystem())

	kid := r.Group("/kid")
	kid.GET("/portal/:kid_id", h.KidPortal)

	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws endpoint hit")
		wsCtl.Handle(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("templates", cfg.TemplatesPath).Msg("router setup")
	return r
}
