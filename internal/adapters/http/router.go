package http

import (
	"net/http"

	"github.com/dkeye/roomrelay/internal/adapters/rtc"
	"github.com/dkeye/roomrelay/internal/adapters/signal"
	"github.com/dkeye/roomrelay/internal/app"
	"github.com/dkeye/roomrelay/internal/config"
	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/dkeye/roomrelay/internal/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

// ClientTokenMiddleware gives every browser a stable token kept in the session.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			s.Set(clientTokenKey, token)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

// ConnectRateMiddleware refuses upgrades from clients reconnecting too fast.
func ConnectRateMiddleware(l *signal.ConnectLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.GetString(clientTokenKey)) {
			log.Warn().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("connect rate exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many connections"})
			return
		}
		c.Next()
	}
}

type Deps struct {
	Registry *app.Registry
	WS       *signal.Server
	Limiter  *signal.ConnectLimiter
}

func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RoomRelaySessions", store))
	r.Use(ClientTokenMiddleware())

	wsHandlers := []gin.HandlerFunc{}
	if d.Limiter != nil {
		wsHandlers = append(wsHandlers, ConnectRateMiddleware(d.Limiter))
	}
	wsHandlers = append(wsHandlers, d.WS.Handle)
	r.GET("/ws", wsHandlers...)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": d.Registry.List()})
	})
	api.GET("/rooms/:id/members", func(c *gin.Context) {
		room := domain.RoomID(c.Param("id"))
		members := d.Registry.MembersOf(room)
		if len(members) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"room": room, "members": members})
	})
	iceServers := rtc.ICEServers(cfg.ICEServers, cfg.ICEUsername, cfg.ICECredential)
	api.GET("/ice", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": iceServers})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}

// WithCORS wraps h with the configured origin allowlist.
func WithCORS(cfg *config.Config, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(h)
}
