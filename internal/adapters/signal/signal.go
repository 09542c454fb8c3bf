package signal

import (
	"net/http"
	"time"

	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// Options tunes every websocket connection.
type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	SendBuffer     int
	// AllowedOrigins gates browser upgrades. Empty means same origin only.
	AllowedOrigins []string
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 54 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	return o
}

// Server upgrades requests and runs the pumps of every connection.
type Server struct {
	hub      *Hub
	opts     Options
	upgrader websocket.Upgrader
	pumps    conc.WaitGroup
}

func NewServer(hub *Hub, opts Options) *Server {
	s := &Server{hub: hub, opts: opts.withDefaults()}
	if len(opts.AllowedOrigins) > 0 {
		s.upgrader.CheckOrigin = originChecker(opts.AllowedOrigins)
	}
	return s
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browser requests from an allowed origin.
func originChecker(allowed []string) func(*http.Request) bool {
	c := cors.New(cors.Options{AllowedOrigins: allowed})
	return func(r *http.Request) bool {
		if r.Header.Get("Origin") == "" {
			return true
		}
		if c.OriginAllowed(r) {
			return true
		}
		log.Warn().Str("module", "signal").Str("origin", r.Header.Get("Origin")).Msg("origin rejected")
		return false
	}
}

// ServeWS upgrades the request and registers the connection with the hub.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request, clientToken string) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	conn := newWsSignalConn(domain.NewConnID(), ws, s.opts.SendBuffer)
	if err := s.hub.Register(conn.id, conn); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("register refused")
		conn.Close()
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("client", clientToken).Msg("new WS connection")

	s.pumps.Go(func() { s.writePump(conn) })
	s.pumps.Go(func() { s.readPump(conn) })
}

// Handle is the gin entry point; the client token comes from the session middleware.
func (s *Server) Handle(c *gin.Context) {
	s.ServeWS(c.Writer, c.Request, c.GetString("client_token"))
}

// Wait blocks until every pump has returned.
func (s *Server) Wait() { s.pumps.Wait() }
