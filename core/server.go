package core

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/service"
	"github.com/garoulab/garou-bot/util"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type buildInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Date     string `json:"date"`
}

var build = buildInfo{Version: "dev"}

// SetVersion records the release metadata injected through -ldflags. It shows
// up in the Server header and the status endpoint.
func SetVersion(version string, revision string, date string) {
	build = buildInfo{Version: version, Revision: revision, Date: date}
}

// Server exposes the engine to the chat gateway sidecar over a websocket
// and to operators over a small HTTP status API.
type Server struct {
	config    *model.Config
	upgrader  websocket.Upgrader
	engine    *Engine
	messenger *service.GatewayMessenger
	signaled  bool
}

func NewServer(config *model.Config, engine *Engine, messenger *service.GatewayMessenger) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		engine:    engine,
		messenger: messenger,
	}
}

func (s *Server) Run() {
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Header("Server", "garou-bot/"+build.Version+" "+runtime.Version()+" ("+runtime.GOOS+"; "+runtime.GOARCH+")")
		c.Next()
	})

	router.GET("/ws", func(c *gin.Context) {
		s.handleGateway(c.Writer, c.Request)
	})

	api := router.Group("/api")
	if s.config.Server.Authentication.Enable {
		api.Use(s.verifyMiddleware())
	}
	api.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": build,
			"games":   s.engine.Status(),
		})
	})
	api.GET("/scoreboard", func(c *gin.Context) {
		records, err := s.engine.ledger.TopPlayers(25)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, records)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	go func() {
		trap := make(chan os.Signal, 1)
		signal.Notify(trap, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)
		sig := <-trap
		slog.Info("signal received", "signal", sig)
		s.signaled = true
		os.Exit(0)
	}()

	s.engine.Resume()

	slog.Info("server started", "host", s.config.Server.HTTP.Host, "port", s.config.Server.HTTP.Port)
	err := router.Run(s.config.Server.HTTP.Host + ":" + strconv.Itoa(s.config.Server.HTTP.Port))
	if err != nil {
		slog.Error("failed to start server", "error", err)
		return
	}
}

// handleGateway upgrades the sidecar connection, wires it into the
// messenger and pumps inbound events into the engine until it drops.
func (s *Server) handleGateway(w http.ResponseWriter, r *http.Request) {
	if s.signaled {
		slog.Warn("refusing new connection after signal")
		return
	}
	if s.config.Server.Authentication.Enable {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = strings.ReplaceAll(r.Header.Get("Authorization"), "Bearer ", "")
		}
		if !util.IsValidGatewayToken(os.Getenv("SECRET_KEY"), token) {
			slog.Warn("gateway token is invalid")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade gateway connection", "error", err)
		return
	}
	slog.Info("gateway connected", "remote", ws.RemoteAddr())
	s.messenger.SetConn(ws)

	go func() {
		defer func() {
			s.messenger.SetConn(nil)
			ws.Close()
			slog.Info("gateway disconnected", "remote", ws.RemoteAddr())
		}()
		for {
			var event model.Event
			if err := ws.ReadJSON(&event); err != nil {
				slog.Warn("gateway read failed", "error", err)
				return
			}
			s.engine.HandleEvent(event)
		}
	}()
}

func (s *Server) verifyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.ReplaceAll(c.GetHeader("Authorization"), "Bearer ", "")
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !util.IsValidOperatorToken(os.Getenv("SECRET_KEY"), token) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
