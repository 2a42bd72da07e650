package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Config は HTTP サーバーの設定です。
type Config struct {
	SessionSecret   string
	SessionTTL      time.Duration
	CORSOrigins     []string
	GenerateTimeout time.Duration
	// SecureCookie が true の場合は HTTPS でのみ Cookie を送ります。
	SecureCookie bool
}

// Server は絵本セッションを操作する JSON API を提供します。
type Server struct {
	cfg      Config
	engine   *gin.Engine
	registry *Registry
}

// New はルーティングとミドルウェアを組み立てた Server を返します。
func New(cfg Config, factory SessionFactory) (*Server, error) {
	if factory == nil {
		return nil, fmt.Errorf("SessionFactory は必須です")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SessionSecret は必須です")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	s := &Server{
		cfg:      cfg,
		registry: NewRegistry(cfg.SessionTTL, factory),
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	store := cookie.NewStore([]byte(s.cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if len(s.cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowCredentials = true
		corsConfig.AllowOrigins = s.cfg.CORSOrigins
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Cookie"}
		router.Use(cors.New(corsConfig))
	}

	router.GET("/healthz", s.healthz)

	api := router.Group("/api/session")
	api.Use(sessions.Sessions(cookieName, store), browserSession())
	{
		api.GET("", s.getSession)
		api.POST("/topic", s.postTopic)
		api.POST("/next", s.postNext)
		api.POST("/prev", s.postPrev)
		api.PUT("/draft", s.putDraft)
		api.POST("/edit", s.postEdit)
		api.POST("/restart", s.postRestart)
		api.POST("/dismiss", s.postDismiss)
		api.GET("/game", s.getGame)
		api.POST("/game/pop/:id", s.popBalloon)
	}
	return router
}

// Handler は http.Handler としてのルーターを返します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run は addr で待ち受け、ctx がキャンセルされると安全に停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP サーバーの起動に失敗しました: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP サーバーの停止に失敗しました: %w", err)
	}
	return nil
}
