package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Faisd405/ayomabar-be/internal/config"
	"github.com/Faisd405/ayomabar-be/internal/database"
	"github.com/Faisd405/ayomabar-be/internal/discord"
	"github.com/Faisd405/ayomabar-be/internal/handlers"
	"github.com/Faisd405/ayomabar-be/internal/lobbyview"
	"github.com/Faisd405/ayomabar-be/internal/middleware"
	"github.com/Faisd405/ayomabar-be/internal/services"
	"github.com/Faisd405/ayomabar-be/internal/websocket"
	"github.com/Faisd405/ayomabar-be/pkg/auth"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg *config.Config
	log *logrus.Logger

	Router *gin.Engine
	DB     *database.Database
	Redis  *redis.Client

	hub    *websocket.Hub
	syncer *lobbyview.Syncer
	bot    *discord.Bot
}

func NewServer(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	blacklist := auth.NewRedisBlacklist(rdb)

	users := services.NewUserService(db, log)
	games := services.NewGameService(db, log)
	rooms := services.NewRoomService(db, log)
	authSvc := services.NewAuthService(db, jwtMgr, blacklist, log)

	hub := websocket.NewHub(log)
	rooms.Subscribe(hub)

	s := &Server{cfg: cfg, log: log, DB: db, Redis: rdb, hub: hub}

	if cfg.Discord.Enabled() {
		session, err := discord.NewSession(cfg.Discord.Token)
		if err != nil {
			return nil, fmt.Errorf("discord session: %w", err)
		}
		s.syncer = lobbyview.NewSyncer(rooms, discord.NewTransport(session), cfg.Lobby.Window, log)
		rooms.Subscribe(s.syncer)
		s.bot = discord.NewBot(session, cfg.Discord.GuildID, users, rooms, games, s.syncer, log)
	} else {
		log.Info("DISCORD_BOT_TOKEN not set, chat bot disabled")
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	limiter := middleware.NewRedisLimiter(rdb)
	APIEndpoints(router, Routes{
		Auth:      handlers.NewAuthHandler(authSvc, users),
		Users:     handlers.NewUserHandler(users),
		Games:     handlers.NewGameHandler(games),
		Rooms:     handlers.NewRoomHandler(rooms),
		WebSocket: handlers.NewWebSocketHandler(hub, rooms, cfg.AllowedOrigins, log),
		Health:    handlers.NewHealthHandler(db.Ping, hub.OnlineCount),

		JWT:       jwtMgr,
		Blacklist: blacklist,
		Limiter:   limiter,
		RateLimit: cfg.RateLimit,
		Log:       log,
	})
	s.Router = router

	return s, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.hub.Run()

	if s.bot != nil {
		if err := s.bot.Start(); err != nil {
			return err
		}
		go s.syncer.Run(ctx, s.cfg.Lobby.RefreshInterval)
	}

	httpSrv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("port", s.cfg.Port).Info("server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Warn("http shutdown")
	}

	s.hub.Stop()
	if s.bot != nil {
		if err := s.bot.Close(); err != nil {
			s.log.WithError(err).Warn("discord close")
		}
	}
	if err := s.Redis.Close(); err != nil {
		s.log.WithError(err).Warn("redis close")
	}
	if err := s.DB.Close(); err != nil {
		s.log.WithError(err).Warn("database close")
	}
	return runErr
}
