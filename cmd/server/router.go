package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Faisd405/ayomabar-be/internal/config"
	"github.com/Faisd405/ayomabar-be/internal/handlers"
	"github.com/Faisd405/ayomabar-be/internal/middleware"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/pkg/auth"
)

type Routes struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Games     *handlers.GameHandler
	Rooms     *handlers.RoomHandler
	WebSocket *handlers.WebSocketHandler
	Health    *handlers.HealthHandler

	JWT       *auth.JWTManager
	Blacklist auth.Blacklist
	Limiter   middleware.Limiter
	RateLimit config.RateLimitConfig
	Log       *logrus.Logger
}

func APIEndpoints(r *gin.Engine, rt Routes) {
	requireAuth := middleware.AuthMiddleware(rt.JWT, rt.Blacklist)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)
	strict := middleware.RateLimit(rt.Limiter, "strict", rt.RateLimit.StrictRequests, rt.RateLimit.Window, rt.Log)

	r.GET("/health", rt.Health.Check)

	r.GET("/ws", middleware.WSAuthMiddleware(rt.JWT, rt.Blacklist), rt.WebSocket.HandleWebSocket)

	api := r.Group("/")
	api.Use(middleware.RateLimit(rt.Limiter, "api", rt.RateLimit.Requests, rt.RateLimit.Window, rt.Log))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", strict, rt.Auth.Register)
		authGroup.POST("/login", strict, rt.Auth.Login)
		authGroup.POST("/refresh", rt.Auth.Refresh)
		authGroup.GET("/me", requireAuth, rt.Auth.Me)
		authGroup.POST("/logout", requireAuth, rt.Auth.Logout)
	}

	users := api.Group("/user")
	{
		users.PUT("/me", requireAuth, rt.Users.UpdateMe)
		users.GET("/:id", rt.Users.GetUser)
	}

	games := api.Group("/game")
	{
		games.GET("", rt.Games.ListGames)
		games.GET("/:id", rt.Games.GetGame)
		games.GET("/:id/ranks", rt.Games.ListRanks)
		games.POST("", requireAuth, requireAdmin, rt.Games.CreateGame)
		games.PUT("/:id", requireAuth, requireAdmin, rt.Games.UpdateGame)
		games.DELETE("/:id", requireAuth, requireAdmin, rt.Games.DeleteGame)
	}

	rooms := api.Group("/room")
	{
		rooms.GET("", rt.Rooms.ListRooms)
		rooms.GET("/:id", rt.Rooms.GetRoom)

		rooms.POST("", requireAuth, rt.Rooms.CreateRoom)
		rooms.PUT("/:id", requireAuth, rt.Rooms.UpdateRoom)
		rooms.DELETE("/:id", requireAuth, rt.Rooms.DeleteRoom)
		rooms.POST("/:id/join", requireAuth, rt.Rooms.JoinRoom)
		rooms.DELETE("/:id/leave", requireAuth, rt.Rooms.LeaveRoom)
		rooms.GET("/:id/requests", requireAuth, rt.Rooms.GetRoomRequests)
		rooms.DELETE("/:id/kick/:userId", requireAuth, rt.Rooms.KickPlayer)
		rooms.POST("/:id/report/:userId", requireAuth, rt.Rooms.ReportPlayer)
		rooms.PUT("/request/:requestId/approve", requireAuth, rt.Rooms.ApproveRequest)
		rooms.PUT("/request/:requestId/reject", requireAuth, rt.Rooms.RejectRequest)
	}
}
