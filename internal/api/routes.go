package api

import (
	"net/http"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/realtime"
	"verum/academy-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	hub *realtime.Hub,
	authService service.AuthService,
	profileService service.ProfileService,
	mediaService service.MediaService,
	feedService service.FeedService,
	matchService service.MatchService,
	socialService service.SocialService,
) {
	authHandler := NewAuthHandler(authService)
	profileHandler := NewProfileHandler(profileService)
	mediaHandler := NewMediaHandler(mediaService, feedService)
	matchHandler := NewMatchHandler(matchService)
	socialHandler := NewSocialHandler(socialService)
	wsHandler := NewWSHandler(hub, feedService, profileService, matchService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Profile Routes ---
		profileGroup := protected.Group("/profiles")
		{
			profileGroup.GET("/me", profileHandler.GetMyProfile)
			profileGroup.POST("/me/avatar-upload-url", profileHandler.AvatarUploadURL)
			profileGroup.GET("/:id", profileHandler.GetProfileByID)
			profileGroup.PUT("/:id", profileHandler.UpdateProfile)
		}

		// --- User-scoped Routes ---
		userGroup := protected.Group("/users")
		{
			userGroup.POST("/:id/follow", socialHandler.ToggleFollow)
			userGroup.GET("/:id/media", mediaHandler.UserMedia)
			userGroup.GET("/:id/awards", socialHandler.Awards)
		}

		// --- Media & Feed Routes ---
		mediaGroup := protected.Group("/media")
		{
			mediaGroup.POST("/upload-url", mediaHandler.UploadURL)
			mediaGroup.POST("", mediaHandler.Submit)
			mediaGroup.GET("/mine", mediaHandler.MyMedia)
			mediaGroup.POST("/:id/like", mediaHandler.ToggleLike)
			mediaGroup.GET("/:id/comments", socialHandler.Comments)
			mediaGroup.POST("/:id/comments", socialHandler.AddComment)
		}
		protected.GET("/feed", mediaHandler.GlobalFeed)

		// --- Match Agenda Routes ---
		matchGroup := protected.Group("/matches")
		{
			matchGroup.POST("", matchHandler.Create)
			matchGroup.GET("", matchHandler.Agenda)
			matchGroup.POST("/:id/result", matchHandler.LogResult)
			matchGroup.DELETE("/:id", matchHandler.Delete)
		}

		// --- Notification Routes ---
		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", socialHandler.Notifications)
			notificationGroup.POST("/:id/read", socialHandler.MarkNotificationRead)
		}

		// --- Live Subscriptions ---
		wsGroup := protected.Group("/ws")
		{
			wsGroup.GET("/feed", wsHandler.Feed)
			wsGroup.GET("/profile", wsHandler.Profile)
			wsGroup.GET("/agenda", wsHandler.Agenda)
			wsGroup.GET("/users/:id/media", wsHandler.UserMedia)
			wsGroup.GET("/review", RoleMiddleware(domain.RoleAdmin), wsHandler.Review)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/athletes", profileHandler.ListAthletes)
			adminGroup.GET("/media/pending", mediaHandler.PendingQueue)
			adminGroup.POST("/media/:id/review", mediaHandler.Review)
			adminGroup.POST("/media/:id/promote", mediaHandler.Promote)
			adminGroup.GET("/matches", matchHandler.AllMatches)
			adminGroup.POST("/users/:id/awards", socialHandler.GrantAward)
			adminGroup.DELETE("/awards/:id", socialHandler.RevokeAward)
		}
	}
}
