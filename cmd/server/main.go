package main

import (
	"fmt"
	"log"
	"net/http"

	"linkup/backend/internal/auth"
	"linkup/backend/internal/config"
	"linkup/backend/internal/database"
	"linkup/backend/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "linkup/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Linkup API
// @version         1.0
// @description     This is the API for the Linkup social network.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)
	handler.InitServices(database.DB)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Uploaded avatars, covers and attachments
	router.Static("/uploads", config.AppConfig.UploadDir)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:username
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/me/feed", handler.GetNewsfeed)
			userRoutes.PUT("/me/profile", handler.UpdateProfile)
			userRoutes.POST("/me/avatar", handler.UpdateAvatar)
			userRoutes.POST("/me/cover", handler.UpdateCover)
			userRoutes.GET("/:username", handler.GetUserByUsername)
		}

		// Friendship routes (protected)
		friendRoutes := apiV1.Group("/friends")
		friendRoutes.Use(auth.AuthMiddleware())
		{
			friendRoutes.GET("", handler.ListFriends)
			friendRoutes.GET("/requests", handler.ListFriendRequests)
			friendRoutes.GET("/requests/sent", handler.ListSentFriendRequests)
			friendRoutes.POST("/:username/request", handler.SendFriendRequest)
			friendRoutes.POST("/:username/revoke", handler.RevokeFriendRequest)
			friendRoutes.POST("/:username/accept", handler.AcceptFriendRequest)
			friendRoutes.POST("/:username/reject", handler.RejectFriendRequest)
			friendRoutes.POST("/:username/remove", handler.RemoveFriend)
		}

		// Post pages are shareable, so reading one only needs optional auth
		apiV1.GET("/posts/:id", auth.OptionalAuthMiddleware(), handler.GetPost)

		// Post routes (protected)
		postRoutes := apiV1.Group("/posts")
		postRoutes.Use(auth.AuthMiddleware())
		{
			postRoutes.POST("", handler.CreatePost)
			postRoutes.DELETE("/:id", handler.DeletePost)
			postRoutes.POST("/:id/comments", handler.AddComment)
			postRoutes.POST("/:id/react", handler.ReactToPost)
		}

		// Message routes (protected)
		messageRoutes := apiV1.Group("/messages")
		messageRoutes.Use(auth.AuthMiddleware())
		{
			messageRoutes.GET("", handler.ListThreads)
			messageRoutes.GET("/new", handler.NewMessage) // Must be before /:id
			messageRoutes.GET("/:id", handler.GetThread)
			messageRoutes.POST("/:id", handler.SendMessage)
			messageRoutes.POST("/:id/read", handler.MarkThreadRead)
			messageRoutes.DELETE("/:id", handler.DeleteThread)
			messageRoutes.GET("/:id/events", handler.StreamThread)
		}
	}

	fmt.Printf("Server is running on :%s\n", config.AppConfig.Port)
	fmt.Println("Swagger UI is available at http://localhost:" + config.AppConfig.Port + "/swagger/index.html")
	log.Fatal(router.Run(":" + config.AppConfig.Port))
}
