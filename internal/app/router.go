package app

import (
	"zorides_backend/docs"
	"zorides_backend/internal/config"
	"zorides_backend/internal/middleware"
	"zorides_backend/internal/model"
	"zorides_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerUserRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)

		// 列表类：可选认证，登录用户附带自己的状态
		optional := public.Group("/")
		optional.Use(middleware.TryAuthMiddleware(cfg))
		{
			optional.GET("/feed", c.feed.GetFeed)
			optional.GET("/events", c.event.ListEvents)
			optional.GET("/events/:id", c.event.GetEvent)
			optional.GET("/events/:id/groups", c.event.ListEventGroups)
			optional.GET("/groups/:id", c.group.GetGroup)
			optional.GET("/groups/:id/members", c.group.ListMembers)
			optional.GET("/posts", c.post.ListPosts)
			optional.GET("/users/:id", c.user.GetUser)
		}
	}
}

func (a *App) registerUserRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/auth/me", c.auth.GetProfile)
	api.PUT("/auth/me", c.auth.UpdateProfile)

	events := api.Group("/events")
	{
		events.POST("", c.event.CreateEvent)
		events.PUT("/:id", c.event.UpdateEvent)
		events.PATCH("/:id/status", c.event.UpdateEventStatus)
		events.DELETE("/:id", c.event.DeleteEvent)
	}

	groups := api.Group("/groups")
	{
		groups.POST("", c.group.CreateGroup)
		groups.PUT("/:id", c.group.UpdateGroup)
		groups.PATCH("/:id/status", c.group.UpdateGroupStatus)
		groups.DELETE("/:id", c.group.DeleteGroup)
		groups.POST("/:id/join", c.group.JoinGroup)
		groups.POST("/:id/leave", c.group.LeaveGroup)
		groups.PATCH("/:id/members/:memberId", c.group.DecideMember)
	}

	messages := api.Group("/messages")
	{
		messages.GET("", c.message.ListMessages)
		messages.POST("", c.message.SendMessage)
		messages.GET("/conversations", c.message.ListConversations)
		messages.POST("/read", c.message.MarkRead)
	}

	posts := api.Group("/posts")
	{
		posts.POST("", c.post.CreatePost)
		posts.PUT("/:id", c.post.UpdatePost)
		posts.DELETE("/:id", c.post.DeletePost)
		posts.POST("/:id/reactions", c.post.React)
		posts.POST("/:id/comments", c.post.Comment)
	}
	api.DELETE("/comments/:commentId", c.post.DeleteComment)

	api.POST("/upload", c.upload.Upload)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.RoleMiddleware(model.RoleAdmin),
		middleware.ActivityMiddleware(repos.user),
	)
	{
		admin.GET("/users", c.admin.ListUsers)
		admin.DELETE("/users/:id", c.admin.DeleteUser)
		admin.GET("/events", c.admin.ListEvents)
		admin.PATCH("/events/:id/status", c.admin.UpdateEventStatus)
		admin.DELETE("/events/:id", c.admin.DeleteEvent)
		admin.GET("/groups", c.admin.ListGroups)
		admin.DELETE("/groups/:id", c.admin.DeleteGroup)
		admin.GET("/posts", c.admin.ListPosts)
		admin.DELETE("/posts/:id", c.admin.DeletePost)
	}
}
