package app

import (
	"time"

	"learning_copilot_backend/docs"
	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/middleware"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	defaultTimeout := time.Duration(cfg.Timeout.DefaultSeconds) * time.Second
	planTimeout := time.Duration(cfg.Timeout.PlanCreationSeconds) * time.Second

	public := router.Group("/api")
	public.Use(middleware.Timeout(defaultTimeout))
	{
		public.GET("/health", c.health.Health)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(), middleware.ActivityMiddleware(repos.user))
	{
		std := authGroup.Group("")
		std.Use(middleware.Timeout(defaultTimeout))
		{
			std.GET("/profile", c.auth.Profile)
			std.PUT("/user/profile", c.user.UpdateProfile)
			std.GET("/user/events", c.user.Events)

			std.GET("/content/search", c.content.Search)
			std.GET("/content/:contentId", c.content.GetByID)

			std.GET("/learning-plans", c.plan.List)
			std.GET("/learning-plans/:planId", c.plan.Get)
			std.DELETE("/learning-plans/:planId", c.plan.Delete)
			std.PUT("/learning-plans/:planId/activities/:activityId", c.plan.UpdateActivity)

			std.POST("/learning-plans/async", c.plan.CreateAsync)
			std.GET("/tasks", c.task.List)
			std.GET("/tasks/status/:taskId", c.task.Status)

			std.POST("/qa/ask", c.qa.Ask)
		}

		// Synchronous generation holds the request for the whole pipeline,
		// so it gets the long deadline.
		slow := authGroup.Group("")
		slow.Use(middleware.Timeout(planTimeout))
		{
			slow.POST("/learning-plans", c.plan.Create)
		}

		staff := authGroup.Group("")
		staff.Use(middleware.RoleMiddleware(model.Teacher, model.Admin), middleware.Timeout(planTimeout))
		{
			staff.POST("/reports/synthesize", c.report.Synthesize)
			staff.GET("/reports", c.report.List)
		}
	}
}
