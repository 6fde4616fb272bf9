package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/obraplan/obraplan/docs"
	"github.com/obraplan/obraplan/internal/config"
	"github.com/obraplan/obraplan/internal/middleware"
	"github.com/obraplan/obraplan/internal/modules/handler"
	"github.com/obraplan/obraplan/internal/modules/serializer"
	"github.com/obraplan/obraplan/internal/pkg/tokens"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config         *config.Config
	Log            *zap.Logger
	Issuer         *tokens.Issuer
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ProductHandler *handler.ProductHandler
	ProjectHandler *handler.ProjectHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	// Add OpenTelemetry middleware if enabled (using configuration system)
	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// ping endpoint
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.AuthHandler.Register)
			auth.POST("/login", d.AuthHandler.Login)
			auth.POST("/refresh", d.AuthHandler.Refresh)
			auth.POST("/logout", d.AuthHandler.Logout)

			auth.GET("/google", d.AuthHandler.GoogleLogin)
			auth.GET("/google/callback", d.AuthHandler.GoogleCallback)

			auth.POST("/forgot-password", d.AuthHandler.ForgotPassword)
			auth.POST("/reset-password", d.AuthHandler.ResetPassword)
		}

		secured := v1.Group("")
		secured.Use(middleware.UserAuth(d.Issuer))
		{
			users := secured.Group("/users")
			{
				users.GET("/me", d.UserHandler.Me)
				users.GET("/me/avatar", d.UserHandler.AvatarURL)
				users.POST("/me/avatar", d.UserHandler.UploadAvatar)
			}

			products := secured.Group("/products")
			{
				products.GET("", d.ProductHandler.ListProducts)
				products.POST("", d.ProductHandler.CreateProduct)
				products.DELETE("/:product_id", d.ProductHandler.DeleteProduct)
			}

			projects := secured.Group("/projects")
			{
				projects.GET("", d.ProjectHandler.ListProjects)
				projects.POST("", d.ProjectHandler.CreateProject)
				projects.GET("/:project_id", d.ProjectHandler.GetProject)
				projects.PATCH("/:project_id", d.ProjectHandler.UpdateProject)
				projects.DELETE("/:project_id", d.ProjectHandler.DeleteProject)

				projects.PATCH("/:project_id/schedules/:schedule_id", d.ProjectHandler.UpdateStepStatus)
			}
		}
	}

	return r
}
