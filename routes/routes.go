package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vetclinic-backend/controllers"
	"vetclinic-backend/services"
)

type Controllers struct {
	Auth        *controllers.AuthController
	Reservation *controllers.ReservationController
	SMS         *controllers.SMSController
}

func SetupRouter(ctrl Controllers, tokens *services.TokenService, log *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/google-login", ctrl.Auth.GoogleLogin)

		auth.Use(controllers.AuthMiddleware(tokens))
		auth.GET("/verify-token", ctrl.Auth.VerifyToken)
		auth.POST("/refresh-token", ctrl.Auth.RefreshToken)
	}

	api := r.Group("/api")
	api.Use(controllers.AuthMiddleware(tokens))
	{
		reservations := api.Group("/reservations")
		{
			reservations.POST("", ctrl.Reservation.Create)
			reservations.GET("", ctrl.Reservation.List)
			reservations.GET("/statistics", controllers.RequireAdmin(), ctrl.Reservation.Statistics)
			reservations.GET("/:id", ctrl.Reservation.Get)
			reservations.PUT("/:id", ctrl.Reservation.Update)
			reservations.DELETE("/:id", ctrl.Reservation.Delete)
			reservations.POST("/:id/reminder", controllers.RequireAdmin(), ctrl.Reservation.SendReminder)
		}

		sms := api.Group("/sms")
		{
			sms.POST("/send", controllers.RequireAdmin(), ctrl.SMS.Send)
			sms.POST("/send-bulk", controllers.RequireAdmin(), ctrl.SMS.SendBulk)
			sms.GET("/archive", ctrl.SMS.Archive)
			sms.GET("/statistics", controllers.RequireAdmin(), ctrl.SMS.Statistics)
		}
	}

	return r
}

func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
