package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kayra/examseat/internal/app/controllers"
	"github.com/kayra/examseat/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	examController *controllers.ExamController,
	seatController *controllers.SeatController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Everything else requires a valid token.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		exams := authenticated.Group("/exams")
		{
			exams.GET("", examController.ListExams)
			// Registering sessions is the admin's surface; teachers
			// work with seats inside registered sessions.
			exams.POST("", authMiddleware.RequireAdmin(), examController.RegisterExam)
			exams.GET("/details", examController.GetExamDetails)
		}

		seats := authenticated.Group("/seats")
		{
			seats.GET("", seatController.ListSeats)
			seats.POST("/batch", seatController.BatchSave)
			seats.POST("/manual", seatController.ManualPatch)
			seats.POST("/import", seatController.Import)
			seats.GET("/export", seatController.Export)
		}
	}
}
