package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/medipoint/survey-server/controllers"
	"github.com/medipoint/survey-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthJWT())
		{
			protected.GET("/me", controllers.Me)
		}

		// Client side: survey authoring, analytics, export.
		surveys := api.Group("/surveys")
		surveys.Use(middleware.AuthJWT())
		{
			client := surveys.Group("")
			client.Use(middleware.RequireClient())
			{
				client.POST("", middleware.RateLimitSurveyCreate(), controllers.CreateSurvey)
				client.GET("/my", controllers.GetMySurveys)

				owned := client.Group("/:id")
				owned.Use(middleware.CheckSurveyOwner())
				{
					owned.PUT("/status", controllers.ChangeSurveyStatus)
					owned.POST("/questions", controllers.AddQuestion)
					owned.PUT("/questions/reorder", controllers.ReorderQuestions)
					owned.PUT("/questions/:question_id", controllers.UpdateQuestion)
					owned.DELETE("/questions/:question_id", controllers.DeleteQuestion)
					owned.GET("/analytics", controllers.GetSurveyAnalytics)
					owned.POST("/export", controllers.CreateExport)
				}
			}

			surveys.GET("/:id", controllers.GetSurveyDetail)

			// Doctor side: taking surveys.
			taking := surveys.Group("/:id/responses")
			taking.Use(middleware.RequireDoctor())
			{
				taking.POST("/start", controllers.StartResponse)
				taking.POST("", middleware.RateLimitSubmission(), controllers.SubmitResponse)
			}
		}

		doctor := api.Group("/doctor")
		doctor.Use(middleware.AuthJWT(), middleware.RequireDoctor())
		{
			doctor.GET("/surveys", controllers.GetEligibleSurveys)
			doctor.GET("/surveys/completed", controllers.GetCompletedSurveys)
			doctor.GET("/points", controllers.GetPointsBalance)
			doctor.POST("/redemptions", controllers.RequestRedemption)
			doctor.GET("/redemptions", controllers.ListRedemptions)
		}

		api.GET("/exports/:job_id", middleware.AuthJWT(), controllers.GetExport)
	}
}
