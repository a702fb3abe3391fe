package routes

import (
	"investcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupParticipantRoutes sets up all routes related to participant management
func SetupParticipantRoutes(r *gin.Engine) {
	participant := r.Group("/participants")
	{
		participant.GET("", handlers.ListParticipants)
		participant.GET("/:id", handlers.GetParticipant)
		participant.POST("", handlers.CreateParticipant)
		participant.PATCH("/:id", handlers.UpdateParticipant)
	}
}
