package user

import (
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	mw "github.com/planupp/planupp/internal/middleware"
	"gorm.io/gorm"
)

func pqStringArray(tags []string) pq.StringArray {
	return pq.StringArray(tags)
}

// UserRoutes sets up all profile-related routes.
func UserRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewUserRepository(db)
	controller := NewUserController(repo)

	users := router.Group("/users")
	users.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		users.GET("/me", controller.GetMyProfile)
		users.PUT("/me", controller.UpdateProfile)
		users.GET("/:id", controller.GetUserByID)
	}
}
