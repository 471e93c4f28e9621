package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/planupp/planupp/config"
	"github.com/planupp/planupp/internal/auth"
	"github.com/planupp/planupp/internal/chat"
	"github.com/planupp/planupp/internal/event"
	"github.com/planupp/planupp/internal/report"
	"github.com/planupp/planupp/internal/user"
)

// SetupRoutes wires every domain's routes onto a gin engine.
func SetupRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	appConfig := config.GetConfig()
	db := config.DB
	rdb := config.Redis

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "planupp"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	auth.RegisterAuthRoutes(api, db, appConfig)
	user.UserRoutes(api, db, appConfig.JWT.AccessTokenSecret)

	// Chat first: event creation provisions rooms through the membership
	// service, and moderation sweeps banned users out of their rooms.
	membership := chat.ChatRoutes(api, db, rdb, appConfig)
	event.EventRoutes(api, db, rdb, appConfig, membership)
	report.ReportRoutes(api, db, rdb, appConfig, membership)

	return r
}
