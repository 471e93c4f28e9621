package report

import (
	"github.com/gin-gonic/gin"
	"github.com/planupp/planupp/config"
	"github.com/planupp/planupp/internal/chat"
	mw "github.com/planupp/planupp/internal/middleware"
	"github.com/planupp/planupp/internal/user"
	"github.com/planupp/planupp/pkg/bancache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ReportRoutes sets up report filing and moderation routes.
func ReportRoutes(router *gin.RouterGroup, db *gorm.DB, rdb *redis.Client, appConfig *config.Config, membership *chat.Membership) {
	repo := NewReportRepository(db)
	userRepo := user.NewUserRepository(db)
	bans := bancache.New(rdb)
	moderation := NewModeration(repo, userRepo, membership, bans)
	controller := NewReportController(repo, userRepo, moderation)

	reports := router.Group("/reports")
	reports.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		reports.POST("", mw.BanGuard(bans.IsBanned), controller.FileReport)

		admin := reports.Group("")
		admin.Use(mw.AdminMiddleware(appConfig.IsAdmin))
		{
			admin.GET("", controller.ListReports)
			admin.GET("/:id", controller.GetReport)
			admin.PATCH("/:id/ban", controller.BanUser)
			admin.PATCH("/:id/ignore", controller.IgnoreReport)
		}
	}
}
