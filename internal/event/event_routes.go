package event

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

// membershipProvisioner adapts the chat membership service to the
// lifecycle's RoomProvisioner interface.
type membershipProvisioner struct {
	membership *chat.Membership
}

func (p *membershipProvisioner) ProvisionRoom(eventID uint, name, image string, limit int, creatorID string) (string, error) {
	room, err := p.membership.CreateRoomForEvent(eventID, name, image, limit, creatorID)
	if err != nil {
		return "", err
	}
	return room.ID, nil
}

// EventRoutes sets up all event routes.
func EventRoutes(router *gin.RouterGroup, db *gorm.DB, rdb *redis.Client, appConfig *config.Config, membership *chat.Membership) *Lifecycle {
	repo := NewEventRepository(db)
	userRepo := user.NewUserRepository(db)
	chatRepo := chat.NewChatRepository(db)
	lifecycle := NewLifecycle(repo, userRepo, &membershipProvisioner{membership: membership})
	controller := NewEventController(repo, chatRepo, lifecycle)

	events := router.Group("/events")
	events.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		events.POST("", mw.BanGuard(bancache.New(rdb).IsBanned), controller.CreateEvent)
		events.GET("", controller.GetEvents)
		events.GET("/search", controller.SearchEvents)
		events.GET("/mine", controller.GetMyEvents)
		events.GET("/:id", controller.GetEvent)
		events.PATCH("/:id/admit", mw.AdminMiddleware(appConfig.IsAdmin), controller.AdmitEvent)
	}

	return lifecycle
}
