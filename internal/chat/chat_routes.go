package chat

import (
	"github.com/gin-gonic/gin"
	"github.com/planupp/planupp/config"
	mw "github.com/planupp/planupp/internal/middleware"
	"github.com/planupp/planupp/pkg/bancache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ChatRoutes sets up all chat room and message routes.
func ChatRoutes(router *gin.RouterGroup, db *gorm.DB, rdb *redis.Client, appConfig *config.Config) *Membership {
	repo := NewChatRepository(db)
	membership := NewMembership(repo)
	controller := NewChatController(repo, membership, rdb)

	chats := router.Group("/chats")
	chats.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	chats.Use(mw.BanGuard(bancache.New(rdb).IsBanned))
	{
		chats.GET("", controller.GetMyChatRooms)
		chats.GET("/:id", controller.GetChatRoom)
		chats.POST("/:id/join", controller.Join)
		chats.POST("/:id/exit", controller.Exit)
		chats.GET("/:id/messages", controller.GetMessages)
		chats.POST("/:id/messages", controller.SendMessage)
		chats.GET("/:id/ws", controller.StreamMessages)

		// Room-admin operations; authorization is the members[0] check
		// inside the membership service, not a role middleware.
		chats.POST("/:id/members", controller.AddMember)
		chats.DELETE("/:id/members/:userId", controller.RemoveMember)
		chats.PUT("/:id/settings", controller.UpdateSettings)
		chats.PUT("/:id/name", controller.Rename)
		chats.DELETE("/:id", controller.DeleteRoom)
	}

	// The membership service is shared with the event and report wiring:
	// event creation provisions rooms, moderation sweeps banned users out.
	return membership
}
