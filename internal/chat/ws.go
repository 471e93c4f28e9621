package chat

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/planupp/planupp/internal/middleware"
	"github.com/planupp/planupp/pkg/responses"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict to the configured frontend origin before exposing
	// the websocket endpoint publicly.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamMessages upgrades the connection to a websocket and forwards the
// room's Redis channel to the client until either side disconnects.
// Messages are persisted by the POST handler before they reach Redis, so
// this stream is read-only.
//
// @Summary      Stream messages over websocket
// @Tags         Chats
// @Param        id path string true "Chat room ID"
// @Success      101 {string} string "Switching Protocols"
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/ws [get]
func (cc *ChatController) StreamMessages(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	room, err := cc.repo.GetRoomByID(c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch chat room")
		return
	}
	if room == nil {
		responses.NotFound(c, "Chat room")
		return
	}
	if !room.HasMember(userID) {
		responses.Forbidden(c, "Only members can stream this chat room")
		return
	}
	if cc.redis == nil {
		responses.InternalServerError(c, "Live messaging is not available")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		responses.InternalServerError(c, "Failed to upgrade connection")
		return
	}

	pubsub := cc.redis.Subscribe(c.Request.Context(), messageChannel(room.ID))

	// Drain the client so pings and close frames are processed; a read
	// error means the client went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer pubsub.Close()
		defer conn.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					log.Printf("websocket write to user %s in room %s failed: %v", userID, room.ID, err)
					return
				}
			case <-done:
				return
			}
		}
	}()
}
