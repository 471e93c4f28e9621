package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planupp/planupp/internal/middleware"
	"github.com/planupp/planupp/pkg/responses"
	"github.com/planupp/planupp/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// ChatController handles chat room and message HTTP requests
type ChatController struct {
	repo       ChatRepository
	membership *Membership
	redis      *redis.Client
}

// NewChatController creates a new chat controller
func NewChatController(repo ChatRepository, membership *Membership, rdb *redis.Client) *ChatController {
	return &ChatController{
		repo:       repo,
		membership: membership,
		redis:      rdb,
	}
}

// messageChannel is the Redis pub/sub channel for a room's live messages.
func messageChannel(chatID string) string {
	return "chat:" + chatID
}

// publishMessage fans a stored message out to websocket subscribers.
// Fanout is best effort; the message is already persisted.
func (cc *ChatController) publishMessage(msg *Message) {
	if cc.redis == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal message %d for fanout: %v", msg.ID, err)
		return
	}
	if err := cc.redis.Publish(context.Background(), messageChannel(msg.ChatID), payload).Err(); err != nil {
		log.Printf("failed to publish message %d to %s: %v", msg.ID, messageChannel(msg.ChatID), err)
	}
}

// respondMembershipError maps the membership error taxonomy onto HTTP.
// ErrAlreadyMember and ErrNotAMember are idempotent no-ops surfaced as
// soft success with the current room state.
func respondMembershipError(c *gin.Context, err error, room *Chat) {
	switch {
	case errors.Is(err, ErrAlreadyMember):
		responses.SendSuccess(c, http.StatusOK, "Already a member of this chat room", room)
	case errors.Is(err, ErrNotAMember):
		responses.SendSuccess(c, http.StatusOK, "Not a member of this chat room, nothing to do", room)
	case errors.Is(err, ErrRoomNotFound):
		responses.NotFound(c, "Chat room")
	case errors.Is(err, ErrNotAuthorized):
		responses.Forbidden(c, err.Error())
	case errors.Is(err, ErrCannotRemoveAdmin), errors.Is(err, ErrAdminCannotExit):
		responses.Forbidden(c, err.Error())
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidLimit):
		responses.BadRequest(c, err.Error())
	default:
		responses.InternalServerError(c, "Chat operation failed")
	}
}

// --- DTOs ---

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateSettingsRequest struct {
	ChatLimit   *int    `json:"chat_limit,omitempty" binding:"omitempty,min=2"`
	PublicSlots *int    `json:"public_slots,omitempty" binding:"omitempty,min=0"`
	FriendSlots *int    `json:"friend_slots,omitempty" binding:"omitempty,min=0"`
	Image       *string `json:"image,omitempty"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// @Summary      List my chat rooms
// @Tags         Chats
// @Produce      json
// @Success      200 {object} responses.SuccessResponse
// @Router       /chats [get]
func (cc *ChatController) GetMyChatRooms(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	rooms, err := cc.repo.GetRoomsForUser(userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch chat rooms")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", rooms)
}

// @Summary      Get a chat room
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Router       /chats/{id} [get]
func (cc *ChatController) GetChatRoom(c *gin.Context) {
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
		responses.Forbidden(c, "Only members can view this chat room")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", room)
}

// @Summary      Join a chat room
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Router       /chats/{id}/join [post]
func (cc *ChatController) Join(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	room, err := cc.membership.Join(c.Param("id"), userID)
	if err != nil {
		respondMembershipError(c, err, room)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Joined chat room", room)
}

// @Summary      Add a member (admin)
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Param        member body AddMemberRequest true "Member to add"
// @Success      200 {object} responses.SuccessResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/members [post]
func (cc *ChatController) AddMember(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	room, err := cc.membership.AdminAdd(c.Param("id"), adminID, req.UserID)
	if err != nil {
		respondMembershipError(c, err, room)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member added", room)
}

// @Summary      Remove a member (admin)
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Param        userId path string true "User ID to remove"
// @Success      200 {object} responses.SuccessResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/members/{userId} [delete]
func (cc *ChatController) RemoveMember(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	room, err := cc.membership.AdminRemove(c.Param("id"), adminID, c.Param("userId"))
	if err != nil {
		respondMembershipError(c, err, room)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member removed", room)
}

// @Summary      Exit a chat room
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/exit [post]
func (cc *ChatController) Exit(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	room, err := cc.membership.SelfExit(c.Param("id"), userID)
	if err != nil {
		respondMembershipError(c, err, room)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Exited chat room", room)
}

// @Summary      Update room settings (admin)
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Param        settings body UpdateSettingsRequest true "Settings patch"
// @Success      200 {object} responses.SuccessResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/settings [put]
func (cc *ChatController) UpdateSettings(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	room, err := cc.membership.UpdateSettings(c.Param("id"), adminID, SettingsPatch{
		ChatLimit:   req.ChatLimit,
		PublicSlots: req.PublicSlots,
		FriendSlots: req.FriendSlots,
		Image:       req.Image,
	})
	if err != nil {
		respondMembershipError(c, err, room)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Settings updated", room)
}

// @Summary      Rename a chat room (admin)
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Param        name body RenameRequest true "New name"
// @Success      200 {object} responses.SuccessResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/name [put]
func (cc *ChatController) Rename(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	room, err := cc.membership.Rename(c.Param("id"), adminID, req.Name)
	if err != nil {
		respondMembershipError(c, err, room)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Chat room renamed", room)
}

// @Summary      Delete a chat room (admin)
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id} [delete]
func (cc *ChatController) DeleteRoom(c *gin.Context) {
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	if err := cc.membership.DeleteRoom(c.Param("id"), adminID); err != nil {
		respondMembershipError(c, err, nil)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Chat room deleted", nil)
}

// @Summary      List messages
// @Tags         Chats
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/messages [get]
func (cc *ChatController) GetMessages(c *gin.Context) {
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
		responses.Forbidden(c, "Only members can read this chat room")
		return
	}

	messages, err := cc.repo.GetMessages(room.ID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch messages")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", messages)
}

// @Summary      Send a message
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        id path string true "Chat room ID"
// @Param        message body SendMessageRequest true "Message"
// @Success      201 {object} responses.SuccessResponse
// @Failure      403 {object} responses.ErrorResponse
// @Router       /chats/{id}/messages [post]
func (cc *ChatController) SendMessage(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
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
		responses.Forbidden(c, "Only members can send messages")
		return
	}

	msg := &Message{
		ChatID:   room.ID,
		SenderID: userID,
		Text:     req.Text,
	}
	if err := cc.repo.CreateMessage(msg); err != nil {
		responses.InternalServerError(c, "Failed to send message")
		return
	}

	// Any member's message counts as room activity.
	if err := cc.repo.TouchLastActive(room.ID); err != nil {
		log.Printf("failed to bump last_active for room %s: %v", room.ID, err)
	}

	cc.publishMessage(msg)
	responses.SendSuccess(c, http.StatusCreated, "Message sent", msg)
}
