package event

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/planupp/planupp/internal/chat"
	"github.com/planupp/planupp/internal/middleware"
	"github.com/planupp/planupp/pkg/responses"
)

// EventController handles event-related HTTP requests
type EventController struct {
	repo      EventRepository
	chatRepo  chat.ChatRepository
	lifecycle *Lifecycle
}

// NewEventController creates a new event controller
func NewEventController(repo EventRepository, chatRepo chat.ChatRepository, lifecycle *Lifecycle) *EventController {
	return &EventController{repo: repo, chatRepo: chatRepo, lifecycle: lifecycle}
}

// CreateEventRequest defines the request payload for creating an event
type CreateEventRequest struct {
	Sport             string `json:"sport" binding:"required"`
	Location          string `json:"location" binding:"required"`
	EventDate         string `json:"event_date" binding:"required"`
	StartTime         string `json:"start_time" binding:"required"`
	EndTime           string `json:"end_time" binding:"required"`
	Description       string `json:"description"`
	Screenshot        string `json:"screenshot"`
	TotalParticipants int    `json:"total_participants" binding:"required,min=2"`
}

// EventResponse pairs an event with its companion chat room, when one
// exists.
type EventResponse struct {
	Event  *Event `json:"event"`
	ChatID string `json:"chat_id,omitempty"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event and provisions its companion chat room
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event details"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /events [post]
func (ec *EventController) CreateEvent(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}

	event, roomID, err := ec.lifecycle.CreateEvent(CreateEventInput{
		Sport:             req.Sport,
		Location:          req.Location,
		EventDate:         req.EventDate,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Description:       req.Description,
		Screenshot:        req.Screenshot,
		TotalParticipants: req.TotalParticipants,
	}, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields),
			errors.Is(err, ErrTooFewParticipants),
			errors.Is(err, ErrBadTimeRange),
			errors.Is(err, ErrBadDate):
			responses.BadRequest(c, err.Error())
		default:
			log.Printf("create event: %v", err)
			responses.InternalServerError(c, "Failed to create event")
		}
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Event created", EventResponse{Event: event, ChatID: roomID})
}

// GetEvents godoc
// @Summary List events
// @Description Lists admitted events, optionally filtered by sport, location and date
// @Tags events
// @Produce json
// @Param sport query string false "Sport filter"
// @Param location query string false "Location filter"
// @Param date query string false "Event date filter (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} responses.PaginatedResponse
// @Security BearerAuth
// @Router /events [get]
func (ec *EventController) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := EventFilter{
		Sport:     c.Query("sport"),
		Location:  c.Query("location"),
		EventDate: c.Query("date"),
		Status:    StatusAdmitted,
	}

	events, total, err := ec.repo.ListEvents(filter, page, limit)
	if err != nil {
		log.Printf("list events: %v", err)
		responses.InternalServerError(c, "Failed to fetch events")
		return
	}

	responses.SendPaginated(c, http.StatusOK, "Events fetched", events, total, page, limit)
}

// GetEvent godoc
// @Summary Get an event
// @Description Fetches a single event with its companion chat room ID
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /events/{id} [get]
func (ec *EventController) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid event ID")
		return
	}

	event, err := ec.repo.GetEventByID(uint(id))
	if err != nil {
		log.Printf("get event %d: %v", id, err)
		responses.InternalServerError(c, "Failed to fetch event")
		return
	}
	if event == nil {
		responses.NotFound(c, "Event")
		return
	}

	resp := EventResponse{Event: event}
	if room, err := ec.chatRepo.GetRoomByEventID(event.ID); err != nil {
		log.Printf("get event %d: room lookup failed: %v", id, err)
	} else if room != nil {
		resp.ChatID = room.ID
	}

	responses.SendSuccess(c, http.StatusOK, "Event fetched", resp)
}

// SearchEvents godoc
// @Summary Search events
// @Description Searches events by sport, location or description
// @Tags events
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} responses.PaginatedResponse
// @Security BearerAuth
// @Router /events/search [get]
func (ec *EventController) SearchEvents(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		responses.BadRequest(c, "Search query is required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	events, total, err := ec.repo.SearchEvents(query, page, limit)
	if err != nil {
		log.Printf("search events: %v", err)
		responses.InternalServerError(c, "Failed to search events")
		return
	}

	responses.SendPaginated(c, http.StatusOK, "Events fetched", events, total, page, limit)
}

// GetMyEvents godoc
// @Summary List the caller's events
// @Description Lists events created by the authenticated user
// @Tags events
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /events/mine [get]
func (ec *EventController) GetMyEvents(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "Authentication required")
		return
	}

	events, err := ec.repo.GetEventsByCreator(userID)
	if err != nil {
		log.Printf("get events for %s: %v", userID, err)
		responses.InternalServerError(c, "Failed to fetch events")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Events fetched", events)
}

// AdmitEvent godoc
// @Summary Admit a pending event
// @Description Moves a held-back event into the public listing (admin only)
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /events/{id}/admit [patch]
func (ec *EventController) AdmitEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid event ID")
		return
	}

	if err := ec.lifecycle.AdmitEvent(uint(id)); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			responses.NotFound(c, "Event")
			return
		}
		log.Printf("admit event %d: %v", id, err)
		responses.InternalServerError(c, "Failed to admit event")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Event admitted", nil)
}
