package report

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/planupp/planupp/internal/middleware"
	"github.com/planupp/planupp/internal/user"
	"github.com/planupp/planupp/pkg/responses"
)

// ReportController handles report and moderation HTTP requests
type ReportController struct {
	repo       ReportRepository
	users      user.UserRepository
	moderation *Moderation
}

// NewReportController creates a new report controller
func NewReportController(repo ReportRepository, users user.UserRepository, moderation *Moderation) *ReportController {
	return &ReportController{repo: repo, users: users, moderation: moderation}
}

// profileSummary is the slice of a user profile shown on the admin
// report list.
type profileSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic"`
	Tier       string `json:"tier"`
	Bans       int    `json:"bans"`
}

type reportListItem struct {
	Report
	Reporter *profileSummary `json:"reporter,omitempty"`
	Reported *profileSummary `json:"reported,omitempty"`
}

// withProfiles decorates reports with reporter/reported summaries. A
// failed lookup degrades to bare reports rather than failing the list.
func (rc *ReportController) withProfiles(reports []Report) []reportListItem {
	ids := make([]string, 0, len(reports)*2)
	seen := make(map[string]bool)
	for _, r := range reports {
		for _, id := range []string{r.ReporterID, r.ReportedID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	byID := make(map[string]*profileSummary, len(ids))
	if len(ids) > 0 {
		users, err := rc.users.GetUsersByIDs(ids)
		if err != nil {
			log.Printf("report list: profile lookup failed: %v", err)
		}
		for i := range users {
			u := &users[i]
			byID[u.ID] = &profileSummary{ID: u.ID, Name: u.Name, ProfilePic: u.ProfilePic, Tier: u.Tier, Bans: u.Bans}
		}
	}

	items := make([]reportListItem, len(reports))
	for i, r := range reports {
		items[i] = reportListItem{
			Report:   r,
			Reporter: byID[r.ReporterID],
			Reported: byID[r.ReportedID],
		}
	}
	return items
}

// FileReportRequest defines the request payload for filing a report
type FileReportRequest struct {
	ReportedID string `json:"reported_id" binding:"required,uuid"`
	Text       string `json:"text" binding:"required"`
	Image      string `json:"image"`
}

// FileReport godoc
// @Summary File a report
// @Description Files a complaint against another user
// @Tags reports
// @Accept json
// @Produce json
// @Param report body FileReportRequest true "Report details"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /reports [post]
func (rc *ReportController) FileReport(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "Authentication required")
		return
	}

	var req FileReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}

	report, err := rc.moderation.FileReport(userID, req.ReportedID, req.Text, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfReport), errors.Is(err, ErrEmptyReport):
			responses.BadRequest(c, err.Error())
		case errors.Is(err, ErrUserNotFound):
			responses.NotFound(c, "User")
		default:
			log.Printf("file report: %v", err)
			responses.InternalServerError(c, "Failed to file report")
		}
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Report filed", report)
}

// ListReports godoc
// @Summary List reports
// @Description Lists reports newest first, optionally filtered by status (admin only)
// @Tags reports
// @Produce json
// @Param status query string false "Status filter" Enums(PENDING, BANNED, IGNORED)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} responses.PaginatedResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /reports [get]
func (rc *ReportController) ListReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	status := c.Query("status")
	switch status {
	case "", StatusPending, StatusBanned, StatusIgnored:
	default:
		responses.BadRequest(c, "Invalid status filter")
		return
	}

	reports, total, err := rc.repo.ListReports(status, page, limit)
	if err != nil {
		log.Printf("list reports: %v", err)
		responses.InternalServerError(c, "Failed to fetch reports")
		return
	}

	responses.SendPaginated(c, http.StatusOK, "Reports fetched", rc.withProfiles(reports), total, page, limit)
}

// GetReport godoc
// @Summary Get a report
// @Description Fetches a single report (admin only)
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /reports/{id} [get]
func (rc *ReportController) GetReport(c *gin.Context) {
	report, err := rc.repo.GetReportByID(c.Param("id"))
	if err != nil {
		log.Printf("get report %s: %v", c.Param("id"), err)
		responses.InternalServerError(c, "Failed to fetch report")
		return
	}
	if report == nil {
		responses.NotFound(c, "Report")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Report fetched", report)
}

// BanUser godoc
// @Summary Resolve a report with a ban
// @Description Bans the reported user and marks the report BANNED (admin only)
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /reports/{id}/ban [patch]
func (rc *ReportController) BanUser(c *gin.Context) {
	result, err := rc.moderation.BanUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrReportNotFound):
			responses.NotFound(c, "Report")
		case errors.Is(err, ErrAlreadyResolved):
			responses.Conflict(c, err.Error())
		default:
			log.Printf("ban via report %s: %v", c.Param("id"), err)
			responses.InternalServerError(c, "Failed to resolve report")
		}
		return
	}

	responses.SendSuccess(c, http.StatusOK, "User banned", result)
}

// IgnoreReport godoc
// @Summary Resolve a report without penalty
// @Description Marks the report IGNORED (admin only)
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /reports/{id}/ignore [patch]
func (rc *ReportController) IgnoreReport(c *gin.Context) {
	report, err := rc.moderation.IgnoreReport(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrReportNotFound):
			responses.NotFound(c, "Report")
		case errors.Is(err, ErrAlreadyResolved):
			responses.Conflict(c, err.Error())
		default:
			log.Printf("ignore report %s: %v", c.Param("id"), err)
			responses.InternalServerError(c, "Failed to resolve report")
		}
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Report ignored", report)
}
