package user

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planupp/planupp/internal/middleware"
	"github.com/planupp/planupp/pkg/responses"
	"github.com/planupp/planupp/pkg/validator"
)

// UserController handles profile-related HTTP requests
type UserController struct {
	repo UserRepository
}

// NewUserController creates a new user controller
func NewUserController(repo UserRepository) *UserController {
	return &UserController{repo: repo}
}

// UpdateProfileRequest defines the editable profile fields. ID and email
// are immutable after signup.
type UpdateProfileRequest struct {
	Name       *string  `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Bio        *string  `json:"bio,omitempty" binding:"omitempty,max=500"`
	Hashtags   []string `json:"hashtags,omitempty"`
	ProfilePic *string  `json:"profile_pic,omitempty"`
}

// @Summary      Get my profile
// @Tags         Users
// @Produce      json
// @Success      200 {object} responses.SuccessResponse
// @Failure      401 {object} responses.ErrorResponse
// @Router       /users/me [get]
func (uc *UserController) GetMyProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	uc.renderProfile(c, userID)
}

// @Summary      Get a user's public profile
// @Tags         Users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      404 {object} responses.ErrorResponse
// @Router       /users/{id} [get]
func (uc *UserController) GetUserByID(c *gin.Context) {
	uc.renderProfile(c, c.Param("id"))
}

// renderProfile fetches the user, refreshes the derived tier if it has
// drifted from the created-event count, and writes the profile response.
// The recompute is idempotent so it is safe on every profile view.
func (uc *UserController) renderProfile(c *gin.Context, userID string) {
	u, err := uc.repo.GetUserByID(userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch user profile")
		return
	}
	if u == nil {
		responses.NotFound(c, "User")
		return
	}

	if tier := TierForEventCount(len(u.CreatedEvents)); tier != u.Tier {
		if err := uc.repo.UpdateTier(u.ID, tier); err != nil {
			// The stale tier is still served; the next view retries.
			log.Printf("failed to update tier for user %s: %v", u.ID, err)
		} else {
			u.Tier = tier
		}
	}

	responses.SendSuccess(c, http.StatusOK, "", u)
}

// @Summary      Update my profile
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        profile body UpdateProfileRequest true "Profile updates"
// @Success      200 {object} responses.SuccessResponse
// @Failure      400 {object} responses.ErrorResponse
// @Router       /users/me [put]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validator.ParseError(err)})
		return
	}

	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Bio != nil {
		patch["bio"] = *req.Bio
	}
	if req.Hashtags != nil {
		patch["hashtags"] = pqStringArray(req.Hashtags)
	}
	if req.ProfilePic != nil {
		patch["profile_pic"] = *req.ProfilePic
	}
	if len(patch) == 0 {
		responses.BadRequest(c, "No profile fields to update")
		return
	}

	updated, err := uc.repo.UpdateProfile(userID, patch)
	if err != nil {
		responses.InternalServerError(c, "Failed to update profile")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile updated", updated)
}
