// User HTTP handlers: the user directory and the caller's own profile.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/services"
)

// UserListResponse wraps the user directory.
type UserListResponse struct {
	Users []domain.User `json:"users"`
}

// UpdateProfileRequest carries optional profile changes. Omitted fields are
// left alone; present text fields must not be empty.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName,omitempty" binding:"omitempty,min=1,max=34" example:"Alice L."`
	AboutMe  *string `json:"aboutMe,omitempty"  binding:"omitempty,min=1,max=255" example:"Down the rabbit hole."`
	Avatar   *string `json:"avatar,omitempty"   binding:"omitempty,max=512" example:"https://example.com/a.png"`
}

// ProfileResponse wraps a profile.
type ProfileResponse struct {
	Profile *domain.Profile `json:"profile"`
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Description Returns every registered user except the caller, each with profile, ordered by username.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} handlers.UserListResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /userlist [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	id, found := caller(c)
	if !found {
		return
	}
	users, err := h.chatSvc.ListUsers(c.Request.Context(), id.UserID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, UserListResponse{Users: users})
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update the caller's profile
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpdateProfileRequest  true  "Fields to change"
//
// @Success     200  {object} handlers.ProfileResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	id, found := caller(c)
	if !found {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	p, err := h.profileSvc.UpdateProfile(c.Request.Context(), id.UserID, services.ProfileInput{
		FullName: req.FullName,
		AboutMe:  req.AboutMe,
		Avatar:   req.Avatar,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ProfileResponse{Profile: p})
}
