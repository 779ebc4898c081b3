// Account HTTP handlers.
//
// This file exposes the public (unauthenticated) endpoints:
//   - POST /register   (create an account and its profile)
//   - POST /login      (exchange credentials for a bearer token)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/services"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30" example:"alice"`
	// Password is capped at 72 bytes, the bcrypt input limit.
	Password string `json:"password" binding:"required,min=6,max=72" example:"s3cret-pass"`
	FullName string `json:"fullName" binding:"required,min=1,max=34" example:"Alice Liddell"`
	// AboutMe is optional; when present it must not be empty.
	AboutMe *string `json:"aboutMe,omitempty" binding:"omitempty,min=1,max=255" example:"Curious."`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30" example:"alice"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"s3cret-pass"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"Account created successfully"`
}

// LoginResponse carries the bearer token and the caller's public profile.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Profile   *domain.User `json:"profile"`
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Creates a user and its profile atomically. aboutMe defaults to a placeholder text.
// @Tags        Accounts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     409  {object}  handlers.ErrorResponse  "Username already taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	_, err := h.authSvc.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		AboutMe:  req.AboutMe,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Account created successfully"})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies the credentials and returns a signed bearer token valid for 30 days.
// @Description Unknown users and wrong passwords get the same answer.
// @Tags        Accounts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Incorrect username or password"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	sess, err := h.authSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		Profile:   sess.User,
	})
}
