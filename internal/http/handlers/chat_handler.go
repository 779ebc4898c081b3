// Chat HTTP handlers.
//
// This file exposes the read side of the chat API:
//   - GET /chatlist        (caller's chats with their last message, ETag support)
//   - GET /chat/{chatId}   (one chat with participants and all messages)
//
// It also declares the service contracts and the Handlers type shared by
// every handler file. Handlers are transport-thin: they validate input, call
// application services, and translate results into HTTP responses (including
// conditional responses).
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-direct-chat/internal/auth"
	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/http/middleware"
	"github.com/tbourn/go-direct-chat/internal/services"
	"github.com/tbourn/go-direct-chat/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*services.Session, error)
}

// ChatService defines the directory, chat and message operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts. Every method taking a
// chat id performs the membership check itself.
type ChatService interface {
	// ListUsers returns every user except callerID.
	ListUsers(ctx context.Context, callerID uint) ([]domain.User, error)
	// ListChats returns the caller's chats, most recently active first.
	ListChats(ctx context.Context, userID uint) ([]domain.Chat, error)
	// ListVersion returns a cheap fingerprint of ListChats' result.
	ListVersion(ctx context.Context, userID uint) (string, error)
	// GetChat returns a full chat the caller participates in.
	GetChat(ctx context.Context, userID, chatID uint) (*domain.Chat, error)
	// ChatVersion returns a cheap fingerprint of GetChat's result.
	ChatVersion(ctx context.Context, userID, chatID uint) (string, error)
	// StartDirectChat appends to, or creates, the chat between two users.
	StartDirectChat(ctx context.Context, senderID, recipientID uint, text string) (*domain.Message, error)
	// PostMessage appends a message to a chat the sender participates in.
	PostMessage(ctx context.Context, senderID, chatID uint, text string) (*domain.Message, error)
}

// ProfileService edits the caller's own profile.
type ProfileService interface {
	UpdateProfile(ctx context.Context, userID uint, in services.ProfileInput) (*domain.Profile, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for accounts, the user directory, chats,
// messages and profiles. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	authSvc    AuthService
	chatSvc    ChatService
	profileSvc ProfileService
}

// New constructs a Handlers instance bound to the given services.
func New(authSvc AuthService, chatSvc ChatService, profileSvc ProfileService) *Handlers {
	return &Handlers{authSvc: authSvc, chatSvc: chatSvc, profileSvc: profileSvc}
}

// caller returns the authenticated identity, or aborts with 401 when the
// route was mounted without RequireToken.
func caller(c *gin.Context) (auth.Identity, bool) {
	id, found := middleware.IdentityFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return auth.Identity{}, false
	}
	return id, true
}

// pathID parses a numeric path parameter or aborts with 400.
func pathID(c *gin.Context, name, what string) (uint, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, what+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func weakETag(version string) string { return `W/"` + version + `"` }

// etagMatches applies the weak comparison of If-None-Match against etag.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

//
// DTOs
//

// ChatListResponse wraps the caller's chats.
type ChatListResponse struct {
	Chats []domain.Chat `json:"chats"`
}

// ChatResponse wraps a single chat.
type ChatResponse struct {
	Chat *domain.Chat `json:"chat"`
}

//
// Handlers
//

// ListChats godoc
// @ID          listChats
// @Summary     List the caller's chats
// @Description Returns every chat the caller participates in, each with its participants and only its latest message,
// @Description most recently active first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"chats:1:3:1700000000\")
//
// @Success     200  {object} handlers.ChatListResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chatlist [get]
func (h *Handlers) ListChats(c *gin.Context) {
	id, found := caller(c)
	if !found {
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	var etag string
	if v, err := h.chatSvc.ListVersion(ctx, id.UserID); err == nil {
		etag = weakETag(v)
		if etagMatches(c.GetHeader("If-None-Match"), etag) {
			c.Header("ETag", etag)
			c.Status(http.StatusNotModified)
			return
		}
	}

	chats, err := h.chatSvc.ListChats(ctx, id.UserID)
	if err != nil {
		failService(c, err)
		return
	}
	if etag != "" {
		c.Header("ETag", etag)
	}
	ok(c, http.StatusOK, ChatListResponse{Chats: chats})
}

// GetChat godoc
// @ID          getChat
// @Summary     Get a chat
// @Description Returns the chat with its participants (with profiles) and all messages oldest first.
// @Description Only participants may read a chat. Supports weak ETag via If-None-Match.
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
//
// @Param       chatId         path    int     true  "Chat ID"  minimum(1)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ChatResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad chat id"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403  {object} handlers.ErrorResponse "Not a participant"
// @Failure     404  {object} handlers.ErrorResponse "Chat not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chat/{chatId} [get]
func (h *Handlers) GetChat(c *gin.Context) {
	id, found := caller(c)
	if !found {
		return
	}
	chatID, valid := pathID(c, "chatId", "chat id")
	if !valid {
		return
	}
	ctx := c.Request.Context()

	// The version check runs the membership check first, so a match is
	// only possible for participants.
	var etag string
	if v, err := h.chatSvc.ChatVersion(ctx, id.UserID, chatID); err == nil {
		etag = weakETag(v)
		if etagMatches(c.GetHeader("If-None-Match"), etag) {
			c.Header("ETag", etag)
			c.Status(http.StatusNotModified)
			return
		}
	}

	chat, err := h.chatSvc.GetChat(ctx, id.UserID, chatID)
	if err != nil {
		failService(c, err)
		return
	}
	if etag != "" {
		c.Header("ETag", etag)
	}
	ok(c, http.StatusOK, ChatResponse{Chat: chat})
}
