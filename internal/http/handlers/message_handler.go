// Message HTTP handlers.
//
// This file exposes the write side of the chat API:
//   - POST /new/chat/{user2}       (message a user, creating the direct chat on first contact)
//   - POST /new/message/{chatid}   (append a message to a chat the caller is part of)
//
// Idempotency:
// A replayed Idempotency-Key is answered by middleware before these handlers
// run. Otherwise the key travels to the service as a claim and is recorded
// in the same transaction as the message, so a retry of the same request,
// even one racing the first, returns the same message.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/http/middleware"
	"github.com/tbourn/go-direct-chat/internal/services"
)

// NewMessageRequest is the JSON payload for sending a message.
//
// The service trims and NFC-normalizes the text and enforces its maximum
// rune count.
type NewMessageRequest struct {
	Message string `json:"message" binding:"required" example:"Hi there!"`
}

// NewMessageResponse is the JSON envelope for a newly stored message.
type NewMessageResponse struct {
	NewMessage *domain.Message `json:"newMessage"`
}

// StartChat godoc
// @ID          startChat
// @Summary     Message a user
// @Description Appends a message to the direct chat with user2, creating the chat, both participants
// @Description and the first message atomically when none exists yet.
// @Description Supports idempotency via the Idempotency-Key header (same key → same message).
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       user2            path    int     true  "Recipient user ID"  minimum(1)
// @Param       body             body    handlers.NewMessageRequest  true  "Message payload"
//
// @Success     200  {object}  handlers.NewMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request (including messaging yourself)"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Recipient not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /new/chat/{user2} [post]
func (h *Handlers) StartChat(c *gin.Context) {
	id, found := caller(c)
	if !found {
		return
	}
	recipient, valid := pathID(c, "user2", "user id")
	if !valid {
		return
	}
	var req NewMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	m, err := h.chatSvc.StartDirectChat(claimContext(c), id.UserID, recipient, req.Message)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewMessageResponse{NewMessage: m})
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Post a message to a chat
// @Description Appends a message to the chat. Only participants may post.
// @Description Supports idempotency via the Idempotency-Key header (same key → same message).
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       chatid           path    int     true  "Chat ID"  minimum(1)
// @Param       body             body    handlers.NewMessageRequest  true  "Message payload"
//
// @Success     200  {object}  handlers.NewMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Chat not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /new/message/{chatid} [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	id, found := caller(c)
	if !found {
		return
	}
	chatID, valid := pathID(c, "chatid", "chat id")
	if !valid {
		return
	}
	var req NewMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	m, err := h.chatSvc.PostMessage(claimContext(c), id.UserID, chatID, req.Message)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NewMessageResponse{NewMessage: m})
}

// claimContext carries the request's Idempotency-Key, if any, to the
// service.
func claimContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if key, present := middleware.GetIdempotencyKey(c); present {
		ctx = services.WithIdempotencyClaim(ctx, middleware.IdempotencyScope(c), key)
	}
	return ctx
}
