package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-direct-chat/internal/auth"
	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/http/middleware"
	"github.com/tbourn/go-direct-chat/internal/services"
)

// ---------- service stubs ----------

type stubAuthSvc struct {
	register     func(context.Context, services.RegisterInput) (*domain.User, error)
	authenticate func(context.Context, string, string) (*services.Session, error)
}

func (s stubAuthSvc) Register(ctx context.Context, in services.RegisterInput) (*domain.User, error) {
	if s.register != nil {
		return s.register(ctx, in)
	}
	return &domain.User{ID: 1, Username: in.Username}, nil
}

func (s stubAuthSvc) Authenticate(ctx context.Context, u, p string) (*services.Session, error) {
	if s.authenticate != nil {
		return s.authenticate(ctx, u, p)
	}
	return nil, services.ErrInvalidCredentials
}

type stubChatSvc struct {
	listUsers   func(context.Context, uint) ([]domain.User, error)
	listChats   func(context.Context, uint) ([]domain.Chat, error)
	listVersion func(context.Context, uint) (string, error)
	getChat     func(context.Context, uint, uint) (*domain.Chat, error)
	chatVersion func(context.Context, uint, uint) (string, error)
	startDirect func(context.Context, uint, uint, string) (*domain.Message, error)
	post        func(context.Context, uint, uint, string) (*domain.Message, error)
}

func (s stubChatSvc) ListUsers(ctx context.Context, caller uint) ([]domain.User, error) {
	if s.listUsers != nil {
		return s.listUsers(ctx, caller)
	}
	return []domain.User{}, nil
}

func (s stubChatSvc) ListChats(ctx context.Context, uid uint) ([]domain.Chat, error) {
	if s.listChats != nil {
		return s.listChats(ctx, uid)
	}
	return []domain.Chat{}, nil
}

func (s stubChatSvc) ListVersion(ctx context.Context, uid uint) (string, error) {
	if s.listVersion != nil {
		return s.listVersion(ctx, uid)
	}
	return "", services.ErrUnavailable
}

func (s stubChatSvc) GetChat(ctx context.Context, uid, chatID uint) (*domain.Chat, error) {
	if s.getChat != nil {
		return s.getChat(ctx, uid, chatID)
	}
	return nil, services.ErrChatNotFound
}

func (s stubChatSvc) ChatVersion(ctx context.Context, uid, chatID uint) (string, error) {
	if s.chatVersion != nil {
		return s.chatVersion(ctx, uid, chatID)
	}
	return "", services.ErrUnavailable
}

func (s stubChatSvc) StartDirectChat(ctx context.Context, from, to uint, text string) (*domain.Message, error) {
	if s.startDirect != nil {
		return s.startDirect(ctx, from, to, text)
	}
	return &domain.Message{ID: 1, ChatID: 1, SenderID: from, Text: text}, nil
}

func (s stubChatSvc) PostMessage(ctx context.Context, from, chatID uint, text string) (*domain.Message, error) {
	if s.post != nil {
		return s.post(ctx, from, chatID, text)
	}
	return &domain.Message{ID: 1, ChatID: chatID, SenderID: from, Text: text}, nil
}

type stubProfileSvc struct {
	update func(context.Context, uint, services.ProfileInput) (*domain.Profile, error)
}

func (s stubProfileSvc) UpdateProfile(ctx context.Context, uid uint, in services.ProfileInput) (*domain.Profile, error) {
	if s.update != nil {
		return s.update(ctx, uid, in)
	}
	return &domain.Profile{UserID: uid}, nil
}

// ---------- router helpers ----------

// withIdentity stands in for RequireToken.
func withIdentity(id auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, id)
		c.Set(middleware.UserIDKey, id.UserID)
		c.Set(middleware.UsernameKey, id.Username)
		c.Next()
	}
}

var alice = auth.Identity{UserID: 1, Username: "alice"}

func newTestEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return er
}
