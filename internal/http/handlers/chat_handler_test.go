package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/services"
)

func TestListChats_ETagAnd304(t *testing.T) {
	listed := 0
	svc := stubChatSvc{
		listVersion: func(_ context.Context, uid uint) (string, error) {
			if uid != alice.UserID {
				t.Fatalf("version for uid=%d", uid)
			}
			return "chats:1:2:1700000000", nil
		},
		listChats: func(_ context.Context, uid uint) ([]domain.Chat, error) {
			listed++
			return []domain.Chat{{ID: 7, Type: domain.ChatTypeDirect}}, nil
		},
	}
	h := New(stubAuthSvc{}, svc, stubProfileSvc{})
	r := newTestEngine(withIdentity(alice))
	r.GET("/chatlist", h.ListChats)

	w := doJSON(t, r, http.MethodGet, "/chatlist", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chatlist -> %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag != `W/"chats:1:2:1700000000"` {
		t.Fatalf("etag = %q", etag)
	}
	var out ChatListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Chats) != 1 || out.Chats[0].ID != 7 {
		t.Fatalf("unexpected chats: %+v", out.Chats)
	}

	w = doJSON(t, r, http.MethodGet, "/chatlist", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional -> %d", w.Code)
	}
	if w.Body.Len() != 0 || w.Header().Get("ETag") != etag {
		t.Fatalf("304 must carry the etag and no body")
	}
	if listed != 1 {
		t.Fatalf("ListChats called %d times; 304 must skip it", listed)
	}

	w = doJSON(t, r, http.MethodGet, "/chatlist", "", map[string]string{"If-None-Match": `W/"stale"`})
	if w.Code != http.StatusOK || listed != 2 {
		t.Fatalf("stale etag -> %d (listed %d)", w.Code, listed)
	}
}

func TestListChats_VersionFailureStillServes(t *testing.T) {
	h := New(stubAuthSvc{}, stubChatSvc{}, stubProfileSvc{})
	r := newTestEngine(withIdentity(alice))
	r.GET("/chatlist", h.ListChats)

	w := doJSON(t, r, http.MethodGet, "/chatlist", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chatlist -> %d", w.Code)
	}
	if w.Header().Get("ETag") != "" {
		t.Fatalf("no etag expected when the version is unknown")
	}
	if w.Body.String() != `{"chats":[]}` {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestListChats_NoIdentity401_StoreDown503(t *testing.T) {
	r := newTestEngine()
	h := New(stubAuthSvc{}, stubChatSvc{}, stubProfileSvc{})
	r.GET("/anon", h.ListChats)

	w := doJSON(t, r, http.MethodGet, "/anon", "", nil)
	if w.Code != http.StatusUnauthorized || decodeError(t, w).Code != ErrCodeUnauthorized {
		t.Fatalf("anon -> %d %s", w.Code, w.Body.String())
	}

	down := New(stubAuthSvc{}, stubChatSvc{
		listChats: func(context.Context, uint) ([]domain.Chat, error) {
			return nil, services.ErrUnavailable
		},
	}, stubProfileSvc{})
	r2 := newTestEngine(withIdentity(alice))
	r2.GET("/chatlist", down.ListChats)
	w = doJSON(t, r2, http.MethodGet, "/chatlist", "", nil)
	if w.Code != http.StatusServiceUnavailable || decodeError(t, w).Code != ErrCodeStoreUnavailable {
		t.Fatalf("store down -> %d %s", w.Code, w.Body.String())
	}
}

func TestGetChat_StatusMapping(t *testing.T) {
	svc := stubChatSvc{
		getChat: func(_ context.Context, uid, chatID uint) (*domain.Chat, error) {
			switch chatID {
			case 1:
				return &domain.Chat{ID: 1, Messages: []domain.Message{}}, nil
			case 2:
				return nil, services.ErrNotParticipant
			default:
				return nil, services.ErrChatNotFound
			}
		},
		chatVersion: func(_ context.Context, uid, chatID uint) (string, error) {
			if chatID == 1 {
				return "chat:1:0:0", nil
			}
			return "", services.ErrNotParticipant
		},
	}
	h := New(stubAuthSvc{}, svc, stubProfileSvc{})
	r := newTestEngine(withIdentity(alice))
	r.GET("/chat/:chatId", h.GetChat)

	w := doJSON(t, r, http.MethodGet, "/chat/1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("member -> %d", w.Code)
	}
	var out ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Chat == nil || out.Chat.ID != 1 {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}
	if w.Header().Get("ETag") != `W/"chat:1:0:0"` {
		t.Fatalf("etag = %q", w.Header().Get("ETag"))
	}

	w = doJSON(t, r, http.MethodGet, "/chat/1", "", map[string]string{"If-None-Match": `"chat:1:0:0"`})
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional -> %d", w.Code)
	}

	cases := map[string]struct {
		status int
		code   string
	}{
		"/chat/2":   {http.StatusForbidden, ErrCodeForbidden},
		"/chat/3":   {http.StatusNotFound, ErrCodeNotFound},
		"/chat/abc": {http.StatusBadRequest, ErrCodeBadRequest},
		"/chat/0":   {http.StatusBadRequest, ErrCodeBadRequest},
		"/chat/-1":  {http.StatusBadRequest, ErrCodeBadRequest},
	}
	for path, want := range cases {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		if w.Code != want.status {
			t.Fatalf("%s -> %d, want %d", path, w.Code, want.status)
		}
		if er := decodeError(t, w); er.Code != want.code {
			t.Fatalf("%s code = %q, want %q", path, er.Code, want.code)
		}
		if w.Header().Get("ETag") != "" {
			t.Fatalf("%s: error responses must not carry an etag", path)
		}
	}
}

func Test_etagMatches(t *testing.T) {
	etag := `W/"chats:1:2:3"`
	cases := []struct {
		inm  string
		want bool
	}{
		{"", false},
		{`W/"chats:1:2:3"`, true},
		{`"chats:1:2:3"`, true},
		{`W/"x", W/"chats:1:2:3"`, true},
		{`*`, true},
		{`W/"chats:1:2:4"`, false},
	}
	for _, tc := range cases {
		if got := etagMatches(tc.inm, etag); got != tc.want {
			t.Fatalf("etagMatches(%q) = %v; want %v", tc.inm, got, tc.want)
		}
	}
}
