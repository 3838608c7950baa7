package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/ai"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/bootstrap"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/config"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/testutil"
	httptransport "github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http"
)

type stubLLM struct{ reply string }

func (s stubLLM) Complete(context.Context, []ai.ChatMessage) (string, error) {
	return s.reply, nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	app    *bootstrap.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Name: "teamchat", Env: "test", GinMode: gin.TestMode},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", JWTExpireMinute: 60, JWTIssuer: "teamchat"},
		Redis:    config.RedisConfig{HistoryTTLSeconds: 60, VersionTTLSeconds: 3600},
		RabbitMQ: config.RabbitMQConfig{Enabled: false},
		Chat:     config.ChatConfig{DMPolicy: "allow_duplicates"},
	}

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	services := bootstrap.NewServices(bootstrap.Deps{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		LLM:    stubLLM{reply: "hi there"},
		Clock:  testutil.NewClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
	})
	app := &bootstrap.App{
		Config:    cfg,
		Logger:    zap.NewNop(),
		DB:        db,
		Redis:     rdb,
		Services:  services,
		StartedAt: time.Now(),
	}
	return &testServer{t: t, router: httptransport.NewRouter(app), app: app}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *testServer) signup(name string) session {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("signup %s: %d %s", name, w.Code, w.Body.String())
	}
	var out session
	decode(s.t, w, &out)
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type channelBody struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	ChannelType string  `json:"channelType"`
	Members     []map[string]interface{}
}

func (s *testServer) createChannel(token, name string) channelBody {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/channels", token, map[string]string{"name": name})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("create channel: %d %s", w.Code, w.Body.String())
	}
	var ch channelBody
	decode(s.t, w, &ch)
	return ch
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice")

	w := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Alice Again", "email": "alice@example.com", "password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope-nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/user/me", alice.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me = %d", w.Code)
	}
	var me map[string]string
	decode(t, w, &me)
	if me["id"] != alice.User.ID || me["email"] != "alice@example.com" {
		t.Errorf("me = %v", me)
	}

	if w := s.do(http.MethodGet, "/api/user/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("me without token = %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/channels", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("channels with bad token = %d", w.Code)
	}
}

func TestMissingUserRecord(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice")
	if err := s.app.DB.Where("id = ?", alice.User.ID).Delete(&model.User{}).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if w := s.do(http.MethodGet, "/api/user/me", alice.Token, nil); w.Code != http.StatusNotFound {
		t.Errorf("me for deleted user = %d, want 404", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/channels", alice.Token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("channels for deleted user = %d, want 401", w.Code)
	}
}

func TestUserDirectoryHidesEmail(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice")
	s.signup("Bob")

	w := s.do(http.MethodGet, "/api/users", alice.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("users = %d", w.Code)
	}
	var users []map[string]interface{}
	decode(t, w, &users)
	if len(users) != 1 || users[0]["name"] != "Bob" {
		t.Fatalf("users = %v", users)
	}
	if _, ok := users[0]["email"]; ok {
		t.Error("user summary leaks email")
	}
}

func TestChannelAccess(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice")
	mallory := s.signup("Mallory")
	ch := s.createChannel(alice.Token, "general")
	if ch.ChannelType != "channel" || len(ch.Members) != 1 {
		t.Fatalf("channel = %+v", ch)
	}
	if _, ok := ch.Members[0]["email"]; ok {
		t.Error("member leaks email")
	}

	tests := []struct {
		name  string
		token string
		path  string
		want  int
	}{
		{"member", alice.Token, "/api/channels/" + ch.ID, http.StatusOK},
		{"outsider", mallory.Token, "/api/channels/" + ch.ID, http.StatusForbidden},
		{"unknown", alice.Token, "/api/channels/6f1c2b1e-9d7a-4c1e-8d7e-0a0b0c0d0e0f", http.StatusNotFound},
		{"unknown for outsider", mallory.Token, "/api/channels/6f1c2b1e-9d7a-4c1e-8d7e-0a0b0c0d0e0f", http.StatusNotFound},
		{"malformed", alice.Token, "/api/channels/not-a-uuid", http.StatusBadRequest},
		{"outsider messages", mallory.Token, "/api/messages/channel/" + ch.ID, http.StatusForbidden},
		{"missing channel messages", alice.Token, "/api/messages/channel/6f1c2b1e-9d7a-4c1e-8d7e-0a0b0c0d0e0f", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(http.MethodGet, tt.path, tt.token, nil); w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d (%s)", tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}

	var mine []channelBody
	w := s.do(http.MethodGet, "/api/channels", mallory.Token, nil)
	decode(t, w, &mine)
	if len(mine) != 0 {
		t.Errorf("mallory sees %d channels", len(mine))
	}
}

func TestCreateChannelValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice")
	bob := s.signup("Bob")

	w := s.do(http.MethodPost, "/api/channels", alice.Token, map[string]string{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank name = %d", w.Code)
	}
	var body errorBody
	decode(t, w, &body)
	if body.Details["name"] == "" {
		t.Errorf("details = %v", body.Details)
	}

	w = s.do(http.MethodPost, "/api/channels", alice.Token, map[string]string{"type": "group", "name": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad type = %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/channels", alice.Token, map[string]string{"type": "dm"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("dm without other user = %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/channels", alice.Token, map[string]string{"type": "dm", "otherUserId": bob.User.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("dm = %d %s", w.Code, w.Body.String())
	}
	var dm channelBody
	decode(t, w, &dm)
	if dm.Name != nil || len(dm.Members) != 2 {
		t.Errorf("dm = %+v", dm)
	}
	if w := s.do(http.MethodGet, "/api/channels/"+dm.ID, bob.Token, nil); w.Code != http.StatusOK {
		t.Errorf("bob reading dm = %d", w.Code)
	}

	if w := s.do(http.MethodPost, "/api/channels", alice.Token, "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body = %d", w.Code)
	}
}

func TestMessages(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice")
	mallory := s.signup("Mallory")
	ch := s.createChannel(alice.Token, "general")
	path := "/api/messages/channel/" + ch.ID
	unknown := "/api/messages/channel/6f1c2b1e-9d7a-4c1e-8d7e-0a0b0c0d0e0f"

	tests := []struct {
		name    string
		path    string
		token   string
		content string
		want    int
	}{
		{"1000 chars", path, alice.Token, strings.Repeat("a", 1000), http.StatusCreated},
		{"1001 chars", path, alice.Token, strings.Repeat("a", 1001), http.StatusBadRequest},
		{"empty", path, alice.Token, "", http.StatusBadRequest},
		{"whitespace", path, alice.Token, "   ", http.StatusCreated},
		{"outsider", path, mallory.Token, "hi", http.StatusForbidden},
		{"unknown channel", unknown, alice.Token, "hi", http.StatusNotFound},
		{"plain", path, alice.Token, "hello", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, tt.path, tt.token, map[string]string{"content": tt.content})
			if w.Code != tt.want {
				t.Fatalf("POST = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusBadRequest {
				var body errorBody
				decode(t, w, &body)
				if body.Details["content"] == "" {
					t.Errorf("details = %v", body.Details)
				}
			}
		})
	}

	w := s.do(http.MethodGet, path, alice.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var messages []struct {
		ID        uint   `json:"id"`
		Content   string `json:"content"`
		ChannelID string `json:"channelId"`
		Sender    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"sender"`
	}
	decode(t, w, &messages)
	if len(messages) != 3 || messages[1].Content != "   " || messages[2].Content != "hello" {
		t.Fatalf("messages = %+v", messages)
	}
	if messages[0].Sender.Name != "Alice" || messages[0].ChannelID != ch.ID {
		t.Errorf("message view = %+v", messages[0])
	}

	w = s.do(http.MethodGet, "/api/messages/me", alice.Token, nil)
	decode(t, w, &messages)
	if len(messages) != 3 || messages[0].Content != "hello" {
		t.Errorf("my messages = %+v", messages)
	}
}

func TestAssistantDailyLimit(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice")

	for i := 0; i < 3; i++ {
		w := s.do(http.MethodPost, "/api/ai/chat", alice.Token, map[string]string{"message": "hello"})
		if w.Code != http.StatusOK {
			t.Fatalf("chat %d = %d %s", i, w.Code, w.Body.String())
		}
		var out struct {
			Reply     string `json:"reply"`
			Remaining int    `json:"remaining"`
		}
		decode(t, w, &out)
		if out.Reply != "hi there" || out.Remaining != 2-i {
			t.Errorf("chat %d = %+v", i, out)
		}
	}

	w := s.do(http.MethodPost, "/api/ai/chat", alice.Token, map[string]string{"message": "hello"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("fourth chat = %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/ai/usage", alice.Token, nil)
	var usage map[string]interface{}
	decode(t, w, &usage)
	if usage["used"] != float64(3) || usage["exceeded"] != true {
		t.Errorf("usage = %v", usage)
	}

	w = s.do(http.MethodGet, "/api/ai/history?limit=2", alice.Token, nil)
	var history []map[string]interface{}
	decode(t, w, &history)
	if len(history) != 2 {
		t.Errorf("history = %v", history)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz = %d %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodGet, "/metrics", "", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("metrics = %d", w.Code)
	}
}
