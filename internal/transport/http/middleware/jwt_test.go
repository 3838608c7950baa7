package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/pkg/jwtutil"
)

const testSecret = "middleware-test-secret"

type fakeResolver map[string]*model.User

func (f fakeResolver) ResolveSession(_ context.Context, authID string) (*model.User, error) {
	if u, ok := f[authID]; ok {
		return u, nil
	}
	return nil, app.ErrUserNotFound
}

func newRouter(users UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthJWT(testSecret), ResolveUser(users), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, user.ID)
	})
	return r
}

func TestResolveUserStoresCurrentUser(t *testing.T) {
	users := fakeResolver{"auth-1": {ID: "user-1", AuthID: "auth-1", Name: "alice"}}
	r := newRouter(users)

	token, err := jwtutil.GenerateToken(testSecret, "test", time.Hour, "auth-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "user-1" {
		t.Fatalf("got %d %q, want 200 user-1", w.Code, w.Body.String())
	}
}

func TestResolveUserRejectsUnknownUser(t *testing.T) {
	r := newRouter(fakeResolver{})

	token, err := jwtutil.GenerateToken(testSecret, "test", time.Hour, "auth-gone", "bob")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCurrentUserWithoutResolve(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := CurrentUser(c); ok {
		t.Fatal("CurrentUser() ok = true on a bare context")
	}
}
