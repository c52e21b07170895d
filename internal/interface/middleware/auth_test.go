package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/internal/domain/entity"
	"github.com/videotube/videotube-api/internal/domain/repository"
	"github.com/videotube/videotube-api/pkg/helpers"
	"github.com/videotube/videotube-api/pkg/response"
)

// stubUsers serves only GetByID; the resolver touches nothing else.
type stubUsers struct {
	repository.UserRepository
	byID map[string]*entity.User
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	return u, nil
}

func authTestRouter(t *testing.T) (*gin.Engine, *helpers.JWTManager, *entity.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	u := &entity.User{
		ID:       "user-1",
		Username: "ana",
		Fullname: "Ana Souza",
		Email:    "ana@example.com",
		Password: "hash",
	}
	users := &stubUsers{byID: map[string]*entity.User{u.ID: u}}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 10*time.Hour)

	r := gin.New()
	r.GET("/me", Auth(users, jwt), func(c *gin.Context) {
		pub := c.MustGet(CtxUserKey).(entity.PublicUser)
		response.Success(c, http.StatusOK, gin.H{
			"id":       c.GetString(CtxUserIDKey),
			"username": pub.Username,
		}, "ok")
	})
	return r, jwt, u
}

func doAuthRequest(r *gin.Engine, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingToken(t *testing.T) {
	r, _, _ := authTestRouter(t)

	w := doAuthRequest(r, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body response.Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "unauthorized" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestAuthAcceptsCookie(t *testing.T) {
	r, jwt, u := authTestRouter(t)
	token, _, err := jwt.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	w := doAuthRequest(r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: token})
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var body response.Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["id"] != "user-1" || data["username"] != "ana" {
		t.Errorf("resolved identity = %v", data)
	}
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	r, jwt, u := authTestRouter(t)
	token, _, err := jwt.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	w := doAuthRequest(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestAuthCookieTakesPrecedence(t *testing.T) {
	r, jwt, u := authTestRouter(t)
	token, _, err := jwt.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	// A bad cookie is not rescued by a valid header.
	w := doAuthRequest(r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: "bad-token"})
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsForgedToken(t *testing.T) {
	r, _, u := authTestRouter(t)
	forger := helpers.NewJWTManager("other-secret", "other-secret", time.Hour, time.Hour)
	token, _, err := forger.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	w := doAuthRequest(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	r, jwt, _ := authTestRouter(t)
	ghost := &entity.User{ID: "user-404", Username: "ghost"}
	token, _, err := jwt.GenerateAccessToken(ghost)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	w := doAuthRequest(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body response.Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "invalid token" {
		t.Errorf("message = %q, want invalid token", body.Message)
	}
}
