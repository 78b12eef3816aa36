package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f fakeVerifier) VerifySessionToken(token string) (*auth.Claims, error) {
	return f.claims, f.err
}

type fakeResolver struct {
	u   user.User
	err error
}

func (f fakeResolver) GetByID(ctx context.Context, id string) (user.User, error) {
	return f.u, f.err
}

func protectedRouter(v middlewares.TokenVerifier, res middlewares.UserResolver) *gin.Engine {
	mw := middlewares.NewAuthMiddleware(v, res)

	r := gin.New()
	r.GET("/protected", mw.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "isAdmin": middlewares.IsAdminFromContext(c)})
	})
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_MissingToken(t *testing.T) {
	r := protectedRouter(fakeVerifier{}, fakeResolver{})

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer  "} {
		w := get(r, header)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: got status %d, want 401", header, w.Code)
		}
		if !strings.Contains(w.Body.String(), middlewares.MsgNoToken) {
			t.Fatalf("header %q: want %q, body=%s", header, middlewares.MsgNoToken, w.Body.String())
		}
	}
}

func TestRequireAuth_BadToken(t *testing.T) {
	r := protectedRouter(fakeVerifier{err: errors.New("bad signature")}, fakeResolver{})

	w := get(r, "Bearer notatoken")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), middlewares.MsgTokenFailed) {
		t.Fatalf("want %q, body=%s", middlewares.MsgTokenFailed, w.Body.String())
	}
}

func TestRequireAuth_TokenForDeletedUser(t *testing.T) {
	// valid signature, but the subject no longer resolves to a stored user
	r := protectedRouter(
		fakeVerifier{claims: &auth.Claims{UserID: "gone"}},
		fakeResolver{err: user.ErrNotFound},
	)

	w := get(r, "Bearer sometoken")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), middlewares.MsgTokenFailed) {
		t.Fatalf("want %q, body=%s", middlewares.MsgTokenFailed, w.Body.String())
	}
}

func TestRequireAuth_AttachesIdentity(t *testing.T) {
	r := protectedRouter(
		fakeVerifier{claims: &auth.Claims{UserID: "u1"}},
		fakeResolver{u: user.User{ID: "u1", Email: "a@example.com", IsAdmin: true}},
	)

	w := get(r, "Bearer sometoken")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"id":"u1"`) {
		t.Fatalf("identity not attached: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"isAdmin":true`) {
		t.Fatalf("admin flag not attached: %s", w.Body.String())
	}
}
