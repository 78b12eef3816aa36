package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsersRepo struct {
	createFn     func(ctx context.Context, u user.User) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id string) (user.User, error)
	updateFn     func(ctx context.Context, id string, params user.UpdateParams) (user.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, id string, params user.UpdateParams) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, params)
	}
	return user.User{}, user.ErrNotFound
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) GenerateSessionToken(userID, email string, isAdmin bool) (string, error) {
	return "token-for-" + userID, nil
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerRouter(repo *fakeUsersRepo) *gin.Engine {
	h := handlers.NewUsersHandler(repo, fakeTokenIssuer{})
	r := gin.New()
	r.POST("/api/users", h.Register)
	r.POST("/api/users/login", h.Login)
	return r
}

func TestRegister_InvalidName(t *testing.T) {
	r := registerRouter(&fakeUsersRepo{})

	w := postJSON(t, r, "/api/users", `{"name":"Al","email":"al@example.com","password":"abc123!5"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var resp errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Message != user.MsgInvalidName {
		t.Fatalf("unexpected message: %q", resp.Error.Message)
	}
}

func TestRegister_InvalidPassword(t *testing.T) {
	r := registerRouter(&fakeUsersRepo{})

	// digit + letter but no special character
	w := postJSON(t, r, "/api/users", `{"name":"Alice","email":"alice@example.com","password":"abc12345"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var resp errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Message != user.MsgInvalidPassword {
		t.Fatalf("unexpected message: %q", resp.Error.Message)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUsersRepo{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, postgres.ErrEmailAlreadyUsed
		},
	}
	r := registerRouter(repo)

	w := postJSON(t, r, "/api/users", `{"name":"Alice","email":"alice@example.com","password":"abc123!5"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var resp errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Message != "User already exists" {
		t.Fatalf("unexpected message: %q", resp.Error.Message)
	}
}

func TestRegister_Success(t *testing.T) {
	var stored user.User

	repo := &fakeUsersRepo{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			stored = u
			return u, nil
		},
	}
	r := registerRouter(repo)

	w := postJSON(t, r, "/api/users", `{"name":"Alice","email":"alice@example.com","password":"abc123!5","imageUrl":"https://img.example/a.png"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201, body=%s", w.Code, w.Body.String())
	}

	if stored.ID == "" {
		t.Fatal("expected a generated user id")
	}
	if stored.PasswordHash == "abc123!5" {
		t.Fatal("password must be stored hashed")
	}
	if err := security.CheckPassword(stored.PasswordHash, "abc123!5"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["token"] != "token-for-"+stored.ID {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	if strings.Contains(w.Body.String(), "abc123!5") || strings.Contains(w.Body.String(), stored.PasswordHash) {
		t.Fatal("response leaks password material")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := security.HashPassword("abc123!5")
	if err != nil {
		t.Fatal(err)
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}
	r := registerRouter(repo)

	w := postJSON(t, r, "/api/users/login", `{"email":"alice@example.com","password":"wrong1!aa"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}

	var resp errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Message != "Invalid email or password" {
		t.Fatalf("unexpected message: %q", resp.Error.Message)
	}
}

func TestLogin_UnknownEmailSameMessage(t *testing.T) {
	r := registerRouter(&fakeUsersRepo{})

	w := postJSON(t, r, "/api/users/login", `{"email":"ghost@example.com","password":"abc123!5"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Fatalf("unknown email must not be distinguishable: %s", w.Body.String())
	}
}

func TestUpdateProfile_PartialFieldsReachRepo(t *testing.T) {
	var gotParams user.UpdateParams

	repo := &fakeUsersRepo{
		updateFn: func(ctx context.Context, id string, params user.UpdateParams) (user.User, error) {
			gotParams = params
			return user.User{ID: id, Name: "Alice", Email: "new@example.com"}, nil
		},
	}

	h := handlers.NewUsersHandler(repo, fakeTokenIssuer{})
	r := gin.New()
	r.PUT("/api/users", func(c *gin.Context) { c.Set("auth.userID", "u1") }, h.UpdateProfile)

	req := httptest.NewRequest(http.MethodPut, "/api/users", bytes.NewBufferString(`{"email":"new@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if gotParams.Email == nil || *gotParams.Email != "new@example.com" {
		t.Fatalf("email param missing: %+v", gotParams)
	}
	if gotParams.Name != nil || gotParams.ImageURL != nil || gotParams.PasswordHash != nil {
		t.Fatalf("omitted fields must stay nil: %+v", gotParams)
	}
}

func TestUpdateProfile_RevalidatesPassword(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeUsersRepo{}, fakeTokenIssuer{})
	r := gin.New()
	r.PUT("/api/users", func(c *gin.Context) { c.Set("auth.userID", "u1") }, h.UpdateProfile)

	req := httptest.NewRequest(http.MethodPut, "/api/users", bytes.NewBufferString(`{"password":"short"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), user.MsgInvalidPassword) {
		t.Fatalf("expected password policy message, got %s", w.Body.String())
	}
}
