package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsersStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, id string, params user.UpdateParams) (user.User, error)
}

type TokenIssuer interface {
	GenerateSessionToken(userID, email string, isAdmin bool) (string, error)
}

type UsersHandler struct {
	users UsersStore
	jwt   TokenIssuer
}

func NewUsersHandler(users UsersStore, jwt TokenIssuer) *UsersHandler {
	return &UsersHandler{users: users, jwt: jwt}
}

// profileResponse is the login/register/update payload: the public profile
// plus a fresh session token.
type profileResponse struct {
	user.Profile
	Token string `json:"token"`
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !user.ValidName(req.Name) {
		RespondBadRequest(ctx, user.MsgInvalidName, nil)
		return
	}

	if !user.ValidPassword(req.Password) {
		RespondBadRequest(ctx, user.MsgInvalidPassword, nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	now := time.Now().UTC()

	u, err := h.users.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		ImageURL:     req.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, u)
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "Invalid email or password")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "Invalid email or password")
		return
	}

	h.respondWithToken(ctx, http.StatusOK, foundUser)
}

func (h *UsersHandler) GetProfile(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, middlewares.MsgTokenFailed)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, middlewares.MsgTokenFailed)
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// name and password get the same shape checks as registration when present
	if req.Name != nil && !user.ValidName(*req.Name) {
		RespondBadRequest(ctx, user.MsgInvalidName, nil)
		return
	}

	if req.Password != nil && !user.ValidPassword(*req.Password) {
		RespondBadRequest(ctx, user.MsgInvalidPassword, nil)
		return
	}

	params := user.UpdateParams{
		Name:     req.Name,
		Email:    req.Email,
		ImageURL: req.ImageURL,
	}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update profile")
			return
		}

		params.PasswordHash = &hash
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.Update(cctx, id, params)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, postgres.ErrEmailAlreadyUsed):
			RespondBadRequest(ctx, "User already exists", nil)
		default:
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	h.respondWithToken(ctx, http.StatusOK, u)
}

func (h *UsersHandler) respondWithToken(ctx *gin.Context, status int, u user.User) {
	token, err := h.jwt.GenerateSessionToken(u.ID, u.Email, u.IsAdmin)

	if err != nil {
		RespondInternal(ctx, "Could not generate session token")
		return
	}

	ctx.JSON(status, profileResponse{
		Profile: u.Profile(),
		Token:   token,
	})
}
