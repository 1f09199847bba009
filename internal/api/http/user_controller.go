package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/api/http/converter"
	"github.com/immxrtalbeast/bolao/internal/service"
	"github.com/immxrtalbeast/bolao/lib/logger/sl"
)

type UserController struct {
	users  service.UserInteractor
	tokens TokenIssuer
	log    *slog.Logger
}

func NewUserController(users service.UserInteractor, tokens TokenIssuer, log *slog.Logger) *UserController {
	if log == nil {
		log = slog.Default()
	}
	return &UserController{users: users, tokens: tokens, log: log}
}

// CreateUser registers a profile and returns a bearer token for it.
func (c *UserController) CreateUser(ctx *gin.Context) {
	type request struct {
		Name      string `json:"name" binding:"required,max=255"`
		Email     string `json:"email" binding:"omitempty,email,max=255"`
		AvatarURL string `json:"avatarUrl" binding:"omitempty,url"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.users.CreateUser(ctx.Request.Context(), req.Name, req.Email, req.AvatarURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidName):
			respondValidation(ctx, map[string]string{"name": "is required"})
		case errors.Is(err, service.ErrUserEmailExists):
			respondMessage(ctx, http.StatusConflict, "Email already registered.")
		default:
			_ = ctx.Error(err)
			respondMessage(ctx, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	token, err := c.tokens.Issue(user)
	if err != nil {
		c.log.Error("failed to issue token", slog.String("user_id", user.ID.String()), sl.Err(err))
		_ = ctx.Error(err)
		respondMessage(ctx, http.StatusInternalServerError, msgInternal)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  converter.UserToApi(user),
		"token": token,
	})
}

func (c *UserController) GetUser(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		respondValidation(ctx, map[string]string{"userID": "must be a valid UUID"})
		return
	}

	user, err := c.users.GetUser(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondMessage(ctx, http.StatusNotFound, "User not found.")
			return
		}
		_ = ctx.Error(err)
		respondMessage(ctx, http.StatusInternalServerError, msgInternal)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}

func (c *UserController) CountUsers(ctx *gin.Context) {
	count, err := c.users.CountUsers(ctx.Request.Context())
	if err != nil {
		_ = ctx.Error(err)
		respondMessage(ctx, http.StatusInternalServerError, msgInternal)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

// Me echoes the identity carried by the caller's token.
func (c *UserController) Me(ctx *gin.Context) {
	claims := claimsFrom(ctx)
	if claims == nil {
		respondMessage(ctx, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": gin.H{
		"sub":       claims.Subject,
		"name":      claims.Name,
		"avatarUrl": claims.AvatarURL,
	}})
}
