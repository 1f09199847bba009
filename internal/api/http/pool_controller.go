package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/api/http/converter"
	"github.com/immxrtalbeast/bolao/internal/service"
)

type PoolController struct {
	pools service.PoolInteractor
	log   *slog.Logger
}

func NewPoolController(pools service.PoolInteractor, log *slog.Logger) *PoolController {
	if log == nil {
		log = slog.Default()
	}
	return &PoolController{pools: pools, log: log}
}

func (c *PoolController) CountPools(ctx *gin.Context) {
	count, err := c.pools.CountPools(ctx.Request.Context())
	if err != nil {
		c.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

func (c *PoolController) CreatePool(ctx *gin.Context) {
	type request struct {
		Title string `json:"title" binding:"required,max=255"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	pool, err := c.pools.CreatePool(ctx.Request.Context(), req.Title, identityFrom(ctx))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTitle) {
			respondValidation(ctx, map[string]string{"title": "is required"})
			return
		}
		c.internalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"code": pool.Code})
}

func (c *PoolController) JoinPool(ctx *gin.Context) {
	type request struct {
		Code string `json:"code" binding:"required,max=16"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	userID, ok := identityFrom(ctx).UserID()
	if !ok {
		respondMessage(ctx, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	_, err := c.pools.JoinPool(ctx.Request.Context(), req.Code, userID)
	switch {
	case errors.Is(err, service.ErrPoolNotFound):
		respondMessage(ctx, http.StatusBadRequest, msgPoolNotFound)
		return
	case errors.Is(err, service.ErrAlreadyJoined):
		respondMessage(ctx, http.StatusBadRequest, msgAlreadyJoined)
		return
	case errors.Is(err, service.ErrInvalidCode):
		respondValidation(ctx, map[string]string{"code": "is required"})
		return
	case err != nil:
		c.internalError(ctx, err)
		return
	}

	ctx.Status(http.StatusCreated)
}

func (c *PoolController) ListPools(ctx *gin.Context) {
	userID, ok := identityFrom(ctx).UserID()
	if !ok {
		respondMessage(ctx, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	pools, err := c.pools.ListUserPools(ctx.Request.Context(), userID)
	if err != nil {
		c.internalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"pools": converter.PoolsToApi(pools)})
}

func (c *PoolController) GetPool(ctx *gin.Context) {
	type params struct {
		ID string `uri:"id" binding:"required,uuid"`
	}

	var p params
	if err := ctx.ShouldBindUri(&p); err != nil {
		respondBindError(ctx, err)
		return
	}
	poolID, err := uuid.Parse(p.ID)
	if err != nil {
		respondValidation(ctx, map[string]string{"id": "must be a valid UUID"})
		return
	}

	pool, err := c.pools.GetPool(ctx.Request.Context(), poolID)
	if err != nil {
		if errors.Is(err, service.ErrPoolNotFound) {
			ctx.JSON(http.StatusOK, gin.H{"pool": nil})
			return
		}
		c.internalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"pool": converter.PoolToApi(pool)})
}

func (c *PoolController) internalError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	respondMessage(ctx, http.StatusInternalServerError, msgInternal)
}
