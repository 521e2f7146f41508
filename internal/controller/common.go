package controller

import (
	"strconv"
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// actorFrom 从 JWT 中取当前用户
func actorFrom(ctx *gin.Context) service.Actor {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: claims.UserID, Admin: claims.IsAdmin()}
}

// matchesActor 兼容旧客户端在请求体中携带的 userId/creatorId，必须与 token 一致
func matchesActor(ctx *gin.Context, claimed *uint) bool {
	if claimed == nil || *claimed == 0 {
		return true
	}
	if *claimed == util.CurrentUserID(ctx) {
		return true
	}
	util.HandleError(ctx, util.ErrIdentityMismatch)
	return false
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parseUintQuery(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		util.BadRequest(ctx, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
