package controller

import (
	"strings"
	"zorides_backend/internal/model"
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController 路由组已挂载 RoleMiddleware(admin)
type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

// ListUsers godoc
// @Summary 管理员：用户列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]repository.UserWithCounts}
// @Failure 403 {object} util.Response
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.AdminService.ListUsers(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"users": users})
}

// DeleteUser godoc
// @Summary 管理员：删除用户
// @Description 同时删除其活动、小组、帖子和消息；不能删除管理员
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.AdminService.DeleteUser(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "User deleted"})
}

// ListEvents godoc
// @Summary 管理员：活动列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]repository.EventWithCounts}
// @Router /api/admin/events [get]
func (c *AdminController) ListEvents(ctx *gin.Context) {
	events, err := c.AdminService.ListEvents(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"events": events})
}

// UpdateEventStatus godoc
// @Summary 管理员：修改活动状态
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "活动ID"
// @Param body body StatusRequest true "状态"
// @Success 200 {object} util.Response{data=model.Event}
// @Router /api/admin/events/{id}/status [patch]
func (c *AdminController) UpdateEventStatus(ctx *gin.Context) {
	var req StatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	event, err := c.AdminService.UpdateEventStatus(ctx.Request.Context(), ctx.Param("id"), model.EventStatus(strings.ToUpper(req.Status)))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"event": event})
}

// DeleteEvent godoc
// @Summary 管理员：删除活动
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /api/admin/events/{id} [delete]
func (c *AdminController) DeleteEvent(ctx *gin.Context) {
	if err := c.AdminService.DeleteEvent(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Event deleted"})
}

// ListGroups godoc
// @Summary 管理员：小组列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]repository.GroupWithCount}
// @Router /api/admin/groups [get]
func (c *AdminController) ListGroups(ctx *gin.Context) {
	groups, err := c.AdminService.ListGroups(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"groups": groups})
}

// DeleteGroup godoc
// @Summary 管理员：删除小组
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response
// @Router /api/admin/groups/{id} [delete]
func (c *AdminController) DeleteGroup(ctx *gin.Context) {
	if err := c.AdminService.DeleteGroup(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Group deleted"})
}

// ListPosts godoc
// @Summary 管理员：帖子列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]repository.PostWithCounts}
// @Router /api/admin/posts [get]
func (c *AdminController) ListPosts(ctx *gin.Context) {
	posts, err := c.AdminService.ListPosts(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"posts": posts})
}

// DeletePost godoc
// @Summary 管理员：删除帖子
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response
// @Router /api/admin/posts/{id} [delete]
func (c *AdminController) DeletePost(ctx *gin.Context) {
	if err := c.AdminService.DeletePost(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Post deleted"})
}
