package controller

import (
	"strings"
	"zorides_backend/internal/model"
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GroupController struct {
	GroupService      *service.GroupService
	MembershipService *service.MembershipService
}

func NewGroupController(groupService *service.GroupService, membershipService *service.MembershipService) *GroupController {
	return &GroupController{
		GroupService:      groupService,
		MembershipService: membershipService,
	}
}

// GroupRequest 创建小组；偏好字段仅展示
type GroupRequest struct {
	EventID           string `json:"eventId" binding:"required"`
	PlanDescription   string `json:"planDescription" binding:"required"`
	MaxPeople         int    `json:"maxPeople" binding:"required"`
	AgeMin            *int   `json:"ageMin"`
	AgeMax            *int   `json:"ageMax"`
	GenderPreference  string `json:"genderPreference"`
	RideMode          string `json:"rideMode"`
	RideOwnership     string `json:"rideOwnership"`
	GroupImage        string `json:"groupImage"`
	CustomPreferences string `json:"customPreferences"`
	CreatorID         *uint  `json:"creatorId"`
}

type GroupUpdateRequest struct {
	PlanDescription   *string `json:"planDescription"`
	MaxPeople         *int    `json:"maxPeople"`
	AgeMin            *int    `json:"ageMin"`
	AgeMax            *int    `json:"ageMax"`
	GenderPreference  *string `json:"genderPreference"`
	RideMode          *string `json:"rideMode"`
	RideOwnership     *string `json:"rideOwnership"`
	GroupImage        *string `json:"groupImage"`
	CustomPreferences *string `json:"customPreferences"`
}

// JoinRequest userId 可省略，以 token 为准
type JoinRequest struct {
	UserID *uint `json:"userId"`
}

type DecideRequest struct {
	Action    string `json:"action" binding:"required"`
	CreatorID *uint  `json:"creatorId"`
}

// CreateGroup godoc
// @Summary 创建结伴小组
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GroupRequest true "小组信息"
// @Success 201 {object} util.Response{data=model.AttendantGroup}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/groups [post]
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	var req GroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Missing required fields")
		return
	}
	if !matchesActor(ctx, req.CreatorID) {
		return
	}

	group, err := c.GroupService.Create(ctx.Request.Context(), actorFrom(ctx), service.GroupInput{
		EventID:           req.EventID,
		PlanDescription:   req.PlanDescription,
		AgeMin:            req.AgeMin,
		AgeMax:            req.AgeMax,
		GenderPreference:  req.GenderPreference,
		RideMode:          req.RideMode,
		RideOwnership:     req.RideOwnership,
		GroupImage:        req.GroupImage,
		MaxPeople:         req.MaxPeople,
		CustomPreferences: req.CustomPreferences,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"group": group})
}

// GetGroup godoc
// @Summary 小组详情
// @Tags 小组
// @Produce json
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response{data=model.AttendantGroup}
// @Failure 404 {object} util.Response
// @Router /api/groups/{id} [get]
func (c *GroupController) GetGroup(ctx *gin.Context) {
	group, err := c.GroupService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"group": group})
}

// UpdateGroup godoc
// @Summary 修改小组
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param body body GroupUpdateRequest true "需修改的字段"
// @Success 200 {object} util.Response{data=model.AttendantGroup}
// @Failure 403 {object} util.Response
// @Router /api/groups/{id} [put]
func (c *GroupController) UpdateGroup(ctx *gin.Context) {
	var req GroupUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	group, err := c.GroupService.Update(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), service.GroupUpdate{
		PlanDescription:   req.PlanDescription,
		AgeMin:            req.AgeMin,
		AgeMax:            req.AgeMax,
		GenderPreference:  req.GenderPreference,
		RideMode:          req.RideMode,
		RideOwnership:     req.RideOwnership,
		GroupImage:        req.GroupImage,
		MaxPeople:         req.MaxPeople,
		CustomPreferences: req.CustomPreferences,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"group": group})
}

// UpdateGroupStatus godoc
// @Summary 修改小组状态
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param body body StatusRequest true "OPEN|FILLED|CLOSED"
// @Success 200 {object} util.Response{data=model.AttendantGroup}
// @Router /api/groups/{id}/status [patch]
func (c *GroupController) UpdateGroupStatus(ctx *gin.Context) {
	var req StatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	group, err := c.GroupService.UpdateStatus(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), model.GroupStatus(strings.ToUpper(req.Status)))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"group": group})
}

// DeleteGroup godoc
// @Summary 删除小组
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{id} [delete]
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	if err := c.GroupService.Delete(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Group deleted"})
}

// JoinGroup godoc
// @Summary 申请加入小组
// @Description 创建 INTERESTED 成员记录并通知创建者，名额用尽时小组变为 FILLED
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param body body JoinRequest false "兼容字段 userId"
// @Success 201 {object} util.Response{data=model.GroupMember}
// @Failure 400 {object} util.Response "已申请、已满或小组未开放"
// @Failure 404 {object} util.Response
// @Router /api/groups/{id}/join [post]
func (c *GroupController) JoinGroup(ctx *gin.Context) {
	var req JoinRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	if !matchesActor(ctx, req.UserID) {
		return
	}

	member, err := c.MembershipService.RequestToJoin(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"member": member})
}

// DecideMember godoc
// @Summary 处理加入申请
// @Description 创建者接受或拒绝，可重复处理
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param memberId path string true "成员记录ID"
// @Param body body DecideRequest true "accept 或 reject"
// @Success 200 {object} util.Response{data=model.GroupMember}
// @Failure 400 {object} util.Response "无效操作"
// @Failure 403 {object} util.Response "非创建者"
// @Failure 404 {object} util.Response
// @Router /api/groups/{id}/members/{memberId} [patch]
func (c *GroupController) DecideMember(ctx *gin.Context) {
	var req DecideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid action")
		return
	}
	if !matchesActor(ctx, req.CreatorID) {
		return
	}

	member, err := c.MembershipService.DecideMembership(
		ctx.Request.Context(),
		ctx.Param("id"),
		ctx.Param("memberId"),
		service.MembershipAction(req.Action),
		util.CurrentUserID(ctx),
	)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"member": member})
}

// ListMembers godoc
// @Summary 小组成员列表
// @Tags 小组
// @Produce json
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response{data=[]model.GroupMember}
// @Router /api/groups/{id}/members [get]
func (c *GroupController) ListMembers(ctx *gin.Context) {
	members, err := c.MembershipService.ListMembers(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"members": members})
}

// LeaveGroup godoc
// @Summary 退出小组或撤回申请
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{id}/leave [post]
func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	if err := c.MembershipService.LeaveGroup(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Left group"})
}
