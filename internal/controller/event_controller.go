package controller

import (
	"strings"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	EventService *service.EventService
	GroupService *service.GroupService
}

func NewEventController(eventService *service.EventService, groupService *service.GroupService) *EventController {
	return &EventController{
		EventService: eventService,
		GroupService: groupService,
	}
}

var eventDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", util.TimeFormat, util.DateFormat}

func parseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EventRequest 创建活动
type EventRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	State       string   `json:"state" binding:"required"`
	District    string   `json:"district" binding:"required"`
	Locality    string   `json:"locality" binding:"required"`
	Venue       string   `json:"venue"`
	Date        string   `json:"date" binding:"required"`
	MediaURLs   []string `json:"mediaUrls"`
	CreatorID   *uint    `json:"creatorId"`
}

type EventUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	State       *string  `json:"state"`
	District    *string  `json:"district"`
	Locality    *string  `json:"locality"`
	Venue       *string  `json:"venue"`
	Date        *string  `json:"date"`
	MediaURLs   []string `json:"mediaUrls"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListEvents godoc
// @Summary 活动列表
// @Description 未取消的活动，按日期升序，可按州/区筛选
// @Tags 活动
// @Produce json
// @Param state query string false "州"
// @Param district query string false "区"
// @Success 200 {object} util.Response{data=[]model.Event}
// @Router /api/events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	events, err := c.EventService.List(ctx.Request.Context(), repository.EventFilter{
		State:    ctx.Query("state"),
		District: ctx.Query("district"),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"events": events})
}

// GetEvent godoc
// @Summary 活动详情
// @Tags 活动
// @Produce json
// @Param id path string true "活动ID"
// @Success 200 {object} util.Response{data=model.Event}
// @Failure 404 {object} util.Response
// @Router /api/events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	event, err := c.EventService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"event": event})
}

// CreateEvent godoc
// @Summary 创建活动
// @Tags 活动
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body EventRequest true "活动信息"
// @Success 201 {object} util.Response{data=model.Event}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Missing required fields")
		return
	}
	if !matchesActor(ctx, req.CreatorID) {
		return
	}
	date, ok := parseEventDate(req.Date)
	if !ok {
		util.BadRequest(ctx, "Invalid date")
		return
	}

	event, err := c.EventService.Create(ctx.Request.Context(), actorFrom(ctx), service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
		District:    req.District,
		Locality:    req.Locality,
		Venue:       req.Venue,
		Date:        date,
		MediaURLs:   req.MediaURLs,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"event": event})
}

// UpdateEvent godoc
// @Summary 修改活动
// @Description 仅创建者或管理员
// @Tags 活动
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "活动ID"
// @Param body body EventUpdateRequest true "需修改的字段"
// @Success 200 {object} util.Response{data=model.Event}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	var req EventUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	in := service.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
		District:    req.District,
		Locality:    req.Locality,
		Venue:       req.Venue,
		MediaURLs:   req.MediaURLs,
	}
	if req.Date != nil {
		date, ok := parseEventDate(*req.Date)
		if !ok {
			util.BadRequest(ctx, "Invalid date")
			return
		}
		in.Date = &date
	}

	event, err := c.EventService.Update(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"event": event})
}

// UpdateEventStatus godoc
// @Summary 修改活动状态
// @Tags 活动
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "活动ID"
// @Param body body StatusRequest true "OPEN|FILLED|CLOSED|CANCELLED"
// @Success 200 {object} util.Response{data=model.Event}
// @Router /api/events/{id}/status [patch]
func (c *EventController) UpdateEventStatus(ctx *gin.Context) {
	var req StatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	event, err := c.EventService.UpdateStatus(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), model.EventStatus(strings.ToUpper(req.Status)))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"event": event})
}

// DeleteEvent godoc
// @Summary 删除活动
// @Description 同时删除其下小组、成员和小组消息
// @Tags 活动
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /api/events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	if err := c.EventService.Delete(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Event deleted"})
}

// ListEventGroups godoc
// @Summary 活动下的小组
// @Tags 活动
// @Produce json
// @Param id path string true "活动ID"
// @Success 200 {object} util.Response{data=[]model.AttendantGroup}
// @Router /api/events/{id}/groups [get]
func (c *EventController) ListEventGroups(ctx *gin.Context) {
	groups, err := c.GroupService.ListByEvent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"groups": groups})
}
