package controller

import (
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FeedController struct {
	FeedService *service.FeedService
}

func NewFeedController(feedService *service.FeedService) *FeedController {
	return &FeedController{FeedService: feedService}
}

// GetFeed godoc
// @Summary 首页信息流
// @Description 最新活动与小组合并后按创建时间倒序；登录用户附带自己的成员状态
// @Tags 信息流
// @Produce json
// @Success 200 {object} util.Response{data=[]service.FeedItem}
// @Router /api/feed [get]
func (c *FeedController) GetFeed(ctx *gin.Context) {
	items, err := c.FeedService.Get(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"feed": items})
}
