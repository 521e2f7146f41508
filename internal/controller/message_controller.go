package controller

import (
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	MessageService *service.MessageService
}

func NewMessageController(messageService *service.MessageService) *MessageController {
	return &MessageController{MessageService: messageService}
}

type SendMessageRequest struct {
	SenderID    *uint   `json:"senderId"`
	RecipientID *uint   `json:"recipientId"`
	GroupID     *string `json:"groupId"`
	Content     string  `json:"content"`
}

type MarkReadRequest struct {
	OtherUserID uint `json:"otherUserId" binding:"required"`
}

// ListMessages godoc
// @Summary 消息列表
// @Description groupId 优先，其次 otherUserId，否则返回当前用户的全部消息；按时间升序
// @Tags 消息
// @Produce json
// @Security ApiKeyAuth
// @Param otherUserId query int false "对方用户ID"
// @Param groupId query string false "小组ID"
// @Success 200 {object} util.Response{data=[]model.Message}
// @Router /api/messages [get]
func (c *MessageController) ListMessages(ctx *gin.Context) {
	otherID, ok := parseUintQuery(ctx, "otherUserId")
	if !ok {
		return
	}
	messages, err := c.MessageService.List(ctx.Request.Context(), actorFrom(ctx), service.MessageQuery{
		OtherUserID: otherID,
		GroupID:     ctx.Query("groupId"),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"messages": messages})
}

// SendMessage godoc
// @Summary 发送消息
// @Tags 消息
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SendMessageRequest true "recipientId 与 groupId 二选一"
// @Success 201 {object} util.Response{data=model.Message}
// @Failure 400 {object} util.Response
// @Router /api/messages [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !matchesActor(ctx, req.SenderID) {
		return
	}

	msg, err := c.MessageService.Send(ctx.Request.Context(), actorFrom(ctx), service.SendMessageInput{
		RecipientID: req.RecipientID,
		GroupID:     req.GroupID,
		Content:     req.Content,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"message": msg})
}

// ListConversations godoc
// @Summary 私信会话列表
// @Tags 消息
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.Conversation}
// @Router /api/messages/conversations [get]
func (c *MessageController) ListConversations(ctx *gin.Context) {
	conversations, err := c.MessageService.Conversations(ctx.Request.Context(), actorFrom(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"conversations": conversations})
}

// MarkRead godoc
// @Summary 标记会话已读
// @Tags 消息
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body MarkReadRequest true "对方用户ID"
// @Success 200 {object} util.Response
// @Router /api/messages/read [post]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	var req MarkReadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	updated, err := c.MessageService.MarkConversationRead(ctx.Request.Context(), actorFrom(ctx), req.OtherUserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"updated": updated})
}
