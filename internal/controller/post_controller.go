package controller

import (
	"strings"
	"zorides_backend/internal/model"
	"zorides_backend/internal/service"
	"zorides_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PostController struct {
	PostService *service.PostService
}

func NewPostController(postService *service.PostService) *PostController {
	return &PostController{PostService: postService}
}

type PostRequest struct {
	Content   string   `json:"content" binding:"required"`
	EventID   *string  `json:"eventId"`
	MediaURLs []string `json:"mediaUrls"`
}

type PostUpdateRequest struct {
	Content   *string  `json:"content"`
	MediaURLs []string `json:"mediaUrls"`
}

type ReactionRequest struct {
	Type string `json:"type" binding:"required"`
}

type CommentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parentId"`
}

// ListPosts godoc
// @Summary 帖子列表
// @Description 按反应数和发布时间排序，最多 50 条
// @Tags 帖子
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Post}
// @Router /api/posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	posts, err := c.PostService.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"posts": posts})
}

// CreatePost godoc
// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body PostRequest true "帖子内容"
// @Success 201 {object} util.Response{data=model.Post}
// @Router /api/posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	var req PostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Missing required fields")
		return
	}
	post, err := c.PostService.Create(ctx.Request.Context(), actorFrom(ctx), service.PostInput{
		Content:   req.Content,
		EventID:   req.EventID,
		MediaURLs: req.MediaURLs,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"post": post})
}

// UpdatePost godoc
// @Summary 编辑帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Param body body PostUpdateRequest true "修改内容"
// @Success 200 {object} util.Response{data=model.Post}
// @Failure 403 {object} util.Response
// @Router /api/posts/{id} [put]
func (c *PostController) UpdatePost(ctx *gin.Context) {
	var req PostUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	post, err := c.PostService.Update(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), service.PostUpdate{
		Content:   req.Content,
		MediaURLs: req.MediaURLs,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"post": post})
}

// DeletePost godoc
// @Summary 删除帖子
// @Tags 帖子
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response
// @Router /api/posts/{id} [delete]
func (c *PostController) DeletePost(ctx *gin.Context) {
	if err := c.PostService.Delete(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Post deleted"})
}

// React godoc
// @Summary 帖子反应
// @Description 同类型再次提交取消，不同类型替换
// @Tags 帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Param body body ReactionRequest true "HELP_FIND_FRIEND 或 HIT_ME_UP"
// @Success 200 {object} util.Response
// @Router /api/posts/{id}/reactions [post]
func (c *PostController) React(ctx *gin.Context) {
	var req ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Missing required fields")
		return
	}
	reaction, action, err := c.PostService.React(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), model.ReactionType(strings.ToUpper(req.Type)))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"action": action, "reaction": reaction})
}

// Comment godoc
// @Summary 发表评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Param body body CommentRequest true "评论内容，parentId 用于回复"
// @Success 201 {object} util.Response{data=model.Comment}
// @Router /api/posts/{id}/comments [post]
func (c *PostController) Comment(ctx *gin.Context) {
	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Missing required fields")
		return
	}
	comment, err := c.PostService.Comment(ctx.Request.Context(), actorFrom(ctx), ctx.Param("id"), service.CommentInput{
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"comment": comment})
}

// DeleteComment godoc
// @Summary 删除评论
// @Tags 帖子
// @Produce json
// @Security ApiKeyAuth
// @Param commentId path string true "评论ID"
// @Success 200 {object} util.Response
// @Router /api/comments/{commentId} [delete]
func (c *PostController) DeleteComment(ctx *gin.Context) {
	if err := c.PostService.DeleteComment(ctx.Request.Context(), actorFrom(ctx), ctx.Param("commentId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Comment deleted"})
}
