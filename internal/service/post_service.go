package service

import (
	"context"
	"errors"
	"strings"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"

	"gorm.io/gorm"
)

type ReactionAction string

const (
	ReactionCreated ReactionAction = "created"
	ReactionUpdated ReactionAction = "updated"
	ReactionRemoved ReactionAction = "removed"
)

type PostService struct {
	PostRepo  *repository.PostRepository
	EventRepo *repository.EventRepository
}

func NewPostService(postRepo *repository.PostRepository, eventRepo *repository.EventRepository) *PostService {
	return &PostService{
		PostRepo:  postRepo,
		EventRepo: eventRepo,
	}
}

type PostInput struct {
	Content   string
	EventID   *string
	MediaURLs []string
}

type PostUpdate struct {
	Content   *string
	MediaURLs []string
}

func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	return s.PostRepo.List(ctx, util.PostListLimit)
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.PostRepo.FindDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrPostNotFound)
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, actor Actor, in PostInput) (*model.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, util.InvalidArgumentError("Content is required")
	}

	post := &model.Post{
		UserID:    actor.UserID,
		Content:   in.Content,
		MediaURLs: model.NewStringList(in.MediaURLs),
	}
	if in.EventID != nil && *in.EventID != "" {
		if _, err := s.EventRepo.FindByID(ctx, *in.EventID); err != nil {
			return nil, notFound(err, util.ErrEventNotFound)
		}
		eventID := *in.EventID
		post.EventID = &eventID
	}

	if err := s.PostRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.Get(ctx, post.ID)
}

// Update 仅作者本人可编辑
func (s *PostService) Update(ctx context.Context, actor Actor, id string, in PostUpdate) (*model.Post, error) {
	post, err := s.PostRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrPostNotFound)
	}
	if post.UserID != actor.UserID {
		return nil, util.ForbiddenError("Only the author can edit this post")
	}

	fields := map[string]interface{}{}
	if in.Content != nil && strings.TrimSpace(*in.Content) != "" {
		fields["content"] = *in.Content
	}
	if in.MediaURLs != nil {
		fields["media_urls"] = model.NewStringList(in.MediaURLs)
	}
	if len(fields) > 0 {
		if err := s.PostRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, actor Actor, id string) error {
	post, err := s.PostRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, util.ErrPostNotFound)
	}
	if !actor.CanModify(post.UserID) {
		return util.ErrNotOwner
	}
	return s.PostRepo.DeleteCascade(ctx, id)
}

// React 同类型再次提交取消，不同类型则替换
func (s *PostService) React(ctx context.Context, actor Actor, postID string, t model.ReactionType) (*model.Reaction, ReactionAction, error) {
	if !t.Valid() {
		return nil, "", util.InvalidArgumentError("Invalid reaction type")
	}
	if _, err := s.PostRepo.FindByID(ctx, postID); err != nil {
		return nil, "", notFound(err, util.ErrPostNotFound)
	}

	existing, err := s.PostRepo.FindReaction(ctx, postID, actor.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if err == nil {
		if existing.Type == t {
			if err := s.PostRepo.DeleteReaction(ctx, existing.ID); err != nil {
				return nil, "", err
			}
			return nil, ReactionRemoved, nil
		}
		if err := s.PostRepo.UpdateReactionType(ctx, existing.ID, t); err != nil {
			return nil, "", err
		}
		existing.Type = t
		return existing, ReactionUpdated, nil
	}

	reaction := &model.Reaction{PostID: postID, UserID: actor.UserID, Type: t}
	if err := s.PostRepo.CreateReaction(ctx, reaction); err != nil {
		return nil, "", duplicate(err, util.ErrAlreadyReacted)
	}
	return reaction, ReactionCreated, nil
}

type CommentInput struct {
	Content  string
	ParentID *string
}

func (s *PostService) Comment(ctx context.Context, actor Actor, postID string, in CommentInput) (*model.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, util.InvalidArgumentError("Content is required")
	}
	if _, err := s.PostRepo.FindByID(ctx, postID); err != nil {
		return nil, notFound(err, util.ErrPostNotFound)
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  actor.UserID,
		Content: in.Content,
	}
	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.PostRepo.FindComment(ctx, *in.ParentID)
		if err != nil {
			return nil, notFound(err, util.ErrCommentNotFound)
		}
		if parent.PostID != postID {
			return nil, util.InvalidArgumentError("Parent comment belongs to another post")
		}
		parentID := parent.ID
		comment.ParentID = &parentID
	}

	if err := s.PostRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.PostRepo.FindComment(ctx, comment.ID)
}

func (s *PostService) DeleteComment(ctx context.Context, actor Actor, commentID string) error {
	comment, err := s.PostRepo.FindComment(ctx, commentID)
	if err != nil {
		return notFound(err, util.ErrCommentNotFound)
	}
	if !actor.CanModify(comment.UserID) {
		return util.ErrNotOwner
	}
	return s.PostRepo.DeleteCommentTree(ctx, commentID)
}
