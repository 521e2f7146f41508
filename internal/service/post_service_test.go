package service

import (
	"testing"
	"zorides_backend/internal/model"
	"zorides_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostReactions_Toggle(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "Author")
	reader := f.user(t, "Reader")
	posts := NewPostService(f.posts, f.events)

	post, err := posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{Content: "Anyone going to the concert?"})
	require.NoError(t, err)
	actor := Actor{UserID: reader.ID}

	reaction, action, err := posts.React(f.ctx, actor, post.ID, model.ReactionHitMeUp)
	require.NoError(t, err)
	assert.Equal(t, ReactionCreated, action)
	assert.Equal(t, model.ReactionHitMeUp, reaction.Type)

	reaction, action, err = posts.React(f.ctx, actor, post.ID, model.ReactionHelpFindFriend)
	require.NoError(t, err)
	assert.Equal(t, ReactionUpdated, action)
	assert.Equal(t, model.ReactionHelpFindFriend, reaction.Type)

	detail, err := posts.Get(f.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reactions, 1)

	reaction, action, err = posts.React(f.ctx, actor, post.ID, model.ReactionHelpFindFriend)
	require.NoError(t, err)
	assert.Equal(t, ReactionRemoved, action)
	assert.Nil(t, reaction)

	detail, err = posts.Get(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Reactions)

	_, _, err = posts.React(f.ctx, actor, post.ID, "LIKE")
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}

func TestPost_CreateValidatesEvent(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "Author")
	posts := NewPostService(f.posts, f.events)

	missing := "missing"
	_, err := posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{Content: "hi", EventID: &missing})
	assert.ErrorIs(t, err, util.ErrEventNotFound)

	_, err = posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{Content: "  "})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	event := f.event(t, author, "Concert")
	post, err := posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{
		Content:   "hi",
		EventID:   &event.ID,
		MediaURLs: []string{"/uploads/posts/a.jpg"},
	})
	require.NoError(t, err)
	require.NotNil(t, post.Event)
	assert.Equal(t, "Concert", post.Event.Title)
	assert.Equal(t, []string{"/uploads/posts/a.jpg"}, post.MediaURLs.Items())
}

func TestPost_UpdateAndDeletePermissions(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "Author")
	other := f.user(t, "Other")
	admin := f.admin(t)
	posts := NewPostService(f.posts, f.events)

	post, err := posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{Content: "original"})
	require.NoError(t, err)

	edited := "edited"
	_, err = posts.Update(f.ctx, Actor{UserID: other.ID}, post.ID, PostUpdate{Content: &edited})
	assert.ErrorIs(t, err, util.ErrForbidden)
	_, err = posts.Update(f.ctx, Actor{UserID: admin.ID, Admin: true}, post.ID, PostUpdate{Content: &edited})
	assert.ErrorIs(t, err, util.ErrForbidden)

	updated, err := posts.Update(f.ctx, Actor{UserID: author.ID}, post.ID, PostUpdate{Content: &edited})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.ErrorIs(t, posts.Delete(f.ctx, Actor{UserID: other.ID}, post.ID), util.ErrForbidden)
	require.NoError(t, posts.Delete(f.ctx, Actor{UserID: admin.ID, Admin: true}, post.ID))
	_, err = posts.Get(f.ctx, post.ID)
	assert.ErrorIs(t, err, util.ErrPostNotFound)
}

func TestPostComments_ThreadDeletion(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "Author")
	reader := f.user(t, "Reader")
	posts := NewPostService(f.posts, f.events)

	post, err := posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{Content: "post"})
	require.NoError(t, err)
	otherPost, err := posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{Content: "other"})
	require.NoError(t, err)

	root, err := posts.Comment(f.ctx, Actor{UserID: reader.ID}, post.ID, CommentInput{Content: "root"})
	require.NoError(t, err)
	assert.Equal(t, "Reader", root.User.Name)
	reply, err := posts.Comment(f.ctx, Actor{UserID: author.ID}, post.ID, CommentInput{Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = posts.Comment(f.ctx, Actor{UserID: reader.ID}, post.ID, CommentInput{Content: "nested", ParentID: &reply.ID})
	require.NoError(t, err)

	_, err = posts.Comment(f.ctx, Actor{UserID: reader.ID}, otherPost.ID, CommentInput{Content: "x", ParentID: &root.ID})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	assert.ErrorIs(t, posts.DeleteComment(f.ctx, Actor{UserID: author.ID}, root.ID), util.ErrForbidden)
	require.NoError(t, posts.DeleteComment(f.ctx, Actor{UserID: reader.ID}, root.ID))

	detail, err := posts.Get(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Comments)
}

func TestPostReactions_DuplicateRowMapsToConflict(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "Author")
	reader := f.user(t, "Reader")
	posts := NewPostService(f.posts, f.events)
	post, err := posts.Create(f.ctx, Actor{UserID: author.ID}, PostInput{Content: "Carpool to the match?"})
	require.NoError(t, err)

	require.NoError(t, f.posts.CreateReaction(f.ctx, &model.Reaction{PostID: post.ID, UserID: reader.ID, Type: model.ReactionHitMeUp}))
	err = f.posts.CreateReaction(f.ctx, &model.Reaction{PostID: post.ID, UserID: reader.ID, Type: model.ReactionHelpFindFriend})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	mapped := duplicate(err, util.ErrAlreadyReacted)
	assert.ErrorIs(t, mapped, util.ErrConflict)
	assert.ErrorIs(t, mapped, util.ErrAlreadyReacted)
}
