package service

import (
	"testing"
	"zorides_backend/internal/model"
	"zorides_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminService(f *fixture) *AdminService {
	return NewAdminService(f.db, f.users, f.events, f.groups, f.members, f.messages, f.posts, f.cache)
}

func TestAdminDeleteUser_RemovesEverything(t *testing.T) {
	f := newFixture(t)
	victim := f.user(t, "Victim")
	other := f.user(t, "Other")
	admin := newAdminService(f)
	posts := NewPostService(f.posts, f.events)

	ownEvent := f.event(t, victim, "Victim Event")
	f.group(t, other, ownEvent, 4)
	otherEvent := f.event(t, other, "Other Event")
	ownGroup := f.group(t, victim, otherEvent, 4)
	otherGroup := f.group(t, other, otherEvent, 4)
	_, err := f.membership.RequestToJoin(f.ctx, otherGroup.ID, victim.ID)
	require.NoError(t, err)

	otherPost, err := posts.Create(f.ctx, Actor{UserID: other.ID}, PostInput{Content: "other"})
	require.NoError(t, err)
	_, _, err = posts.React(f.ctx, Actor{UserID: victim.ID}, otherPost.ID, model.ReactionHitMeUp)
	require.NoError(t, err)
	_, err = posts.Comment(f.ctx, Actor{UserID: victim.ID}, otherPost.ID, CommentInput{Content: "me too"})
	require.NoError(t, err)
	_, err = posts.Create(f.ctx, Actor{UserID: victim.ID}, PostInput{Content: "mine"})
	require.NoError(t, err)

	require.NoError(t, admin.DeleteUser(f.ctx, victim.ID))

	_, err = f.users.FindByID(f.ctx, victim.ID)
	assert.Error(t, err)
	_, err = f.events.FindByID(f.ctx, ownEvent.ID)
	assert.Error(t, err)
	_, err = f.groups.FindByID(f.ctx, ownGroup.ID)
	assert.Error(t, err)

	count, err := f.members.CountByGroup(f.ctx, otherGroup.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	var n int64
	require.NoError(t, f.db.Model(&model.Message{}).Where("sender_id = ? OR recipient_id = ?", victim.ID, victim.ID).Count(&n).Error)
	assert.Zero(t, n)

	detail, err := posts.Get(f.ctx, otherPost.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Reactions)
	assert.Empty(t, detail.Comments)

	total, err := f.posts.Count(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestAdminDeleteUser_AdminProtected(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	svc := newAdminService(f)

	err := svc.DeleteUser(f.ctx, admin.ID)
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
	assert.EqualError(t, err, "Cannot delete admin user")

	assert.ErrorIs(t, svc.DeleteUser(f.ctx, 9999), util.ErrUserNotFound)
}

func TestAdminListsWithCounts(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	event := f.event(t, creator, "Concert")
	group := f.group(t, creator, event, 4)
	f.addMember(t, group, f.user(t, "A"), model.MemberInterested)
	svc := newAdminService(f)

	users, err := svc.ListUsers(f.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	events, err := svc.ListEvents(f.ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	groups, err := svc.ListGroups(f.ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	updated, err := svc.UpdateEventStatus(f.ctx, event.ID, model.EventClosed)
	require.NoError(t, err)
	assert.Equal(t, model.EventClosed, updated.Status)

	require.NoError(t, svc.DeleteGroup(f.ctx, group.ID))
	assert.ErrorIs(t, svc.DeleteGroup(f.ctx, group.ID), util.ErrGroupNotFound)
}
