package service

import (
	"testing"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEventInput() EventInput {
	return EventInput{
		Title:       "Sunburn Festival",
		Description: "Music festival",
		State:       "Goa",
		District:    "North Goa",
		Locality:    "Vagator",
		Date:        time.Now().Add(72 * time.Hour),
		MediaURLs:   []string{"/uploads/events/a.jpg", " "},
	}
}

func TestEventCreate(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	events := NewEventService(f.events, f.cache)

	event, err := events.Create(f.ctx, Actor{UserID: creator.ID}, validEventInput())
	require.NoError(t, err)
	assert.Equal(t, model.EventOpen, event.Status)
	assert.Equal(t, creator.ID, event.CreatorID)
	assert.Equal(t, "Creator", event.Creator.Name)
	assert.Equal(t, []string{"/uploads/events/a.jpg"}, event.MediaURLs.Items())

	in := validEventInput()
	in.Locality = ""
	_, err = events.Create(f.ctx, Actor{UserID: creator.ID}, in)
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}

func TestEventOwnership(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	other := f.user(t, "Other")
	admin := f.admin(t)
	events := NewEventService(f.events, f.cache)
	event := f.event(t, creator, "Concert")

	title := "Renamed"
	_, err := events.Update(f.ctx, Actor{UserID: other.ID}, event.ID, EventUpdate{Title: &title})
	assert.ErrorIs(t, err, util.ErrNotOwner)

	updated, err := events.Update(f.ctx, Actor{UserID: creator.ID}, event.ID, EventUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Mumbai", updated.District)

	empty := " "
	_, err = events.Update(f.ctx, Actor{UserID: creator.ID}, event.ID, EventUpdate{State: &empty})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	_, err = events.UpdateStatus(f.ctx, Actor{UserID: creator.ID}, event.ID, "DONE")
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	cancelled, err := events.UpdateStatus(f.ctx, Actor{UserID: admin.ID, Admin: true}, event.ID, model.EventCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.EventCancelled, cancelled.Status)
}

func TestEventDeleteCascades(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	events := NewEventService(f.events, f.cache)
	posts := NewPostService(f.posts, f.events)
	messages := NewMessageService(f.messages, f.users, f.groups, f.members)

	event := f.event(t, creator, "Concert")
	group := f.group(t, creator, event, 4)
	_, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	_, err = messages.Send(f.ctx, Actor{UserID: creator.ID}, SendMessageInput{GroupID: &group.ID, Content: "hello group"})
	require.NoError(t, err)
	post, err := posts.Create(f.ctx, Actor{UserID: joiner.ID}, PostInput{Content: "see you there", EventID: &event.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, events.Delete(f.ctx, Actor{UserID: joiner.ID}, event.ID), util.ErrForbidden)
	require.NoError(t, events.Delete(f.ctx, Actor{UserID: creator.ID}, event.ID))

	_, err = events.Get(f.ctx, event.ID)
	assert.ErrorIs(t, err, util.ErrEventNotFound)
	_, err = f.groups.FindByID(f.ctx, group.ID)
	assert.Error(t, err)

	var count int64
	require.NoError(t, f.db.Model(&model.GroupMember{}).Where("group_id = ?", group.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&model.Message{}).Where("group_id = ?", group.ID).Count(&count).Error)
	assert.Zero(t, count)

	kept, err := posts.Get(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.EventID)
}

func TestEventListFilters(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	events := NewEventService(f.events, f.cache)
	f.event(t, creator, "Mumbai Event")
	goa, err := events.Create(f.ctx, Actor{UserID: creator.ID}, validEventInput())
	require.NoError(t, err)

	list, err := events.List(f.ctx, repository.EventFilter{State: "Goa"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, goa.ID, list[0].ID)

	list, err = events.List(f.ctx, repository.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGroupCreateValidation(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	groups := NewGroupService(f.groups, f.events, f.cache)
	event := f.event(t, creator, "Concert")
	actor := Actor{UserID: creator.ID}

	_, err := groups.Create(f.ctx, actor, GroupInput{EventID: event.ID, PlanDescription: "plan", MaxPeople: 1})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	lo, hi := 30, 20
	_, err = groups.Create(f.ctx, actor, GroupInput{EventID: event.ID, PlanDescription: "plan", MaxPeople: 3, AgeMin: &lo, AgeMax: &hi})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	_, err = groups.Create(f.ctx, actor, GroupInput{EventID: "missing", PlanDescription: "plan", MaxPeople: 3})
	assert.ErrorIs(t, err, util.ErrEventNotFound)

	group, err := groups.Create(f.ctx, actor, GroupInput{EventID: event.ID, PlanDescription: "plan", MaxPeople: 3, RideOwnership: "OWN"})
	require.NoError(t, err)
	assert.Equal(t, model.GroupOpen, group.Status)
	assert.Equal(t, "Concert", group.Event.Title)

	require.NoError(t, f.events.UpdateFields(f.ctx, event.ID, map[string]interface{}{"status": model.EventCancelled}))
	_, err = groups.Create(f.ctx, actor, GroupInput{EventID: event.ID, PlanDescription: "plan", MaxPeople: 3})
	assert.ErrorIs(t, err, util.ErrConflict)
}
