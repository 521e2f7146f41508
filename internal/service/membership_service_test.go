package service

import (
	"errors"
	"net/http"
	"testing"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCapacityReached(t *testing.T) {
	cases := []struct {
		active    int64
		maxPeople int
		want      bool
	}{
		{0, 2, false},
		{1, 2, true},
		{2, 4, false},
		{3, 4, true},
		{5, 4, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CapacityReached(c.active, c.maxPeople), "active=%d max=%d", c.active, c.maxPeople)
	}
}

func TestRequestToJoin_CreatesInterestedMemberAndNotifiesCreator(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Alice Johnson")
	event := f.event(t, creator, "Sunburn Festival")
	group := f.group(t, creator, event, 5)

	member, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberInterested, member.Status)
	assert.Equal(t, joiner.ID, member.UserID)
	assert.Equal(t, group.ID, member.GroupID)
	assert.NotEmpty(t, member.ID)

	msgs := f.systemMessagesTo(t, creator.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, joiner.ID, msgs[0].SenderID)
	assert.Equal(t, `Alice Johnson is interested in your group "Sunburn Festival". Check their profile and accept or message them!`, msgs[0].Content)
	assert.Nil(t, msgs[0].GroupID)

	assert.Equal(t, model.GroupOpen, f.groupStatus(t, group.ID))
}

func TestRequestToJoin_SecondAttemptConflicts(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)

	_, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)

	_, err = f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	assert.ErrorIs(t, err, util.ErrConflict)
	assert.ErrorIs(t, err, util.ErrAlreadyMember)

	count, err := f.members.CountByGroup(f.ctx, group.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Len(t, f.systemMessagesTo(t, creator.ID), 1)
}

func TestRequestToJoin_RejectedRowStillBlocks(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
	f.addMember(t, group, joiner, model.MemberRejected)

	_, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyMember)
}

func TestRequestToJoin_NotOpenConflicts(t *testing.T) {
	for _, status := range []model.GroupStatus{model.GroupFilled, model.GroupClosed} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			creator := f.user(t, "Creator")
			joiner := f.user(t, "Joiner")
			group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
			require.NoError(t, f.groups.UpdateStatus(f.ctx, group.ID, status))

			_, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
			assert.ErrorIs(t, err, util.ErrConflict)
			assert.ErrorIs(t, err, util.ErrGroupNotOpen)
			assert.Empty(t, f.systemMessagesTo(t, creator.ID))
		})
	}
}

func TestRequestToJoin_ThirdMemberFillsGroupOfFour(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 4)
	f.addMember(t, group, f.user(t, "A"), model.MemberAccepted)
	f.addMember(t, group, f.user(t, "B"), model.MemberInterested)

	_, err := f.membership.RequestToJoin(f.ctx, group.ID, f.user(t, "C").ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupFilled, f.groupStatus(t, group.ID))
}

func TestRequestToJoin_FullGroupConflicts(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 4)
	for _, name := range []string{"A", "B", "C"} {
		f.addMember(t, group, f.user(t, name), model.MemberAccepted)
	}

	_, err := f.membership.RequestToJoin(f.ctx, group.ID, f.user(t, "D").ID)
	assert.ErrorIs(t, err, util.ErrConflict)
	assert.ErrorIs(t, err, util.ErrGroupFull)

	count, err := f.members.CountByGroup(f.ctx, group.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestRequestToJoin_RejectedMembersDoNotHoldSeats(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 3)
	f.addMember(t, group, f.user(t, "A"), model.MemberRejected)
	f.addMember(t, group, f.user(t, "B"), model.MemberRejected)

	_, err := f.membership.RequestToJoin(f.ctx, group.ID, f.user(t, "C").ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupOpen, f.groupStatus(t, group.ID))
}

func TestRequestToJoin_NotFound(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 4)

	_, err := f.membership.RequestToJoin(f.ctx, "missing", creator.ID)
	assert.ErrorIs(t, err, util.ErrGroupNotFound)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = f.membership.RequestToJoin(f.ctx, group.ID, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestRequestToJoin_CreatorCannotJoinOwnGroup(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 4)

	_, err := f.membership.RequestToJoin(f.ctx, group.ID, creator.ID)
	assert.ErrorIs(t, err, util.ErrOwnGroup)
}

func TestDecideMembership_OnlyCreator(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	other := f.user(t, "Other")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 4)
	member, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)

	_, err = f.membership.DecideMembership(f.ctx, group.ID, member.ID, ActionAccept, other.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	stored, err := f.members.FindByID(f.ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberInterested, stored.Status)

	decided, err := f.membership.DecideMembership(f.ctx, group.ID, member.ID, ActionAccept, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberAccepted, decided.Status)
	assert.NotNil(t, decided.DecidedAt)

	msgs := f.systemMessagesTo(t, joiner.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, acceptedNotice, msgs[0].Content)
	assert.Equal(t, creator.ID, msgs[0].SenderID)
}

func TestDecideMembership_InvalidAction(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 4)
	member := f.addMember(t, group, f.user(t, "Joiner"), model.MemberInterested)

	_, err := f.membership.DecideMembership(f.ctx, group.ID, member.ID, "approve", creator.ID)
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}

func TestDecideMembership_RedecideMutatesSameRow(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 4)
	member, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)

	_, err = f.membership.DecideMembership(f.ctx, group.ID, member.ID, ActionAccept, creator.ID)
	require.NoError(t, err)
	decided, err := f.membership.DecideMembership(f.ctx, group.ID, member.ID, ActionReject, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberRejected, decided.Status)
	assert.Equal(t, member.ID, decided.ID)

	rows, err := f.members.ListByGroup(f.ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.MemberRejected, rows[0].Status)

	msgs := f.systemMessagesTo(t, joiner.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, rejectedNotice, msgs[1].Content)
}

func TestDecideMembership_MemberOfAnotherGroup(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	event := f.event(t, creator, "Concert")
	g1 := f.group(t, creator, event, 4)
	g2 := f.group(t, creator, event, 4)
	member := f.addMember(t, g2, f.user(t, "Joiner"), model.MemberInterested)

	_, err := f.membership.DecideMembership(f.ctx, g1.ID, member.ID, ActionAccept, creator.ID)
	assert.ErrorIs(t, err, util.ErrMemberNotFound)

	_, err = f.membership.DecideMembership(f.ctx, g1.ID, "missing", ActionAccept, creator.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestDecideMembership_RejectDoesNotReopenFilledGroup(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 2)

	member, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	require.Equal(t, model.GroupFilled, f.groupStatus(t, group.ID))

	_, err = f.membership.DecideMembership(f.ctx, group.ID, member.ID, ActionReject, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupFilled, f.groupStatus(t, group.ID))
}

func TestLeaveGroup(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
	_, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)

	require.NoError(t, f.membership.LeaveGroup(f.ctx, group.ID, joiner.ID))
	members, err := f.membership.ListMembers(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	assert.ErrorIs(t, f.membership.LeaveGroup(f.ctx, group.ID, joiner.ID), util.ErrMemberNotFound)
}

func TestLeaveGroup_RejectedCannotReapply(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)

	member, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	_, err = f.membership.DecideMembership(f.ctx, group.ID, member.ID, ActionReject, creator.ID)
	require.NoError(t, err)

	err = f.membership.LeaveGroup(f.ctx, group.ID, joiner.ID)
	assert.ErrorIs(t, err, util.ErrConflict)
	assert.ErrorIs(t, err, util.ErrRejectedWithdraw)

	_, err = f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyMember)

	stored, err := f.members.FindByGroupAndUser(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, stored.ID)
	assert.Equal(t, model.MemberRejected, stored.Status)
	assert.Len(t, f.systemMessagesTo(t, creator.ID), 1)
}

func TestLeaveGroup_AcceptedMemberMayLeaveAndReapply(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
	f.addMember(t, group, joiner, model.MemberAccepted)

	require.NoError(t, f.membership.LeaveGroup(f.ctx, group.ID, joiner.ID))

	member, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberInterested, member.Status)
}

func TestRequestToJoin_MissingEventUsesFallbackTitle(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	event := f.event(t, creator, "Concert")
	group := f.group(t, creator, event, 5)
	require.NoError(t, f.db.Delete(&model.Event{}, "id = ?", event.ID).Error)

	_, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)

	msgs := f.systemMessagesTo(t, creator.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, `Joiner is interested in your group "your event". Check their profile and accept or message them!`, msgs[0].Content)
}

func TestMemberCreate_DuplicateMapsToAlreadyMember(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
	f.addMember(t, group, joiner, model.MemberInterested)

	// 并发加入时两次 Create 都可能越过存在性检查，由唯一索引兜底
	err := f.members.Create(f.ctx, &model.GroupMember{GroupID: group.ID, UserID: joiner.ID, Status: model.MemberInterested, JoinedAt: time.Now()})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	mapped := duplicate(err, util.ErrAlreadyMember)
	assert.ErrorIs(t, mapped, util.ErrAlreadyMember)
	assert.Equal(t, http.StatusBadRequest, util.StatusFor(mapped))

	other := errors.New("boom")
	assert.Same(t, other, duplicate(other, util.ErrAlreadyMember))
}
