package service

import (
	"fmt"
	"testing"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func uintPtr(v uint) *uint { return &v }

func TestMessageSend_Validation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "Alice")
	messages := NewMessageService(f.messages, f.users, f.groups, f.members)
	actor := Actor{UserID: alice.ID}

	_, err := messages.Send(f.ctx, actor, SendMessageInput{RecipientID: uintPtr(alice.ID), Content: " "})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	_, err = messages.Send(f.ctx, actor, SendMessageInput{Content: "hello"})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	_, err = messages.Send(f.ctx, actor, SendMessageInput{RecipientID: uintPtr(alice.ID), Content: "hello"})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	_, err = messages.Send(f.ctx, actor, SendMessageInput{RecipientID: uintPtr(9999), Content: "hello"})
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestMessageSend_DirectAndList(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	messages := NewMessageService(f.messages, f.users, f.groups, f.members)

	msg, err := messages.Send(f.ctx, Actor{UserID: alice.ID}, SendMessageInput{RecipientID: uintPtr(bob.ID), Content: "hi bob"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", msg.Sender.Name)
	require.NotNil(t, msg.Recipient)
	assert.Equal(t, "Bob", msg.Recipient.Name)
	assert.False(t, msg.IsSystemMessage)

	_, err = messages.Send(f.ctx, Actor{UserID: bob.ID}, SendMessageInput{RecipientID: uintPtr(alice.ID), Content: "hi alice"})
	require.NoError(t, err)

	thread, err := messages.List(f.ctx, Actor{UserID: alice.ID}, MessageQuery{OtherUserID: bob.ID})
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "hi bob", thread[0].Content)
	assert.Equal(t, "hi alice", thread[1].Content)
}

func TestMessageGroupAccess(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	member := f.user(t, "Member")
	rejected := f.user(t, "Rejected")
	stranger := f.user(t, "Stranger")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
	f.addMember(t, group, member, model.MemberAccepted)
	f.addMember(t, group, rejected, model.MemberRejected)
	messages := NewMessageService(f.messages, f.users, f.groups, f.members)

	_, err := messages.Send(f.ctx, Actor{UserID: member.ID}, SendMessageInput{GroupID: &group.ID, Content: "see you"})
	require.NoError(t, err)
	_, err = messages.Send(f.ctx, Actor{UserID: creator.ID}, SendMessageInput{GroupID: &group.ID, Content: "meet at 6"})
	require.NoError(t, err)

	_, err = messages.Send(f.ctx, Actor{UserID: stranger.ID}, SendMessageInput{GroupID: &group.ID, Content: "hey"})
	assert.ErrorIs(t, err, util.ErrForbidden)
	_, err = messages.List(f.ctx, Actor{UserID: rejected.ID}, MessageQuery{GroupID: group.ID})
	assert.ErrorIs(t, err, util.ErrForbidden)

	list, err := messages.List(f.ctx, Actor{UserID: member.ID}, MessageQuery{GroupID: group.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "see you", list[0].Content)

	list, err = messages.List(f.ctx, Actor{UserID: stranger.ID, Admin: true}, MessageQuery{GroupID: group.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestConversations(t *testing.T) {
	f := newFixture(t)
	me := f.user(t, "Me")
	bob := f.user(t, "Bob")
	carol := f.user(t, "Carol")
	messages := NewMessageService(f.messages, f.users, f.groups, f.members)

	at := time.Now().Add(-time.Hour)
	send := func(from, to *model.User, content string) {
		t.Helper()
		msg, err := messages.Send(f.ctx, Actor{UserID: from.ID}, SendMessageInput{RecipientID: &to.ID, Content: content})
		require.NoError(t, err)
		at = at.Add(time.Minute)
		require.NoError(t, f.db.Model(&model.Message{}).Where("id = ?", msg.ID).Update("created_at", at).Error)
	}
	send(bob, me, "bob 1")
	send(bob, me, "bob 2")
	send(me, carol, "to carol")
	send(carol, me, "carol reply")
	send(me, bob, "to bob")

	convs, err := messages.Conversations(f.ctx, Actor{UserID: me.ID})
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, bob.ID, convs[0].ID)
	assert.Equal(t, "Bob", convs[0].Name)
	assert.Equal(t, "to bob", convs[0].LastMessage)
	assert.EqualValues(t, 2, convs[0].UnreadCount)

	assert.Equal(t, carol.ID, convs[1].ID)
	assert.Equal(t, "carol reply", convs[1].LastMessage)
	assert.EqualValues(t, 1, convs[1].UnreadCount)

	n, err := messages.MarkConversationRead(f.ctx, Actor{UserID: me.ID}, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	convs, err = messages.Conversations(f.ctx, Actor{UserID: me.ID})
	require.NoError(t, err)
	assert.Zero(t, convs[0].UnreadCount)
	assert.EqualValues(t, 1, convs[1].UnreadCount)

	_, err = messages.MarkConversationRead(f.ctx, Actor{UserID: me.ID}, 0)
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}

func TestConversations_IncludeSystemNotices(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	joiner := f.user(t, "Joiner")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
	_, err := f.membership.RequestToJoin(f.ctx, group.ID, joiner.ID)
	require.NoError(t, err)

	messages := NewMessageService(f.messages, f.users, f.groups, f.members)
	convs, err := messages.Conversations(f.ctx, Actor{UserID: creator.ID})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, joiner.ID, convs[0].ID)
	assert.EqualValues(t, 1, convs[0].UnreadCount)
}

func seedMessages(t *testing.T, f *fixture, n int, build func(i int) model.Message) {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	msgs := make([]model.Message, n)
	for i := range msgs {
		msgs[i] = build(i)
		msgs[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	require.NoError(t, f.db.Omit(clause.Associations).CreateInBatches(msgs, 100).Error)
}

func TestMessageList_KeepsNewestWhenOverLimit(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	messages := NewMessageService(f.messages, f.users, f.groups, f.members)
	total := util.MaxMessagesPerReq + 10
	seedMessages(t, f, total, func(i int) model.Message {
		return model.Message{SenderID: alice.ID, RecipientID: uintPtr(bob.ID), Content: fmt.Sprintf("m%d", i)}
	})

	for _, q := range []MessageQuery{{OtherUserID: bob.ID}, {}} {
		thread, err := messages.List(f.ctx, Actor{UserID: alice.ID}, q)
		require.NoError(t, err)
		require.Len(t, thread, util.MaxMessagesPerReq)
		assert.Equal(t, "m10", thread[0].Content)
		assert.Equal(t, fmt.Sprintf("m%d", total-1), thread[len(thread)-1].Content)
		for i := 1; i < len(thread); i++ {
			assert.True(t, thread[i-1].CreatedAt.Before(thread[i].CreatedAt), "index %d out of order", i)
		}
	}
}

func TestMessageList_GroupKeepsNewestWhenOverLimit(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	group := f.group(t, creator, f.event(t, creator, "Concert"), 5)
	messages := NewMessageService(f.messages, f.users, f.groups, f.members)
	total := util.MaxMessagesPerReq + 10
	seedMessages(t, f, total, func(i int) model.Message {
		return model.Message{SenderID: creator.ID, GroupID: &group.ID, Content: fmt.Sprintf("g%d", i)}
	})

	thread, err := messages.List(f.ctx, Actor{UserID: creator.ID}, MessageQuery{GroupID: group.ID})
	require.NoError(t, err)
	require.Len(t, thread, util.MaxMessagesPerReq)
	assert.Equal(t, "g10", thread[0].Content)
	assert.Equal(t, fmt.Sprintf("g%d", total-1), thread[len(thread)-1].Content)
}
