package service

import (
	"context"
	"fmt"
	"testing"
	"time"
	"zorides_backend/internal/model"
	"zorides_backend/internal/repository"
	"zorides_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	ctx        context.Context
	db         *gorm.DB
	users      *repository.UserRepository
	events     *repository.EventRepository
	groups     *repository.GroupRepository
	members    *repository.MemberRepository
	messages   *repository.MessageRepository
	posts      *repository.PostRepository
	cache      *repository.FeedCache
	membership *MembershipService
	seq        int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	f := &fixture{
		ctx:      context.Background(),
		db:       db,
		users:    repository.NewUserRepository(db),
		events:   repository.NewEventRepository(db),
		groups:   repository.NewGroupRepository(db),
		members:  repository.NewMemberRepository(db),
		messages: repository.NewMessageRepository(db),
		posts:    repository.NewPostRepository(db),
		cache:    repository.NewFeedCache(nil, 0),
	}
	f.membership = NewMembershipService(db, f.groups, f.members, f.users, f.events, f.messages, f.cache)
	return f
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	f.seq++
	u := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("user%d@test.local", f.seq),
		Password: "x",
		Role:     model.RoleUser,
	}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) admin(t *testing.T) *model.User {
	t.Helper()
	u := f.user(t, "Admin")
	require.NoError(t, f.users.UpdateFields(f.ctx, u.ID, map[string]interface{}{"role": model.RoleAdmin}))
	u.Role = model.RoleAdmin
	return u
}

func (f *fixture) event(t *testing.T, creator *model.User, title string) *model.Event {
	t.Helper()
	e := &model.Event{
		Title:       title,
		Description: "desc",
		State:       "Maharashtra",
		District:    "Mumbai",
		Locality:    "Andheri West",
		Date:        time.Now().Add(48 * time.Hour),
		CreatorID:   creator.ID,
		Status:      model.EventOpen,
	}
	require.NoError(t, f.events.Create(f.ctx, e))
	return e
}

func (f *fixture) group(t *testing.T, creator *model.User, event *model.Event, maxPeople int) *model.AttendantGroup {
	t.Helper()
	g := &model.AttendantGroup{
		EventID:         event.ID,
		CreatorID:       creator.ID,
		PlanDescription: "Going together",
		MaxPeople:       maxPeople,
		Status:          model.GroupOpen,
	}
	require.NoError(t, f.groups.Create(f.ctx, g))
	return g
}

// addMember 直接写入成员记录，绕过加入流程
func (f *fixture) addMember(t *testing.T, g *model.AttendantGroup, u *model.User, status model.MemberStatus) *model.GroupMember {
	t.Helper()
	m := &model.GroupMember{GroupID: g.ID, UserID: u.ID, Status: status, JoinedAt: time.Now()}
	require.NoError(t, f.members.Create(f.ctx, m))
	return m
}

func (f *fixture) groupStatus(t *testing.T, id string) model.GroupStatus {
	t.Helper()
	g, err := f.groups.FindByID(f.ctx, id)
	require.NoError(t, err)
	return g.Status
}

func (f *fixture) systemMessagesTo(t *testing.T, userID uint) []model.Message {
	t.Helper()
	var msgs []model.Message
	require.NoError(t, f.db.Where("recipient_id = ? AND is_system_message = ?", userID, true).Order("created_at ASC").Find(&msgs).Error)
	return msgs
}
