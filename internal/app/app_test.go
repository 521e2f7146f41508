package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"zorides_backend/internal/config"
	"zorides_backend/internal/model"
	"zorides_backend/internal/util"
	"zorides_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "integration-test-secret"

type testServer struct {
	app *App
	db  *gorm.DB
	seq int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		JWT:       config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir(), MaxUploadMB: 5},
		Feed:      config.FeedConfig{Limit: 20},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}
	app := New(cfg, db, nil)
	t.Cleanup(func() {
		app.rateLimiter.Stop()
		sqlDB.Close()
	})
	return &testServer{app: app, db: db}
}

func (s *testServer) user(t *testing.T, name string, role model.UserRole) (*model.User, string) {
	t.Helper()
	s.seq++
	u := &model.User{Name: name, Email: fmt.Sprintf("u%d@test.local", s.seq), Password: "x", Role: role}
	require.NoError(t, s.db.Create(u).Error)
	token, err := util.GenerateJWT(u, testSecret, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func dataOf(t *testing.T, resp map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data: %v", resp)
	item, ok := data[key].(map[string]interface{})
	require.True(t, ok, "data has no %s: %v", key, data)
	return item
}

func (s *testServer) createGroup(t *testing.T, token string, maxPeople int) string {
	t.Helper()
	code, resp := s.do(t, http.MethodPost, "/api/events", token, map[string]interface{}{
		"title":       "Sunburn Festival",
		"description": "Music",
		"state":       "Goa",
		"district":    "North Goa",
		"locality":    "Vagator",
		"date":        time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	eventID := dataOf(t, resp, "event")["id"].(string)

	code, resp = s.do(t, http.MethodPost, "/api/groups", token, map[string]interface{}{
		"eventId":         eventID,
		"planDescription": "Carpool from Panjim",
		"maxPeople":       maxPeople,
	})
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	return dataOf(t, resp, "group")["id"].(string)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/groups/x/join", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodPost, "/api/groups/x/join", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/api/feed", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestJoinAndDecideFlow(t *testing.T) {
	s := newTestServer(t)
	creator, creatorToken := s.user(t, "Creator", model.RoleUser)
	joiner, joinerToken := s.user(t, "Joiner", model.RoleUser)
	_, otherToken := s.user(t, "Other", model.RoleUser)

	groupID := s.createGroup(t, creatorToken, 4)

	code, resp := s.do(t, http.MethodPost, "/api/groups/"+groupID+"/join", joinerToken, nil)
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	member := dataOf(t, resp, "member")
	assert.Equal(t, string(model.MemberInterested), member["status"])
	memberID := member["id"].(string)

	code, resp = s.do(t, http.MethodPost, "/api/groups/"+groupID+"/join", joinerToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, util.ErrAlreadyMember.Error(), resp["error"])

	decidePath := "/api/groups/" + groupID + "/members/" + memberID
	code, _ = s.do(t, http.MethodPatch, decidePath, otherToken, map[string]string{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(t, http.MethodPatch, decidePath, creatorToken, map[string]string{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid action", resp["error"])

	code, resp = s.do(t, http.MethodPatch, decidePath, creatorToken, map[string]string{"action": "accept"})
	require.Equal(t, http.StatusOK, code, "%v", resp)
	assert.Equal(t, string(model.MemberAccepted), dataOf(t, resp, "member")["status"])

	var notices int64
	require.NoError(t, s.db.Model(&model.Message{}).
		Where("is_system_message = ? AND recipient_id IN ?", true, []uint{creator.ID, joiner.ID}).
		Count(&notices).Error)
	assert.EqualValues(t, 2, notices)
}

func TestJoinRejectsMismatchedUserID(t *testing.T) {
	s := newTestServer(t)
	creator, creatorToken := s.user(t, "Creator", model.RoleUser)
	_, joinerToken := s.user(t, "Joiner", model.RoleUser)
	groupID := s.createGroup(t, creatorToken, 4)

	code, resp := s.do(t, http.MethodPost, "/api/groups/"+groupID+"/join", joinerToken, map[string]uint{"userId": creator.ID})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, util.ErrIdentityMismatch.Error(), resp["error"])
}

func TestJoinMissingGroup(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "Joiner", model.RoleUser)

	code, resp := s.do(t, http.MethodPost, "/api/groups/missing/join", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Group not found", resp["error"])
}

func TestAdminRoutesRequireRole(t *testing.T) {
	s := newTestServer(t)
	_, userToken := s.user(t, "User", model.RoleUser)
	_, adminToken := s.user(t, "Admin", model.RoleAdmin)

	code, _ := s.do(t, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, code, "%v", resp)
}
