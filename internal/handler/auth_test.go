package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raidledger/api/internal/model"
)

func TestRegisterWithInvite(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	admin, _ := createUser(t, db, "admin", true)

	invite := &model.Invite{Code: "ABCD2345", CreatedByID: &admin.ID, IsActive: true}
	require.NoError(t, db.Create(invite).Error)

	w := performJSON(r, http.MethodPost, "/api/auth/register", map[string]string{
		"username":   "newcomer",
		"password":   "password123",
		"inviteCode": "ABCD2345",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, jsonPath(w))

	var user model.User
	require.NoError(t, db.Where("username = ?", "newcomer").First(&user).Error)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)

	var used model.Invite
	require.NoError(t, db.First(&used, invite.ID).Error)
	assert.False(t, used.IsActive)
	require.NotNil(t, used.UsedByID)
	assert.Equal(t, user.ID, *used.UsedByID)

	// A consumed invite cannot register a second account.
	w = performJSON(r, http.MethodPost, "/api/auth/register", map[string]string{
		"username":   "freeloader",
		"password":   "password123",
		"inviteCode": "ABCD2345",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterSuperuserInvite(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	admin, _ := createUser(t, db, "admin", true)

	invite := &model.Invite{Code: "WXYZ2345", CreatedByID: &admin.ID, IsActive: true, IsSuperuserInvite: true}
	require.NoError(t, db.Create(invite).Error)

	w := performJSON(r, http.MethodPost, "/api/auth/register", map[string]string{
		"username":   "secondadmin",
		"password":   "password123",
		"inviteCode": "WXYZ2345",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, jsonPath(w))

	var user model.User
	require.NoError(t, db.Where("username = ?", "secondadmin").First(&user).Error)
	assert.True(t, user.IsSuperuser)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := performJSON(r, http.MethodPost, "/api/auth/register", map[string]string{
		"username":   "x",
		"password":   "short",
		"inviteCode": "ABCD2345",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSessionFlow(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	createUser(t, db, "raider", false)

	w := performJSON(r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "raider",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, jsonPath(w))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var sessionCookie *http.Cookie
	for _, cookie := range cookies {
		if cookie.Name == "session_id" {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)

	// The cookie authenticates /auth/me.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(sessionCookie)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	var body model.User
	decodeBody(t, me, &body)
	assert.Equal(t, "raider", body.Username)

	// Logout deactivates the session server-side.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(sessionCookie)
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(sessionCookie)
	after := httptest.NewRecorder()
	r.ServeHTTP(after, req)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	createUser(t, db, "raider", false)

	w := performJSON(r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "raider",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performJSON(r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "nobody",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthTiers(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, memberKey := createUser(t, db, "member", false)
	_, adminKey := createUser(t, db, "admin", true)
	systemKey := createSystemToken(t, db)

	// No credential at all.
	w := performJSON(r, http.MethodGet, "/api/guilds", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performJSON(r, http.MethodGet, "/api/guilds", nil, "bogus-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Any valid credential can read, including user-less system tokens.
	w = performJSON(r, http.MethodGet, "/api/guilds", nil, systemKey)
	assert.Equal(t, http.StatusOK, w.Code, jsonPath(w))

	// A system token is not a user account.
	w = performJSON(r, http.MethodGet, "/api/auth/me", nil, systemKey)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Mutations require the superuser flag.
	w = performJSON(r, http.MethodPost, "/api/guilds", map[string]string{"name": "Nope"}, memberKey)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(r, http.MethodPost, "/api/guilds", map[string]string{"name": "Ashes of Draenor"}, adminKey)
	assert.Equal(t, http.StatusCreated, w.Code, jsonPath(w))
}

func TestInactiveTokenRejected(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, key := createUser(t, db, "member", false)

	require.NoError(t, db.Model(&model.Token{}).Where("user_id = ?", user.ID).Update("is_active", false).Error)

	w := performJSON(r, http.MethodGet, "/api/guilds", nil, key)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
