package api

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackhub/internal/storage"
)

const testSecret = "test-secret"

func authRouter(profiles *fakeProfileStore, settings *fakeSettingsStore) *gin.Engine {
	r := gin.New()
	audit := &fakeAuditStore{}
	r.POST("/api/register", Register(profiles, settings, audit))
	r.POST("/api/login", Login(profiles, audit, testSecret, false))
	r.POST("/api/logout", Logout())

	auth := r.Group("/api", Auth(testSecret))
	auth.GET("/me", Me(profiles))
	auth.PUT("/me", UpdateMe(profiles))
	return r
}

func TestRegisterValidation(t *testing.T) {
	profiles := newFakeProfileStore()
	r := authRouter(profiles, newFakeSettingsStore())

	cases := []struct {
		name string
		body gin.H
		code int
	}{
		{"missing fields", gin.H{"email": "a@b.c"}, 400},
		{"password mismatch", gin.H{"email": "a@b.c", "full_name": "A", "password": "secret1", "password2": "secret2"}, 400},
		{"short password", gin.H{"email": "a@b.c", "full_name": "A", "password": "abc", "password2": "abc"}, 400},
		{"bad role", gin.H{"email": "a@b.c", "full_name": "A", "password": "secret1", "password2": "secret1", "role": "admin"}, 400},
		{"ok", gin.H{"email": "a@b.c", "full_name": "A", "password": "secret1", "password2": "secret1"}, 200},
		{"duplicate email", gin.H{"email": "a@b.c", "full_name": "A", "password": "secret1", "password2": "secret1"}, 409},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performRequest(r, "POST", "/api/register", tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
	assert.Len(t, profiles.profiles, 1)
}

func TestRegisterMentorStartsPending(t *testing.T) {
	profiles := newFakeProfileStore()
	r := authRouter(profiles, newFakeSettingsStore())

	w := performRequest(r, "POST", "/api/register", gin.H{
		"email": "m@b.c", "full_name": "M",
		"password": "secret1", "password2": "secret1", "role": "mentor",
	})
	require.Equal(t, 200, w.Code, w.Body.String())

	ms, err := profiles.ListMentorApplications(nil, storage.MentorPending)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "m@b.c", ms[0].Email)
}

func TestRegistrationWindowBlocksParticipantsOnly(t *testing.T) {
	profiles := newFakeProfileStore()
	settings := newFakeSettingsStore()
	closed := time.Now().Add(-time.Hour).Format(time.RFC3339)
	settings.values[storage.SettingRegistration] = json.RawMessage(
		fmt.Sprintf(`{"closes_at":%q}`, closed))

	r := authRouter(profiles, settings)

	w := performRequest(r, "POST", "/api/register", gin.H{
		"email": "p@b.c", "full_name": "P", "password": "secret1", "password2": "secret1",
	})
	assert.Equal(t, 403, w.Code, "participant signup closed")
	assert.Empty(t, profiles.profiles)

	w = performRequest(r, "POST", "/api/register", gin.H{
		"email": "m@b.c", "full_name": "M",
		"password": "secret1", "password2": "secret1", "role": "mentor",
	})
	assert.Equal(t, 200, w.Code, "mentor signup ignores the window")
}

func TestRegistrationWindowMissingMeansOpen(t *testing.T) {
	r := authRouter(newFakeProfileStore(), newFakeSettingsStore())
	w := performRequest(r, "POST", "/api/register", gin.H{
		"email": "p@b.c", "full_name": "P", "password": "secret1", "password2": "secret1",
	})
	assert.Equal(t, 200, w.Code)
}

func TestLoginSetsCookieAndMeWorks(t *testing.T) {
	profiles := newFakeProfileStore()
	r := authRouter(profiles, newFakeSettingsStore())

	w := performRequest(r, "POST", "/api/register", gin.H{
		"email": "a@b.c", "full_name": "Ada", "password": "secret1", "password2": "secret1",
	})
	require.Equal(t, 200, w.Code)

	w = performRequest(r, "POST", "/api/login", gin.H{"email": "a@b.c", "password": "wrong"})
	assert.Equal(t, 401, w.Code)

	w = performRequest(r, "POST", "/api/login", gin.H{"email": "a@b.c", "password": "secret1"})
	require.Equal(t, 200, w.Code, w.Body.String())

	var cookie string
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "portal_token" {
			cookie = ck.Value
			assert.True(t, ck.HttpOnly)
		}
	}
	require.NotEmpty(t, cookie, "login must set the session cookie")

	req := performRequest(r, "GET", "/api/me", nil)
	assert.Equal(t, 401, req.Code, "no cookie, no session")

	w2 := performAuthed(r, "GET", "/api/me", nil, cookie)
	require.Equal(t, 200, w2.Code)
	var p storage.Profile
	decodeBody(t, w2, &p)
	assert.Equal(t, "Ada", p.FullName)
	assert.Equal(t, storage.RoleParticipant, p.Role)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	r := authRouter(newFakeProfileStore(), newFakeSettingsStore())
	w := performAuthed(r, "GET", "/api/me", nil, "not-a-jwt")
	assert.Equal(t, 401, w.Code)
}

func TestUpdateMeChangesNameOnly(t *testing.T) {
	profiles := newFakeProfileStore()
	r := authRouter(profiles, newFakeSettingsStore())

	performRequest(r, "POST", "/api/register", gin.H{
		"email": "a@b.c", "full_name": "Ada", "password": "secret1", "password2": "secret1",
	})
	w := performRequest(r, "POST", "/api/login", gin.H{"email": "a@b.c", "password": "secret1"})
	require.Equal(t, 200, w.Code)
	cookie := w.Result().Cookies()[0].Value

	w = performAuthed(r, "PUT", "/api/me", gin.H{"full_name": "Ada L."}, cookie)
	require.Equal(t, 200, w.Code)

	var p *storage.Profile
	for _, cand := range profiles.profiles {
		p = cand
	}
	require.NotNil(t, p)
	assert.Equal(t, "Ada L.", p.FullName)
	assert.Equal(t, storage.RoleParticipant, p.Role)
}

func TestAdminRegisterSetupToken(t *testing.T) {
	profiles := newFakeProfileStore()
	r := gin.New()
	r.POST("/api/admin/register", AdminRegister(profiles, &fakeAuditStore{}, "bootstrap-token"))

	w := performRequest(r, "POST", "/api/admin/register", gin.H{
		"email": "root@b.c", "full_name": "Root", "password": "secret1", "setup_token": "wrong",
	})
	assert.Equal(t, 403, w.Code)

	w = performRequest(r, "POST", "/api/admin/register", gin.H{
		"email": "root@b.c", "full_name": "Root", "password": "secret1", "setup_token": "bootstrap-token",
	})
	require.Equal(t, 200, w.Code, w.Body.String())

	admins, _ := profiles.List(nil, storage.RoleAdmin)
	require.Len(t, admins, 1)
}
