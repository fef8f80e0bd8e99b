package api

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackhub/internal/storage"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		role     string
		required []string
		want     bool
	}{
		{"admin", []string{"admin"}, true},
		{"organizer", []string{"admin", "organizer"}, true},
		{"participant", []string{"admin", "organizer"}, false},
		{"", []string{"admin"}, false},
		{"admin", nil, false},
		{"Admin", []string{"admin"}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Authorize(tc.role, tc.required...),
			"Authorize(%q, %v)", tc.role, tc.required)
	}
}

// The role gate reads the profile on every request, so a demotion takes
// effect even while the old token is still valid.
func TestRequireRoleReadsCurrentRole(t *testing.T) {
	profiles := newFakeProfileStore()
	profiles.add(&storage.Profile{ID: 1, Email: "o@example.com", Role: storage.RoleOrganizer})

	r := gin.New()
	r.GET("/api/admin/users", asUser(1), RequireRole(profiles, storage.RoleAdmin, storage.RoleOrganizer),
		AdminListUsers(profiles))

	w := performRequest(r, "GET", "/api/admin/users", nil)
	require.Equal(t, 200, w.Code)

	profiles.profiles[1].Role = storage.RoleParticipant
	w = performRequest(r, "GET", "/api/admin/users", nil)
	assert.Equal(t, 403, w.Code)
}

func TestRequireRoleUnknownUser(t *testing.T) {
	profiles := newFakeProfileStore()
	r := gin.New()
	r.GET("/api/admin/users", asUser(99), RequireRole(profiles, storage.RoleAdmin), AdminListUsers(profiles))

	w := performRequest(r, "GET", "/api/admin/users", nil)
	assert.Equal(t, 401, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/api/news", func(c *gin.Context) { c.JSON(200, gin.H{}) })

	w := performRequest(r, "OPTIONS", "/api/news", nil)
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
