package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hackhub/internal/storage"
)

var validRoles = map[string]bool{
	storage.RoleAdmin:       true,
	storage.RoleOrganizer:   true,
	storage.RoleModerator:   true,
	storage.RoleMentor:      true,
	storage.RoleParticipant: true,
}

// GET /api/admin/users?role=participant|...|all
func AdminListUsers(profiles storage.ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := profiles.List(c.Request.Context(), c.Query("role"))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func AdminUpdateUser(profiles storage.ProfileStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))

		var req struct {
			FullName string `json:"full_name"`
			Role     string `json:"role"`
			MaxTeams int    `json:"max_teams"`
		}
		if err := c.BindJSON(&req); err != nil || req.FullName == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if !validRoles[req.Role] {
			c.JSON(400, gin.H{"error": "invalid role"})
			return
		}
		if req.MaxTeams < 1 {
			req.MaxTeams = 1
		}

		p, err := profiles.Get(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		// Promoting to mentor puts the profile through the review queue.
		if req.Role == storage.RoleMentor && p.Role != storage.RoleMentor {
			pending := storage.MentorPending
			p.MentorStatus = &pending
		}
		if req.Role != storage.RoleMentor {
			p.MentorStatus = nil
		}

		p.FullName = req.FullName
		p.Role = req.Role
		p.MaxTeams = req.MaxTeams
		if err := profiles.Update(c.Request.Context(), p); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "admin_update_user", "user_id="+strconv.Itoa(id))
		c.JSON(200, p)
	}
}

func AdminDeleteUser(profiles storage.ProfileStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		if id == actor {
			c.JSON(400, gin.H{"error": "cannot delete yourself"})
			return
		}
		err := profiles.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "admin_delete_user", "user_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- Mentor application review ------------------- */

// GET /api/admin/mentor-applications?status=pending|approved|rejected|all
func AdminListMentorApplications(profiles storage.ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := profiles.ListMentorApplications(c.Request.Context(), c.Query("status"))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func AdminApproveMentor(profiles storage.ProfileStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))

		now := time.Now()
		err := profiles.SetMentorStatus(c.Request.Context(), id, storage.MentorApproved, nil, &now)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "approve_mentor", "user_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

// AdminRejectMentor requires a non-empty reason; it is stored on the profile.
func AdminRejectMentor(profiles storage.ProfileStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))

		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
			c.JSON(400, gin.H{"error": "rejection reason is required"})
			return
		}
		reason := strings.TrimSpace(req.Reason)

		err := profiles.SetMentorStatus(c.Request.Context(), id, storage.MentorRejected, &reason, nil)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "reject_mentor", "user_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

// AdminResetMentor puts a rejected application back in the queue.
func AdminResetMentor(profiles storage.ProfileStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))

		err := profiles.SetMentorStatus(c.Request.Context(), id, storage.MentorPending, nil, nil)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "reset_mentor", "user_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- Public ------------------- */

// ListMentors is the public mentors page: approved mentors only.
func ListMentors(profiles storage.ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		mentors, err := profiles.ListApprovedMentors(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		type mentorView struct {
			ID       int    `json:"id"`
			FullName string `json:"full_name"`
		}
		out := []mentorView{}
		for _, m := range mentors {
			out = append(out, mentorView{ID: m.ID, FullName: m.FullName})
		}
		c.JSON(200, out)
	}
}
