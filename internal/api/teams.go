package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"hackhub/internal/storage"
)

func CreateTeam(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uid(c)
		var req struct {
			Name              string   `json:"name"`
			Description       string   `json:"description"`
			TechStack         []string `json:"tech_stack"`
			LookingForMembers bool     `json:"looking_for_members"`
			MaxMembers        int      `json:"max_members"`
		}
		if err := c.BindJSON(&req); err != nil || req.Name == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if req.MaxMembers < 1 {
			req.MaxMembers = 5
		}
		if req.TechStack == nil {
			req.TechStack = []string{}
		}

		t := &storage.Team{
			Name:              req.Name,
			Description:       req.Description,
			LeaderID:          userID,
			TechStack:         req.TechStack,
			LookingForMembers: req.LookingForMembers,
			MaxMembers:        req.MaxMembers,
		}
		err := teams.Create(c.Request.Context(), t)
		if errors.Is(err, storage.ErrAlreadyInTeam) {
			c.JSON(409, gin.H{"error": "you already belong to a team"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &userID, "create_team", "team_id="+strconv.Itoa(t.ID))
		c.JSON(200, t)
	}
}

// TeamLobby lists teams looking for members with a free slot.
func TeamLobby(teams storage.TeamStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := teams.Lobby(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

// MyTeam returns the caller's team with its member list, or 404.
func MyTeam(teams storage.TeamStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uid(c)
		t, err := teams.TeamOfUser(c.Request.Context(), userID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "no team"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		members, err := teams.Members(c.Request.Context(), t.ID)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		// Only the leader sees the join code.
		if t.LeaderID != userID {
			t.JoinCode = ""
		}
		c.JSON(200, gin.H{"team": t, "members": members})
	}
}

func JoinTeamByCode(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uid(c)
		var req struct {
			JoinCode string `json:"join_code"`
		}
		if err := c.BindJSON(&req); err != nil || req.JoinCode == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		t, err := teams.GetByJoinCode(c.Request.Context(), req.JoinCode)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "invalid join code"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		joinTeam(c, teams, audit, t.ID, userID, "join_team_code")
	}
}

// JoinTeamFromLobby joins a team advertising for members.
func JoinTeamFromLobby(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uid(c)
		teamID, _ := strconv.Atoi(c.Param("id"))

		t, err := teams.Get(c.Request.Context(), teamID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "team not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		if !t.LookingForMembers {
			c.JSON(403, gin.H{"error": "team is not looking for members"})
			return
		}

		joinTeam(c, teams, audit, teamID, userID, "join_team_lobby")
	}
}

func joinTeam(c *gin.Context, teams storage.TeamStore, audit storage.AuditStore, teamID, userID int, action string) {
	err := teams.Join(c.Request.Context(), teamID, userID)
	switch {
	case errors.Is(err, storage.ErrAlreadyInTeam):
		c.JSON(409, gin.H{"error": "you already belong to a team"})
	case errors.Is(err, storage.ErrTeamFull):
		c.JSON(409, gin.H{"error": "team is full"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(404, gin.H{"error": "team not found"})
	case err != nil:
		c.JSON(500, gin.H{"error": "db"})
	default:
		audit.Record(c.Request.Context(), &userID, action, "team_id="+strconv.Itoa(teamID))
		c.JSON(200, gin.H{"ok": true})
	}
}

// leaderTeam loads the team and verifies the caller leads it.
func leaderTeam(c *gin.Context, teams storage.TeamStore) (*storage.Team, bool) {
	teamID, _ := strconv.Atoi(c.Param("id"))
	t, err := teams.Get(c.Request.Context(), teamID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(404, gin.H{"error": "team not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(500, gin.H{"error": "db"})
		return nil, false
	}
	if t.LeaderID != uid(c) {
		c.JSON(403, gin.H{"error": "leader only"})
		return nil, false
	}
	return t, true
}

func ToggleTeamReady(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := leaderTeam(c, teams)
		if !ok {
			return
		}

		if err := teams.SetReady(c.Request.Context(), t.ID, !t.IsReady); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		actor := uid(c)
		audit.Record(c.Request.Context(), &actor, "toggle_team_ready", "team_id="+strconv.Itoa(t.ID))
		c.JSON(200, gin.H{"ok": true, "is_ready": !t.IsReady})
	}
}

func UpdateTeam(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := leaderTeam(c, teams)
		if !ok {
			return
		}

		var req struct {
			Name              string   `json:"name"`
			Description       string   `json:"description"`
			TechStack         []string `json:"tech_stack"`
			LookingForMembers bool     `json:"looking_for_members"`
		}
		if err := c.BindJSON(&req); err != nil || req.Name == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if req.TechStack == nil {
			req.TechStack = t.TechStack
		}

		err := teams.UpdateSettings(c.Request.Context(), t.ID, req.Name, req.Description, req.TechStack, req.LookingForMembers)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		actor := uid(c)
		audit.Record(c.Request.Context(), &actor, "update_team", "team_id="+strconv.Itoa(t.ID))
		c.JSON(200, gin.H{"ok": true})
	}
}

// KickMember removes a member. The leader cannot be kicked; this is verified
// here, not just in the UI.
func KickMember(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := leaderTeam(c, teams)
		if !ok {
			return
		}

		var req struct {
			UserID int `json:"user_id"`
		}
		if err := c.BindJSON(&req); err != nil || req.UserID == 0 {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if req.UserID == t.LeaderID {
			c.JSON(400, gin.H{"error": "cannot kick the team leader"})
			return
		}

		err := teams.RemoveMember(c.Request.Context(), t.ID, req.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not a member"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		actor := uid(c)
		audit.Record(c.Request.Context(), &actor, "kick_member",
			"team_id="+strconv.Itoa(t.ID)+" user_id="+strconv.Itoa(req.UserID))
		c.JSON(200, gin.H{"ok": true})
	}
}

// LeaveTeam removes the caller's own membership. The leader must delete the
// team instead of leaving it behind leaderless.
func LeaveTeam(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uid(c)
		teamID, _ := strconv.Atoi(c.Param("id"))

		t, err := teams.Get(c.Request.Context(), teamID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "team not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		if t.LeaderID == userID {
			c.JSON(400, gin.H{"error": "leader cannot leave, delete the team instead"})
			return
		}

		err = teams.RemoveMember(c.Request.Context(), teamID, userID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not a member"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &userID, "leave_team", "team_id="+strconv.Itoa(teamID))
		c.JSON(200, gin.H{"ok": true})
	}
}

func DeleteTeam(teams storage.TeamStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := leaderTeam(c, teams)
		if !ok {
			return
		}

		if err := teams.Delete(c.Request.Context(), t.ID); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		actor := uid(c)
		audit.Record(c.Request.Context(), &actor, "delete_team", "team_id="+strconv.Itoa(t.ID))
		c.JSON(200, gin.H{"ok": true})
	}
}
