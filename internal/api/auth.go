package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hackhub/internal/storage"
)

type registrationWindow struct {
	OpensAt  *time.Time `json:"opens_at"`
	ClosesAt *time.Time `json:"closes_at"`
}

// registrationOpen reports whether participant signup is currently allowed.
// A missing or partial window leaves registration open.
func registrationOpen(c *gin.Context, settings storage.SettingsStore, now time.Time) bool {
	raw, err := settings.Get(c.Request.Context(), storage.SettingRegistration)
	if err != nil {
		return true
	}
	var w registrationWindow
	if err := json.Unmarshal(raw, &w); err != nil {
		return true
	}
	if w.OpensAt != nil && now.Before(*w.OpensAt) {
		return false
	}
	if w.ClosesAt != nil && now.After(*w.ClosesAt) {
		return false
	}
	return true
}

func Register(profiles storage.ProfileStore, settings storage.SettingsStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email     string `json:"email"`
			FullName  string `json:"full_name"`
			Password  string `json:"password"`
			Password2 string `json:"password2"`
			Role      string `json:"role"` // participant|mentor
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if req.Email == "" || req.FullName == "" || req.Password == "" || req.Password2 == "" {
			c.JSON(400, gin.H{"error": "fill all fields"})
			return
		}
		if req.Password != req.Password2 {
			c.JSON(400, gin.H{"error": "passwords do not match"})
			return
		}
		if len(req.Password) < 6 {
			c.JSON(400, gin.H{"error": "password too short"})
			return
		}
		if req.Role == "" {
			req.Role = storage.RoleParticipant
		}
		if req.Role != storage.RoleParticipant && req.Role != storage.RoleMentor {
			c.JSON(400, gin.H{"error": "invalid role"})
			return
		}

		if req.Role == storage.RoleParticipant && !registrationOpen(c, settings, time.Now()) {
			c.JSON(403, gin.H{"error": "registration is closed"})
			return
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), 10)

		p := &storage.Profile{
			Email:    req.Email,
			FullName: req.FullName,
			Role:     req.Role,
			MaxTeams: 1,
		}
		if req.Role == storage.RoleMentor {
			pending := storage.MentorPending
			p.MentorStatus = &pending
		}

		id, err := profiles.Create(c.Request.Context(), p, string(hash))
		if errors.Is(err, storage.ErrAlreadyExists) {
			c.JSON(409, gin.H{"error": "email already registered"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &id, "register", "role="+req.Role)
		c.JSON(200, gin.H{"ok": true})
	}
}

// AdminRegister bootstraps an admin account. Guarded by a setup token instead
// of a session so the first admin can be created on a fresh install.
func AdminRegister(profiles storage.ProfileStore, audit storage.AuditStore, setupToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email      string `json:"email"`
			FullName   string `json:"full_name"`
			Password   string `json:"password"`
			SetupToken string `json:"setup_token"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if setupToken == "" || req.SetupToken != setupToken {
			c.JSON(403, gin.H{"error": "invalid setup token"})
			return
		}
		if req.Email == "" || req.FullName == "" || len(req.Password) < 6 {
			c.JSON(400, gin.H{"error": "fill all fields"})
			return
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), 10)

		p := &storage.Profile{
			Email:    req.Email,
			FullName: req.FullName,
			Role:     storage.RoleAdmin,
			MaxTeams: 1,
		}
		id, err := profiles.Create(c.Request.Context(), p, string(hash))
		if errors.Is(err, storage.ErrAlreadyExists) {
			c.JSON(409, gin.H{"error": "email already registered"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &id, "admin_register", "")
		c.JSON(200, gin.H{"ok": true})
	}
}

func Login(profiles storage.ProfileStore, audit storage.AuditStore, secret string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}

		p, hash, err := profiles.GetCredentials(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid credentials"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			c.JSON(401, gin.H{"error": "invalid credentials"})
			return
		}

		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			UserID: p.ID,
			Role:   p.Role,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				Issuer:    "hackhub",
			},
		})
		s, _ := tok.SignedString([]byte(secret))

		c.SetCookie(cookieName, s, 86400, "/", "", cookieSecure, true)

		audit.Record(c.Request.Context(), &p.ID, "login", "success")
		c.JSON(200, gin.H{"ok": true, "role": p.Role})
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cookieName, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func Me(profiles storage.ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := profiles.Get(c.Request.Context(), uid(c))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, p)
	}
}

// UpdateMe lets a user edit their own display fields. Role and mentor status
// stay admin-only.
func UpdateMe(profiles storage.ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FullName string `json:"full_name"`
		}
		if err := c.BindJSON(&req); err != nil || req.FullName == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		p, err := profiles.Get(c.Request.Context(), uid(c))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		p.FullName = req.FullName
		if err := profiles.Update(c.Request.Context(), p); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, p)
	}
}
