package api

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hackhub/internal/mail"
	"hackhub/internal/storage"
)

/* ------------------- Themes ------------------- */

func ListThemes(themes storage.ThemeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := themes.GetAll(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

// ActiveTheme is public so the marketing pages can style themselves.
func ActiveTheme(themes storage.ThemeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := themes.Active(c.Request.Context())
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "no active theme"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, t)
	}
}

func themeFromRequest(c *gin.Context) (*storage.Theme, bool) {
	var req struct {
		Name   string          `json:"name"`
		Colors json.RawMessage `json:"colors"`
	}
	if err := c.BindJSON(&req); err != nil || req.Name == "" {
		c.JSON(400, gin.H{"error": "bad request"})
		return nil, false
	}
	if len(req.Colors) == 0 {
		req.Colors = json.RawMessage("{}")
	}
	return &storage.Theme{Name: req.Name, Colors: req.Colors}, true
}

func AdminCreateTheme(themes storage.ThemeStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		t, ok := themeFromRequest(c)
		if !ok {
			return
		}
		if err := themes.Create(c.Request.Context(), t); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "create_theme", t.Name)
		c.JSON(200, t)
	}
}

func AdminUpdateTheme(themes storage.ThemeStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		t, ok := themeFromRequest(c)
		if !ok {
			return
		}
		t.ID, _ = strconv.Atoi(c.Param("id"))

		err := themes.Update(c.Request.Context(), t)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "update_theme", "theme_id="+strconv.Itoa(t.ID))
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminActivateTheme(themes storage.ThemeStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := themes.Activate(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "activate_theme", "theme_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminDeleteTheme(themes storage.ThemeStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := themes.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "delete_theme", "theme_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- Platform settings ------------------- */

func AdminListSettings(settings storage.SettingsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := settings.All(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

var knownSettings = map[string]bool{
	storage.SettingSMTP:         true,
	storage.SettingRegistration: true,
	storage.SettingHomepage:     true,
}

func AdminPutSetting(settings storage.SettingsStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		key := c.Param("key")
		if !knownSettings[key] {
			c.JSON(400, gin.H{"error": "unknown setting"})
			return
		}

		var value json.RawMessage
		if err := c.BindJSON(&value); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if err := settings.Put(c.Request.Context(), key, value); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "update_setting", key)
		c.JSON(200, gin.H{"ok": true})
	}
}

// HomepageContent is the public read of the homepage setting.
func HomepageContent(settings storage.SettingsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := settings.Get(c.Request.Context(), storage.SettingHomepage)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(200, gin.H{})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.Data(200, "application/json", raw)
	}
}

// RegistrationStatus tells the public registration page whether signup is open.
func RegistrationStatus(settings storage.SettingsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"open": registrationOpen(c, settings, time.Now())})
	}
}

/* ------------------- SMTP test ------------------- */

// AdminTestSMTP is the connectivity test endpoint; it accepts the
// {host, port, secure, auth:{user,pass}} payload and returns
// {success, message, error?}.
func AdminTestSMTP(audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		var req mail.TestRequest
		if err := c.BindJSON(&req); err != nil || req.Host == "" || req.Port == 0 {
			c.JSON(400, mail.TestResult{Message: "host and port are required", Error: "bad request"})
			return
		}

		res := mail.TestConnection(req)
		audit.Record(c.Request.Context(), &actor, "smtp_test", req.Host)
		c.JSON(200, res)
	}
}
