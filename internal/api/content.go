package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hackhub/internal/storage"
)

/* ------------------- News ------------------- */

func ListNews(news storage.NewsStore, publishedOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := news.List(c.Request.Context(), publishedOnly)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

// GetNews is public: unpublished posts 404 here even when the row exists.
func GetNews(news storage.NewsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		n, err := news.Get(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && !n.IsPublished) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, n)
	}
}

func newsFromRequest(c *gin.Context) (*storage.News, bool) {
	var req struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		CoverImage  string `json:"cover_image"`
		IsPublished bool   `json:"is_published"`
	}
	if err := c.BindJSON(&req); err != nil || req.Title == "" || req.Body == "" {
		c.JSON(400, gin.H{"error": "bad request"})
		return nil, false
	}
	return &storage.News{
		Title:       req.Title,
		Body:        req.Body,
		CoverImage:  req.CoverImage,
		IsPublished: req.IsPublished,
	}, true
}

func AdminCreateNews(news storage.NewsStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		n, ok := newsFromRequest(c)
		if !ok {
			return
		}
		if err := news.Create(c.Request.Context(), n); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "create_news", n.Title)
		c.JSON(200, n)
	}
}

func AdminUpdateNews(news storage.NewsStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		n, ok := newsFromRequest(c)
		if !ok {
			return
		}
		n.ID, _ = strconv.Atoi(c.Param("id"))

		err := news.Update(c.Request.Context(), n)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "update_news", "news_id="+strconv.Itoa(n.ID))
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminDeleteNews(news storage.NewsStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := news.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "delete_news", "news_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- Legal documents ------------------- */

// GetLegalDocument serves the latest published version for a slug.
func GetLegalDocument(legal storage.LegalStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		d, err := legal.LatestPublished(c.Request.Context(), slug)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, d)
	}
}

func AdminListLegalDocuments(legal storage.LegalStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := legal.List(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func legalFromRequest(c *gin.Context) (*storage.LegalDocument, bool) {
	var req struct {
		Slug    string `json:"slug"`
		Title   string `json:"title"`
		Content string `json:"content"`
		Version string `json:"version"`
	}
	if err := c.BindJSON(&req); err != nil ||
		req.Slug == "" || req.Title == "" || req.Content == "" || req.Version == "" {
		c.JSON(400, gin.H{"error": "bad request"})
		return nil, false
	}
	return &storage.LegalDocument{
		Slug:    strings.ToLower(req.Slug),
		Title:   req.Title,
		Content: req.Content,
		Version: req.Version,
	}, true
}

func AdminCreateLegalDocument(legal storage.LegalStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		d, ok := legalFromRequest(c)
		if !ok {
			return
		}
		if err := legal.Create(c.Request.Context(), d); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "create_legal", d.Slug+"@"+d.Version)
		c.JSON(200, d)
	}
}

func AdminUpdateLegalDocument(legal storage.LegalStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		d, ok := legalFromRequest(c)
		if !ok {
			return
		}
		d.ID, _ = strconv.Atoi(c.Param("id"))

		err := legal.Update(c.Request.Context(), d)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "update_legal", "doc_id="+strconv.Itoa(d.ID))
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminPublishLegalDocument(legal storage.LegalStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := legal.Publish(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "publish_legal", "doc_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminDeleteLegalDocument(legal storage.LegalStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := legal.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "delete_legal", "doc_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- Contact ------------------- */

func SubmitContactMessage(contact storage.ContactStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Subject string `json:"subject"`
			Message string `json:"message"`
		}
		if err := c.BindJSON(&req); err != nil ||
			req.Name == "" || req.Email == "" || req.Message == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		m := &storage.ContactMessage{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
		}
		if err := contact.Create(c.Request.Context(), m); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminListContactMessages(contact storage.ContactStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := contact.List(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func AdminDeleteContactMessage(contact storage.ContactStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		err := contact.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}
