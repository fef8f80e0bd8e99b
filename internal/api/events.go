package api

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hackhub/internal/logging"
	"hackhub/internal/storage"
)

// ListEvents serves the public schedule: published events only unless the
// caller asks for all (admin routes pass all=1 behind the role gate).
func ListEvents(events storage.EventStore, publishedOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := events.List(c.Request.Context(), publishedOnly)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func GetEvent(events storage.EventStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		e, err := events.Get(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, e)
	}
}

func eventFromRequest(c *gin.Context) (*storage.Event, bool) {
	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		StartsAt    time.Time  `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
		IsPublished bool       `json:"is_published"`
	}
	if err := c.BindJSON(&req); err != nil || req.Title == "" || req.StartsAt.IsZero() {
		c.JSON(400, gin.H{"error": "bad request"})
		return nil, false
	}
	return &storage.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsPublished: req.IsPublished,
	}, true
}

func AdminCreateEvent(events storage.EventStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		e, ok := eventFromRequest(c)
		if !ok {
			return
		}
		if err := events.Create(c.Request.Context(), e); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "create_event", e.Title)
		c.JSON(200, e)
	}
}

func AdminUpdateEvent(events storage.EventStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		e, ok := eventFromRequest(c)
		if !ok {
			return
		}
		e.ID, _ = strconv.Atoi(c.Param("id"))

		err := events.Update(c.Request.Context(), e)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "update_event", "event_id="+strconv.Itoa(e.ID))
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminDeleteEvent(events storage.EventStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := events.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "delete_event", "event_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- Gallery ------------------- */

func EventGallery(events storage.EventStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, _ := strconv.Atoi(c.Param("id"))
		out, err := events.Gallery(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

// AdminUploadGalleryImage stores the image in the bucket, then records it.
// If the DB insert fails the object is removed again.
func AdminUploadGalleryImage(events storage.EventStore, objects storage.ObjectStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		eventID, _ := strconv.Atoi(c.Param("id"))

		if _, err := events.Get(c.Request.Context(), eventID); err != nil {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}

		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "image is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(400, gin.H{"error": "cannot read image"})
			return
		}
		defer f.Close()

		contentType := fh.Header.Get("Content-Type")
		key := fmt.Sprintf("events/%d/%d%s", eventID, time.Now().UnixNano(), filepath.Ext(fh.Filename))

		url, err := objects.Put(c.Request.Context(), key, f, fh.Size, contentType)
		if err != nil {
			c.JSON(500, gin.H{"error": "upload failed"})
			return
		}

		img := &storage.GalleryImage{
			EventID:   eventID,
			ObjectKey: key,
			URL:       url,
			Caption:   c.PostForm("caption"),
		}
		if err := events.AddImage(c.Request.Context(), img); err != nil {
			if rmErr := objects.Remove(c.Request.Context(), key); rmErr != nil {
				logging.Log.Errorf("GALLERY: orphaned object %q: %v", key, rmErr)
			}
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "upload_gallery_image", "event_id="+strconv.Itoa(eventID))
		c.JSON(200, img)
	}
}

func AdminDeleteGalleryImage(events storage.EventStore, objects storage.ObjectStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("imageId"))

		img, err := events.RemoveImage(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "image not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		if err := objects.Remove(c.Request.Context(), img.ObjectKey); err != nil {
			logging.Log.Warnf("GALLERY: could not remove object %q: %v", img.ObjectKey, err)
		}

		audit.Record(c.Request.Context(), &actor, "delete_gallery_image", "image_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}
