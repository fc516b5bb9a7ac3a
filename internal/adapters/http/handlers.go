package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kiddieguard/sentinel/internal/domain"
	"github.com/kiddieguard/sentinel/internal/store"
)

type Handlers struct {
	Store *store.Bunker
}

// Dashboard renders the parent grid with every enrolled kid plus the
// shared media library.
func (h *Handlers) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
		"Kids":    h.Store.AllKids(),
		"Library": h.Store.Library(),
	})
}

func (h *Handlers) EnrollForm(c *gin.Context) {
	c.HTML(http.StatusOK, "enroll.tmpl", nil)
}

// Enroll registers a new kid profile and hands back the tablet portal
// link. The 8-character id becomes the device's room name.
func (h *Handlers) Enroll(c *gin.Context) {
	name := c.PostForm("kid_name")
	if name == "" {
		c.HTML(http.StatusBadRequest, "enroll.tmpl", gin.H{"Error": "name is required"})
		return
	}

	id := domain.NewKidID()
	profile := domain.NewKidProfile(name, c.PostForm("kid_age"), c.PostForm("bedtime"), c.PostForm("wakeup"))
	if err := h.Store.AddKid(id, profile); err != nil {
		log.Error().Str("module", "adapters.http").Err(err).Msg("enroll failed")
		c.HTML(http.StatusInternalServerError, "enroll.tmpl", gin.H{"Error": "could not save profile"})
		return
	}

	log.Info().Str("module", "adapters.http").Str("kid", string(id)).Str("name", name).Msg("kid enrolled")
	c.HTML(http.StatusOK, "enrolled.tmpl", gin.H{
		"Name":      name,
		"KidID":     id,
		"PortalURL": "/kid/portal/" + string(id),
	})
}

// AddLibrary files a pasted video or playlist URL in the shared library.
func (h *Handlers) AddLibrary(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing name or url"})
		return
	}
	libID, err := h.Store.AddToLibrary(req.Name, req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "library_id": libID})
}

// AssignLibrary binds a library item to a kid's day or night slot. The
// response carries the actual media id and type, not the library key, so
// the dashboard can feed the player directly.
func (h *Handlers) AssignLibrary(c *gin.Context) {
	var req struct {
		KidID     string `json:"kid_id"`
		Mode      string `json:"mode"`
		LibraryID string `json:"library_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.KidID == "" || req.Mode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing required fields"})
		return
	}

	item, err := h.Store.AssignToKid(domain.KidID(req.KidID), req.Mode, req.LibraryID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrKidNotFound) || errors.Is(err, store.ErrLibraryNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"status": "error", "message": err.Error()})
		return
	}

	log.Info().Str("module", "adapters.http").Str("kid", req.KidID).Str("mode", req.Mode).Str("library", req.LibraryID).Msg("library assigned")
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"assigned_db_id": req.LibraryID,
		"video_id":       item.URL,
		"media_type":     item.Type,
	})
}

// KidPortal serves the tablet page for one enrolled device.
func (h *Handlers) KidPortal(c *gin.Context) {
	id := domain.KidID(c.Param("kid_id"))
	kid, ok := h.Store.Kid(id)
	if !ok {
		c.String(http.StatusNotFound, "Kid Profile Not Found")
		return
	}
	c.HTML(http.StatusOK, "kid.tmpl", gin.H{
		"KidID":   id,
		"KidName": kid.Name,
		"Kid":     kid,
	})
}
