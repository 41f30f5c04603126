// Package http exposes the read-mostly REST surface of the terminal
// core: session, profile, theme, split-view, and history listings plus
// a few lifecycle operations for clients that do not hold a WebSocket.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glyphide/termcore/internal/domain/session"
	"github.com/glyphide/termcore/internal/orchestrator"
	"github.com/glyphide/termcore/internal/shared/types"
)

// Handlers wires REST routes to the orchestrator.
type Handlers struct {
	core *orchestrator.Orchestrator
}

// NewHandlers creates the REST handler set.
func NewHandlers(core *orchestrator.Orchestrator) *Handlers {
	return &Handlers{core: core}
}

// Register mounts all routes on the router group.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/health", h.health)

	r.GET("/sessions", h.listSessions)
	r.POST("/sessions", h.createSession)
	r.GET("/sessions/:id", h.getSession)
	r.DELETE("/sessions/:id", h.removeSession)
	r.POST("/sessions/:id/activate", h.activateSession)
	r.POST("/sessions/:id/split", h.createSplit)

	r.GET("/profiles", h.listProfiles)
	r.POST("/profiles", h.addProfile)
	r.DELETE("/profiles/:name", h.removeProfile)

	r.GET("/themes", h.listThemes)
	r.POST("/themes", h.addTheme)
	r.POST("/themes/custom", h.addCustomTheme)
	r.DELETE("/themes/:name", h.removeTheme)

	r.GET("/splits", h.listSplits)
	r.GET("/history", h.history)
	r.DELETE("/history", h.clearHistory)
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"connection": h.core.ConnectionState().String(),
	})
}

func (h *Handlers) listSessions(c *gin.Context) {
	sessions := h.core.ListSessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (h *Handlers) createSession(c *gin.Context) {
	var opts types.CreateOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.core.CreateSession(opts)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handlers) getSession(c *gin.Context) {
	s, ok := h.core.GetSession(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) removeSession(c *gin.Context) {
	if err := h.core.RemoveSession(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) activateSession(c *gin.Context) {
	if err := h.core.ActivateSession(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) createSplit(c *gin.Context) {
	var body struct {
		Direction types.SplitDirection `json:"direction"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Direction == "" {
		body.Direction = types.SplitHorizontal
	}

	s, err := h.core.CreateSplit(c.Param("id"), body.Direction)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handlers) listProfiles(c *gin.Context) {
	profiles := h.core.ListProfiles()
	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "count": len(profiles)})
}

func (h *Handlers) addProfile(c *gin.Context) {
	var p types.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.core.AddProfile(p); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handlers) removeProfile(c *gin.Context) {
	if err := h.core.RemoveProfile(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) listThemes(c *gin.Context) {
	themes := h.core.ListThemes()
	c.JSON(http.StatusOK, gin.H{"themes": themes, "count": len(themes)})
}

func (h *Handlers) addTheme(c *gin.Context) {
	var t types.Theme
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.core.AddTheme(t); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handlers) addCustomTheme(c *gin.Context) {
	var ct types.CustomTheme
	if err := c.ShouldBindJSON(&ct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.core.AddCustomTheme(ct)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) removeTheme(c *gin.Context) {
	if err := h.core.RemoveTheme(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) listSplits(c *gin.Context) {
	splits := h.core.SplitViews()
	c.JSON(http.StatusOK, gin.H{"splits": splits, "count": len(splits)})
}

func (h *Handlers) history(c *gin.Context) {
	entries := h.core.History()
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (h *Handlers) clearHistory(c *gin.Context) {
	if err := h.core.ClearHistory(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrProfileNotFound),
		errors.Is(err, session.ErrThemeNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
