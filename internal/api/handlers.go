package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/session"
)

// Handler handles API requests.
type Handler struct {
	sessions      *session.Manager
	version       string
	allowDeletion bool
}

// NewHandler creates a new API handler.
func NewHandler(sessions *session.Manager, version string, allowDeletion bool) *Handler {
	return &Handler{
		sessions:      sessions,
		version:       version,
		allowDeletion: allowDeletion,
	}
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"sessions": h.sessions.Count(),
	})
}

// HandleListAlbums returns the albums in the index, optionally filtered by
// the customer query parameter.
func (h *Handler) HandleListAlbums(c echo.Context) error {
	albums, err := h.sessions.AlbumIndex().List(c.QueryParam("customer"))
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	if albums == nil {
		albums = []*models.SlideAlbum{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"albums": albums,
		"count":  len(albums),
	})
}

// HandleRegisterAlbum stores an album's SVG drawing and registers it in the
// index. The body is the raw drawing; title and customer come from query
// parameters.
func (h *Handler) HandleRegisterAlbum(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	customer := strings.TrimSpace(c.QueryParam("customer"))
	if title == "" {
		return RespondWithError(c, NewValidationError("title"))
	}
	if customer == "" {
		return RespondWithError(c, NewValidationError("customer"))
	}

	if err := h.sessions.Workspace().SaveDrawing(customer, title, c.Request().Body); err != nil {
		return RespondWithError(c, NewInternalError("failed to store drawing", err))
	}
	album := &models.SlideAlbum{Title: title, Customer: customer, SVGFile: title + ".svg"}
	if err := h.sessions.AlbumIndex().Register(album); err != nil {
		return RespondWithError(c, mapDomainError(err))
	}

	stored, err := h.sessions.AlbumIndex().Get(customer, title)
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusCreated, stored)
}

// HandleDeleteAlbum removes an album's documents and its index entry.
// Disabled unless the deployment opts in through the security config.
func (h *Handler) HandleDeleteAlbum(c echo.Context) error {
	if !h.allowDeletion {
		return RespondWithError(c, &APIError{
			Status:  http.StatusForbidden,
			Code:    "DELETION_DISABLED",
			Message: "album deletion is disabled on this server",
		})
	}
	customer := c.Param("customer")
	title := c.Param("title")

	album, err := h.sessions.AlbumIndex().Get(customer, title)
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	if album.LockedBy != "" {
		return RespondWithError(c, NewConflictError("album is open in an authoring session"))
	}

	if err := h.sessions.AlbumIndex().Delete(customer, title); err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	if err := h.sessions.Workspace().DeleteAlbum(customer, title); err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetConventions exposes the drawing conventions in effect, so the
// authoring client labels preview elements the same way the server does.
func (h *Handler) HandleGetConventions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.Conventions())
}
