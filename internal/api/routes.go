// routes.go - API route registration
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts all API endpoints on the echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api")

	api.GET("/health", h.HandleHealth)
	api.GET("/conventions", h.HandleGetConventions)

	albums := api.Group("/albums")
	albums.GET("", h.HandleListAlbums)
	albums.POST("", h.HandleRegisterAlbum)
	albums.DELETE("/:customer/:title", h.HandleDeleteAlbum)

	sessions := api.Group("/sessions")
	sessions.POST("", h.HandleOpenSession)
	sessions.DELETE("/:sessionId", h.HandleCloseSession)
	sessions.POST("/:sessionId/keepalive", h.HandleSessionKeepAlive)
	sessions.GET("/:sessionId/drawing", h.HandleGetDrawing)
	sessions.PUT("/:sessionId/drawing", h.HandleSaveDrawing)
	sessions.GET("/:sessionId/export", h.HandleExportBundle)

	sessions.GET("/:sessionId/slides", h.HandleGetSlides)
	sessions.POST("/:sessionId/slides", h.HandleAddSlide)
	sessions.DELETE("/:sessionId/slides/current", h.HandleDeleteSlide)
	sessions.POST("/:sessionId/slides/:index/load", h.HandleLoadSlide)
	sessions.POST("/:sessionId/changes", h.HandleRecordChange)
	sessions.POST("/:sessionId/changes/propagate", h.HandlePropagateChanges)
	sessions.PUT("/:sessionId/slides", h.HandleSaveSlides)
	sessions.GET("/:sessionId/warnings", h.HandleGetWarnings)

	sessions.GET("/:sessionId/circuit-types", h.HandleGetCircuitTypes)
	sessions.POST("/:sessionId/circuit-types", h.HandleAddCircuitType)
	sessions.PUT("/:sessionId/circuit-types/:code", h.HandleUpdateCircuitType)
	sessions.DELETE("/:sessionId/circuit-types/:code", h.HandleDeleteCircuitType)
	sessions.POST("/:sessionId/assignments", h.HandleAssignWire)
	sessions.DELETE("/:sessionId/assignments/:wireId", h.HandleUnassignWire)
	sessions.PUT("/:sessionId/circuit-types", h.HandleSaveCircuitTypes)

	sessions.GET("/:sessionId/highlighter", h.HandleGetHighlighter)
	sessions.POST("/:sessionId/highlighter/click", h.HandleHighlightClick)
	sessions.POST("/:sessionId/highlighter/width", h.HandleHighlightWidth)
	sessions.POST("/:sessionId/highlighter/intensity", h.HandleHighlightIntensity)
	sessions.POST("/:sessionId/highlighter/showhide", h.HandleHighlightShowHide)
	sessions.POST("/:sessionId/highlighter/reset", h.HandleHighlightReset)
	sessions.PUT("/:sessionId/highlighter", h.HandleSaveHighlighter)
}

// Interface conformance checks.
var (
	_ HealthHandler    = (*Handler)(nil)
	_ AlbumHandler     = (*Handler)(nil)
	_ SessionHandler   = (*Handler)(nil)
	_ TimelineHandler  = (*Handler)(nil)
	_ CatalogHandler   = (*Handler)(nil)
	_ HighlightHandler = (*Handler)(nil)
)
