// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// HealthHandler reports server liveness
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// AlbumHandler manages the album catalog: listing, registering a drawing,
// deletion
type AlbumHandler interface {
	HandleListAlbums(c echo.Context) error
	HandleRegisterAlbum(c echo.Context) error
	HandleDeleteAlbum(c echo.Context) error
}

// SessionHandler manages authoring sessions over open albums
type SessionHandler interface {
	HandleOpenSession(c echo.Context) error
	HandleCloseSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleGetDrawing(c echo.Context) error
	HandleSaveDrawing(c echo.Context) error
	HandleExportBundle(c echo.Context) error
}

// TimelineHandler manages the slide album of one session
type TimelineHandler interface {
	HandleGetSlides(c echo.Context) error
	HandleAddSlide(c echo.Context) error
	HandleDeleteSlide(c echo.Context) error
	HandleLoadSlide(c echo.Context) error
	HandleRecordChange(c echo.Context) error
	HandlePropagateChanges(c echo.Context) error
	HandleSaveSlides(c echo.Context) error
	HandleGetWarnings(c echo.Context) error
}

// CatalogHandler manages circuit types and wire assignments
type CatalogHandler interface {
	HandleGetCircuitTypes(c echo.Context) error
	HandleAddCircuitType(c echo.Context) error
	HandleUpdateCircuitType(c echo.Context) error
	HandleDeleteCircuitType(c echo.Context) error
	HandleAssignWire(c echo.Context) error
	HandleUnassignWire(c echo.Context) error
	HandleSaveCircuitTypes(c echo.Context) error
}

// HighlightHandler manages the wire highlighter of one session
type HighlightHandler interface {
	HandleGetHighlighter(c echo.Context) error
	HandleHighlightClick(c echo.Context) error
	HandleHighlightWidth(c echo.Context) error
	HandleHighlightIntensity(c echo.Context) error
	HandleHighlightShowHide(c echo.Context) error
	HandleHighlightReset(c echo.Context) error
	HandleSaveHighlighter(c echo.Context) error
}
