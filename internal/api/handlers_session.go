// handlers_session.go - Authoring session lifecycle and drawing access
package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/session"
)

type openSessionRequest struct {
	Title    string `json:"title"`
	Customer string `json:"customer"`
}

// wireInfo is the wire actor summary sent to the authoring client.
type wireInfo struct {
	ID      string `json:"id"`
	Type    string `json:"type,omitempty"`
	Color   string `json:"color,omitempty"`
	LabelID string `json:"labelId,omitempty"`
}

type switchInfo struct {
	ID        string   `json:"id"`
	Positions []string `json:"positions"`
	Default   string   `json:"default"`
	Selected  string   `json:"selected"`
}

type balloonInfo struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type actorsSummary struct {
	Wires    []wireInfo    `json:"wires"`
	Switches []switchInfo  `json:"switches"`
	Balloons []balloonInfo `json:"balloons"`
}

type highlighterState struct {
	Settings  models.HighlighterSettings `json:"settings"`
	Selection models.HighlightSelection  `json:"selection"`
	Isolated  bool                       `json:"isolated"`
}

// openSessionResponse is the full "load diagram" payload: everything the
// authoring client needs to render the album without further round trips.
type openSessionResponse struct {
	SessionID    string                       `json:"sessionId"`
	Album        *models.SlideAlbum           `json:"album"`
	Legacy       bool                         `json:"legacy"`
	Actors       actorsSummary                `json:"actors"`
	Slides       *models.AnimationDocument    `json:"slides"`
	CircuitTypes *models.CircuitTypesDocument `json:"circuitTypes"`
	Highlighter  highlighterState             `json:"highlighter"`
	Warnings     []models.Warning             `json:"warnings"`
	Notices      []models.Notice              `json:"notices"`
}

func summarizeActors(s *session.AlbumSession) actorsSummary {
	sum := actorsSummary{
		Wires:    []wireInfo{},
		Switches: []switchInfo{},
		Balloons: []balloonInfo{},
	}
	for _, w := range s.Registry.Wires() {
		info := wireInfo{ID: w.ID, LabelID: w.LabelID}
		if w.CircuitType != nil {
			info.Type = w.CircuitType.Code
			info.Color = w.CircuitType.Color
		}
		sum.Wires = append(sum.Wires, info)
	}
	for _, sw := range s.Registry.Switches() {
		info := switchInfo{ID: sw.ID, Default: sw.Default, Selected: sw.Selected, Positions: []string{}}
		for _, p := range sw.Positions {
			info.Positions = append(info.Positions, p.Value)
		}
		sum.Switches = append(sum.Switches, info)
	}
	for _, b := range s.Registry.Balloons() {
		sum.Balloons = append(sum.Balloons, balloonInfo{ID: b.ID, Value: b.Value})
	}
	return sum
}

func sessionResponse(s *session.AlbumSession) *openSessionResponse {
	resp := &openSessionResponse{
		SessionID:    s.ID,
		Album:        s.Album,
		Legacy:       s.Index.Legacy,
		Actors:       summarizeActors(s),
		Slides:       s.Timeline.Document(),
		CircuitTypes: s.Catalog.Document(),
		Highlighter: highlighterState{
			Settings:  s.Highlighter.Settings(),
			Selection: s.Highlighter.Selection(),
			Isolated:  s.Highlighter.Isolated(),
		},
		Warnings: s.Warnings,
		Notices:  s.Notices,
	}
	if resp.Warnings == nil {
		resp.Warnings = []models.Warning{}
	}
	if resp.Notices == nil {
		resp.Notices = []models.Notice{}
	}
	return resp
}

// HandleOpenSession opens an album into a new authoring session and returns
// the full load payload.
func (h *Handler) HandleOpenSession(c echo.Context) error {
	var req openSessionRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.Title == "" {
		return RespondWithError(c, NewValidationError("title"))
	}
	if req.Customer == "" {
		return RespondWithError(c, NewValidationError("customer"))
	}

	s, err := h.sessions.OpenAlbum(req.Customer, req.Title)
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusCreated, sessionResponse(s))
}

// HandleCloseSession closes a session, releasing the album lock. Unsaved
// edits are discarded.
func (h *Handler) HandleCloseSession(c echo.Context) error {
	if err := h.sessions.CloseSession(c.Param("sessionId")); err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive refreshes the session's idle timer.
func (h *Handler) HandleSessionKeepAlive(c echo.Context) error {
	var resp map[string]interface{}
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		resp = map[string]interface{}{
			"sessionId":    s.ID,
			"lastAccessed": s.LastAccessed,
		}
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleGetDrawing returns the session's current (labeled) drawing. The
// document is serialized under the session lock; slow clients only hold up
// the network write.
func (h *Handler) HandleGetDrawing(c echo.Context) error {
	var buf bytes.Buffer
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		_, err := s.Document.WriteTo(&buf)
		return err
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// HandleSaveDrawing persists the session's drawing back to the workspace.
func (h *Handler) HandleSaveDrawing(c echo.Context) error {
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if err := s.SaveDrawing(h.sessions.Workspace()); err != nil {
			return err
		}
		return h.sessions.AlbumIndex().Touch(s.Album.Customer, s.Album.Title)
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// viewerBundle is the compact album export the read-only viewer consumes:
// one msgpack payload instead of four JSON fetches.
type viewerBundle struct {
	Album        *models.SlideAlbum           `msgpack:"album"`
	Slides       *models.AnimationDocument    `msgpack:"slides"`
	CircuitTypes *models.CircuitTypesDocument `msgpack:"circuitTypes"`
	Settings     models.HighlighterSettings   `msgpack:"highlighterSettings"`
	Selection    models.HighlightSelection    `msgpack:"highlightSelection"`
	GeneratedAt  time.Time                    `msgpack:"generatedAt"`
}

// HandleExportBundle serializes the session's album as a msgpack viewer
// bundle.
func (h *Handler) HandleExportBundle(c echo.Context) error {
	var bundle viewerBundle
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		bundle = viewerBundle{
			Album:        s.Album,
			Slides:       s.Timeline.Document(),
			CircuitTypes: s.Catalog.Document(),
			Settings:     s.Highlighter.Settings(),
			Selection:    s.Highlighter.Selection(),
			GeneratedAt:  time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}

	data, err := msgpack.Marshal(&bundle)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to encode bundle", err))
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}
