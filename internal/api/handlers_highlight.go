// handlers_highlight.go - Wire highlighter operations for an authoring session
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wiring-animator/backend/internal/session"
)

type highlighterResponse struct {
	Settings  interface{} `json:"settings"`
	Selection interface{} `json:"selection"`
	Isolated  bool        `json:"isolated"`
	Dirty     bool        `json:"dirty"`
}

func describeHighlighter(s *session.AlbumSession) highlighterResponse {
	return highlighterResponse{
		Settings:  s.Highlighter.Settings(),
		Selection: s.Highlighter.Selection(),
		Isolated:  s.Highlighter.Isolated(),
		Dirty:     s.Highlighter.Dirty(),
	}
}

// HandleGetHighlighter returns the session's highlighter settings and
// selection.
func (h *Handler) HandleGetHighlighter(c echo.Context) error {
	var resp highlighterResponse
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		resp = describeHighlighter(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, resp)
}

type highlightClickRequest struct {
	WireID string `json:"wireId"`
	Color  string `json:"color,omitempty"`
}

// HandleHighlightClick toggles a wire's persistent selection. An explicit
// color overrides the configured click color.
func (h *Handler) HandleHighlightClick(c echo.Context) error {
	var req highlightClickRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.WireID == "" {
		return RespondWithError(c, NewValidationError("wireId"))
	}

	var selected bool
	var resp highlighterResponse
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if _, ok := s.Highlighter.Overlay(req.WireID); !ok {
			return NewNotFoundError("highlightable wire", req.WireID)
		}
		if req.Color != "" {
			selected = s.Highlighter.SelectWire(req.WireID, req.Color)
		} else {
			selected = s.Highlighter.Click(req.WireID)
		}
		resp = describeHighlighter(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	resp2 := struct {
		highlighterResponse
		Selected bool `json:"selected"`
	}{resp, selected}
	return c.JSON(http.StatusOK, resp2)
}

type adjustRequest struct {
	// Steps is the number of wheel notches; negative values shrink.
	Steps int `json:"steps"`
}

// HandleHighlightWidth grows or shrinks the stroke width of the selected
// wires. Does nothing while the selection is empty.
func (h *Handler) HandleHighlightWidth(c echo.Context) error {
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}

	var adjusted int
	var resp highlighterResponse
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		step := h.sessions.Conventions().Highlighter.Step
		adjusted = s.Highlighter.AdjustWidth(req.Steps, step)
		resp = describeHighlighter(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, struct {
		highlighterResponse
		WiresAdjusted int `json:"wiresAdjusted"`
	}{resp, adjusted})
}

// HandleHighlightIntensity adjusts the glow intensity of the selected wires.
func (h *Handler) HandleHighlightIntensity(c echo.Context) error {
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}

	var adjusted int
	var resp highlighterResponse
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		step := h.sessions.Conventions().Highlighter.IntensityStep
		adjusted = s.Highlighter.AdjustIntensity(req.Steps, step)
		resp = describeHighlighter(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, struct {
		highlighterResponse
		WiresAdjusted int `json:"wiresAdjusted"`
	}{resp, adjusted})
}

// HandleHighlightShowHide toggles isolation: everything except selected and
// complementary wires is hidden.
func (h *Handler) HandleHighlightShowHide(c echo.Context) error {
	var isolated bool
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		isolated = s.Highlighter.ShowHide()
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"isolated": isolated})
}

// HandleHighlightReset clears the selection, isolation and adjustments.
func (h *Handler) HandleHighlightReset(c echo.Context) error {
	var resp highlighterResponse
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		s.Highlighter.Reset()
		resp = describeHighlighter(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleSaveHighlighter persists the highlighter settings and selection.
func (h *Handler) HandleSaveHighlighter(c echo.Context) error {
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if err := s.SaveHighlighter(h.sessions.Workspace()); err != nil {
			return err
		}
		return h.sessions.AlbumIndex().Touch(s.Album.Customer, s.Album.Title)
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}
