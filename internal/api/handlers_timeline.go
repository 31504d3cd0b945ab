// handlers_timeline.go - Slide timeline operations for an authoring session
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/session"
)

type slideResponse struct {
	Index      int    `json:"index"`
	SlideID    string `json:"slideId"`
	Title      string `json:"title"`
	SlideCount int    `json:"slideCount"`
	Dirty      bool   `json:"dirty"`
}

func describeSlide(s *session.AlbumSession) slideResponse {
	cur := s.Timeline.Current()
	return slideResponse{
		Index:      s.Timeline.CurrentIndex(),
		SlideID:    cur.ID,
		Title:      cur.Title,
		SlideCount: s.Timeline.Len(),
		Dirty:      s.Timeline.Dirty(),
	}
}

// HandleGetSlides returns the session's full timeline document.
func (h *Handler) HandleGetSlides(c echo.Context) error {
	var resp map[string]interface{}
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		resp = map[string]interface{}{
			"timeline":     s.Timeline.Document(),
			"currentIndex": s.Timeline.CurrentIndex(),
			"dirty":        s.Timeline.Dirty(),
		}
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, resp)
}

type addSlideRequest struct {
	Title   string `json:"title"`
	Details string `json:"details"`

	// Insert places the new slide right after the current one instead of
	// appending, renaming the current slide in the same operation.
	Insert         bool   `json:"insert"`
	CurrentTitle   string `json:"currentTitle"`
	CurrentDetails string `json:"currentDetails"`
}

// HandleAddSlide appends (or inserts after the current slide) a new slide
// seeded with a copy of the current actor states.
func (h *Handler) HandleAddSlide(c echo.Context) error {
	var req addSlideRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}

	var resp slideResponse
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if req.Insert {
			s.Timeline.InsertSlide(req.CurrentTitle, req.CurrentDetails, req.Title, req.Details)
		} else {
			s.Timeline.AddSlide(req.Title, req.Details)
		}
		resp = describeSlide(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusCreated, resp)
}

// HandleDeleteSlide removes the current slide. The initial slide cannot be
// deleted.
func (h *Handler) HandleDeleteSlide(c echo.Context) error {
	var resp slideResponse
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if err := s.Timeline.DeleteSlide(); err != nil {
			return err
		}
		states, err := s.Timeline.LoadSlide(s.Timeline.CurrentIndex())
		if err != nil {
			return err
		}
		s.Registry.ApplySnapshot(states)
		resp = describeSlide(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleLoadSlide makes the slide at :index current and applies its actor
// states to the live diagram.
func (h *Handler) HandleLoadSlide(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return RespondWithError(c, NewBadRequestError("invalid slide index", err))
	}

	var resp struct {
		slideResponse
		Missing []string `json:"missingActors,omitempty"`
	}
	err = h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		states, err := s.Timeline.LoadSlide(index)
		if err != nil {
			return err
		}
		resp.Missing = s.Registry.ApplySnapshot(states)
		resp.slideResponse = describeSlide(s)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, resp)
}

type recordChangeRequest struct {
	ActorID string            `json:"actorId"`
	State   models.ActorState `json:"state"`
}

// HandleRecordChange applies one actor state change to the live diagram and
// records it on the current slide.
func (h *Handler) HandleRecordChange(c echo.Context) error {
	var req recordChangeRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.ActorID == "" {
		return RespondWithError(c, NewValidationError("actorId"))
	}

	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if !s.Registry.ApplyState(req.ActorID, req.State) {
			return NewNotFoundError("actor", req.ActorID)
		}
		s.Timeline.RecordChange(req.ActorID, req.State)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "recorded"})
}

// HandlePropagateChanges pushes the current slide's pending changes into all
// later slides.
func (h *Handler) HandlePropagateChanges(c echo.Context) error {
	var updated int
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		updated = s.Timeline.PropagateChanges()
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]int{"slidesUpdated": updated})
}

// HandleSaveSlides persists the timeline to the album workspace.
func (h *Handler) HandleSaveSlides(c echo.Context) error {
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if err := s.SaveAnimation(h.sessions.Workspace()); err != nil {
			return err
		}
		return h.sessions.AlbumIndex().Touch(s.Album.Customer, s.Album.Title)
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// HandleGetWarnings re-runs reference validation over the timeline and
// returns the findings.
func (h *Handler) HandleGetWarnings(c echo.Context) error {
	var warnings []models.Warning
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		s.RevalidateNow()
		warnings = s.Warnings
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	if warnings == nil {
		warnings = []models.Warning{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"warnings": warnings,
		"count":    len(warnings),
	})
}
