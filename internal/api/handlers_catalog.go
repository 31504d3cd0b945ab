// handlers_catalog.go - Circuit type catalog and wire assignment operations
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/session"
)

// HandleGetCircuitTypes returns the session's circuit type catalog and
// current wire assignments.
func (h *Handler) HandleGetCircuitTypes(c echo.Context) error {
	var doc *models.CircuitTypesDocument
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		doc = s.Catalog.Document()
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, doc)
}

// HandleAddCircuitType adds a new circuit type to the catalog.
func (h *Handler) HandleAddCircuitType(c echo.Context) error {
	var t models.CircuitType
	if err := c.Bind(&t); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if t.Code == "" {
		return RespondWithError(c, NewValidationError("type"))
	}

	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		return s.Catalog.Add(t)
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusCreated, t)
}

type updateCircuitTypeRequest struct {
	models.CircuitType

	// NewCode renames the type; assignments and live wire actors follow.
	NewCode string `json:"newType,omitempty"`
}

// HandleUpdateCircuitType updates the type at :code, optionally renaming it.
// Both paths cascade to the assignment map and the live wire actors.
func (h *Handler) HandleUpdateCircuitType(c echo.Context) error {
	code := c.Param("code")
	var req updateCircuitTypeRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}

	var updated models.CircuitType
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if err := s.Catalog.Update(code, req.CircuitType); err != nil {
			return err
		}
		if req.NewCode != "" && req.NewCode != code {
			if err := s.Catalog.Rename(code, req.NewCode); err != nil {
				return err
			}
			code = req.NewCode
		}
		updated, _ = s.Catalog.Get(code)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, updated)
}

// HandleDeleteCircuitType removes a type; wires assigned to it become
// untyped.
func (h *Handler) HandleDeleteCircuitType(c echo.Context) error {
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		return s.Catalog.Remove(c.Param("code"))
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.NoContent(http.StatusNoContent)
}

type assignWireRequest struct {
	WireID string `json:"wireId"`
	Code   string `json:"type"`
}

// HandleAssignWire assigns a wire to a circuit type and retypes the live
// actor.
func (h *Handler) HandleAssignWire(c echo.Context) error {
	var req assignWireRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.WireID == "" {
		return RespondWithError(c, NewValidationError("wireId"))
	}

	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if !s.Registry.Has(req.WireID) {
			return NewNotFoundError("wire", req.WireID)
		}
		if err := s.Catalog.Assign(req.WireID, req.Code); err != nil {
			return err
		}
		t, _ := s.Catalog.Get(req.Code)
		s.Registry.SetWireType(req.WireID, &t)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"wireId": req.WireID, "type": req.Code})
}

// HandleUnassignWire clears a wire's type assignment.
func (h *Handler) HandleUnassignWire(c echo.Context) error {
	wireID := c.Param("wireId")
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if !s.Catalog.Unassign(wireID) {
			return NewNotFoundError("wire assignment", wireID)
		}
		s.Registry.SetWireType(wireID, nil)
		return nil
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSaveCircuitTypes persists the catalog to the album workspace.
func (h *Handler) HandleSaveCircuitTypes(c echo.Context) error {
	err := h.sessions.WithSession(c.Param("sessionId"), func(s *session.AlbumSession) error {
		if err := s.SaveCircuitTypes(h.sessions.Workspace()); err != nil {
			return err
		}
		return h.sessions.AlbumIndex().Touch(s.Album.Customer, s.Album.Title)
	})
	if err != nil {
		return RespondWithError(c, mapDomainError(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}
