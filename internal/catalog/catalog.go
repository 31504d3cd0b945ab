// Package catalog holds the per-album circuit type catalog and the
// wire-to-type assignment map, with the rename and remove cascades that keep
// the two (and any live wire actors) consistent.
package catalog

import (
	"errors"
	"fmt"

	"github.com/wiring-animator/backend/internal/models"
)

var (
	// ErrTypeExists is returned by Add when the code is already taken.
	ErrTypeExists = errors.New("circuit type already exists")
	// ErrTypeNotFound is returned when an operation names an unknown code.
	ErrTypeNotFound = errors.New("circuit type not found")
)

// RetypeFunc is called after a catalog edit so live wire actors holding the
// old code can re-derive their type. t is nil when the type was removed.
type RetypeFunc func(oldCode string, t *models.CircuitType)

// Catalog is the in-memory circuit type catalog plus assignment map for one
// open album. It is not safe for concurrent use; the owning session
// serializes access.
type Catalog struct {
	types       []models.CircuitType
	assignments map[string]string
	dirty       bool
	retype      RetypeFunc
}

// New builds a catalog pre-seeded with the given types and no assignments.
func New(types []models.CircuitType) *Catalog {
	c := &Catalog{assignments: map[string]string{}}
	c.types = append(c.types, types...)
	return c
}

// FromDocument restores a catalog from its persisted document. A document
// with no types falls back to the defaults, so freshly created albums start
// with the stock type list.
func FromDocument(doc *models.CircuitTypesDocument, defaults []models.CircuitType) *Catalog {
	if doc == nil || len(doc.CircuitTypes) == 0 {
		c := New(defaults)
		if doc != nil {
			for wire, code := range doc.CircuitTypesToWires {
				c.assignments[wire] = code
			}
		}
		return c
	}
	c := New(doc.CircuitTypes)
	for wire, code := range doc.CircuitTypesToWires {
		c.assignments[wire] = code
	}
	return c
}

// OnRetype registers the callback invoked when a rename or remove must
// cascade to live actors. Typically wired to the actor registry.
func (c *Catalog) OnRetype(fn RetypeFunc) { c.retype = fn }

// Types returns a copy of the type list in catalog order.
func (c *Catalog) Types() []models.CircuitType {
	out := make([]models.CircuitType, len(c.types))
	copy(out, c.types)
	return out
}

// Get looks up a circuit type by code.
func (c *Catalog) Get(code string) (models.CircuitType, bool) {
	for _, t := range c.types {
		if t.Code == code {
			return t, true
		}
	}
	return models.CircuitType{}, false
}

func (c *Catalog) index(code string) int {
	for i, t := range c.types {
		if t.Code == code {
			return i
		}
	}
	return -1
}

// Add appends a new circuit type. The code must be unused.
func (c *Catalog) Add(t models.CircuitType) error {
	if t.Code == "" {
		return fmt.Errorf("adding circuit type: empty code")
	}
	if c.index(t.Code) >= 0 {
		return fmt.Errorf("adding circuit type %q: %w", t.Code, ErrTypeExists)
	}
	c.types = append(c.types, t)
	c.dirty = true
	return nil
}

// Update replaces the stored type for code with t, keeping the code itself.
// Live actors of that type re-derive their display attributes.
func (c *Catalog) Update(code string, t models.CircuitType) error {
	i := c.index(code)
	if i < 0 {
		return fmt.Errorf("updating circuit type %q: %w", code, ErrTypeNotFound)
	}
	t.Code = code
	c.types[i] = t
	c.dirty = true
	c.notifyRetype(code, &t)
	return nil
}

// Rename changes a type's code. The assignment map entries pointing at the
// old code and any live wire actors holding it are updated in the same call.
func (c *Catalog) Rename(oldCode, newCode string) error {
	if oldCode == newCode {
		return nil
	}
	i := c.index(oldCode)
	if i < 0 {
		return fmt.Errorf("renaming circuit type %q: %w", oldCode, ErrTypeNotFound)
	}
	if c.index(newCode) >= 0 {
		return fmt.Errorf("renaming circuit type to %q: %w", newCode, ErrTypeExists)
	}
	c.types[i].Code = newCode
	for wire, code := range c.assignments {
		if code == oldCode {
			c.assignments[wire] = newCode
		}
	}
	c.dirty = true
	renamed := c.types[i]
	c.notifyRetype(oldCode, &renamed)
	return nil
}

// Remove deletes a type and every assignment referencing it. Affected wire
// actors fall back to having no circuit type; the actors themselves stay.
func (c *Catalog) Remove(code string) error {
	i := c.index(code)
	if i < 0 {
		return fmt.Errorf("removing circuit type %q: %w", code, ErrTypeNotFound)
	}
	c.types = append(c.types[:i], c.types[i+1:]...)
	for wire, assigned := range c.assignments {
		if assigned == code {
			delete(c.assignments, wire)
		}
	}
	c.dirty = true
	c.notifyRetype(code, nil)
	return nil
}

// Assign maps a wire id to a circuit type code.
func (c *Catalog) Assign(wireID, code string) error {
	if c.index(code) < 0 {
		return fmt.Errorf("assigning wire %q to %q: %w", wireID, code, ErrTypeNotFound)
	}
	c.assignments[wireID] = code
	c.dirty = true
	return nil
}

// Unassign removes a wire's assignment. Returns whether one existed.
func (c *Catalog) Unassign(wireID string) bool {
	if _, ok := c.assignments[wireID]; !ok {
		return false
	}
	delete(c.assignments, wireID)
	c.dirty = true
	return true
}

// Assignment returns the code assigned to a wire.
func (c *Catalog) Assignment(wireID string) (string, bool) {
	code, ok := c.assignments[wireID]
	return code, ok
}

// Assignments returns a copy of the wire-to-type map.
func (c *Catalog) Assignments() map[string]string {
	out := make(map[string]string, len(c.assignments))
	for k, v := range c.assignments {
		out[k] = v
	}
	return out
}

// TypeForWire resolves a wire's circuit type through the assignment map.
func (c *Catalog) TypeForWire(wireID string) (models.CircuitType, bool) {
	code, ok := c.assignments[wireID]
	if !ok {
		return models.CircuitType{}, false
	}
	return c.Get(code)
}

// Document snapshots the catalog into its persisted JSON shape.
func (c *Catalog) Document() *models.CircuitTypesDocument {
	return &models.CircuitTypesDocument{
		CircuitTypes:        c.Types(),
		CircuitTypesToWires: c.Assignments(),
	}
}

// Dirty reports whether the catalog changed since the last MarkClean.
func (c *Catalog) Dirty() bool { return c.dirty }

// MarkClean clears the dirty flag, called after a successful save.
func (c *Catalog) MarkClean() { c.dirty = false }

func (c *Catalog) notifyRetype(oldCode string, t *models.CircuitType) {
	if c.retype != nil {
		c.retype(oldCode, t)
	}
}
