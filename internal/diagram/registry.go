// Package diagram builds the actor registry of an open drawing: the mapping
// from element ids to live WireSegment, Switch and DCBalloon actors that the
// timeline animates and the validator checks against.
package diagram

import (
	"strconv"
	"strings"

	"github.com/wiring-animator/backend/internal/catalog"
	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/svg"
)

// Registry holds the actors of one open drawing, keyed by element id, in
// discovery order per kind. Construction is best effort: element shape
// violations are collected as notices and never abort the build.
type Registry struct {
	actors   map[string]models.Actor
	wires    []*models.WireSegment
	switches []*models.Switch
	balloons []*models.DCBalloon
	notices  []models.Notice
	renderer Renderer
}

// Build constructs the registry from an indexed drawing. Wire circuit types
// resolve through the catalog's assignment map first; in legacy drawings an
// unassigned wire falls back to the type implied by its parent layer.
// Registering the result with cat.OnRetype keeps wire types live across
// catalog edits; Build does that before returning.
func Build(idx *svg.Index, cat *catalog.Catalog) *Registry {
	r := &Registry{actors: map[string]models.Actor{}, renderer: NopRenderer{}}
	r.buildWires(idx, cat)
	r.buildSwitches(idx)
	r.buildBalloons(idx)
	cat.OnRetype(r.RetypeWires)
	return r
}

func (r *Registry) buildWires(idx *svg.Index, cat *catalog.Catalog) {
	for _, entry := range idx.Wires {
		id := entry.ID()
		if id == "" {
			r.noticef(id, "unlabeled wire skipped; run labeling first")
			continue
		}
		if _, dup := r.actors[id]; dup {
			r.noticef(id, "duplicate wire id %q; second occurrence ignored", id)
			continue
		}
		wire := &models.WireSegment{ID: id, State: models.WireStateCold}
		if entry.Label != nil {
			wire.LabelID = entry.Label.ID()
		}
		if t, ok := cat.TypeForWire(id); ok {
			wire.CircuitType = &t
		} else if entry.LayerType != "" {
			if t, ok := cat.Get(entry.LayerType); ok {
				wire.CircuitType = &t
			} else {
				r.noticef(id, "layer implies unknown circuit type %q", entry.LayerType)
			}
		}
		r.actors[id] = wire
		r.wires = append(r.wires, wire)
	}
}

func (r *Registry) buildSwitches(idx *svg.Index) {
	for _, entry := range idx.Switches {
		id := entry.ID()
		if id == "" {
			r.noticef(id, "unlabeled switch skipped; run labeling first")
			continue
		}
		if _, dup := r.actors[id]; dup {
			r.noticef(id, "duplicate switch id %q; second occurrence ignored", id)
			continue
		}
		sw := &models.Switch{ID: id, Selected: models.SwitchPositionNone}
		for _, posEl := range entry.Positions {
			pos := models.SwitchPos{
				ID:     posEl.ID(),
				Value:  trailingToken(posEl.ID()),
				Hidden: svg.IsHidden(posEl),
			}
			if pos.Value == "" {
				r.noticef(posEl.ID(), "switch %s position id has no numeric suffix", id)
				continue
			}
			sw.Positions = append(sw.Positions, pos)
			// The default position is the one drawn visible. Two visible
			// positions is a drawing configuration error; first wins.
			if !pos.Hidden {
				if sw.Default == "" {
					sw.Default = pos.Value
				} else {
					r.noticef(posEl.ID(), "switch %s has more than one default position", id)
				}
			}
		}
		if len(sw.Positions) == 0 {
			r.noticef(id, "switch %s has no position groups", id)
		}
		r.actors[id] = sw
		r.switches = append(r.switches, sw)
	}
}

func (r *Registry) buildBalloons(idx *svg.Index) {
	sentinel := idx.Conventions().BalloonSentinel
	for _, el := range idx.Balloons {
		id := el.ID()
		if id == "" {
			r.noticef(id, "unlabeled balloon skipped; run labeling first")
			continue
		}
		if _, dup := r.actors[id]; dup {
			r.noticef(id, "duplicate balloon id %q; second occurrence ignored", id)
			continue
		}
		b := &models.DCBalloon{ID: id, Value: models.BalloonDefaultValue}
		if text := svg.BalloonValueText(el, sentinel); text != nil {
			b.TextNodeID = text.ID()
			if b.TextNodeID == "" {
				// Anchor by the balloon itself; renderers re-run the
				// sentinel search.
				b.TextNodeID = id
			}
		} else {
			r.noticef(id, "balloon %s has no value text node", id)
		}
		r.actors[id] = b
		r.balloons = append(r.balloons, b)
	}
}

// trailingToken returns the numeric token after the last delimiter-ish
// separator of an id, e.g. "switch_x005F_2_x005F_3" yields "3".
func trailingToken(id string) string {
	i := strings.LastIndexFunc(id, func(r rune) bool {
		return r < '0' || r > '9'
	})
	token := id[i+1:]
	if _, err := strconv.Atoi(token); err != nil {
		return ""
	}
	return token
}

func (r *Registry) noticef(elementID, format string, args ...interface{}) {
	r.notices = append(r.notices, models.Noticef(elementID, format, args...))
}

// Actor looks up an actor by element id.
func (r *Registry) Actor(id string) (models.Actor, bool) {
	a, ok := r.actors[id]
	return a, ok
}

// Has reports whether the registry holds an actor with the given id.
func (r *Registry) Has(id string) bool {
	_, ok := r.actors[id]
	return ok
}

// Len returns the total number of actors.
func (r *Registry) Len() int { return len(r.actors) }

// Wires returns the wire actors in discovery order.
func (r *Registry) Wires() []*models.WireSegment { return r.wires }

// Switches returns the switch actors in discovery order.
func (r *Registry) Switches() []*models.Switch { return r.switches }

// Balloons returns the balloon actors in discovery order.
func (r *Registry) Balloons() []*models.DCBalloon { return r.balloons }

// Notices returns the diagnostics accumulated during construction.
func (r *Registry) Notices() []models.Notice { return r.notices }

// SetRenderer installs the rendering adapter actor state changes are pushed
// through. The default is a no-op, which keeps the registry unit-testable.
func (r *Registry) SetRenderer(renderer Renderer) {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	r.renderer = renderer
}

// RetypeWires re-derives the circuit type of every wire holding oldCode.
// A nil type clears the wires back to the inert, typeless state. Wired to
// catalog rename and remove cascades.
func (r *Registry) RetypeWires(oldCode string, t *models.CircuitType) {
	for _, w := range r.wires {
		if w.CircuitType == nil || w.CircuitType.Code != oldCode {
			continue
		}
		if t == nil {
			w.CircuitType = nil
		} else {
			clone := *t
			w.CircuitType = &clone
		}
		r.renderHighlight(w)
	}
}

// SetWireType assigns a circuit type directly to one wire actor, bypassing
// the assignment map. Used when the caller has already updated the map.
func (r *Registry) SetWireType(wireID string, t *models.CircuitType) {
	a, ok := r.actors[wireID]
	if !ok {
		return
	}
	w, ok := a.(*models.WireSegment)
	if !ok {
		return
	}
	if t == nil {
		w.CircuitType = nil
	} else {
		clone := *t
		w.CircuitType = &clone
	}
	r.renderHighlight(w)
}

// ApplyState mutates one actor to the given snapshot and pushes the change
// through the renderer.
func (r *Registry) ApplyState(id string, state models.ActorState) bool {
	a, ok := r.actors[id]
	if !ok {
		return false
	}
	a.Apply(state)
	switch actor := a.(type) {
	case *models.WireSegment:
		r.renderHighlight(actor)
		r.renderer.RenderFlow(actor.ID, actor.Direction, actor.State == models.WireStateFlow)
	case *models.Switch:
		r.renderer.RenderSwitch(actor.ID, actor.Selected)
	case *models.DCBalloon:
		r.renderer.RenderBalloon(actor.ID, actor.Value)
	}
	return true
}

// ApplySnapshot applies a whole slide snapshot. Actor ids missing from the
// registry are returned so the caller can report them.
func (r *Registry) ApplySnapshot(states map[string]models.ActorState) []string {
	var missing []string
	for id, state := range states {
		if !r.ApplyState(id, state) {
			missing = append(missing, id)
		}
	}
	return missing
}

// Snapshot captures every actor's live state, the seed for a new slide.
func (r *Registry) Snapshot() map[string]models.ActorState {
	out := make(map[string]models.ActorState, len(r.actors))
	for id, a := range r.actors {
		out[id] = a.Snapshot()
	}
	return out
}

// ResetToDefaults puts every actor into its initial state: wires cold,
// switches on their drawn default (or "1"), balloons on the placeholder.
func (r *Registry) ResetToDefaults() {
	for _, w := range r.wires {
		w.State = models.WireStateCold
		w.Direction = models.FlowNone
		r.renderHighlight(w)
	}
	for _, s := range r.switches {
		s.Selected = s.Default
		if s.Selected == "" {
			s.Selected = "1"
		}
		r.renderer.RenderSwitch(s.ID, s.Selected)
	}
	for _, b := range r.balloons {
		b.Value = models.BalloonDefaultValue
		r.renderer.RenderBalloon(b.ID, b.Value)
	}
}

func (r *Registry) renderHighlight(w *models.WireSegment) {
	visible := w.State != models.WireStateCold
	r.renderer.RenderHighlight(w.ID, w.HighlightColor(), visible)
}
