// Package highlight implements the wire highlighter: per-diagram overlay
// state with hover/selection pointer handling, stroke-width based wire
// discovery for drawings that were never labeled, and width/intensity
// adjustment of the selected set. Settings and selections persist keyed by
// the diagram identity (album title + customer).
package highlight

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/wiring-animator/backend/internal/config"
	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/svg"
)

// PointerState is the visual state of one overlay.
type PointerState string

const (
	// StateIdle draws the overlay fully transparent.
	StateIdle PointerState = "idle"
	// StateHover previews the highlight color while the pointer is over it.
	StateHover PointerState = "hover"
	// StateSelected draws the persisted selection color.
	StateSelected PointerState = "selected"
)

// Overlay is the highlight proxy of one wire: an independent hit-test target
// layered over the wire geometry.
type Overlay struct {
	WireID string
	State  PointerState
	// Color is the persisted selection color, set while State is selected.
	Color  string
	Hidden bool
}

// DefaultSettings are the stroke and color settings a diagram starts with
// before the author tunes them.
func DefaultSettings() models.HighlighterSettings {
	return models.HighlighterSettings{
		Width:          3,
		Intensity:      0.5,
		HighlightColor: "yellow",
		ClickColor:     "red",
	}
}

// Highlighter holds the overlay set of one open diagram. Not safe for
// concurrent use; the owning session serializes access.
type Highlighter struct {
	albumKey string
	settings models.HighlighterSettings

	overlays map[string]*Overlay
	order    []string

	// complementary holds ids of background elements that hide together
	// with unselected overlays when the view is isolated.
	complementary []string
	isolated      bool
	dirty         bool
}

// FromWireSet builds a highlighter over wires already identified by the
// actor registry.
func FromWireSet(albumKey string, settings models.HighlighterSettings, selection models.HighlightSelection, wireIDs []string) *Highlighter {
	h := newHighlighter(albumKey, settings)
	for _, id := range wireIDs {
		h.addOverlay(id)
	}
	h.applySelection(selection)
	return h
}

// FromStrokeWidths builds a highlighter by classifying every path, line and
// polyline of the drawing by its stroke width: widths on the wire allowlist
// become overlays, widths on the complementary list become background that
// ShowHide hides. Elements with no id get one synthesized from their
// geometry, stable across reloads of the same drawing.
func FromStrokeWidths(albumKey string, settings models.HighlighterSettings, selection models.HighlightSelection, doc *svg.Document, conv config.HighlighterConventions) *Highlighter {
	h := newHighlighter(albumKey, settings)
	wireWidths := toSet(conv.WireStrokeWidths)
	backWidths := toSet(conv.ComplementaryStrokeWidths)

	for _, el := range doc.Root.FindAll("path", "line", "polyline") {
		width := strokeWidth(el)
		if width == "" {
			continue
		}
		switch {
		case wireWidths[width]:
			if el.ID() == "" {
				el.SetID(syntheticID(el))
			}
			h.addOverlay(el.ID())
		case backWidths[width]:
			if el.ID() == "" {
				el.SetID(syntheticID(el))
			}
			h.complementary = append(h.complementary, el.ID())
		}
	}
	h.applySelection(selection)
	return h
}

func newHighlighter(albumKey string, settings models.HighlighterSettings) *Highlighter {
	if settings == (models.HighlighterSettings{}) {
		settings = DefaultSettings()
	}
	return &Highlighter{
		albumKey: albumKey,
		settings: settings,
		overlays: map[string]*Overlay{},
	}
}

func (h *Highlighter) addOverlay(id string) {
	if _, ok := h.overlays[id]; ok {
		return
	}
	h.overlays[id] = &Overlay{WireID: id, State: StateIdle}
	h.order = append(h.order, id)
}

func (h *Highlighter) applySelection(selection models.HighlightSelection) {
	for id, color := range selection {
		if o, ok := h.overlays[id]; ok {
			o.State = StateSelected
			o.Color = color
		}
	}
}

// AlbumKey returns the diagram identity the highlighter persists under.
func (h *Highlighter) AlbumKey() string { return h.albumKey }

// Settings returns the current stroke and color settings.
func (h *Highlighter) Settings() models.HighlighterSettings { return h.settings }

// Overlays returns the overlays in discovery order.
func (h *Highlighter) Overlays() []*Overlay {
	out := make([]*Overlay, len(h.order))
	for i, id := range h.order {
		out[i] = h.overlays[id]
	}
	return out
}

// Overlay looks up one overlay by wire id.
func (h *Highlighter) Overlay(wireID string) (*Overlay, bool) {
	o, ok := h.overlays[wireID]
	return o, ok
}

// Complementary returns the ids of the background elements.
func (h *Highlighter) Complementary() []string { return h.complementary }

// Hover moves an idle overlay into the preview state. Selected overlays are
// left alone; selection outranks hover.
func (h *Highlighter) Hover(wireID string) {
	if o, ok := h.overlays[wireID]; ok && o.State == StateIdle {
		o.State = StateHover
	}
}

// Leave returns a hovered overlay to idle.
func (h *Highlighter) Leave(wireID string) {
	if o, ok := h.overlays[wireID]; ok && o.State == StateHover {
		o.State = StateIdle
	}
}

// Click toggles an overlay's selection with the configured click color.
// Returns the overlay's new selected state; false also when the id is
// unknown.
func (h *Highlighter) Click(wireID string) bool {
	o, ok := h.overlays[wireID]
	if !ok {
		return false
	}
	if o.State == StateSelected {
		o.State = StateIdle
		o.Color = ""
		h.dirty = true
		return false
	}
	o.State = StateSelected
	o.Color = h.settings.ClickColor
	h.dirty = true
	return true
}

// SelectWire selects an overlay with an explicit color, bypassing the click
// color. Used when restoring or editing a selection directly.
func (h *Highlighter) SelectWire(wireID, color string) bool {
	o, ok := h.overlays[wireID]
	if !ok {
		return false
	}
	o.State = StateSelected
	o.Color = color
	h.dirty = true
	return true
}

// AdjustWidth changes the stroke width of the selected overlays by the given
// number of steps. Only selected overlays are affected; the shared width
// setting is what persists. Returns the number of selected overlays.
func (h *Highlighter) AdjustWidth(steps int, stepSize float64) int {
	n := h.selectedCount()
	if n == 0 {
		return 0
	}
	w := h.settings.Width + float64(steps)*stepSize
	if w < stepSize {
		w = stepSize
	}
	if w != h.settings.Width {
		h.settings.Width = w
		h.dirty = true
	}
	return n
}

// AdjustIntensity changes the opacity of the selected overlays by the given
// number of steps, clamped to (0, 1].
func (h *Highlighter) AdjustIntensity(steps int, stepSize float64) int {
	n := h.selectedCount()
	if n == 0 {
		return 0
	}
	in := h.settings.Intensity + float64(steps)*stepSize
	if in > 1 {
		in = 1
	}
	if in < stepSize {
		in = stepSize
	}
	if in != h.settings.Intensity {
		h.settings.Intensity = in
		h.dirty = true
	}
	return n
}

func (h *Highlighter) selectedCount() int {
	n := 0
	for _, o := range h.overlays {
		if o.State == StateSelected {
			n++
		}
	}
	return n
}

// ShowHide toggles isolation: every non-selected overlay and every
// complementary background element flips visibility, leaving only the
// selected wires prominent. Returns whether the view is now isolated.
func (h *Highlighter) ShowHide() bool {
	h.isolated = !h.isolated
	for _, o := range h.overlays {
		if o.State != StateSelected {
			o.Hidden = h.isolated
		}
	}
	return h.isolated
}

// Isolated reports whether non-selected elements are currently hidden.
func (h *Highlighter) Isolated() bool { return h.isolated }

// Reset clears every selection and un-isolates the view.
func (h *Highlighter) Reset() {
	for _, o := range h.overlays {
		o.State = StateIdle
		o.Color = ""
		o.Hidden = false
	}
	h.isolated = false
	h.dirty = true
}

// Selection snapshots the selected wire ids with their colors, the shape
// persisted next to the settings document.
func (h *Highlighter) Selection() models.HighlightSelection {
	out := models.HighlightSelection{}
	for id, o := range h.overlays {
		if o.State == StateSelected {
			out[id] = o.Color
		}
	}
	return out
}

// Dirty reports whether settings or selection changed since the last save.
func (h *Highlighter) Dirty() bool { return h.dirty }

// MarkSaved clears the dirty flag after a successful persist.
func (h *Highlighter) MarkSaved() { h.dirty = false }

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// strokeWidth reads an element's stroke width from the attribute or an
// inline style declaration.
func strokeWidth(el *svg.Element) string {
	if w := el.Attr("stroke-width"); w != "" {
		return w
	}
	for _, decl := range strings.Split(el.Attr("style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == "stroke-width" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// syntheticID derives a stable id from an element's geometry so unlabeled
// wires keep their selection across reloads of the same drawing.
func syntheticID(el *svg.Element) string {
	hash := fnv.New64a()
	hash.Write([]byte(el.Name))
	for _, attr := range []string{"d", "points", "x1", "y1", "x2", "y2"} {
		hash.Write([]byte{0})
		hash.Write([]byte(el.Attr(attr)))
	}
	return fmt.Sprintf("hl_%x", hash.Sum64())
}

// SortedSelection returns the selection as ordered wire ids, for stable
// serialization in tests and exports.
func (h *Highlighter) SortedSelection() []string {
	ids := make([]string, 0, len(h.overlays))
	for id, o := range h.overlays {
		if o.State == StateSelected {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
