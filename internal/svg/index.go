package svg

import (
	"strings"

	"github.com/wiring-animator/backend/internal/config"
)

// WireEntry is one wire discovered in the drawing. Geometry is the
// path/line/polyline that draws the wire. Group is the wrapping <g> when the
// wire is grouped with its companion label, nil for bare geometry. Label is
// the color-blind companion label group, nil when the wire has none.
// LayerType carries the circuit type implied by the parent layer id in
// legacy drawings, "" for modern drawings.
type WireEntry struct {
	Group     *Element
	Geometry  *Element
	Label     *Element
	LayerType string
}

// IDElement returns the element that carries (or should carry) the wire id.
func (w WireEntry) IDElement() *Element {
	if w.Group != nil {
		return w.Group
	}
	return w.Geometry
}

// ID returns the wire's current id, "" when unlabeled.
func (w WireEntry) ID() string { return w.IDElement().ID() }

// SwitchEntry is one switch group and its position sub-groups in
// document order.
type SwitchEntry struct {
	Group     *Element
	Positions []*Element
}

// ID returns the switch's current id, "" when unlabeled.
func (s SwitchEntry) ID() string { return s.Group.ID() }

// Index is the diagram index: the actor elements of a drawing, discovered by
// naming convention, normalized over the legacy and modern layer schemas so
// the rest of the system never looks at raw layers.
type Index struct {
	conv *config.Conventions
	doc  *Document

	// Legacy reports the layer schema in use. A drawing is legacy when no
	// layer id starts with the wires layer prefix.
	Legacy bool

	Wires    []WireEntry
	Switches []SwitchEntry
	Balloons []*Element
}

// BuildIndex scans the drawing and indexes its actor elements.
func BuildIndex(doc *Document, conv *config.Conventions) *Index {
	idx := &Index{conv: conv, doc: doc}
	idx.Legacy = len(doc.GroupsWithIDPrefix(conv.WiresLayer)) == 0
	if idx.Legacy {
		idx.scanLegacy()
	} else {
		idx.scanModern()
	}
	return idx
}

// Document returns the drawing the index was built from.
func (idx *Index) Document() *Document { return idx.doc }

// Conventions returns the naming conventions the index scans with.
func (idx *Index) Conventions() *config.Conventions { return idx.conv }

var geometryNames = []string{"path", "line", "polyline", "polygon"}

func (idx *Index) scanModern() {
	for _, layer := range idx.doc.GroupsWithIDPrefix(idx.conv.WiresLayer) {
		for _, child := range layer.ChildElements() {
			switch {
			case child.Name == "g":
				geom := child.FindFirst(geometryNames...)
				if geom == nil {
					continue
				}
				idx.Wires = append(idx.Wires, WireEntry{
					Group:    child,
					Geometry: geom,
					Label:    child.FirstChild("g"),
				})
			case isGeometry(child):
				idx.Wires = append(idx.Wires, WireEntry{Geometry: child})
			}
		}
	}
	for _, layer := range idx.doc.GroupsWithIDPrefix(idx.conv.SwitchesLayer) {
		for _, child := range layer.ChildElements() {
			if child.Name != "g" {
				continue
			}
			idx.Switches = append(idx.Switches, SwitchEntry{
				Group:     child,
				Positions: childGroups(child),
			})
		}
	}
	for _, layer := range idx.doc.GroupsWithIDPrefix(idx.conv.BalloonsLayer) {
		for _, child := range layer.ChildElements() {
			if child.Name == "g" {
				idx.Balloons = append(idx.Balloons, child)
			}
		}
	}
}

// scanLegacy handles drawings authored before the dedicated actor layers
// existed: wires live in one layer per circuit type and the color-blind
// labels live in a separate layer, tied to wires by id substitution.
func (idx *Index) scanLegacy() {
	labels := map[string]*Element{}
	var wires []WireEntry

	for _, layer := range idx.doc.GroupsWithIDPrefix(idx.conv.LegacyLayerPrefix) {
		kind := strings.TrimPrefix(layer.ID(), idx.conv.LegacyLayerPrefix)
		switch kind {
		case "switches":
			for _, child := range layer.ChildElements() {
				if child.Name != "g" {
					continue
				}
				idx.Switches = append(idx.Switches, SwitchEntry{
					Group:     child,
					Positions: childGroups(child),
				})
			}
		case "dcballoons":
			for _, child := range layer.ChildElements() {
				if child.Name == "g" {
					idx.Balloons = append(idx.Balloons, child)
				}
			}
		case "circuits":
			for _, child := range layer.ChildElements() {
				if child.Name == "g" && strings.HasPrefix(child.ID(), idx.conv.WireLabelPrefix) {
					labels[child.ID()] = child
				}
			}
		default:
			for _, child := range layer.ChildElements() {
				switch {
				case child.Name == "g":
					geom := child.FindFirst(geometryNames...)
					if geom == nil {
						continue
					}
					wires = append(wires, WireEntry{Group: child, Geometry: geom, LayerType: kind})
				case isGeometry(child):
					wires = append(wires, WireEntry{Geometry: child, LayerType: kind})
				}
			}
		}
	}

	// Legacy label groups share the wire id with the label prefix swapped in
	// for the wire prefix.
	for i := range wires {
		id := wires[i].ID()
		if id == "" || !strings.HasPrefix(id, idx.conv.WirePrefix) {
			continue
		}
		labelID := idx.conv.WireLabelPrefix + strings.TrimPrefix(id, idx.conv.WirePrefix)
		wires[i].Label = labels[labelID]
	}
	idx.Wires = wires
}

func childGroups(el *Element) []*Element {
	var out []*Element
	for _, c := range el.ChildElements() {
		if c.Name == "g" {
			out = append(out, c)
		}
	}
	return out
}

func isGeometry(el *Element) bool {
	for _, n := range geometryNames {
		if el.Name == n {
			return true
		}
	}
	return false
}

// IsHidden reports whether the element is invisible through its display
// attribute or an inline style.
func IsHidden(el *Element) bool {
	if el.Attr("display") == "none" {
		return true
	}
	style := el.Attr("style")
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(name) == "display" && strings.TrimSpace(value) == "none" {
			return true
		}
	}
	return false
}

// SetHidden toggles the element's display attribute.
func SetHidden(el *Element, hidden bool) {
	if hidden {
		el.SetAttr("display", "none")
	} else {
		el.SetAttr("display", "inline")
	}
	// Inline styles win over the attribute, so strip any display declaration.
	if style := el.Attr("style"); style != "" {
		var kept []string
		for _, decl := range strings.Split(style, ";") {
			name, _, ok := strings.Cut(decl, ":")
			if ok && strings.TrimSpace(name) == "display" {
				continue
			}
			if strings.TrimSpace(decl) != "" {
				kept = append(kept, decl)
			}
		}
		if len(kept) == 0 {
			el.RemoveAttr("style")
		} else {
			el.SetAttr("style", strings.Join(kept, ";"))
		}
	}
}

// BalloonValueText locates the text node that displays a balloon's value.
// The drawing marks it with a sentinel glyph: either a tspan whose content is
// exactly the sentinel, or a text element containing only the sentinel.
func BalloonValueText(balloon *Element, sentinel string) *Element {
	for _, text := range balloon.FindAll("text") {
		for _, tspan := range text.FindAll("tspan") {
			if strings.TrimSpace(tspan.TextContent()) == sentinel {
				return tspan
			}
		}
		if strings.TrimSpace(text.TextContent()) == sentinel {
			return text
		}
	}
	return nil
}
