package diagram

import (
	"strings"
	"testing"

	"github.com/wiring-animator/backend/internal/catalog"
	"github.com/wiring-animator/backend/internal/config"
	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/svg"
)

const testDrawing = `<svg xmlns="http://www.w3.org/2000/svg">
<g id="layerWires">
<g id="circuit_x005F_1"><path d="M0 0 L10 0"/><g id="cb_x005F_1"><text>B</text></g></g>
<g id="circuit_x005F_2"><path d="M0 5 L10 5"/></g>
</g>
<g id="layerSwitches">
<g id="switch_x005F_1">
<g id="switch_x005F_1_x005F_1"/>
<g id="switch_x005F_1_x005F_2" display="none"/>
</g>
</g>
<g id="layerDcballoons">
<g id="dcballoon_x005F_1"><text id="value_1"><tspan id="tspan_1">I</tspan></text></g>
<g id="dcballoon_x005F_2"><text>no sentinel here</text></g>
</g>
</svg>`

func buildTestRegistry(t *testing.T) (*Registry, *catalog.Catalog) {
	t.Helper()
	doc, err := svg.Parse(strings.NewReader(testDrawing))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	idx := svg.BuildIndex(doc, config.DefaultConventions())

	cat := catalog.New([]models.CircuitType{
		{Code: "battery", Name: "Battery Feed", Color: "red"},
	})
	if err := cat.Assign("circuit_x005F_1", "battery"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	return Build(idx, cat), cat
}

func TestBuildWires(t *testing.T) {
	r, _ := buildTestRegistry(t)

	if len(r.Wires()) != 2 {
		t.Fatalf("Expected 2 wires, got %d", len(r.Wires()))
	}

	w1 := r.Wires()[0]
	if w1.CircuitType == nil || w1.CircuitType.Code != "battery" {
		t.Error("Expected circuit_x005F_1 typed battery via assignment map")
	}
	if w1.HighlightColor() != "red" {
		t.Errorf("Expected highlight red, got %q", w1.HighlightColor())
	}
	if w1.LabelID != "cb_x005F_1" {
		t.Errorf("Expected companion label id, got %q", w1.LabelID)
	}
	if w1.State != models.WireStateCold {
		t.Errorf("Expected wires to start cold, got %q", w1.State)
	}

	w2 := r.Wires()[1]
	if w2.CircuitType != nil {
		t.Error("Expected unassigned wire to be typeless")
	}
	if w2.HighlightColor() != "" {
		t.Error("Expected typeless wire to have no highlight color")
	}
}

func TestBuildSwitches(t *testing.T) {
	r, _ := buildTestRegistry(t)

	if len(r.Switches()) != 1 {
		t.Fatalf("Expected 1 switch, got %d", len(r.Switches()))
	}
	sw := r.Switches()[0]
	if len(sw.Positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(sw.Positions))
	}
	if sw.Positions[0].Value != "1" || sw.Positions[1].Value != "2" {
		t.Errorf("Expected position values 1 and 2, got %q and %q",
			sw.Positions[0].Value, sw.Positions[1].Value)
	}
	if sw.Default != "1" {
		t.Errorf("Expected default position 1 (the visible one), got %q", sw.Default)
	}
	if sw.Selected != models.SwitchPositionNone {
		t.Errorf("Expected no position selected initially, got %q", sw.Selected)
	}
}

func TestBuildBalloons(t *testing.T) {
	r, _ := buildTestRegistry(t)

	if len(r.Balloons()) != 2 {
		t.Fatalf("Expected 2 balloons, got %d", len(r.Balloons()))
	}
	b1 := r.Balloons()[0]
	if b1.Value != models.BalloonDefaultValue {
		t.Errorf("Expected placeholder value, got %q", b1.Value)
	}
	if b1.TextNodeID != "tspan_1" {
		t.Errorf("Expected sentinel tspan id, got %q", b1.TextNodeID)
	}

	b2 := r.Balloons()[1]
	if b2.TextNodeID != "" {
		t.Error("Expected balloon without sentinel to be non-functional")
	}
	found := false
	for _, n := range r.Notices() {
		if n.ElementID == "dcballoon_x005F_2" {
			found = true
		}
	}
	if !found {
		t.Error("Expected a notice for the balloon missing its value text node")
	}
}

func TestDuplicateDefaultPositionNotice(t *testing.T) {
	const src = `<svg>
<g id="layerWires"><path id="circuit_x005F_1" d="M0 0"/></g>
<g id="layerSwitches">
<g id="switch_x005F_1">
<g id="switch_x005F_1_x005F_1"/>
<g id="switch_x005F_1_x005F_2"/>
</g>
</g>
</svg>`
	doc, err := svg.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r := Build(svg.BuildIndex(doc, config.DefaultConventions()), catalog.New(nil))

	sw := r.Switches()[0]
	if sw.Default != "1" {
		t.Errorf("Expected first visible position to win, got %q", sw.Default)
	}
	found := false
	for _, n := range r.Notices() {
		if strings.Contains(n.Message, "more than one default") {
			found = true
		}
	}
	if !found {
		t.Error("Expected a duplicate default position notice")
	}
}

func TestLegacyLayerTypeFallback(t *testing.T) {
	const src = `<svg>
<g id="layer_x005F_battery"><g id="circuit_x005F_1"><path d="M0 0"/></g></g>
<g id="layer_x005F_mystery"><g id="circuit_x005F_2"><path d="M0 1"/></g></g>
</svg>`
	doc, err := svg.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cat := catalog.New([]models.CircuitType{{Code: "battery", Color: "red"}})
	r := Build(svg.BuildIndex(doc, config.DefaultConventions()), cat)

	w1, _ := r.Actor("circuit_x005F_1")
	if w1.(*models.WireSegment).CircuitType == nil {
		t.Error("Expected legacy wire typed from its layer")
	}
	w2, _ := r.Actor("circuit_x005F_2")
	if w2.(*models.WireSegment).CircuitType != nil {
		t.Error("Expected wire in unknown layer to stay typeless")
	}
}

func TestRetypeCascades(t *testing.T) {
	r, cat := buildTestRegistry(t)

	t.Run("rename re-derives wire type", func(t *testing.T) {
		if err := cat.Rename("battery", "batteryFeed"); err != nil {
			t.Fatalf("Rename failed: %v", err)
		}
		w := r.Wires()[0]
		if w.CircuitType == nil || w.CircuitType.Code != "batteryFeed" {
			t.Errorf("Expected wire retyped to batteryFeed, got %+v", w.CircuitType)
		}
	})

	t.Run("remove clears wire type", func(t *testing.T) {
		if err := cat.Remove("batteryFeed"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if r.Wires()[0].CircuitType != nil {
			t.Error("Expected wire type cleared after removal")
		}
	})
}

func TestApplyAndSnapshot(t *testing.T) {
	r, _ := buildTestRegistry(t)

	ok := r.ApplyState("circuit_x005F_1", models.ActorState{
		Kind: models.ActorKindWire, State: models.WireStateFlow, Direction: models.FlowForward,
	})
	if !ok {
		t.Fatal("Expected ApplyState to find the wire")
	}
	r.ApplyState("switch_x005F_1", models.ActorState{
		Kind: models.ActorKindSwitch, Position: "2",
	})
	r.ApplyState("dcballoon_x005F_1", models.ActorState{
		Kind: models.ActorKindBalloon, Value: "24V",
	})

	snap := r.Snapshot()
	if got := snap["circuit_x005F_1"]; got.State != models.WireStateFlow || got.Direction != models.FlowForward {
		t.Errorf("Expected flow + forward, got %+v", got)
	}
	if got := snap["switch_x005F_1"]; got.Position != "2" {
		t.Errorf("Expected position 2, got %q", got.Position)
	}
	if got := snap["dcballoon_x005F_1"]; got.Value != "24V" {
		t.Errorf("Expected 24V, got %q", got.Value)
	}

	t.Run("missing ids reported", func(t *testing.T) {
		missing := r.ApplySnapshot(map[string]models.ActorState{
			"circuit_x005F_99": {Kind: models.ActorKindWire, State: models.WireStateHot},
		})
		if len(missing) != 1 || missing[0] != "circuit_x005F_99" {
			t.Errorf("Expected circuit_x005F_99 reported missing, got %v", missing)
		}
	})

	t.Run("reset to defaults", func(t *testing.T) {
		r.ResetToDefaults()
		if r.Wires()[0].State != models.WireStateCold {
			t.Error("Expected wires cold after reset")
		}
		if r.Switches()[0].Selected != "1" {
			t.Errorf("Expected switch back on default, got %q", r.Switches()[0].Selected)
		}
		if r.Balloons()[0].Value != models.BalloonDefaultValue {
			t.Errorf("Expected balloon placeholder, got %q", r.Balloons()[0].Value)
		}
	})
}

func TestDuplicateActorIDsAcrossKinds(t *testing.T) {
	const src = `<svg>
<g id="layerWires"><g id="circuit_x005F_1"><path d="M0 0"/></g></g>
<g id="layerSwitches">
<g id="circuit_x005F_1"><g id="circuit_x005F_1_x005F_1"/></g>
</g>
<g id="layerDcballoons">
<g id="circuit_x005F_1"><text><tspan>I</tspan></text></g>
</g>
</svg>`
	doc, err := svg.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r := Build(svg.BuildIndex(doc, config.DefaultConventions()), catalog.New(nil))

	a, ok := r.Actor("circuit_x005F_1")
	if !ok {
		t.Fatal("Expected the wire actor registered")
	}
	if a.Kind() != models.ActorKindWire {
		t.Errorf("Expected first occurrence to win as wire, got %q", a.Kind())
	}
	if len(r.Switches()) != 0 || len(r.Balloons()) != 0 {
		t.Errorf("Expected colliding switch and balloon skipped, got %d switches %d balloons",
			len(r.Switches()), len(r.Balloons()))
	}

	dups := 0
	for _, n := range r.Notices() {
		if strings.Contains(n.Message, "second occurrence ignored") {
			dups++
		}
	}
	if dups != 2 {
		t.Errorf("Expected duplicate notices for switch and balloon, got %d", dups)
	}
}
