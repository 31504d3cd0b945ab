package svg

import (
	"strings"
	"testing"

	"github.com/wiring-animator/backend/internal/config"
)

const modernDrawing = `<svg xmlns="http://www.w3.org/2000/svg">
<g id="layerWires">
<g id="circuit_x005F_1"><path d="M0 0 L10 0"/><g id="cb_x005F_1"><text>B</text></g></g>
<g><path d="M0 5 L10 5"/><g><text>?</text></g></g>
<path d="M0 9 L9 9"/>
</g>
<g id="layerSwitches">
<g id="switch_x005F_2">
<g id="switch_x005F_2_x005F_1"/>
<g style="display:none"/>
</g>
<g><g/><g/></g>
</g>
<g id="layerDcballoons">
<g id="dcballoon_x005F_1"><text><tspan>I</tspan></text></g>
<g><text>I</text></g>
</g>
</svg>`

const legacyDrawing = `<svg xmlns="http://www.w3.org/2000/svg">
<g id="layer_x005F_battery">
<g id="circuit_x005F_1"><path d="M0 0 L5 0"/></g>
<path d="M0 2 L5 2"/>
</g>
<g id="layer_x005F_inputs">
<g id="circuit_x005F_2"><polyline points="0,4 5,4"/></g>
</g>
<g id="layer_x005F_switches">
<g id="switch_x005F_1"><g id="switch_x005F_1_x005F_1"/></g>
</g>
<g id="layer_x005F_dcballoons">
<g id="dcballoon_x005F_1"><text>I</text></g>
</g>
<g id="layer_x005F_circuits">
<g id="cb_x005F_1"><text>B</text></g>
</g>
</svg>`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestBuildIndexModern(t *testing.T) {
	conv := config.DefaultConventions()
	idx := BuildIndex(mustParse(t, modernDrawing), conv)

	if idx.Legacy {
		t.Fatal("Expected modern schema")
	}
	if len(idx.Wires) != 3 {
		t.Fatalf("Expected 3 wires, got %d", len(idx.Wires))
	}
	if got := idx.Wires[0].ID(); got != "circuit_x005F_1" {
		t.Errorf("Expected first wire circuit_x005F_1, got %q", got)
	}
	if idx.Wires[0].Label == nil || idx.Wires[0].Label.ID() != "cb_x005F_1" {
		t.Error("Expected first wire to carry its companion label")
	}
	if idx.Wires[1].ID() != "" {
		t.Errorf("Expected second wire unlabeled, got %q", idx.Wires[1].ID())
	}
	if idx.Wires[1].Label == nil {
		t.Error("Expected second wire to have an unlabeled companion group")
	}
	if idx.Wires[2].Group != nil {
		t.Error("Expected third wire to be bare geometry")
	}
	if idx.Wires[2].Geometry.Name != "path" {
		t.Errorf("Expected bare path geometry, got %q", idx.Wires[2].Geometry.Name)
	}

	if len(idx.Switches) != 2 {
		t.Fatalf("Expected 2 switches, got %d", len(idx.Switches))
	}
	if got := len(idx.Switches[0].Positions); got != 2 {
		t.Errorf("Expected 2 positions on first switch, got %d", got)
	}
	if !IsHidden(idx.Switches[0].Positions[1]) {
		t.Error("Expected second position hidden")
	}

	if len(idx.Balloons) != 2 {
		t.Fatalf("Expected 2 balloons, got %d", len(idx.Balloons))
	}
}

func TestBuildIndexLegacy(t *testing.T) {
	conv := config.DefaultConventions()
	idx := BuildIndex(mustParse(t, legacyDrawing), conv)

	if !idx.Legacy {
		t.Fatal("Expected legacy schema")
	}
	if len(idx.Wires) != 3 {
		t.Fatalf("Expected 3 wires, got %d", len(idx.Wires))
	}

	byID := map[string]WireEntry{}
	for _, w := range idx.Wires {
		byID[w.ID()] = w
	}
	if got := byID["circuit_x005F_1"].LayerType; got != "battery" {
		t.Errorf("Expected layer type battery, got %q", got)
	}
	if got := byID["circuit_x005F_2"].LayerType; got != "inputs" {
		t.Errorf("Expected layer type inputs, got %q", got)
	}
	if byID["circuit_x005F_1"].Label == nil || byID["circuit_x005F_1"].Label.ID() != "cb_x005F_1" {
		t.Error("Expected legacy label resolved by id substitution")
	}
	if byID["circuit_x005F_2"].Label != nil {
		t.Error("Expected no label for circuit_x005F_2")
	}

	if len(idx.Switches) != 1 || len(idx.Balloons) != 1 {
		t.Errorf("Expected 1 switch and 1 balloon, got %d and %d",
			len(idx.Switches), len(idx.Balloons))
	}
}

func TestLegacyDetection(t *testing.T) {
	conv := config.DefaultConventions()
	t.Run("wires layer present means modern", func(t *testing.T) {
		idx := BuildIndex(mustParse(t, `<svg><g id="layerWires_1"/></svg>`), conv)
		if idx.Legacy {
			t.Error("Expected modern schema for layerWires_1")
		}
	})
	t.Run("no wires layer means legacy", func(t *testing.T) {
		idx := BuildIndex(mustParse(t, `<svg><g id="layer_x005F_battery"/></svg>`), conv)
		if !idx.Legacy {
			t.Error("Expected legacy schema")
		}
	})
}
