package diagram

import "github.com/wiring-animator/backend/internal/models"

// Renderer is the adapter actor state changes are pushed through. The
// drawing-side presentation (highlight overlays, flow animation, switch
// position visibility, balloon text) lives behind this interface so the
// registry and timeline stay renderer-independent.
type Renderer interface {
	// RenderHighlight shows or hides a wire's highlight in the given color.
	RenderHighlight(actorID, color string, visible bool)
	// RenderFlow starts or stops a wire's current-flow animation.
	RenderFlow(actorID string, direction models.FlowDirection, playing bool)
	// RenderSwitch makes the position with the given value the visible one.
	RenderSwitch(actorID, position string)
	// RenderBalloon updates a balloon's displayed text value.
	RenderBalloon(actorID, value string)
}

// NopRenderer discards all rendering calls.
type NopRenderer struct{}

func (NopRenderer) RenderHighlight(string, string, bool)          {}
func (NopRenderer) RenderFlow(string, models.FlowDirection, bool) {}
func (NopRenderer) RenderSwitch(string, string)                   {}
func (NopRenderer) RenderBalloon(string, string)                  {}
