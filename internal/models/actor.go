// Package models contains domain types for the Wiring Animator backend.
package models

// ActorKind discriminates the closed set of animatable actor kinds.
type ActorKind string

const (
	ActorKindWire    ActorKind = "wire"
	ActorKindSwitch  ActorKind = "switch"
	ActorKindBalloon ActorKind = "balloon"
)

// WireState represents the animation state of a wire segment.
type WireState string

const (
	WireStateCold WireState = "cold"
	WireStateHot  WireState = "hot"
	WireStateFlow WireState = "flow"
)

// FlowDirection is the direction of the current flow animation over a wire.
// Empty means no direction (wire not flowing).
type FlowDirection string

const (
	FlowForward  FlowDirection = "+"
	FlowReversed FlowDirection = "-"
	FlowNone     FlowDirection = ""
)

// SwitchPositionNone marks a switch with no position turned on.
const SwitchPositionNone = "none"

// BalloonDefaultValue is the placeholder text a voltage balloon shows before
// any slide assigns it a value.
const BalloonDefaultValue = "***"

// ActorState is one actor's state as captured in a slide snapshot. Only the
// fields matching Kind are meaningful: State/Direction for wires, Position
// for switches, Value for balloons.
type ActorState struct {
	Kind      ActorKind     `json:"kind"`
	State     WireState     `json:"state,omitempty"`
	Direction FlowDirection `json:"direction,omitempty"`
	Position  string        `json:"position,omitempty"`
	Value     string        `json:"value,omitempty"`
}

// Actor is a logical animatable entity bound to one drawing element by id.
// The concrete types are WireSegment, Switch and DCBalloon; callers dispatch
// on Kind() and match exhaustively.
type Actor interface {
	ActorID() string
	Kind() ActorKind
	// Snapshot captures the actor's current live state.
	Snapshot() ActorState
	// Apply mutates the actor's live state to match a slide snapshot.
	Apply(state ActorState)
}

// WireSegment is a wire actor: an electrical circuit that can be cold, hot
// (energized) or flowing, optionally classified by a circuit type.
type WireSegment struct {
	ID          string
	State       WireState
	Direction   FlowDirection
	CircuitType *CircuitType // nil if the wire has no type and is inert

	// Balloon companion (color-blind label) element id, if the drawing
	// carries one next to the wire primitive.
	LabelID string
}

func (w *WireSegment) ActorID() string { return w.ID }

func (w *WireSegment) Kind() ActorKind { return ActorKindWire }

func (w *WireSegment) Snapshot() ActorState {
	return ActorState{Kind: ActorKindWire, State: w.State, Direction: w.Direction}
}

func (w *WireSegment) Apply(state ActorState) {
	w.State = state.State
	w.Direction = state.Direction
	if w.State != WireStateFlow {
		w.Direction = FlowNone
	}
}

// HighlightColor returns the color the wire is highlighted with when hot,
// derived from its circuit type. Typeless wires have no highlight color.
func (w *WireSegment) HighlightColor() string {
	if w.CircuitType == nil {
		return ""
	}
	return w.CircuitType.Color
}

// SwitchPos is one selectable position of a switch.
type SwitchPos struct {
	ID     string
	Value  string // trailing numeric token of the position id
	Hidden bool   // hidden-by-default in the drawing (display="none")
}

// Switch is a switch actor with an ordered list of positions, exactly one of
// which is turned on at a time (or none).
type Switch struct {
	ID        string
	Positions []SwitchPos
	Selected  string // value of the position turned on, or SwitchPositionNone
	Default   string // value of the position visible by default in the drawing
}

func (s *Switch) ActorID() string { return s.ID }

func (s *Switch) Kind() ActorKind { return ActorKindSwitch }

func (s *Switch) Snapshot() ActorState {
	return ActorState{Kind: ActorKindSwitch, Position: s.Selected}
}

func (s *Switch) Apply(state ActorState) {
	if state.Position == SwitchPositionNone || state.Position == "" {
		return
	}
	s.Selected = state.Position
}

// HasPosition reports whether the switch defines a position with the value.
func (s *Switch) HasPosition(value string) bool {
	for _, p := range s.Positions {
		if p.Value == value {
			return true
		}
	}
	return false
}

// DCBalloon is a voltage balloon actor displaying a short text value.
// The UI convention caps values at 4 characters; the core does not enforce it.
type DCBalloon struct {
	ID    string
	Value string

	// TextNodeID is the id path of the text run holding the live value,
	// located by the sentinel glyph search. Empty when the node was not
	// found; the balloon is then non-functional.
	TextNodeID string
}

func (b *DCBalloon) ActorID() string { return b.ID }

func (b *DCBalloon) Kind() ActorKind { return ActorKindBalloon }

func (b *DCBalloon) Snapshot() ActorState {
	return ActorState{Kind: ActorKindBalloon, Value: b.Value}
}

func (b *DCBalloon) Apply(state ActorState) { b.Value = state.Value }
