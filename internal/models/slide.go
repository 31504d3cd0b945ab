package models

// Slide is one named snapshot of all actor states within an animation
// timeline. Actors maps actor id to the state the actor holds on this slide;
// Changes accumulates manual edits made after the slide was loaded, pending
// forward propagation.
type Slide struct {
	ID      string
	Title   string
	Details string
	Actors  map[string]ActorState
	Changes map[string]ActorState
	IsDirty bool
}

// NewSlide creates an empty slide with the given identity.
func NewSlide(id, title, details string) *Slide {
	return &Slide{
		ID:      id,
		Title:   title,
		Details: details,
		Actors:  make(map[string]ActorState),
		Changes: make(map[string]ActorState),
	}
}

// Copy returns a deep copy of the slide's actor snapshot under a new
// identity. Pending changes are not carried over.
func (s *Slide) Copy(id, title, details string) *Slide {
	c := NewSlide(id, title, details)
	for actorID, state := range s.Actors {
		c.Actors[actorID] = state
	}
	return c
}

// RecordChange stores a manual actor edit on the slide, both in the live
// snapshot and in the pending-propagation diff.
func (s *Slide) RecordChange(actorID string, state ActorState) {
	s.Actors[actorID] = state
	s.Changes[actorID] = state
	s.IsDirty = true
}

// AnimationDocument is the persisted shape of a slide album's timeline.
type AnimationDocument struct {
	AlbumTitle string          `json:"albumTitle"`
	Slides     []SlideDocument `json:"slides"`
}

// SlideDocument is one slide in the persisted timeline, with actor states
// split per kind the way the viewer consumes them.
type SlideDocument struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Details string         `json:"details"`
	Actors  SlideActorDocs `json:"actors"`
}

// SlideActorDocs groups the per-kind actor state arrays of one slide.
type SlideActorDocs struct {
	Wires    []WireStateDoc    `json:"wires"`
	Switches []SwitchStateDoc  `json:"switches"`
	Balloons []BalloonStateDoc `json:"balloons"`
}

// WireStateDoc is a wire actor state in the persisted timeline.
type WireStateDoc struct {
	ID        string        `json:"id"`
	State     WireState     `json:"state"`
	Direction FlowDirection `json:"direction,omitempty"`
}

// SwitchStateDoc is a switch actor state in the persisted timeline. State is
// the value of the position turned on, or "none".
type SwitchStateDoc struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// BalloonStateDoc is a balloon actor state in the persisted timeline. State
// is the balloon's text value.
type BalloonStateDoc struct {
	ID    string `json:"id"`
	State string `json:"state"`
}
