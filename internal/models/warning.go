package models

import "fmt"

// Warning is one non-fatal finding of the consistency validator. SlideIndex
// is 1-based; it is 0 for assignment-map findings that are not tied to a
// slide.
type Warning struct {
	SlideIndex int       `json:"slideIndex,omitempty"`
	ActorKind  ActorKind `json:"actorKind,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	Message    string    `json:"message"`
}

func (w Warning) String() string { return w.Message }

// Notice is a non-fatal diagnostic raised while indexing, labeling or
// building actors from a drawing: naming-convention violations, ambiguous
// defaults, missing text nodes. Notices never abort processing.
type Notice struct {
	ElementID string `json:"elementId,omitempty"`
	Message   string `json:"message"`
}

func (n Notice) String() string {
	if n.ElementID == "" {
		return n.Message
	}
	return fmt.Sprintf("%s: %s", n.ElementID, n.Message)
}

// Noticef builds a Notice for an element with a formatted message.
func Noticef(elementID, format string, args ...interface{}) Notice {
	return Notice{ElementID: elementID, Message: fmt.Sprintf(format, args...)}
}
