// Package timeline implements the animation slide album: an ordered list of
// actor state snapshots with copy-on-add slide creation and forward-only
// change propagation.
package timeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wiring-animator/backend/internal/models"
)

// ErrInitialSlide is returned when an operation is forbidden on slide 0.
var ErrInitialSlide = errors.New("initial slide cannot be deleted")

// Timeline is the slide album of one open drawing. Not safe for concurrent
// use; the owning session serializes access.
type Timeline struct {
	albumTitle string
	slides     []*models.Slide
	current    int
	dirty      bool
	ids        *slideIDGenerator
}

// New creates a timeline with one initial slide holding the given actor
// snapshot, normally the registry's default state: wires cold, switches on
// their drawn default, balloons on the placeholder value.
func New(albumTitle string, initial map[string]models.ActorState) *Timeline {
	t := &Timeline{albumTitle: albumTitle, ids: newSlideIDGenerator()}
	s := models.NewSlide(t.ids.Next(), "", "")
	for id, state := range initial {
		s.Actors[id] = state
	}
	t.slides = append(t.slides, s)
	t.dirty = true
	return t
}

// FromDocument restores a timeline from its persisted shape. An empty slide
// list is rejected; a timeline always has at least one slide.
func FromDocument(doc *models.AnimationDocument) (*Timeline, error) {
	if doc == nil || len(doc.Slides) == 0 {
		return nil, fmt.Errorf("animation document has no slides")
	}
	t := &Timeline{albumTitle: doc.AlbumTitle, ids: newSlideIDGenerator()}
	for _, sd := range doc.Slides {
		s := models.NewSlide(sd.ID, sd.Title, sd.Details)
		for _, w := range sd.Actors.Wires {
			s.Actors[w.ID] = models.ActorState{
				Kind: models.ActorKindWire, State: w.State, Direction: w.Direction,
			}
		}
		for _, sw := range sd.Actors.Switches {
			s.Actors[sw.ID] = models.ActorState{
				Kind: models.ActorKindSwitch, Position: sw.State,
			}
		}
		for _, b := range sd.Actors.Balloons {
			s.Actors[b.ID] = models.ActorState{
				Kind: models.ActorKindBalloon, Value: b.State,
			}
		}
		t.ids.reserve(s.ID)
		t.slides = append(t.slides, s)
	}
	return t, nil
}

// AlbumTitle returns the album's display title.
func (t *Timeline) AlbumTitle() string { return t.albumTitle }

// SetAlbumTitle renames the album.
func (t *Timeline) SetAlbumTitle(title string) {
	if t.albumTitle != title {
		t.albumTitle = title
		t.dirty = true
	}
}

// Len returns the number of slides.
func (t *Timeline) Len() int { return len(t.slides) }

// Slides returns the slides in order. Callers must not reorder the slice.
func (t *Timeline) Slides() []*models.Slide { return t.slides }

// CurrentIndex returns the index of the current slide.
func (t *Timeline) CurrentIndex() int { return t.current }

// Current returns the current slide.
func (t *Timeline) Current() *models.Slide { return t.slides[t.current] }

// Slide returns the slide at index.
func (t *Timeline) Slide(index int) (*models.Slide, error) {
	if index < 0 || index >= len(t.slides) {
		return nil, fmt.Errorf("slide index %d out of range [0,%d)", index, len(t.slides))
	}
	return t.slides[index], nil
}

// AddSlide appends a copy of the current slide's actor snapshot as a new
// slide at the end and makes it current.
func (t *Timeline) AddSlide(title, details string) *models.Slide {
	s := t.Current().Copy(t.ids.Next(), title, details)
	t.slides = append(t.slides, s)
	t.current = len(t.slides) - 1
	t.dirty = true
	return s
}

// InsertSlide copies the current slide's snapshot into a new slide placed
// immediately after it and makes the new slide current. The current slide's
// title and details are captured from the editor first; the initial slide's
// caption is immutable and the capture is skipped for it.
func (t *Timeline) InsertSlide(currentTitle, currentDetails, title, details string) *models.Slide {
	cur := t.Current()
	if t.current > 0 {
		cur.Title = currentTitle
		cur.Details = currentDetails
	}

	s := cur.Copy(t.ids.Next(), title, details)
	at := t.current + 1
	t.slides = append(t.slides, nil)
	copy(t.slides[at+1:], t.slides[at:])
	t.slides[at] = s
	t.current = at
	t.dirty = true
	return s
}

// DeleteSlide removes the current slide. The initial slide is protected;
// deleting it is an explicit precondition violation. The previous slide
// becomes current.
func (t *Timeline) DeleteSlide() error {
	if t.current == 0 {
		return ErrInitialSlide
	}
	t.slides = append(t.slides[:t.current], t.slides[t.current+1:]...)
	t.current--
	t.dirty = true
	return nil
}

// LoadSlide makes the slide at index current and returns its actor snapshot
// for the caller to apply to the registry. The snapshot is a copy; mutating
// it does not touch the slide.
func (t *Timeline) LoadSlide(index int) (map[string]models.ActorState, error) {
	s, err := t.Slide(index)
	if err != nil {
		return nil, err
	}
	t.current = index
	out := make(map[string]models.ActorState, len(s.Actors))
	for id, state := range s.Actors {
		out[id] = state
	}
	return out, nil
}

// RecordChange stores a manual actor edit on the current slide, pending
// forward propagation.
func (t *Timeline) RecordChange(actorID string, state models.ActorState) {
	t.Current().RecordChange(actorID, state)
	t.dirty = true
}

// PropagateChanges copies every pending change of the current slide into
// every later slide, overwriting whatever state those slides held for the
// changed actor ids. Earlier slides are untouched. The current slide's
// change set is cleared. Returns the number of later slides updated.
func (t *Timeline) PropagateChanges() int {
	cur := t.Current()
	if len(cur.Changes) == 0 {
		cur.IsDirty = false
		return 0
	}
	updated := 0
	for i := t.current + 1; i < len(t.slides); i++ {
		for id, state := range cur.Changes {
			t.slides[i].Actors[id] = state
		}
		updated++
	}
	cur.Changes = make(map[string]models.ActorState)
	cur.IsDirty = false
	t.dirty = true
	return updated
}

// Dirty reports whether the timeline has unsaved edits.
func (t *Timeline) Dirty() bool {
	if t.dirty {
		return true
	}
	for _, s := range t.slides {
		if s.IsDirty {
			return true
		}
	}
	return false
}

// Document serializes the timeline to its persisted shape. Actor states are
// grouped per kind and sorted by id so the output is deterministic.
func (t *Timeline) Document() *models.AnimationDocument {
	doc := &models.AnimationDocument{AlbumTitle: t.albumTitle}
	for _, s := range t.slides {
		sd := models.SlideDocument{ID: s.ID, Title: s.Title, Details: s.Details}

		ids := make([]string, 0, len(s.Actors))
		for id := range s.Actors {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			state := s.Actors[id]
			switch state.Kind {
			case models.ActorKindWire:
				sd.Actors.Wires = append(sd.Actors.Wires, models.WireStateDoc{
					ID: id, State: state.State, Direction: state.Direction,
				})
			case models.ActorKindSwitch:
				sd.Actors.Switches = append(sd.Actors.Switches, models.SwitchStateDoc{
					ID: id, State: state.Position,
				})
			case models.ActorKindBalloon:
				sd.Actors.Balloons = append(sd.Actors.Balloons, models.BalloonStateDoc{
					ID: id, State: state.Value,
				})
			}
		}
		doc.Slides = append(doc.Slides, sd)
	}
	return doc
}

// MarkSaved clears all dirty flags after a successful persist.
func (t *Timeline) MarkSaved() {
	t.dirty = false
	for _, s := range t.slides {
		s.IsDirty = false
	}
}
