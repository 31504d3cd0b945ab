package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/wiring-animator/backend/internal/models"
)

func wireState(s models.WireState) models.ActorState {
	return models.ActorState{Kind: models.ActorKindWire, State: s}
}

func initialActors() map[string]models.ActorState {
	return map[string]models.ActorState{
		"circuit_x005F_1":   wireState(models.WireStateCold),
		"circuit_x005F_2":   wireState(models.WireStateCold),
		"switch_x005F_1":    {Kind: models.ActorKindSwitch, Position: "1"},
		"dcballoon_x005F_1": {Kind: models.ActorKindBalloon, Value: models.BalloonDefaultValue},
	}
}

func TestNewTimeline(t *testing.T) {
	tl := New("Headlights", initialActors())

	if tl.Len() != 1 {
		t.Fatalf("Expected 1 initial slide, got %d", tl.Len())
	}
	if tl.CurrentIndex() != 0 {
		t.Errorf("Expected current index 0, got %d", tl.CurrentIndex())
	}
	if len(tl.Current().ID) != slideIDLength {
		t.Errorf("Expected slide id length %d, got %d", slideIDLength, len(tl.Current().ID))
	}
	if got := tl.Current().Actors["circuit_x005F_1"]; got.State != models.WireStateCold {
		t.Errorf("Expected initial wire cold, got %q", got.State)
	}
}

func TestAddSlideCopiesSnapshot(t *testing.T) {
	tl := New("Headlights", initialActors())
	tl.RecordChange("circuit_x005F_1", wireState(models.WireStateHot))
	tl.PropagateChanges()

	s2 := tl.AddSlide("Key on", "")
	if tl.Len() != 2 || tl.CurrentIndex() != 1 {
		t.Fatalf("Expected 2 slides with current 1, got %d/%d", tl.Len(), tl.CurrentIndex())
	}
	if got := s2.Actors["circuit_x005F_1"]; got.State != models.WireStateHot {
		t.Errorf("Expected copy of previous slide state, got %q", got.State)
	}
	if len(s2.Changes) != 0 || s2.IsDirty {
		t.Error("Expected fresh slide without pending changes")
	}

	// The copy is deep: editing the new slide leaves the source alone.
	tl.RecordChange("circuit_x005F_1", wireState(models.WireStateFlow))
	first, _ := tl.Slide(0)
	if got := first.Actors["circuit_x005F_1"]; got.State != models.WireStateHot {
		t.Errorf("Expected first slide untouched, got %q", got.State)
	}
}

func TestInsertSlide(t *testing.T) {
	tl := New("Headlights", initialActors())
	tl.AddSlide("A", "")
	tl.AddSlide("B", "")
	tl.LoadSlide(1)

	s := tl.InsertSlide("A titled", "details", "between", "")
	if tl.Len() != 4 {
		t.Fatalf("Expected 4 slides, got %d", tl.Len())
	}
	if tl.CurrentIndex() != 2 {
		t.Errorf("Expected new slide current at index 2, got %d", tl.CurrentIndex())
	}
	if tl.Slides()[2] != s {
		t.Error("Expected new slide inserted after the source")
	}
	source, _ := tl.Slide(1)
	if source.Title != "A titled" || source.Details != "details" {
		t.Error("Expected source slide's title and details captured before the copy")
	}
	last, _ := tl.Slide(3)
	if last.Title != "B" {
		t.Errorf("Expected trailing slide B, got %q", last.Title)
	}
}

func TestInsertSlideKeepsInitialCaption(t *testing.T) {
	tl := New("Headlights", initialActors())

	tl.InsertSlide("renamed", "edited", "second", "")
	first, _ := tl.Slide(0)
	if first.Title != "" || first.Details != "" {
		t.Errorf("Expected initial slide caption untouched, got %q / %q", first.Title, first.Details)
	}
	if tl.Len() != 2 || tl.CurrentIndex() != 1 {
		t.Errorf("Expected insert itself to proceed, got %d slides current %d", tl.Len(), tl.CurrentIndex())
	}
}

func TestDeleteSlide(t *testing.T) {
	tl := New("Headlights", initialActors())

	if err := tl.DeleteSlide(); !errors.Is(err, ErrInitialSlide) {
		t.Errorf("Expected ErrInitialSlide, got %v", err)
	}

	tl.AddSlide("B", "")
	tl.AddSlide("C", "")
	tl.LoadSlide(1)
	if err := tl.DeleteSlide(); err != nil {
		t.Fatalf("DeleteSlide failed: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("Expected 2 slides, got %d", tl.Len())
	}
	if tl.CurrentIndex() != 0 {
		t.Errorf("Expected previous slide current, got %d", tl.CurrentIndex())
	}
	last, _ := tl.Slide(1)
	if last.Title != "C" {
		t.Errorf("Expected slide C kept, got %q", last.Title)
	}
}

func TestPropagateChanges(t *testing.T) {
	// Slides [S1,S2,S3], actor x on all. Setting y on S2 and propagating
	// yields [x,y,y] with S1 untouched.
	tl := New("Headlights", initialActors())
	tl.AddSlide("S2", "")
	tl.AddSlide("S3", "")

	tl.LoadSlide(1)
	tl.RecordChange("circuit_x005F_1", wireState(models.WireStateHot))
	if !tl.Current().IsDirty {
		t.Fatal("Expected slide dirty after manual edit")
	}

	updated := tl.PropagateChanges()
	if updated != 1 {
		t.Errorf("Expected 1 later slide updated, got %d", updated)
	}

	states := make([]models.WireState, 3)
	for i := 0; i < 3; i++ {
		s, _ := tl.Slide(i)
		states[i] = s.Actors["circuit_x005F_1"].State
	}
	if states[0] != models.WireStateCold {
		t.Errorf("Expected S1 untouched, got %q", states[0])
	}
	if states[1] != models.WireStateHot || states[2] != models.WireStateHot {
		t.Errorf("Expected S2 and S3 hot, got %q %q", states[1], states[2])
	}
	if len(tl.Current().Changes) != 0 || tl.Current().IsDirty {
		t.Error("Expected change set cleared after propagation")
	}
}

func TestLoadSlideReturnsCopy(t *testing.T) {
	tl := New("Headlights", initialActors())
	snap, err := tl.LoadSlide(0)
	if err != nil {
		t.Fatalf("LoadSlide failed: %v", err)
	}
	snap["circuit_x005F_1"] = wireState(models.WireStateFlow)
	if got := tl.Current().Actors["circuit_x005F_1"]; got.State != models.WireStateCold {
		t.Error("Expected LoadSlide to return a copy, slide was mutated")
	}

	if _, err := tl.LoadSlide(5); err == nil {
		t.Error("Expected error for out-of-range index")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	tl := New("Headlights", initialActors())
	tl.RecordChange("circuit_x005F_1", models.ActorState{
		Kind: models.ActorKindWire, State: models.WireStateFlow, Direction: models.FlowReversed,
	})
	tl.PropagateChanges()
	tl.AddSlide("Key on", "turn the key")

	doc := tl.Document()
	if doc.AlbumTitle != "Headlights" {
		t.Errorf("Expected album title kept, got %q", doc.AlbumTitle)
	}
	if len(doc.Slides) != 2 {
		t.Fatalf("Expected 2 slides, got %d", len(doc.Slides))
	}
	if len(doc.Slides[0].Actors.Wires) != 2 ||
		len(doc.Slides[0].Actors.Switches) != 1 ||
		len(doc.Slides[0].Actors.Balloons) != 1 {
		t.Fatal("Expected actors grouped per kind")
	}

	restored, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument failed: %v", err)
	}
	if restored.AlbumTitle() != tl.AlbumTitle() || restored.Len() != tl.Len() {
		t.Fatal("Expected identity preserved")
	}
	for i := 0; i < tl.Len(); i++ {
		want, _ := tl.Slide(i)
		got, _ := restored.Slide(i)
		if got.ID != want.ID || got.Title != want.Title || got.Details != want.Details {
			t.Errorf("Slide %d identity mismatch", i)
		}
		if len(got.Actors) != len(want.Actors) {
			t.Fatalf("Slide %d actor count mismatch", i)
		}
		for id, state := range want.Actors {
			if got.Actors[id] != state {
				t.Errorf("Slide %d actor %s: expected %+v, got %+v", i, id, state, got.Actors[id])
			}
		}
	}
}

func TestFromDocumentRejectsEmpty(t *testing.T) {
	if _, err := FromDocument(&models.AnimationDocument{AlbumTitle: "x"}); err == nil {
		t.Error("Expected error for document without slides")
	}
	if _, err := FromDocument(nil); err == nil {
		t.Error("Expected error for nil document")
	}
}

func TestSlideIDUniqueness(t *testing.T) {
	g := newSlideIDGenerator()
	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := g.Next()
		if len(id) != slideIDLength {
			t.Fatalf("Expected id length %d, got %d (%q)", slideIDLength, len(id), id)
		}
		if seen[id] {
			t.Fatalf("Duplicate id %q with a frozen clock", id)
		}
		seen[id] = true
	}
}

func TestMarkSaved(t *testing.T) {
	tl := New("Headlights", initialActors())
	tl.RecordChange("circuit_x005F_1", wireState(models.WireStateHot))
	if !tl.Dirty() {
		t.Fatal("Expected timeline dirty")
	}
	tl.MarkSaved()
	if tl.Dirty() {
		t.Error("Expected timeline clean after MarkSaved")
	}
}
