// Package validate cross-checks the timeline and the wire-to-type
// assignment map against the actors actually present in the drawing. All
// findings are non-fatal warnings; nothing is auto-repaired, since repairing
// could silently destroy user intent.
package validate

import (
	"fmt"
	"sort"

	"github.com/wiring-animator/backend/internal/models"
)

// ActorLookup answers whether an actor id exists in the open drawing.
// diagram.Registry satisfies it.
type ActorLookup interface {
	Has(id string) bool
}

// TypeLookup answers whether a circuit type code exists.
// catalog.Catalog satisfies it.
type TypeLookup interface {
	Get(code string) (models.CircuitType, bool)
}

// Validate runs both consistency checks and accumulates every finding into
// one report:
//
//  1. Every actor id referenced by any slide must exist in the registry.
//  2. Every assignment map entry must name an existing wire and an existing
//     circuit type.
//
// Warnings are ordered by slide index, then actor kind (wires, switches,
// balloons), then id, so the report is deterministic. Assignment findings
// come last, with slide index 0.
func Validate(slides []*models.Slide, actors ActorLookup, assignments map[string]string, types TypeLookup) []models.Warning {
	var warnings []models.Warning

	for i, slide := range slides {
		warnings = append(warnings, checkSlide(i+1, slide, actors)...)
	}
	warnings = append(warnings, checkAssignments(assignments, actors, types)...)
	return warnings
}

var kindOrder = []models.ActorKind{
	models.ActorKindWire,
	models.ActorKindSwitch,
	models.ActorKindBalloon,
}

func kindNoun(kind models.ActorKind) string {
	switch kind {
	case models.ActorKindWire:
		return "wire"
	case models.ActorKindSwitch:
		return "switch"
	case models.ActorKindBalloon:
		return "balloon"
	}
	return "actor"
}

func checkSlide(index int, slide *models.Slide, actors ActorLookup) []models.Warning {
	missing := map[models.ActorKind][]string{}
	for id, state := range slide.Actors {
		if !actors.Has(id) {
			missing[state.Kind] = append(missing[state.Kind], id)
		}
	}

	var warnings []models.Warning
	for _, kind := range kindOrder {
		ids := missing[kind]
		sort.Strings(ids)
		for _, id := range ids {
			warnings = append(warnings, models.Warning{
				SlideIndex: index,
				ActorKind:  kind,
				ActorID:    id,
				Message:    fmt.Sprintf("slide %d: no such %s id %q", index, kindNoun(kind), id),
			})
		}
	}
	return warnings
}

func checkAssignments(assignments map[string]string, actors ActorLookup, types TypeLookup) []models.Warning {
	wireIDs := make([]string, 0, len(assignments))
	for id := range assignments {
		wireIDs = append(wireIDs, id)
	}
	sort.Strings(wireIDs)

	var warnings []models.Warning
	for _, wireID := range wireIDs {
		code := assignments[wireID]
		if !actors.Has(wireID) {
			warnings = append(warnings, models.Warning{
				ActorKind: models.ActorKindWire,
				ActorID:   wireID,
				Message:   fmt.Sprintf("wire %q does not exist in diagram", wireID),
			})
		}
		if _, ok := types.Get(code); !ok {
			warnings = append(warnings, models.Warning{
				ActorKind: models.ActorKindWire,
				ActorID:   wireID,
				Message:   fmt.Sprintf("circuit type %q does not exist", code),
			})
		}
	}
	return warnings
}
