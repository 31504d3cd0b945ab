package svg

import (
	"strconv"
	"strings"

	"github.com/wiring-animator/backend/internal/models"
)

// LabelResult reports what a labeling pass did to the drawing.
type LabelResult struct {
	// Labeled is the number of ids assigned by this pass.
	Labeled int
	// Dirty is true when the drawing was modified and needs re-saving.
	Dirty bool
	// Notices are advisory findings about pre-existing ids.
	Notices []models.Notice
}

// Label assigns ids to every unlabeled actor element in the index. Numbering
// continues from the highest suffix already present for each prefix, so a
// second pass over the same drawing assigns nothing. Already-labeled elements
// are never renamed, with one exception: when a switch itself gets a fresh
// id, all of its position groups are relabeled under the new parent id.
func Label(idx *Index) LabelResult {
	l := &labeler{}
	l.labelWires(idx)
	l.labelSwitches(idx)
	l.labelBalloons(idx)
	return LabelResult{Labeled: l.labeled, Dirty: l.labeled > 0, Notices: l.notices}
}

type labeler struct {
	labeled int
	notices []models.Notice
}

func (l *labeler) assign(el *Element, id string) {
	el.SetID(id)
	l.labeled++
}

func (l *labeler) labelWires(idx *Index) {
	conv := idx.conv
	next := l.nextSuffix(wireIDs(idx), conv.WirePrefix, conv.LabelDelimiter)
	for _, w := range idx.Wires {
		if w.ID() == "" {
			l.assign(w.IDElement(), conv.Label(conv.WirePrefix, next))
			next++
		}
		// The color-blind companion label mirrors the wire id with the label
		// prefix swapped in.
		if w.Label != nil && w.Label.ID() == "" {
			labelID := conv.WireLabelPrefix + strings.TrimPrefix(w.ID(), conv.WirePrefix)
			l.assign(w.Label, labelID)
		}
	}
}

func (l *labeler) labelSwitches(idx *Index) {
	conv := idx.conv
	var ids []string
	for _, s := range idx.Switches {
		ids = append(ids, s.ID())
	}
	next := l.nextSuffix(ids, conv.SwitchPrefix, conv.LabelDelimiter)

	for _, s := range idx.Switches {
		fresh := false
		if s.ID() == "" {
			l.assign(s.Group, conv.Label(conv.SwitchPrefix, next))
			next++
			fresh = true
		}
		parent := s.ID()

		if fresh {
			// The positions of a freshly labeled switch are numbered from
			// scratch in document order, replacing whatever ids they carried.
			for i, pos := range s.Positions {
				id := conv.Label(parent, i+1)
				if pos.ID() != id {
					l.assign(pos, id)
				}
			}
			continue
		}
		var posIDs []string
		for _, pos := range s.Positions {
			posIDs = append(posIDs, pos.ID())
		}
		posNext := l.nextSuffix(posIDs, parent, conv.LabelDelimiter)
		for _, pos := range s.Positions {
			if pos.ID() == "" {
				l.assign(pos, conv.Label(parent, posNext))
				posNext++
			}
		}
	}
}

func (l *labeler) labelBalloons(idx *Index) {
	conv := idx.conv
	var ids []string
	for _, b := range idx.Balloons {
		ids = append(ids, b.ID())
	}
	next := l.nextSuffix(ids, conv.BalloonPrefix, conv.LabelDelimiter)
	for _, b := range idx.Balloons {
		if b.ID() == "" {
			l.assign(b, conv.Label(conv.BalloonPrefix, next))
			next++
		}
	}
}

// nextSuffix returns one past the highest numeric suffix among ids of the
// form prefix+delimiter+N. Ids whose remainder is not a bare number (for
// example switch position ids seen while scanning switches) are skipped.
// Duplicate ids are reported as notices.
func (l *labeler) nextSuffix(ids []string, prefix, delimiter string) int {
	seen := map[string]bool{}
	max := 0
	lead := prefix + delimiter
	for _, id := range ids {
		if id == "" {
			continue
		}
		if seen[id] {
			l.notices = append(l.notices, models.Noticef(id, "duplicate id %q in drawing", id))
			continue
		}
		seen[id] = true
		if !strings.HasPrefix(id, lead) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, lead))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

func wireIDs(idx *Index) []string {
	var ids []string
	for _, w := range idx.Wires {
		ids = append(ids, w.ID())
	}
	return ids
}
