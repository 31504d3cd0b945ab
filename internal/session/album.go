// Package session manages authoring sessions: one open album per session,
// holding the parsed drawing, actor registry, catalog, timeline and
// highlighter, with an author lock in the album index for the session's
// lifetime.
package session

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/wiring-animator/backend/internal/catalog"
	"github.com/wiring-animator/backend/internal/config"
	"github.com/wiring-animator/backend/internal/diagram"
	"github.com/wiring-animator/backend/internal/highlight"
	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/store"
	"github.com/wiring-animator/backend/internal/svg"
	"github.com/wiring-animator/backend/internal/timeline"
	"github.com/wiring-animator/backend/internal/validate"
)

// AlbumSession is one author's open album: every in-memory component built
// from the persisted documents, plus the diagnostics of the open. All
// mutating calls go through the owning Manager, which serializes access.
type AlbumSession struct {
	ID    string
	Album *models.SlideAlbum

	Document    *svg.Document
	Index       *svg.Index
	Registry    *diagram.Registry
	Catalog     *catalog.Catalog
	Timeline    *timeline.Timeline
	Highlighter *highlight.Highlighter

	// Notices are naming-convention findings from indexing, labeling and
	// registry construction. Warnings is the consistency report computed at
	// open; RevalidateNow refreshes it.
	Notices  []models.Notice
	Warnings []models.Warning

	// DrawingDirty is set when labeling changed the drawing and it has not
	// been persisted yet.
	DrawingDirty bool

	LastAccessed time.Time
}

// openAlbum loads every document of an album and assembles the session
// state. The labeling pass runs on every open; a drawing that was already
// fully labeled comes back clean.
func openAlbum(id string, album *models.SlideAlbum, ws *store.Workspace, conv *config.Conventions) (*AlbumSession, error) {
	r, err := ws.OpenDrawing(album.Customer, album.Title)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := svg.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", album.Key(), err)
	}

	s := &AlbumSession{
		ID:           id,
		Album:        album,
		Document:     doc,
		LastAccessed: time.Now(),
	}

	s.Index = svg.BuildIndex(doc, conv)
	labelRes := svg.Label(s.Index)
	s.Notices = append(s.Notices, labelRes.Notices...)
	s.DrawingDirty = labelRes.Dirty

	typesDoc, err := ws.LoadCircuitTypes(album.Customer, album.Title)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	s.Catalog = catalog.FromDocument(typesDoc, conv.DefaultCircuitTypes)

	s.Registry = diagram.Build(s.Index, s.Catalog)
	s.Notices = append(s.Notices, s.Registry.Notices()...)

	if err := s.loadTimeline(ws); err != nil {
		return nil, err
	}
	if err := s.loadHighlighter(ws, conv); err != nil {
		return nil, err
	}

	s.RevalidateNow()
	return s, nil
}

func (s *AlbumSession) loadTimeline(ws *store.Workspace) error {
	animDoc, err := ws.LoadAnimation(s.Album.Customer, s.Album.Title)
	switch {
	case os.IsNotExist(err):
		// Fresh album: synthesize the initial slide from the registry's
		// default state.
		s.Registry.ResetToDefaults()
		s.Timeline = timeline.New(s.Album.Title, s.Registry.Snapshot())
	case err != nil:
		return err
	default:
		s.Timeline, err = timeline.FromDocument(animDoc)
		if err != nil {
			return fmt.Errorf("album %s: %w", s.Album.Key(), err)
		}
		if snap, err := s.Timeline.LoadSlide(0); err == nil {
			s.Registry.ApplySnapshot(snap)
		}
	}
	return nil
}

func (s *AlbumSession) loadHighlighter(ws *store.Workspace, conv *config.Conventions) error {
	settings, selection, err := ws.LoadHighlighter(s.Album.Customer, s.Album.Title)
	if err != nil {
		return err
	}

	// Drawings with no recognizable wire actors (never labeled, or drawn
	// before the layer conventions) still get a highlighter: wires are
	// discovered by stroke-width classification instead.
	if len(s.Registry.Wires()) == 0 {
		s.Highlighter = highlight.FromStrokeWidths(
			s.Album.Key(), settings, selection, s.Document, conv.Highlighter)
		return nil
	}

	wireIDs := make([]string, 0, len(s.Registry.Wires()))
	for _, w := range s.Registry.Wires() {
		wireIDs = append(wireIDs, w.ID)
	}
	s.Highlighter = highlight.FromWireSet(s.Album.Key(), settings, selection, wireIDs)
	return nil
}

// RevalidateNow recomputes the consistency warning report.
func (s *AlbumSession) RevalidateNow() {
	s.Warnings = validate.Validate(
		s.Timeline.Slides(), s.Registry, s.Catalog.Assignments(), s.Catalog)
}

// Touch refreshes the keep-alive timestamp.
func (s *AlbumSession) Touch() { s.LastAccessed = time.Now() }

// SaveDrawing persists the (relabeled) drawing back to the workspace.
func (s *AlbumSession) SaveDrawing(ws *store.Workspace) error {
	var buf bytes.Buffer
	if _, err := s.Document.WriteTo(&buf); err != nil {
		return fmt.Errorf("serializing drawing for %s: %w", s.Album.Key(), err)
	}
	if err := ws.SaveDrawing(s.Album.Customer, s.Album.Title, &buf); err != nil {
		return err
	}
	s.DrawingDirty = false
	return nil
}

// SaveAnimation persists the timeline document and clears its dirty flags.
func (s *AlbumSession) SaveAnimation(ws *store.Workspace) error {
	if err := ws.SaveAnimation(s.Album.Customer, s.Album.Title, s.Timeline.Document()); err != nil {
		return err
	}
	s.Timeline.MarkSaved()
	return nil
}

// SaveCircuitTypes persists the catalog + assignment document and clears
// the catalog's dirty flag.
func (s *AlbumSession) SaveCircuitTypes(ws *store.Workspace) error {
	if err := ws.SaveCircuitTypes(s.Album.Customer, s.Album.Title, s.Catalog.Document()); err != nil {
		return err
	}
	s.Catalog.MarkClean()
	return nil
}

// SaveHighlighter persists the highlight settings and selection.
func (s *AlbumSession) SaveHighlighter(ws *store.Workspace) error {
	if err := ws.SaveHighlighter(s.Album.Customer, s.Album.Title,
		s.Highlighter.Settings(), s.Highlighter.Selection()); err != nil {
		return err
	}
	s.Highlighter.MarkSaved()
	return nil
}
