// Package store persists slide albums: a filesystem workspace holding each
// album's drawing and documents, and a DuckDB index over all albums for
// listing and lock bookkeeping.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wiring-animator/backend/internal/models"
)

const (
	drawingFile      = "drawing.svg"
	animationFile    = "animation.json"
	circuitTypesFile = "circuit_types.json"
	highlighterFile  = "highlighter.json"
	selectionFile    = "highlight_selection.json"
)

// Workspace is the on-disk layout of the album data: one directory per
// customer, one per album under it, each holding the drawing plus its three
// JSON documents. Writes are atomic (temp file + rename) so a crashed save
// never leaves a half-written document behind.
type Workspace struct {
	mu   sync.RWMutex
	root string
}

// NewWorkspace opens (creating if needed) a workspace rooted at dir.
func NewWorkspace(dir string) (*Workspace, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}
	return &Workspace{root: dir}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string { return w.root }

// albumDir maps an album identity to its directory, flattening anything
// that could escape the workspace root.
func (w *Workspace) albumDir(customer, title string) string {
	return filepath.Join(w.root, sanitize(customer), sanitize(title))
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "_"
	}
	repl := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	return repl.Replace(name)
}

// SaveDrawing stores the album's SVG drawing, replacing any previous one.
func (w *Workspace) SaveDrawing(customer, title string, r io.Reader) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := w.albumDir(customer, title)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating album directory: %w", err)
	}
	return atomicWrite(filepath.Join(dir, drawingFile), func(f *os.File) error {
		_, err := io.Copy(f, r)
		return err
	})
}

// OpenDrawing opens the album's SVG drawing for reading.
func (w *Workspace) OpenDrawing(customer, title string) (io.ReadCloser, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	f, err := os.Open(filepath.Join(w.albumDir(customer, title), drawingFile))
	if err != nil {
		return nil, fmt.Errorf("opening drawing for %s/%s: %w", customer, title, err)
	}
	return f, nil
}

// HasDrawing reports whether the album has a stored drawing.
func (w *Workspace) HasDrawing(customer, title string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, err := os.Stat(filepath.Join(w.albumDir(customer, title), drawingFile))
	return err == nil
}

// SaveAnimation persists the album's timeline document.
func (w *Workspace) SaveAnimation(customer, title string, doc *models.AnimationDocument) error {
	return w.saveJSON(customer, title, animationFile, doc)
}

// LoadAnimation reads the album's timeline document. A missing document
// returns os.ErrNotExist wrapped; fresh albums have none yet.
func (w *Workspace) LoadAnimation(customer, title string) (*models.AnimationDocument, error) {
	var doc models.AnimationDocument
	if err := w.loadJSON(customer, title, animationFile, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveCircuitTypes persists the album's catalog + assignment document.
func (w *Workspace) SaveCircuitTypes(customer, title string, doc *models.CircuitTypesDocument) error {
	return w.saveJSON(customer, title, circuitTypesFile, doc)
}

// LoadCircuitTypes reads the album's catalog + assignment document.
func (w *Workspace) LoadCircuitTypes(customer, title string) (*models.CircuitTypesDocument, error) {
	var doc models.CircuitTypesDocument
	if err := w.loadJSON(customer, title, circuitTypesFile, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveHighlighter persists the highlight settings and the selection set,
// two separate documents sharing the album identity key.
func (w *Workspace) SaveHighlighter(customer, title string, settings models.HighlighterSettings, selection models.HighlightSelection) error {
	if err := w.saveJSON(customer, title, highlighterFile, settings); err != nil {
		return err
	}
	return w.saveJSON(customer, title, selectionFile, selection)
}

// LoadHighlighter reads the highlight settings and selection. Missing
// documents yield zero values, not errors; the highlighter falls back to
// its defaults.
func (w *Workspace) LoadHighlighter(customer, title string) (models.HighlighterSettings, models.HighlightSelection, error) {
	var settings models.HighlighterSettings
	if err := w.loadJSON(customer, title, highlighterFile, &settings); err != nil && !os.IsNotExist(err) {
		return settings, nil, err
	}
	selection := models.HighlightSelection{}
	if err := w.loadJSON(customer, title, selectionFile, &selection); err != nil && !os.IsNotExist(err) {
		return settings, nil, err
	}
	return settings, selection, nil
}

// DeleteAlbum removes the album directory and everything in it.
func (w *Workspace) DeleteAlbum(customer, title string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := w.albumDir(customer, title)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("album %s/%s: %w", customer, title, os.ErrNotExist)
	}
	return os.RemoveAll(dir)
}

func (w *Workspace) saveJSON(customer, title, name string, v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := w.albumDir(customer, title)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating album directory: %w", err)
	}
	return atomicWrite(filepath.Join(dir, name), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func (w *Workspace) loadJSON(customer, title, name string, v interface{}) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(w.albumDir(customer, title), name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s for %s/%s: %w", name, customer, title, err)
	}
	return nil
}

// atomicWrite writes through a uniquely named temp file in the target
// directory and renames it into place.
func atomicWrite(path string, fill func(*os.File) error) error {
	tmp := path + ".tmp." + uuid.New().String()[:8]
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
