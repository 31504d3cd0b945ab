package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/wiring-animator/backend/internal/models"
)

var (
	// ErrAlbumNotFound is returned when an album is not in the index.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrAlbumLocked is returned when another author holds the album lock.
	ErrAlbumLocked = errors.New("album locked by another author")
)

// AlbumIndex is the DuckDB-backed catalog of all slide albums in the
// workspace: listing, last-modified bookkeeping and the per-album author
// lock that keeps two authoring sessions off one album.
type AlbumIndex struct {
	db     *sql.DB
	dbPath string
}

// OpenAlbumIndex opens (creating if needed) the album index database.
// threads and memoryLimit feed the engine pragmas; zero values leave the
// engine defaults alone.
func OpenAlbumIndex(dbPath string, threads int, memoryLimit string) (*AlbumIndex, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		var pragmas []string
		if memoryLimit != "" {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", memoryLimit))
		}
		if threads > 0 {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", threads))
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("opening album index: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS albums (
			title       VARCHAR NOT NULL,
			customer    VARCHAR NOT NULL,
			svg_file    VARCHAR NOT NULL,
			locked_by   VARCHAR NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL,
			modified_at TIMESTAMP NOT NULL,
			PRIMARY KEY (title, customer)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating albums table: %w", err)
	}
	return &AlbumIndex{db: db, dbPath: dbPath}, nil
}

// Close shuts the index database down.
func (ix *AlbumIndex) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Register inserts a new album or refreshes the stored drawing filename of
// an existing one. CreatedAt is only set on first insert.
func (ix *AlbumIndex) Register(album *models.SlideAlbum) error {
	now := time.Now().UTC()
	res, err := ix.db.Exec(`
		UPDATE albums SET svg_file = ?, modified_at = ?
		WHERE title = ? AND customer = ?`,
		album.SVGFile, now, album.Title, album.Customer)
	if err != nil {
		return fmt.Errorf("updating album %s: %w", album.Key(), err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = ix.db.Exec(`
		INSERT INTO albums (title, customer, svg_file, locked_by, created_at, modified_at)
		VALUES (?, ?, ?, '', ?, ?)`,
		album.Title, album.Customer, album.SVGFile, now, now)
	if err != nil {
		return fmt.Errorf("inserting album %s: %w", album.Key(), err)
	}
	return nil
}

// Get returns one album by identity.
func (ix *AlbumIndex) Get(customer, title string) (*models.SlideAlbum, error) {
	row := ix.db.QueryRow(`
		SELECT title, customer, svg_file, locked_by, created_at, modified_at
		FROM albums WHERE title = ? AND customer = ?`, title, customer)
	album, err := scanAlbum(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("album %s: %w", models.AlbumKey(title, customer), ErrAlbumNotFound)
	}
	return album, err
}

// List returns the albums of one customer, or all albums when customer is
// empty, newest modification first.
func (ix *AlbumIndex) List(customer string) ([]*models.SlideAlbum, error) {
	query := `
		SELECT title, customer, svg_file, locked_by, created_at, modified_at
		FROM albums`
	args := []interface{}{}
	if customer != "" {
		query += ` WHERE customer = ?`
		args = append(args, customer)
	}
	query += ` ORDER BY modified_at DESC, title`

	rows, err := ix.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.SlideAlbum
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlbum(row rowScanner) (*models.SlideAlbum, error) {
	var a models.SlideAlbum
	err := row.Scan(&a.Title, &a.Customer, &a.SVGFile, &a.LockedBy, &a.CreatedAt, &a.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Lock takes the album's author lock for owner. Re-locking by the same
// owner refreshes; a lock held by someone else fails with ErrAlbumLocked.
func (ix *AlbumIndex) Lock(customer, title, owner string) error {
	album, err := ix.Get(customer, title)
	if err != nil {
		return err
	}
	if album.LockedBy != "" && album.LockedBy != owner {
		return fmt.Errorf("album %s held by %s: %w", album.Key(), album.LockedBy, ErrAlbumLocked)
	}
	_, err = ix.db.Exec(`
		UPDATE albums SET locked_by = ? WHERE title = ? AND customer = ?`,
		owner, title, customer)
	if err != nil {
		return fmt.Errorf("locking album %s: %w", album.Key(), err)
	}
	return nil
}

// Unlock releases the album's author lock if owner holds it.
func (ix *AlbumIndex) Unlock(customer, title, owner string) error {
	_, err := ix.db.Exec(`
		UPDATE albums SET locked_by = '' WHERE title = ? AND customer = ? AND locked_by = ?`,
		title, customer, owner)
	if err != nil {
		return fmt.Errorf("unlocking album %s: %w", models.AlbumKey(title, customer), err)
	}
	return nil
}

// Touch bumps the album's modification timestamp after a document save.
func (ix *AlbumIndex) Touch(customer, title string) error {
	_, err := ix.db.Exec(`
		UPDATE albums SET modified_at = ? WHERE title = ? AND customer = ?`,
		time.Now().UTC(), title, customer)
	if err != nil {
		return fmt.Errorf("touching album %s: %w", models.AlbumKey(title, customer), err)
	}
	return nil
}

// Delete removes the album from the index.
func (ix *AlbumIndex) Delete(customer, title string) error {
	res, err := ix.db.Exec(`DELETE FROM albums WHERE title = ? AND customer = ?`, title, customer)
	if err != nil {
		return fmt.Errorf("deleting album %s: %w", models.AlbumKey(title, customer), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("album %s: %w", models.AlbumKey(title, customer), ErrAlbumNotFound)
	}
	return nil
}
