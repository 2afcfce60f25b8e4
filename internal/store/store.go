// Package store persists user translations and key-term renderings in a
// SQLite database.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Phrases are stored under the BLAKE3 hash of their key so that a saved
// translation follows a phrase as long as its reference and wording stay the
// same.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/FocuswithJustin/transphrase/core/errors"
	"github.com/FocuswithJustin/transphrase/core/keyterm"
	"github.com/FocuswithJustin/transphrase/core/phrase"
	"github.com/FocuswithJustin/transphrase/internal/logging"
	"github.com/zeebo/blake3"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	id          TEXT PRIMARY KEY,
	phrase_key  TEXT NOT NULL,
	ref         TEXT NOT NULL,
	phrase      TEXT NOT NULL,
	translation TEXT NOT NULL,
	seq         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS translations_seq ON translations(seq);
CREATE TABLE IF NOT EXISTS renderings (
	term      TEXT NOT NULL,
	rendering TEXT NOT NULL,
	position  INTEGER NOT NULL,
	best      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (term, position)
);
`

// Info describes the SQLite driver compiled into the binary.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	Package    string `json:"package"`
}

// GetInfo returns information about the current SQLite configuration.
func GetInfo() Info {
	return Info{DriverName: driverName, DriverType: driverType, Package: driverPackage}
}

// Store is a translation database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	logging.StoreEvent(ctx, "open", driverType, "path", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PhraseID returns the storage identifier of a phrase key.
func PhraseID(key string) string {
	sum := blake3.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// SaveTranslation records the phrase's user translation as the most
// recently set one. A phrase without a user translation is removed.
func (s *Store) SaveTranslation(ctx context.Context, ph *phrase.Phrase) error {
	if !ph.HasUserTranslation() {
		_, err := s.DeleteTranslation(ctx, ph.Key())
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (id, phrase_key, ref, phrase, translation, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM translations))
		ON CONFLICT(id) DO UPDATE SET
			translation = excluded.translation,
			seq = excluded.seq`,
		PhraseID(ph.Key()), ph.Key(), ph.Reference(), ph.PhraseInUse(), ph.Translation())
	if err != nil {
		return errors.Wrapf(err, "saving translation for %s", ph.Reference())
	}
	logging.StoreEvent(ctx, "save_translation", driverType, "ref", ph.Reference())
	return nil
}

// DeleteTranslation removes the translation saved for a phrase key and
// reports whether one existed.
func (s *Store) DeleteTranslation(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, PhraseID(key))
	if err != nil {
		return false, errors.Wrap(err, "deleting translation")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting translation")
	}
	if n > 0 {
		logging.StoreEvent(ctx, "delete_translation", driverType)
	}
	return n > 0, nil
}

// LoadTranslations returns the saved translations in the order they were
// set, ready for phrase.Helper.Load.
func (s *Store) LoadTranslations(ctx context.Context) ([]phrase.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phrase_key, translation FROM translations ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "loading translations")
	}
	defer rows.Close()

	var entries []phrase.Entry
	for rows.Next() {
		var e phrase.Entry
		if err := rows.Scan(&e.Key, &e.Translation); err != nil {
			return nil, errors.Wrap(err, "scanning translation")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "loading translations")
	}
	logging.StoreEvent(ctx, "load_translations", driverType, "count", len(entries))
	return entries, nil
}

// Restore loads every saved translation into h and runs inference once.
// It returns the number of saved translations that matched no phrase.
func (s *Store) Restore(ctx context.Context, h *phrase.Helper) (int, error) {
	entries, err := s.LoadTranslations(ctx)
	if err != nil {
		return 0, err
	}
	missing := h.Load(entries)
	h.FinalizeAndPropagate()
	if missing > 0 {
		logging.WarnContext(ctx, "saved translations without a phrase", "count", missing)
	}
	return missing, nil
}

// SaveRenderings replaces the stored renderings of a term.
func (s *Store) SaveRenderings(ctx context.Context, t *keyterm.Term) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "saving renderings")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM renderings WHERE term = ?`, t.ID); err != nil {
		return errors.Wrapf(err, "saving renderings for %s", t.ID)
	}
	best := t.BestRendering()
	for i, r := range t.Renderings() {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO renderings (term, rendering, position, best) VALUES (?, ?, ?, ?)`,
			t.ID, r, i, r == best); err != nil {
			return errors.Wrapf(err, "saving renderings for %s", t.ID)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "saving renderings")
	}
	logging.StoreEvent(ctx, "save_renderings", driverType, "term", t.ID, "count", len(t.Renderings()))
	return nil
}

// LoadRenderings replaces the renderings of every term that has stored
// renderings and returns how many terms were updated. Terms without stored
// renderings keep the ones they were loaded with.
func (s *Store) LoadRenderings(ctx context.Context, terms []*keyterm.Term) (int, error) {
	byID := make(map[string]*keyterm.Term, len(terms))
	for _, t := range terms {
		byID[t.ID] = t
	}

	rows, err := s.db.QueryContext(ctx, `SELECT term, rendering, best FROM renderings ORDER BY term, position`)
	if err != nil {
		return 0, errors.Wrap(err, "loading renderings")
	}
	defer rows.Close()

	updated := make(map[string]bool)
	for rows.Next() {
		var id, rendering string
		var best bool
		if err := rows.Scan(&id, &rendering, &best); err != nil {
			return 0, errors.Wrap(err, "scanning rendering")
		}
		t, ok := byID[id]
		if !ok {
			continue
		}
		if !updated[id] {
			t.ClearRenderings()
			updated[id] = true
		}
		if err := t.AddRendering(rendering); err != nil {
			logging.WarnContext(ctx, "skipping stored rendering", "term", id, "error", err)
			continue
		}
		if best {
			if err := t.SetBestRendering(rendering); err != nil {
				return 0, fmt.Errorf("term %s: %w", id, err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "loading renderings")
	}
	logging.StoreEvent(ctx, "load_renderings", driverType, "terms", len(updated))
	return len(updated), nil
}
