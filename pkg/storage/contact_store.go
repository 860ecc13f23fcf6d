package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dougsko/rigsync/pkg/logging"
)

// Contact is one logged QSO as received from the digital-mode application
type Contact struct {
	ID          int64     `json:"id"`
	LoggedAt    time.Time `json:"logged_at"`
	ClientID    string    `json:"client_id"`
	Callsign    string    `json:"callsign"`
	Band        string    `json:"band"`
	Mode        string    `json:"mode"`
	Grid        string    `json:"grid"`
	ADIF        string    `json:"adif"`
	Uploaded    bool      `json:"uploaded"`
	UploadError string    `json:"upload_error,omitempty"`
}

// NewContact builds a journal entry from a logged ADIF record and the result
// of uploading it
func NewContact(clientID, adif string, uploadErr error) Contact {
	fields := ADIFFields(adif)
	c := Contact{
		LoggedAt: time.Now().UTC(),
		ClientID: clientID,
		Callsign: strings.ToUpper(fields["call"]),
		Band:     strings.ToLower(fields["band"]),
		Mode:     strings.ToUpper(fields["mode"]),
		Grid:     fields["gridsquare"],
		ADIF:     adif,
		Uploaded: uploadErr == nil,
	}
	if uploadErr != nil {
		c.UploadError = uploadErr.Error()
	}
	return c
}

// ContactStore journals logged contacts in SQLite
type ContactStore struct {
	db          *sql.DB
	dbPath      string
	maxContacts int
}

// NewContactStore opens (or creates) the journal at dbPath. maxContacts <= 0
// keeps every row.
func NewContactStore(dbPath string, maxContacts int) (*ContactStore, error) {
	store := &ContactStore{
		dbPath:      dbPath,
		maxContacts: maxContacts,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize contact store: %w", err)
	}

	return store, nil
}

func (cs *ContactStore) initialize() error {
	if cs.dbPath == "" {
		cs.dbPath = "./rigsync.db"
	}

	if err := os.MkdirAll(filepath.Dir(cs.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	connectionString := cs.dbPath + "?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on"

	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	cs.db = db

	if err := cs.createTables(); err != nil {
		db.Close()
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := cs.createIndexes(); err != nil {
		db.Close()
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := cs.trim(); err != nil {
		db.Close()
		return fmt.Errorf("failed to prune contacts: %w", err)
	}

	logging.Info("storage", "contact journal opened", logging.Fields{
		"path":         cs.dbPath,
		"max_contacts": cs.maxContacts,
	})
	return nil
}

func (cs *ContactStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		logged_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		client_id TEXT NOT NULL DEFAULT '',
		callsign TEXT NOT NULL DEFAULT '',
		band TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL DEFAULT '',
		grid TEXT NOT NULL DEFAULT '',
		adif TEXT NOT NULL,
		uploaded BOOLEAN NOT NULL DEFAULT FALSE,
		upload_error TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS journal_stats (
		id INTEGER PRIMARY KEY,
		total_contacts INTEGER NOT NULL DEFAULT 0,
		total_uploaded INTEGER NOT NULL DEFAULT 0,
		total_failed INTEGER NOT NULL DEFAULT 0,
		last_cleanup DATETIME,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO journal_stats (id, total_contacts, total_uploaded, total_failed)
	VALUES (1, 0, 0, 0);
	`

	_, err := cs.db.Exec(schema)
	return err
}

func (cs *ContactStore) createIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_contacts_logged_at ON contacts(logged_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_contacts_callsign ON contacts(callsign)",
		"CREATE INDEX IF NOT EXISTS idx_contacts_uploaded ON contacts(uploaded)",
	}

	for _, indexSQL := range indexes {
		if _, err := cs.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Record stores a contact and returns its row id
func (cs *ContactStore) Record(c Contact) (int64, error) {
	if c.LoggedAt.IsZero() {
		c.LoggedAt = time.Now().UTC()
	}

	tx, err := cs.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO contacts (
			logged_at, client_id, callsign, band, mode, grid,
			adif, uploaded, upload_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		c.LoggedAt, c.ClientID, c.Callsign, c.Band, c.Mode, c.Grid,
		c.ADIF, c.Uploaded, c.UploadError,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get contact ID: %w", err)
	}

	if err := cs.updateStats(tx, c.Uploaded); err != nil {
		return 0, fmt.Errorf("failed to update stats: %w", err)
	}

	if err := cs.prune(tx); err != nil {
		logging.Warn("storage", "failed to prune old contacts", logging.Fields{"error": err.Error()})
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit contact: %w", err)
	}
	return id, nil
}

func (cs *ContactStore) updateStats(tx *sql.Tx, uploaded bool) error {
	query := `
		UPDATE journal_stats SET
			total_contacts = total_contacts + 1,
			total_uploaded = CASE WHEN ? THEN total_uploaded + 1 ELSE total_uploaded END,
			total_failed = CASE WHEN ? THEN total_failed ELSE total_failed + 1 END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`

	_, err := tx.Exec(query, uploaded, uploaded)
	return err
}

// trim prunes once outside of Record, for a journal reopened with a lower
// max_contacts
func (cs *ContactStore) trim() error {
	tx, err := cs.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := cs.prune(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (cs *ContactStore) prune(tx *sql.Tx) error {
	if cs.maxContacts <= 0 {
		return nil
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM contacts").Scan(&count); err != nil {
		return err
	}
	if count <= cs.maxContacts {
		return nil
	}

	query := `
		DELETE FROM contacts
		WHERE id IN (
			SELECT id FROM contacts
			ORDER BY id ASC
			LIMIT ?
		)
	`
	if _, err := tx.Exec(query, count-cs.maxContacts); err != nil {
		return err
	}

	_, err := tx.Exec("UPDATE journal_stats SET last_cleanup = CURRENT_TIMESTAMP WHERE id = 1")
	return err
}

// Close closes the database connection
func (cs *ContactStore) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}
