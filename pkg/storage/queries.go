package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ContactQuery represents query parameters for retrieving contacts
type ContactQuery struct {
	Limit      int
	Offset     int
	Since      *time.Time
	Callsign   string
	FailedOnly bool
}

// JournalStats represents journal totals since the database was created
type JournalStats struct {
	Stored        int        `json:"stored"`
	TotalContacts int        `json:"total_contacts"`
	TotalUploaded int        `json:"total_uploaded"`
	TotalFailed   int        `json:"total_failed"`
	LastCleanup   *time.Time `json:"last_cleanup,omitempty"`
}

// GetContacts retrieves contacts newest first
func (cs *ContactStore) GetContacts(query ContactQuery) ([]Contact, error) {
	var args []interface{}
	var conditions []string

	sqlQuery := `
		SELECT id, logged_at, client_id, callsign, band, mode, grid,
			   adif, uploaded, upload_error
		FROM contacts
	`

	if query.Since != nil {
		conditions = append(conditions, "logged_at >= ?")
		args = append(args, query.Since.UTC())
	}

	if query.Callsign != "" {
		conditions = append(conditions, "callsign = ?")
		args = append(args, strings.ToUpper(query.Callsign))
	}

	if query.FailedOnly {
		conditions = append(conditions, "uploaded = FALSE")
	}

	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	sqlQuery += " ORDER BY id DESC"

	if query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)
		if query.Offset > 0 {
			sqlQuery += " OFFSET ?"
			args = append(args, query.Offset)
		}
	}

	rows, err := cs.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(
			&c.ID, &c.LoggedAt, &c.ClientID, &c.Callsign, &c.Band, &c.Mode,
			&c.Grid, &c.ADIF, &c.Uploaded, &c.UploadError,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

// Count returns the number of journalled contacts
func (cs *ContactStore) Count() (int, error) {
	var count int
	err := cs.db.QueryRow("SELECT COUNT(*) FROM contacts").Scan(&count)
	return count, err
}

// GetStats returns the journal totals
func (cs *ContactStore) GetStats() (*JournalStats, error) {
	var stats JournalStats
	var lastCleanup sql.NullTime

	err := cs.db.QueryRow(`
		SELECT total_contacts, total_uploaded, total_failed, last_cleanup
		FROM journal_stats WHERE id = 1
	`).Scan(&stats.TotalContacts, &stats.TotalUploaded, &stats.TotalFailed, &lastCleanup)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal stats: %w", err)
	}

	if lastCleanup.Valid {
		stats.LastCleanup = &lastCleanup.Time
	}

	if stats.Stored, err = cs.Count(); err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}
	return &stats, nil
}
