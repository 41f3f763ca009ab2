package store

import (
	"fmt"
	"time"
)

// ScanRecord is one logged omission scan.
type ScanRecord struct {
	User            string
	MinPopularity   int
	MaxPopularity   int
	CandidatesFound int
	ResultsReturned int
	CreatedAt       time.Time
}

// LogScan records one scan invocation for later inspection.
func (s *Store) LogScan(rec ScanRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO ScanHistory (user, min_popularity, max_popularity, candidates_found, results_returned)
		VALUES (?, ?, ?, ?, ?)`,
		rec.User, rec.MinPopularity, rec.MaxPopularity, rec.CandidatesFound, rec.ResultsReturned)
	if err != nil {
		return fmt.Errorf("logging scan: %w", err)
	}
	return nil
}

// ScanHistory returns the most recent scans for a user, newest first.
func (s *Store) ScanHistory(user string, limit int) ([]ScanRecord, error) {
	rows, err := s.db.Query(`
		SELECT user, min_popularity, max_popularity, candidates_found, results_returned, created_at
		FROM ScanHistory WHERE user = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scan history: %w", err)
	}
	defer rows.Close()

	var scans []ScanRecord
	for rows.Next() {
		var r ScanRecord
		if err := rows.Scan(&r.User, &r.MinPopularity, &r.MaxPopularity, &r.CandidatesFound, &r.ResultsReturned, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning scan row: %w", err)
		}
		scans = append(scans, r)
	}
	return scans, rows.Err()
}
