package store

import (
	"fmt"
	"strings"
	"time"
)

const (
	VerdictAccept = "accept"
	VerdictReject = "reject"
)

// FeedbackRow is one recorded verdict.
type FeedbackRow struct {
	User          string
	ArtistID      string
	ArtistName    string
	Verdict       string
	SeedArtists   []string
	OmissionScore float64
	CreatedAt     time.Time
}

// Stats aggregates a user's feedback history.
type Stats struct {
	TotalFeedback int
	Accepts       int
	Rejects       int
	UniqueArtists int
	AcceptRate    float64
}

// RecordFeedback inserts a verdict and returns the updated per-artist
// aggregate. Insert and aggregate read share one transaction, so two
// near-simultaneous rejects cannot both observe a pre-threshold count.
func (s *Store) RecordFeedback(user, artistID, artistName, verdict string, seedArtists []string, omissionScore float64) (accepts, rejects int, err error) {
	if verdict != VerdictAccept && verdict != VerdictReject {
		return 0, 0, fmt.Errorf("verdict must be %q or %q, got %q", VerdictAccept, VerdictReject, verdict)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO Feedback (user, artist_id, artist_name, verdict, seed_artists, omission_score)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user, artistID, artistName, verdict, strings.Join(seedArtists, ","), omissionScore)
	if err != nil {
		return 0, 0, fmt.Errorf("inserting feedback: %w", err)
	}

	row := tx.QueryRow(`
		SELECT
			COUNT(CASE WHEN verdict = 'accept' THEN 1 END),
			COUNT(CASE WHEN verdict = 'reject' THEN 1 END)
		FROM Feedback WHERE user = ? AND artist_id = ?`,
		user, artistID)
	if err := row.Scan(&accepts, &rejects); err != nil {
		return 0, 0, fmt.Errorf("aggregating feedback: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing feedback: %w", err)
	}
	return accepts, rejects, nil
}

// Aggregate returns the accept and reject counts for one (user, artist).
func (s *Store) Aggregate(user, artistID string) (accepts, rejects int, err error) {
	row := s.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN verdict = 'accept' THEN 1 END),
			COUNT(CASE WHEN verdict = 'reject' THEN 1 END)
		FROM Feedback WHERE user = ? AND artist_id = ?`,
		user, artistID)
	if err := row.Scan(&accepts, &rejects); err != nil {
		return 0, 0, fmt.Errorf("aggregating feedback: %w", err)
	}
	return accepts, rejects, nil
}

// IsHardExcluded reports whether the artist's reject count has reached the
// hard-exclusion threshold for this user.
func (s *Store) IsHardExcluded(user, artistID string) (bool, error) {
	_, rejects, err := s.Aggregate(user, artistID)
	if err != nil {
		return false, err
	}
	return rejects >= s.hardRejectCount, nil
}

// FeedbackStats summarizes a user's feedback.
func (s *Store) FeedbackStats(user string) (Stats, error) {
	var st Stats
	row := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN verdict = 'accept' THEN 1 END),
			COUNT(CASE WHEN verdict = 'reject' THEN 1 END),
			COUNT(DISTINCT artist_id)
		FROM Feedback WHERE user = ?`, user)
	if err := row.Scan(&st.TotalFeedback, &st.Accepts, &st.Rejects, &st.UniqueArtists); err != nil {
		return st, fmt.Errorf("querying feedback stats: %w", err)
	}
	if st.TotalFeedback > 0 {
		st.AcceptRate = float64(st.Accepts) / float64(st.TotalFeedback)
	}
	return st, nil
}

// FeedbackHistory returns the most recent feedback rows, newest first.
func (s *Store) FeedbackHistory(user string, limit int) ([]FeedbackRow, error) {
	rows, err := s.db.Query(`
		SELECT artist_id, artist_name, verdict, seed_artists, omission_score, created_at
		FROM Feedback WHERE user = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feedback history: %w", err)
	}
	defer rows.Close()

	var history []FeedbackRow
	for rows.Next() {
		r := FeedbackRow{User: user}
		var seeds string
		if err := rows.Scan(&r.ArtistID, &r.ArtistName, &r.Verdict, &seeds, &r.OmissionScore, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback row: %w", err)
		}
		if seeds != "" {
			r.SeedArtists = strings.Split(seeds, ",")
		}
		history = append(history, r)
	}
	return history, rows.Err()
}
