package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Token holds a user's OAuth credentials.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Valid reports whether the access token is present and not yet expired.
func (t Token) Valid() bool {
	return t.AccessToken != "" && time.Now().Before(t.Expiry)
}

// SetToken stores OAuth credentials for a user, creating the user row if
// needed.
func (s *Store) SetToken(user string, tok Token) error {
	if err := s.CreateUser(user); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		UPDATE User SET access_token = ?, refresh_token = ?, token_expiry = ?
		WHERE name = ?`,
		tok.AccessToken, tok.RefreshToken, tok.Expiry, user)
	if err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// GetToken returns the stored OAuth credentials for a user. A user with no
// stored token yields a zero Token and no error.
func (s *Store) GetToken(user string) (Token, error) {
	var tok Token
	var expiry sql.NullTime
	err := s.db.QueryRow(`
		SELECT access_token, refresh_token, token_expiry FROM User WHERE name = ?`,
		user).Scan(&tok.AccessToken, &tok.RefreshToken, &expiry)
	if err == sql.ErrNoRows {
		return Token{}, nil
	}
	if err != nil {
		return Token{}, fmt.Errorf("loading token: %w", err)
	}
	if expiry.Valid {
		tok.Expiry = expiry.Time
	}
	return tok, nil
}
