package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const accountsBase = "https://accounts.spotify.com"

// Scopes the pipeline needs: top artists and tracks across time ranges.
const authScopes = "user-top-read user-read-recently-played user-library-read"

// Credentials holds a Spotify application's OAuth settings.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// TokenURL overrides the accounts endpoint, for tests.
	TokenURL string
}

// Token is the result of a code exchange or refresh.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// AuthURL returns the authorize URL the user must visit to grant access.
func (c Credentials) AuthURL(state string) string {
	query := url.Values{
		"client_id":     {c.ClientID},
		"response_type": {"code"},
		"redirect_uri":  {c.RedirectURI},
		"scope":         {authScopes},
		"state":         {state},
	}
	return accountsBase + "/authorize?" + query.Encode()
}

// ExchangeCode trades an authorization code for tokens.
func (c Credentials) ExchangeCode(ctx context.Context, code string) (Token, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.RedirectURI},
	}
	return c.tokenRequest(ctx, form)
}

// Refresh trades a refresh token for a new access token. Spotify may omit
// the refresh token from the response; the caller keeps the old one then.
func (c Credentials) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	tok, err := c.tokenRequest(ctx, form)
	if err != nil {
		return Token{}, err
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}

func (c Credentials) tokenRequest(ctx context.Context, form url.Values) (Token, error) {
	endpoint := c.TokenURL
	if endpoint == "" {
		endpoint = accountsBase + "/api/token"
	}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, err
	}
	if resp.StatusCode/100 != 2 {
		return Token{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, fmt.Errorf("decoding token response: %w", err)
	}
	return Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
