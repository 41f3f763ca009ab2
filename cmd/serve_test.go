package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/bomac1193/latent-search/internal/store"
)

func createTestServer(t *testing.T) *server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "latent-search.db")

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })

	return &server{db: db}
}

func postFeedback(t *testing.T, s *server, body string) map[string]interface{} {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/feedback?user=u", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := s.feedback(e.NewContext(req, rec)); err != nil {
		t.Fatalf("feedback handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestServeFeedbackAndHistory(t *testing.T) {
	s := createTestServer(t)

	resp := postFeedback(t, s, `{"artist_id": "a1", "artist_name": "Artist One", "verdict": "reject", "seed_artists": ["Seed A", "Seed B"], "omission_score": 0.72}`)
	if resp["hard_excluded"] != false {
		t.Errorf("one reject should not hard-exclude, got %v", resp["hard_excluded"])
	}

	resp = postFeedback(t, s, `{"artist_id": "a1", "verdict": "reject"}`)
	if resp["hard_excluded"] != true {
		t.Errorf("two rejects should hard-exclude, got %v", resp["hard_excluded"])
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/feedback/history?user=u", nil)
	rec := httptest.NewRecorder()
	if err := s.feedbackHistory(e.NewContext(req, rec)); err != nil {
		t.Fatalf("feedbackHistory handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback history returned %d: %s", rec.Code, rec.Body.String())
	}

	var history struct {
		History []map[string]interface{} `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(history.History) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history.History))
	}
	first := history.History[1]
	if first["artist_name"] != "Artist One" || first["verdict"] != "reject" {
		t.Errorf("unexpected history row: %v", first)
	}
}

func TestServeFeedbackHistoryLimit(t *testing.T) {
	s := createTestServer(t)

	postFeedback(t, s, `{"artist_id": "a1", "verdict": "accept"}`)
	postFeedback(t, s, `{"artist_id": "a2", "verdict": "accept"}`)
	postFeedback(t, s, `{"artist_id": "a3", "verdict": "accept"}`)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/feedback/history?user=u&limit=2", nil)
	rec := httptest.NewRecorder()
	if err := s.feedbackHistory(e.NewContext(req, rec)); err != nil {
		t.Fatalf("feedbackHistory handler: %v", err)
	}

	var history struct {
		History []map[string]interface{} `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(history.History) != 2 {
		t.Errorf("expected the limit to apply, got %d rows", len(history.History))
	}
}

func TestServeConfiguresHardRejectThresholdOnce(t *testing.T) {
	s := createTestServer(t)

	// The server applies the configured threshold before handling any
	// requests; handlers never write it again.
	viper.Set("hard-reject-count", 1)
	defer viper.Set("hard-reject-count", nil)

	cfg, err := buildScoreConfig(0)
	if err != nil {
		t.Fatalf("buildScoreConfig: %v", err)
	}
	s.db.SetHardRejectThreshold(cfg.HardRejectCount)

	resp := postFeedback(t, s, `{"artist_id": "a1", "verdict": "reject"}`)
	if resp["hard_excluded"] != true {
		t.Errorf("threshold 1 should hard-exclude after one reject, got %v", resp["hard_excluded"])
	}
}
