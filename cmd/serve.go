package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bomac1193/latent-search/internal/profile"
	"github.com/bomac1193/latent-search/internal/score"
	"github.com/bomac1193/latent-search/internal/spotify"
	"github.com/bomac1193/latent-search/internal/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API",
	Long:  `Serves the diagnosis, scan, and feedback pipeline over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runServe(viper.GetString("listen"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	var listen string
	serveCmd.Flags().StringVar(&listen, "listen", ":8080", "Address to serve on")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

type server struct {
	db *store.Store
}

func runServe(listen string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	// The threshold is configured once before any handler runs; handlers
	// only read it afterwards.
	cfg, err := buildScoreConfig(0)
	if err != nil {
		return err
	}
	db.SetHardRejectThreshold(cfg.HardRejectCount)

	s := &server{db: db}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", s.health)
	e.GET("/auth/spotify/url", s.authURL)
	e.GET("/auth/spotify/callback", s.authCallback)
	e.GET("/diagnosis", s.diagnosis)
	e.GET("/scan", s.scan)
	e.POST("/feedback", s.feedback)
	e.GET("/feedback/stats", s.feedbackStats)
	e.GET("/feedback/history", s.feedbackHistory)

	return e.Start(listen)
}

func (s *server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) authURL(c echo.Context) error {
	creds := credentials()
	if creds.ClientID == "" {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "spotify client id not configured"})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"url": creds.AuthURL(c.QueryParam("state")),
	})
}

func (s *server) authCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing code"})
	}
	user := s.user(c)

	tok, err := credentials().ExchangeCode(c.Request().Context(), code)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	if err := s.db.SetToken(user, store.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "authenticated", "user": user})
}

func (s *server) diagnosis(c echo.Context) error {
	client, err := s.client(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}

	short, medium, long, err := client.FetchWindows(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	p := profile.Build(short, medium, long)
	return c.JSON(http.StatusOK, profileResponse(p))
}

func (s *server) scan(c echo.Context) error {
	client, err := s.client(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}

	config := ScanConfig{
		User:          s.user(c),
		MinPopularity: intParam(c, "min_popularity", 5),
		MaxPopularity: intParam(c, "max_popularity", 60),
		Limit:         intParam(c, "limit", 0),
	}
	cfg, err := buildScoreConfig(config.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	report, _, candidatesFound, err := runScanPipeline(c.Request().Context(), client, s.db, config, cfg)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	if err := s.db.LogScan(store.ScanRecord{
		User:            config.User,
		MinPopularity:   config.MinPopularity,
		MaxPopularity:   config.MaxPopularity,
		CandidatesFound: candidatesFound,
		ResultsReturned: len(report.Results),
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, scanResponse(report))
}

type feedbackRequest struct {
	ArtistID      string   `json:"artist_id"`
	ArtistName    string   `json:"artist_name"`
	Verdict       string   `json:"verdict"`
	SeedArtists   []string `json:"seed_artists"`
	OmissionScore float64  `json:"omission_score"`
}

func (s *server) feedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed body"})
	}
	if req.ArtistID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing artist_id"})
	}
	user := s.user(c)

	accepts, rejects, err := s.db.RecordFeedback(user, req.ArtistID, req.ArtistName, req.Verdict, req.SeedArtists, req.OmissionScore)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	excluded, err := s.db.IsHardExcluded(user, req.ArtistID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"artist_id":     req.ArtistID,
		"accepts":       accepts,
		"rejects":       rejects,
		"hard_excluded": excluded,
	})
}

func (s *server) feedbackStats(c echo.Context) error {
	stats, err := s.db.FeedbackStats(s.user(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_feedback": stats.TotalFeedback,
		"accepts":        stats.Accepts,
		"rejects":        stats.Rejects,
		"unique_artists": stats.UniqueArtists,
		"accept_rate":    stats.AcceptRate,
	})
}

func (s *server) feedbackHistory(c echo.Context) error {
	rows, err := s.db.FeedbackHistory(s.user(c), intParam(c, "limit", 20))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	history := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		history = append(history, map[string]interface{}{
			"artist_id":      r.ArtistID,
			"artist_name":    r.ArtistName,
			"verdict":        r.Verdict,
			"seed_artists":   r.SeedArtists,
			"omission_score": r.OmissionScore,
			"created_at":     r.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"history": history})
}

func (s *server) user(c echo.Context) string {
	if user := c.QueryParam("user"); user != "" {
		return user
	}
	return viper.GetString("user")
}

// client builds a Spotify client from the Authorization header if present,
// otherwise from the user's stored credentials.
func (s *server) client(c echo.Context) (*spotify.Client, error) {
	auth := c.Request().Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		return spotify.NewClient(auth[7:]), nil
	}
	return spotifyClient(c.Request().Context(), s.db, s.user(c))
}

func intParam(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}

func profileResponse(p *profile.ContextProfile) map[string]interface{} {
	artists := make([]map[string]interface{}, 0, len(p.RecurringArtists))
	for _, a := range p.RecurringArtists {
		artists = append(artists, map[string]interface{}{
			"id":               a.ID,
			"name":             a.Name,
			"genres":           a.Genres,
			"popularity":       a.Popularity,
			"recurrence_score": a.RecurrenceScore,
		})
	}
	genres := make([]map[string]interface{}, 0, len(p.GenreWeights))
	for _, g := range p.GenreWeights {
		genres = append(genres, map[string]interface{}{
			"genre":  g.Genre,
			"weight": g.Weight,
		})
	}
	return map[string]interface{}{
		"recurring_artists": artists,
		"genre_weights":     genres,
		"audio_profile":     p.AudioProfile,
		"notes":             p.Notes,
		"total_artists":     p.TotalArtists,
		"total_tracks":      p.TotalTracks,
	}
}

func scanResponse(report *score.Report) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(report.Results))
	for _, r := range report.Results {
		results = append(results, map[string]interface{}{
			"artist_id":      r.Candidate.ID,
			"artist_name":    r.Candidate.Name,
			"genres":         r.Candidate.Genres,
			"popularity":     r.Candidate.Popularity,
			"sample_track":   r.Candidate.SampleTrack,
			"omission_score": r.OmissionScore,
			"explanation":    r.Explanation,
			"evidence":       r.Evidence,
		})
	}
	return map[string]interface{}{
		"results":              results,
		"summary":              report.Summary,
		"candidates_evaluated": report.CandidatesEvaluated,
		"threshold_used":       report.ThresholdUsed,
	}
}
