/*
Copyright 2026 The latent-search Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bomac1193/latent-search/internal/expand"
	"github.com/bomac1193/latent-search/internal/profile"
	"github.com/bomac1193/latent-search/internal/score"
	"github.com/bomac1193/latent-search/internal/spotify"
	"github.com/bomac1193/latent-search/internal/store"
)

// maxEnrichedCandidates bounds the per-candidate API calls a scan makes.
const maxEnrichedCandidates = 40

type ScanConfig struct {
	User          string
	MinPopularity int
	MaxPopularity int
	Limit         int
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scores the artists your listening history points at but omits",
	Long: `Builds the context profile, expands it through related artists,
and prints the top omissions with explanations.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := ScanConfig{
			User:          viper.GetString("user"),
			MinPopularity: viper.GetInt("min-popularity"),
			MaxPopularity: viper.GetInt("max-popularity"),
			Limit:         viper.GetInt("limit"),
		}

		err := runScan(cmd, config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	var minPopularity int
	scanCmd.Flags().IntVar(&minPopularity, "min-popularity", 5, "Minimum candidate popularity")
	viper.BindPFlag("min-popularity", scanCmd.Flags().Lookup("min-popularity"))

	var maxPopularity int
	scanCmd.Flags().IntVar(&maxPopularity, "max-popularity", 60, "Maximum candidate popularity")
	viper.BindPFlag("max-popularity", scanCmd.Flags().Lookup("max-popularity"))

	var limit int
	scanCmd.Flags().IntVar(&limit, "limit", 0, "Maximum results to return (0 uses the default)")
	viper.BindPFlag("limit", scanCmd.Flags().Lookup("limit"))
}

// buildScoreConfig assembles the scoring configuration from the defaults
// plus any overrides in the config file. Malformed values are fatal here,
// before any network or database work happens.
func buildScoreConfig(limit int) (score.Config, error) {
	cfg := score.DefaultConfig()

	if viper.IsSet("weights.context") {
		cfg.Weights.Context = viper.GetFloat64("weights.context")
	}
	if viper.IsSet("weights.exposure") {
		cfg.Weights.Exposure = viper.GetFloat64("weights.exposure")
	}
	if viper.IsSet("weights.saturation") {
		cfg.Weights.Saturation = viper.GetFloat64("weights.saturation")
	}
	if viper.IsSet("weights.popularity") {
		cfg.Weights.Popularity = viper.GetFloat64("weights.popularity")
	}
	if viper.IsSet("weights.recency") {
		cfg.Weights.Recency = viper.GetFloat64("weights.recency")
	}
	if viper.IsSet("min-seed-support") {
		cfg.MinSeedSupport = viper.GetInt("min-seed-support")
	}
	if viper.IsSet("min-contextual-similarity") {
		cfg.MinContextualSimilarity = viper.GetFloat64("min-contextual-similarity")
	}
	if viper.IsSet("max-popularity-gate") {
		cfg.MaxPopularityGate = viper.GetInt("max-popularity-gate")
	}
	if viper.IsSet("popularity-ceiling") {
		cfg.PopularityCeiling = viper.GetInt("popularity-ceiling")
	}
	if viper.IsSet("recency-cutoff-year") {
		cfg.RecencyCutoffYear = viper.GetInt("recency-cutoff-year")
	}
	if viper.IsSet("saturation-ceiling") {
		cfg.SaturationCeiling = viper.GetInt("saturation-ceiling")
	}
	if viper.IsSet("context-genre-count") {
		cfg.ContextGenreCount = viper.GetInt("context-genre-count")
	}
	if viper.IsSet("accept-boost") {
		cfg.AcceptBoost = viper.GetFloat64("accept-boost")
	}
	if viper.IsSet("reject-penalty") {
		cfg.RejectPenalty = viper.GetFloat64("reject-penalty")
	}
	if viper.IsSet("hard-reject-count") {
		cfg.HardRejectCount = viper.GetInt("hard-reject-count")
	}
	if limit > 0 {
		cfg.MaxResults = limit
	}

	if err := cfg.Validate(); err != nil {
		return score.Config{}, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, config ScanConfig) error {
	cfg, err := buildScoreConfig(config.Limit)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetHardRejectThreshold(cfg.HardRejectCount)

	client, err := spotifyClient(cmd.Context(), db, config.User)
	if err != nil {
		return err
	}

	report, _, candidatesFound, err := runScanPipeline(cmd.Context(), client, db, config, cfg)
	if err != nil {
		return err
	}

	printReport(report)

	return db.LogScan(store.ScanRecord{
		User:            config.User,
		MinPopularity:   config.MinPopularity,
		MaxPopularity:   config.MaxPopularity,
		CandidatesFound: candidatesFound,
		ResultsReturned: len(report.Results),
	})
}

// runScanPipeline runs profile, expansion, enrichment, and scoring. It is
// shared by the scan, email, and serve surfaces.
func runScanPipeline(ctx context.Context, client *spotify.Client, db *store.Store, config ScanConfig, cfg score.Config) (*score.Report, *profile.ContextProfile, int, error) {
	short, medium, long, err := client.FetchWindows(ctx)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("fetching listening windows: %w", err)
	}
	p := profile.Build(short, medium, long)

	related := client.FetchRelated(ctx, p.RecurringArtists)
	opts := expand.Options{
		MinSeedSupport: cfg.MinSeedSupport,
		MinPopularity:  config.MinPopularity,
		MaxPopularity:  config.MaxPopularity,
	}
	candidates := expand.Expand(p.RecurringArtists, related, p.KnownArtistIDs, opts)
	client.EnrichCandidates(ctx, candidates, maxEnrichedCandidates)

	report, err := score.Scan(p, candidates, config.User, db, cfg)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("scoring candidates: %w", err)
	}
	return report, p, len(candidates), nil
}

func printReport(report *score.Report) {
	fmt.Printf("%s\n\n", report.Summary)
	if len(report.Results) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Artist", "Score", "Seeds", "Popularity", "Why"})
	for _, r := range report.Results {
		table.Append([]string{
			r.Candidate.Name,
			fmt.Sprintf("%.3f", r.OmissionScore),
			strconv.Itoa(len(r.Candidate.SeedArtists)),
			strconv.Itoa(r.Candidate.Popularity),
			r.Explanation,
		})
	}
	table.Render()

	fmt.Println()
	for _, r := range report.Results {
		fmt.Printf("- %s: via %s\n", r.Candidate.Name, strings.Join(r.Candidate.SeedArtists, ", "))
	}
}
