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
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bomac1193/latent-search/internal/score"
	"github.com/bomac1193/latent-search/internal/store"
)

type SendEmailConfig struct {
	User   string
	From   string
	To     string
	DryRun bool
	Scan   ScanConfig
}

var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Runs a scan and emails the report",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := SendEmailConfig{
			User:   viper.GetString("user"),
			From:   viper.GetString("from"),
			To:     args[0],
			DryRun: viper.GetBool("dryRun"),
			Scan: ScanConfig{
				User:          viper.GetString("user"),
				MinPopularity: viper.GetInt("min-popularity"),
				MaxPopularity: viper.GetInt("max-popularity"),
				Limit:         viper.GetInt("limit"),
			},
		}

		err := sendScanEmail(cmd, config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var apiKey string
	emailCmd.Flags().StringVar(&apiKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))
}

func sendScanEmail(cmd *cobra.Command, config SendEmailConfig) error {
	cfg, err := buildScoreConfig(config.Scan.Limit)
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

	report, _, candidatesFound, err := runScanPipeline(cmd.Context(), client, db, config.Scan, cfg)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Omission scan for %s, %s", config.User, time.Now().Format("2006-01-02"))
	body := generateEmailContent(config, report)

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}

	apiKey := viper.GetString("sendgrid_api_key")
	if apiKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("latent-search", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, report.Summary, body)
	sgClient := sendgrid.NewSendClient(apiKey)
	if _, err := sgClient.Send(message); err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	return db.LogScan(store.ScanRecord{
		User:            config.User,
		MinPopularity:   config.Scan.MinPopularity,
		MaxPopularity:   config.Scan.MaxPopularity,
		CandidatesFound: candidatesFound,
		ResultsReturned: len(report.Results),
	})
}

func generateEmailContent(config SendEmailConfig, report *score.Report) string {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	out += fmt.Sprintf("<h2>Omission scan for %s</h2>\n", html.EscapeString(config.User))
	out += fmt.Sprintf("<p>%s</p>\n", html.EscapeString(report.Summary))

	if len(report.Results) > 0 {
		out += "<table>\n<tr><th>Artist</th><th>Score</th><th>Via</th><th>Why</th></tr>\n"
		for _, r := range report.Results {
			out += fmt.Sprintf("<tr><td>%s</td><td>%.3f</td><td>%s</td><td>%s</td></tr>\n",
				html.EscapeString(r.Candidate.Name),
				r.OmissionScore,
				html.EscapeString(strings.Join(r.Candidate.SeedArtists, ", ")),
				html.EscapeString(r.Explanation))
		}
		out += "</table>\n"
	}

	out += `
  </body>
</html>
`
	return out
}
