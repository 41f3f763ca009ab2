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
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bomac1193/latent-search/internal/profile"
)

type DiagnoseConfig struct {
	User   string
	AsYaml bool
}

// diagnoseCmd represents the diagnose command
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Builds and prints your listening context profile",
	Long: `Fetches the short, medium, and long term listening windows from
Spotify and prints the recurring artists, genre weights, and taste notes.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := DiagnoseConfig{
			User:   viper.GetString("user"),
			AsYaml: viper.GetBool("yaml"),
		}

		err := runDiagnose(cmd, config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	var asYaml bool
	diagnoseCmd.Flags().BoolVar(&asYaml, "yaml", false, "Emit the full profile as YAML")
	viper.BindPFlag("yaml", diagnoseCmd.Flags().Lookup("yaml"))
}

func runDiagnose(cmd *cobra.Command, config DiagnoseConfig) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := spotifyClient(cmd.Context(), db, config.User)
	if err != nil {
		return err
	}

	short, medium, long, err := client.FetchWindows(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching listening windows: %w", err)
	}

	p := profile.Build(short, medium, long)
	if config.AsYaml {
		out, err := yaml.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshalling profile: %w", err)
		}
		fmt.Print(string(out))
		return nil
	}

	printProfile(p)
	return nil
}

func printProfile(p *profile.ContextProfile) {
	fmt.Printf("Profile built from %d artists and %d tracks\n\n", p.TotalArtists, p.TotalTracks)

	fmt.Println("### Recurring artists")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Artist", "Windows", "Popularity", "Genres"})
	for _, a := range p.RecurringArtists {
		table.Append([]string{
			a.Name,
			strconv.Itoa(a.RecurrenceScore),
			strconv.Itoa(a.Popularity),
			strings.Join(a.Genres, ", "),
		})
	}
	table.Render()

	fmt.Println("\n### Genre weights")
	table = tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Genre", "Weight"})
	for _, g := range p.GenreWeights {
		table.Append([]string{g.Genre, fmt.Sprintf("%.3f", g.Weight)})
	}
	table.Render()

	if len(p.Notes) > 0 {
		fmt.Println()
		for _, note := range p.Notes {
			fmt.Printf("- %s\n", note)
		}
	}
}
