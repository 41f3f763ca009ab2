package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// feedbackCmd represents the feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback <artist-id> <accept|reject>",
	Short: "Records a verdict on a recommended artist",
	Long: `Accepted artists score higher on later scans; rejected artists
score lower, and two rejects exclude an artist permanently.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := runFeedback(viper.GetString("user"), args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var feedbackStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints feedback totals for the user",
	Run: func(cmd *cobra.Command, args []string) {
		err := runFeedbackStats(viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var feedbackHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists recent feedback rows",
	Run: func(cmd *cobra.Command, args []string) {
		err := runFeedbackHistory(viper.GetString("user"), viper.GetInt("history-limit"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.AddCommand(feedbackStatsCmd)
	feedbackCmd.AddCommand(feedbackHistoryCmd)

	var historyLimit int
	feedbackHistoryCmd.Flags().IntVar(&historyLimit, "history-limit", 20, "How many rows to show")
	viper.BindPFlag("history-limit", feedbackHistoryCmd.Flags().Lookup("history-limit"))
}

func runFeedback(user, artistID, verdict string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	accepts, rejects, err := db.RecordFeedback(user, artistID, "", verdict, nil, 0)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s for %s (%d accepts, %d rejects)\n", verdict, artistID, accepts, rejects)
	excluded, err := db.IsHardExcluded(user, artistID)
	if err != nil {
		return err
	}
	if excluded {
		fmt.Printf("%s is now permanently excluded from scans\n", artistID)
	}
	return nil
}

func runFeedbackStats(user string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.FeedbackStats(user)
	if err != nil {
		return err
	}

	fmt.Printf("Feedback for %q: %d accepts, %d rejects (%.0f%% accept rate)\n",
		user, stats.Accepts, stats.Rejects, stats.AcceptRate*100)
	return nil
}

func runFeedbackHistory(user string, limit int) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.FeedbackHistory(user, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No feedback recorded yet")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Artist", "Verdict", "Score", "Seeds", "When"})
	for _, r := range rows {
		table.Append([]string{
			r.ArtistName,
			r.Verdict,
			strconv.FormatFloat(r.OmissionScore, 'f', 3, 64),
			strings.Join(r.SeedArtists, ", "),
			r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	return nil
}
