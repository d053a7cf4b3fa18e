package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bennyli1995/clicker-scrape/internal/config"
	"github.com/Bennyli1995/clicker-scrape/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past extraction runs",
		Long: `History lists past extraction runs recorded in the local database,
newest first.

Examples:
  # Show the most recent runs
  clickerscrape history

  # Show the last 5 runs
  clickerscrape history -n 5

  # Show every code ever found for a lecture
  clickerscrape history --lecture https://viewer.example.edu/lecture/5`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of runs to show (0 shows all)")
	cmd.Flags().String("lecture", "",
		"Show distinct codes recorded for this lecture URL instead of runs")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output history as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	lecture, err := cmd.Flags().GetString("lecture")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Listing history should not create an empty database.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no extraction history yet: %w", err)
	}
	defer db.Close()

	if lecture != "" {
		return showLectureCodes(cmd, db, lecture, asJSON)
	}
	return showRuns(cmd, db, limit, asJSON)
}

// showRuns lists recent runs.
func showRuns(cmd *cobra.Command, db *database.HistoryDB, limit int, asJSON bool) error {
	runs, err := db.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No extraction runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tLECTURE\tPROFILE\tPHASE\tCODES\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.LectureURL,
			run.Profile,
			run.PhaseReached,
			run.CodeCount,
			run.Duration.Round(time.Second),
		)
	}
	return w.Flush()
}

// showLectureCodes lists every distinct code recorded for a lecture.
func showLectureCodes(cmd *cobra.Command, db *database.HistoryDB, lecture string, asJSON bool) error {
	codes, err := db.CodesForLecture(cmd.Context(), lecture)
	if err != nil {
		return fmt.Errorf("failed to query codes: %w", err)
	}

	out := cmd.OutOrStdout()

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(codes)
	}

	if len(codes) == 0 {
		fmt.Fprintf(out, "No codes recorded for %s\n", lecture)
		return nil
	}

	for _, code := range codes {
		fmt.Fprintf(out, "%s\n", code)
	}
	return nil
}
