package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-break-reminder/internal/model"
	"github.com/Tiliavir/trivial-break-reminder/internal/storage"
)

var listDate string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged activity entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Show a specific date (YYYY-MM-DD); defaults to today")
}

func runList(cmd *cobra.Command, args []string) error {
	day := time.Now().UTC()
	if listDate != "" {
		d, err := time.Parse("2006-01-02", listDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --date value %q: %v\n", listDate, err)
			os.Exit(1)
		}
		day = d
	}

	base, err := storage.BaseDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	df, err := storage.LoadDay(base, day)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Println("No entries found.")
		return nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	printEntries(df.Activity)
	return nil
}

// printEntries prints one line per entry plus reminder annotations.
func printEntries(entries []model.Entry) {
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  [%s]\n", e.Time, e.Activity, e.Device)
		if len(e.Raised) > 0 {
			fmt.Printf("       raised: %s\n", strings.Join(e.Raised, ", "))
		}
		if len(e.Completed) > 0 {
			fmt.Printf("       completed: %s\n", strings.Join(e.Completed, ", "))
		}
	}
}
