package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tbr",
	Short: "Trivial Break Reminder – a periodic break and reminder daemon",
	Long: `tbr periodically interrupts you to take a break, records what you were
doing, raises time-boxed reminders, and keeps the daily activity log
synchronized with Google Drive so it follows you across machines.
All data is stored as human-readable JSON files in ~/.tbr/.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)
}
