package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-break-reminder/internal/config"
	"github.com/Tiliavir/trivial-break-reminder/internal/logger"
	"github.com/Tiliavir/trivial-break-reminder/internal/storage"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every daily log from the start date through today",
	Long: `Download pulls each daily log file from Google Drive, from the
configured start_date through today, overwriting local copies.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	base, err := storage.BaseDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	from, err := cfg.Start()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx := context.Background()
	sync, err := connectDrive(ctx, cfg, base, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Downloading daily logs (%s → today)...\n", cfg.StartDate)
	if err := sync.DownloadAll(ctx, from); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Download complete.")
	return nil
}
