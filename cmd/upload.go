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

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload every daily log from the start date through today",
	Long: `Upload pushes each local daily log file to Google Drive, from the
configured start_date through today. Days with no local file are skipped.
The remote copy is overwritten; whoever uploads last wins.`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Uploading daily logs (%s → today)...\n", cfg.StartDate)
	if err := sync.UploadAll(ctx, from); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Upload complete.")
	return nil
}
