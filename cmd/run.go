package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/trivial-break-reminder/internal/config"
	"github.com/Tiliavir/trivial-break-reminder/internal/device"
	"github.com/Tiliavir/trivial-break-reminder/internal/drive"
	"github.com/Tiliavir/trivial-break-reminder/internal/lock"
	"github.com/Tiliavir/trivial-break-reminder/internal/logger"
	"github.com/Tiliavir/trivial-break-reminder/internal/prompt"
	"github.com/Tiliavir/trivial-break-reminder/internal/scheduler"
	"github.com/Tiliavir/trivial-break-reminder/internal/storage"
)

var runName string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the break reminder loop",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runName, "name", "tbr", "Instance name used for the lock file")
}

func runRun(cmd *cobra.Command, args []string) error {
	base, err := storage.BaseDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
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

	lk, err := lock.Acquire(base, runName)
	if errors.Is(err, lock.ErrAlreadyRunning) {
		// Normal condition during restart races, not a failure.
		fmt.Println("Another instance is already running.")
		return nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() {
		if err := lk.Release(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	ctx := context.Background()
	sync, err := connectDrive(ctx, cfg, base, log)
	if err != nil {
		return err
	}

	sched := scheduler.New(cfg, base, device.ID(), prompt.New(cfg.ChimeSound), sync, log)
	return sched.Run(ctx)
}

// connectDrive authenticates against Google Drive and returns a Sync rooted
// at the local base directory.
func connectDrive(ctx context.Context, cfg config.Config, base string, log *zap.Logger) (*drive.Sync, error) {
	tok, ocfg, err := drive.Authenticate(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	client := drive.NewClient(ctx, tok, ocfg)
	return drive.NewSync(client, base, log), nil
}
