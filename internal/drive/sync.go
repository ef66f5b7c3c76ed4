package drive

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/trivial-break-reminder/internal/storage"
)

// Sync reconciles local day files with the remote store. One remote file
// corresponds to one local day file; one remote folder to each path segment.
type Sync struct {
	store Store
	base  string
	log   *zap.Logger
}

// NewSync creates a Sync rooted at the local base directory.
func NewSync(store Store, base string, log *zap.Logger) *Sync {
	return &Sync{store: store, base: base, log: log}
}

// ResolveFolder walks the path segments left to right, descending into each
// folder and creating it under the current parent when absent. The lookup
// before every create is what keeps concurrent partially-created trees from
// growing duplicates: an ancestor made by another device is reused, never
// recreated. Returns the ID of the final segment's folder.
func (s *Sync) ResolveFolder(ctx context.Context, segments []string) (string, error) {
	parentID := ""
	for _, name := range segments {
		id, err := s.store.FindFolder(ctx, name, parentID)
		if err != nil {
			return "", err
		}
		if id == "" {
			id, err = s.store.CreateFolder(ctx, name, parentID)
			if err != nil {
				return "", err
			}
			s.log.Debug("created remote folder",
				zap.String("name", name),
				zap.String("id", id),
			)
		}
		parentID = id
	}
	return parentID, nil
}

// ResolveFile resolves the given date's remote file, creating the folder
// chain and an empty file record on first use.
func (s *Sync) ResolveFile(ctx context.Context, day time.Time) (string, error) {
	folderID, err := s.ResolveFolder(ctx, storage.DaySegments(day))
	if err != nil {
		return "", err
	}

	id, err := s.store.FindFile(ctx, storage.FileName, folderID)
	if err != nil {
		return "", err
	}
	if id == "" {
		id, err = s.store.CreateFile(ctx, storage.FileName, folderID)
		if err != nil {
			return "", err
		}
		s.log.Debug("created remote file",
			zap.String("name", storage.FileName),
			zap.String("id", id),
		)
	}
	return id, nil
}

// UploadDay overwrites the remote copy of the given date's log with the
// local file's content.
func (s *Sync) UploadDay(ctx context.Context, day time.Time) error {
	path := storage.DayPath(s.base, day)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s for upload: %w", path, err)
	}

	id, err := s.ResolveFile(ctx, day)
	if err != nil {
		return err
	}
	if err := s.store.WriteContent(ctx, id, data); err != nil {
		return err
	}
	s.log.Info("uploaded day log",
		zap.String("day", day.Format("2006-01-02")),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// DownloadDay overwrites the local copy of the given date's log with the
// remote file's content. The local write is atomic, so a reader never sees
// a partial download.
func (s *Sync) DownloadDay(ctx context.Context, day time.Time) error {
	id, err := s.ResolveFile(ctx, day)
	if err != nil {
		return err
	}
	data, err := s.store.ReadContent(ctx, id)
	if err != nil {
		return err
	}
	if err := storage.WriteRaw(storage.DayPath(s.base, day), data); err != nil {
		return err
	}
	s.log.Info("downloaded day log",
		zap.String("day", day.Format("2006-01-02")),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// UploadAll uploads every day log from the start date through today (UTC),
// skipping dates with no local file.
func (s *Sync) UploadAll(ctx context.Context, from time.Time) error {
	now := time.Now().UTC()
	for day := from; day.Before(now); day = day.AddDate(0, 0, 1) {
		if _, err := os.Stat(storage.DayPath(s.base, day)); os.IsNotExist(err) {
			continue
		}
		if err := s.UploadDay(ctx, day); err != nil {
			return fmt.Errorf("uploading %s: %w", day.Format("2006-01-02"), err)
		}
	}
	return nil
}

// DownloadAll downloads every day log from the start date through today (UTC).
func (s *Sync) DownloadAll(ctx context.Context, from time.Time) error {
	now := time.Now().UTC()
	for day := from; day.Before(now); day = day.AddDate(0, 0, 1) {
		if err := s.DownloadDay(ctx, day); err != nil {
			return fmt.Errorf("downloading %s: %w", day.Format("2006-01-02"), err)
		}
	}
	return nil
}
