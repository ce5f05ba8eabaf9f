package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

// FileSource reads emails from a JSON array of records
type FileSource struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// NewFileSource creates a new JSON file email source
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// FetchEmails returns up to max of the newest emails received since the given time
func (s *FileSource) FetchEmails(ctx context.Context, since time.Time, max int) ([]core.EmailRecord, error) {
	if err := validateSince(since, s.now()); err != nil {
		return nil, err
	}

	records, err := s.ReadAll()
	if err != nil {
		return nil, err
	}

	selected := selectNewest(records, since, max)
	s.logger.Debug("Read emails from file",
		zap.String("path", s.path),
		zap.Int("total", len(records)),
		zap.Int("selected", len(selected)))
	return selected, nil
}

// ReadAll returns every record of the file
func (s *FileSource) ReadAll() ([]core.EmailRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read email file: %w", err)
	}

	var records []core.EmailRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode email file %s: %w", s.path, err)
	}
	return records, nil
}

// Watch calls onChange whenever the file is written or replaced, until ctx is
// done. The parent directory is watched so editors that rename over the file
// are detected.
func (s *FileSource) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					s.logger.Info("Email file changed", zap.String("path", s.path), zap.String("op", event.Op.String()))
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("File watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
