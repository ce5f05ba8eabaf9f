package factory

import (
	"context"
	"fmt"

	"github.com/mikey/inbox-clusterer/internal/adapters/source"
	"github.com/mikey/inbox-clusterer/internal/config"
	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/ports"
	"github.com/mikey/inbox-clusterer/internal/senderlist"
	"go.uber.org/zap"
)

// Watcher reports changes to the data behind a source
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Source is a configured email source together with the processes feeding it
type Source struct {
	core.EmailSource
	// Listener accepts pushed mail; nil for pull based sources
	Listener ports.Server
	// Watcher is set when the source should trigger runs on change
	Watcher Watcher
}

// SourceFactory creates email sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSource creates an email source based on the configuration
func (f *SourceFactory) CreateSource() (*Source, error) {
	sourceCfg := f.cfg.GetSource()

	var src Source
	switch sourceCfg.Type {
	case "file":
		file := source.NewFileSource(sourceCfg.File.Path, f.logger)
		src.EmailSource = file
		if sourceCfg.File.Watch {
			src.Watcher = file
		}
	case "imap":
		imapSource, err := source.NewIMAPSource(source.IMAPConfig{
			Address:         sourceCfg.IMAP.Address,
			Username:        sourceCfg.IMAP.Username,
			Password:        sourceCfg.IMAP.Password,
			Mailbox:         sourceCfg.IMAP.Mailbox,
			OAuthTokenFile:  sourceCfg.IMAP.OAuthTokenFile,
			OAuthClientFile: sourceCfg.IMAP.OAuthClientFile,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create IMAP source: %w", err)
		}
		src.EmailSource = imapSource
	case "smtp":
		smtpSource := source.NewSMTPSource(
			f.logger,
			sourceCfg.SMTP.ListenAddress,
			sourceCfg.SMTP.Domain,
			sourceCfg.SMTP.BufferSize,
		)
		src.EmailSource = smtpSource
		src.Listener = smtpSource
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceCfg.Type)
	}

	if excluded := senderlist.NewChecker(sourceCfg.ExcludeDomains, f.logger); excluded.Len() > 0 {
		src.EmailSource = source.NewExcludingSource(src.EmailSource, excluded, f.logger)
	}

	return &src, nil
}
