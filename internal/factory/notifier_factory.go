package factory

import (
	"fmt"

	"github.com/mikey/inbox-clusterer/internal/adapters/notify"
	"github.com/mikey/inbox-clusterer/internal/config"
	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// NotifierFactory creates run notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier returns a Slack notifier, or nil when no token is configured
func (f *NotifierFactory) CreateNotifier() (core.Notifier, error) {
	slackCfg := f.cfg.GetSlack()
	if slackCfg.Token == "" {
		return nil, nil
	}
	if slackCfg.Channel == "" {
		return nil, fmt.Errorf("slack channel is required when a slack token is set")
	}
	return notify.NewSlackNotifier(slack.New(slackCfg.Token), slackCfg.Channel, f.logger), nil
}
