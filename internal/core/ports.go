package core

import (
	"context"
	"time"
)

// EmailSource fetches email records from a mailbox
type EmailSource interface {
	// FetchEmails returns up to max of the newest emails received since the given time
	FetchEmails(ctx context.Context, since time.Time, max int) ([]EmailRecord, error)
}

// Summarizer produces a short abstractive summary of a text blob
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ClusterRepository persists cluster summaries
type ClusterRepository interface {
	// SaveClusters stores the clusters of one run
	SaveClusters(ctx context.Context, records []*ClusterRecord) error

	// ListClusters returns the clusters of a user, newest run first
	ListClusters(ctx context.Context, userID int64) ([]*ClusterRecord, error)

	// DeleteClusters removes every cluster of a user
	DeleteClusters(ctx context.Context, userID int64) error

	// Cleanup removes clusters processed before the cutoff
	Cleanup(ctx context.Context, cutoff time.Time) error
}

// UserRepository persists web interface accounts
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
}

// Notifier announces the results of a run
type Notifier interface {
	NotifyRun(ctx context.Context, user *User, result *RunResult) error
}
