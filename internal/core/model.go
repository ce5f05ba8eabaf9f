package core

import (
	"strconv"
	"time"
)

// EmailRecord represents a fetched email message
type EmailRecord struct {
	ID        string `json:"id,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"from,omitempty"`
}

// CleanedEmail is an EmailRecord annotated with its normalized text
type CleanedEmail struct {
	EmailRecord
	Cleaned string `json:"cleaned"`
}

// Key returns an identifier for the email suitable for display and persistence
func (e EmailRecord) Key(index int) string {
	switch {
	case e.ID != "":
		return e.ID
	case e.Sender != "":
		return e.Sender
	default:
		return "email-" + strconv.Itoa(index)
	}
}

// ReportRow is one (time bucket, cluster) group of a cluster report
type ReportRow struct {
	Bucket    time.Time `json:"hour"`
	ClusterID int       `json:"cluster"`
	Count     int       `json:"count"`
}

// ClusterResult describes one cluster produced by a pipeline run
type ClusterResult struct {
	ClusterID int      `json:"cluster"`
	Summary   string   `json:"summary"`
	Keywords  []string `json:"keywords"`
	Language  string   `json:"language,omitempty"`
	EmailIDs  []string `json:"email_ids"`
	Count     int      `json:"email_count"`
}

// RunRequest holds the parameters of a clustering run
type RunRequest struct {
	UserID    int64
	Since     time.Time
	MaxEmails int
	K         int
}

// RunResult is the outcome of a clustering run
type RunResult struct {
	RunID    string          `json:"run_id"`
	Fetched  int             `json:"fetched"`
	Emails   []CleanedEmail  `json:"-"`
	Labels   []int           `json:"labels"`
	Report   []ReportRow     `json:"report"`
	Clusters []ClusterResult `json:"clusters"`
}

// ClusterRecord is a persisted cluster summary
type ClusterRecord struct {
	ID          int64
	RunID       string
	UserID      int64
	ClusterID   int
	Summary     string
	Keywords    []string
	Language    string
	EmailIDs    []string
	EmailCount  int
	StartDate   time.Time
	ProcessedAt time.Time
}

// User is an account of the web interface
type User struct {
	ID           int64
	Email        string
	FirstName    string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an authenticated web session
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}
