package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// gmailScope is the OAuth scope granting IMAP access to Gmail
const gmailScope = "https://mail.google.com/"

func init() {
	imap.CharsetReader = charsetReader
}

// IMAPConfig holds the IMAP connection settings
type IMAPConfig struct {
	Address  string
	Username string
	Password string
	Mailbox  string
	// OAuthTokenFile holds a JSON oauth2.Token; when set it takes precedence over Password
	OAuthTokenFile string
	// OAuthClientFile holds the OAuth client credentials used to refresh the token
	OAuthClientFile string
}

// IMAPSource fetches emails from an IMAP mailbox over TLS
type IMAPSource struct {
	cfg    IMAPConfig
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewIMAPSource creates a new IMAP email source
func NewIMAPSource(cfg IMAPConfig, logger *zap.Logger) (*IMAPSource, error) {
	if cfg.Address == "" {
		return nil, errors.New("IMAP address is required")
	}
	if cfg.Username == "" {
		return nil, errors.New("IMAP username is required")
	}
	if cfg.Password == "" && cfg.OAuthTokenFile == "" {
		return nil, errors.New("IMAP password or OAuth token file is required")
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IMAPSource{cfg: cfg, logger: logger, now: time.Now}, nil
}

// FetchEmails returns up to max of the newest emails received since the given time
func (s *IMAPSource) FetchEmails(ctx context.Context, since time.Time, max int) ([]core.EmailRecord, error) {
	if err := validateSince(since, s.now()); err != nil {
		return nil, err
	}

	c, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := c.Logout(); err != nil {
			s.logger.Debug("IMAP logout failed", zap.Error(err))
		}
	}()

	if _, err := c.Select(s.cfg.Mailbox, true); err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", s.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	if !since.IsZero() {
		criteria.Since = since
	}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search mailbox: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	if max > 0 && len(uids) > max {
		uids = uids[len(uids)-max:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	records := make([]core.EmailRecord, 0, len(uids))
	for msg := range messages {
		record, err := s.toRecord(msg, section)
		if err != nil {
			s.logger.Warn("Skipping unreadable message", zap.Uint32("uid", msg.Uid), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	s.logger.Info("Fetched emails from IMAP",
		zap.String("mailbox", s.cfg.Mailbox),
		zap.Int("matched", len(uids)),
		zap.Int("fetched", len(records)))

	// SEARCH SINCE has day granularity
	return selectNewest(records, since, max), nil
}

func (s *IMAPSource) toRecord(msg *imap.Message, section *imap.BodySectionName) (core.EmailRecord, error) {
	body := msg.GetBody(section)
	if body == nil {
		return core.EmailRecord{}, errors.New("server did not return a message body")
	}
	record, err := parseMessage(body)
	if err != nil {
		return core.EmailRecord{}, err
	}

	record.ID = fmt.Sprintf("%d", msg.Uid)
	if env := msg.Envelope; env != nil {
		if env.Subject != "" {
			record.Subject = env.Subject
		}
		if !env.Date.IsZero() {
			record.Timestamp = env.Date.UTC().Format(time.RFC3339)
		}
		if len(env.From) > 0 && env.From[0] != nil {
			record.Sender = env.From[0].Address()
		}
	}
	return record, nil
}

func (s *IMAPSource) connect(ctx context.Context) (*client.Client, error) {
	c, err := client.DialTLS(s.cfg.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", s.cfg.Address, err)
	}

	if s.cfg.OAuthTokenFile != "" {
		token, err := s.accessToken(ctx)
		if err != nil {
			c.Logout()
			return nil, err
		}
		auth := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: s.cfg.Username,
			Token:    token,
		})
		if err := c.Authenticate(auth); err != nil {
			c.Logout()
			return nil, fmt.Errorf("failed to authenticate with OAuth: %w", err)
		}
		return c, nil
	}

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return c, nil
}

// accessToken returns a valid access token, refreshing and persisting it when
// it has expired
func (s *IMAPSource) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := readToken(s.cfg.OAuthTokenFile)
	if err != nil {
		return "", err
	}
	if token.Valid() {
		return token.AccessToken, nil
	}
	if s.cfg.OAuthClientFile == "" || token.RefreshToken == "" {
		return "", errors.New("OAuth token expired and cannot be refreshed")
	}

	data, err := os.ReadFile(s.cfg.OAuthClientFile)
	if err != nil {
		return "", fmt.Errorf("failed to read OAuth client file: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(data, gmailScope)
	if err != nil {
		return "", fmt.Errorf("failed to parse OAuth client file: %w", err)
	}

	refreshed, err := oauthCfg.TokenSource(ctx, token).Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh OAuth token: %w", err)
	}
	if err := writeToken(s.cfg.OAuthTokenFile, refreshed); err != nil {
		s.logger.Warn("Failed to persist refreshed OAuth token", zap.Error(err))
	}
	s.logger.Info("Refreshed OAuth token", zap.Time("expiry", refreshed.Expiry))
	return refreshed.AccessToken, nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode OAuth token file: %w", err)
	}
	return &token, nil
}

func writeToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
