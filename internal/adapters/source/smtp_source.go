package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

// SMTPSource accepts messages over SMTP into a bounded in-memory buffer that
// the pipeline fetches from
type SMTPSource struct {
	logger     *zap.Logger
	listenAddr string
	domain     string
	server     *smtp.Server
	bufferSize int
	mu         sync.Mutex
	buffer     []core.EmailRecord
	now        func() time.Time
}

// NewSMTPSource creates a new SMTP intake source keeping at most bufferSize messages
func NewSMTPSource(logger *zap.Logger, listenAddr, domain string, bufferSize int) *SMTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize < 1 {
		bufferSize = 1000
	}
	if domain == "" {
		domain = "localhost"
	}
	return &SMTPSource{
		logger:     logger,
		listenAddr: listenAddr,
		domain:     domain,
		bufferSize: bufferSize,
		now:        time.Now,
	}
}

// Start starts the SMTP listener
func (s *SMTPSource) Start() error {
	s.server = smtp.NewServer(&smtpBackend{source: s})

	s.server.Addr = s.listenAddr
	s.server.Domain = s.domain
	s.server.ReadTimeout = 30 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	s.server.MaxRecipients = 50
	s.server.AllowInsecureAuth = true

	s.logger.Info("SMTP intake starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			if !errors.Is(err, smtp.ErrServerClosed) {
				s.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (s *SMTPSource) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// Deliver parses a raw message and adds it to the buffer, evicting the oldest
// message when full
func (s *SMTPSource) Deliver(raw []byte, sender string) error {
	record, err := parseMessage(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Sender == "" {
		record.Sender = sender
	}
	if _, err := core.ParseTimestamp(record.Timestamp); err != nil {
		record.Timestamp = s.now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buffer) >= s.bufferSize {
		s.buffer = s.buffer[1:]
	}
	s.buffer = append(s.buffer, record)

	s.logger.Debug("Buffered email",
		zap.String("id", record.ID),
		zap.String("sender", record.Sender),
		zap.Int("buffered", len(s.buffer)))
	return nil
}

// FetchEmails returns up to max of the newest buffered emails received since the given time
func (s *SMTPSource) FetchEmails(ctx context.Context, since time.Time, max int) ([]core.EmailRecord, error) {
	if err := validateSince(since, s.now()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	snapshot := make([]core.EmailRecord, len(s.buffer))
	copy(snapshot, s.buffer)
	s.mu.Unlock()

	return selectNewest(snapshot, since, max), nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	source *SMTPSource
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{source: b.source}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	source *SMTPSource
	sender string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
}

// Logout ends the session
func (s *smtpSession) Logout() error {
	return nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt accepts every recipient
func (s *smtpSession) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

// Data buffers the message
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.source.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}
	if err := s.source.Deliver(raw, s.sender); err != nil {
		s.source.logger.Error("Failed to buffer message", zap.String("sender", s.sender), zap.Error(err))
		return fmt.Errorf("554 message could not be parsed: %w", err)
	}
	return nil
}
