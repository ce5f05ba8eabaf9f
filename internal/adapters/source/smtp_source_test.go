package source

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"
)

func rawMessage(id, subject, date string) []byte {
	return []byte(fmt.Sprintf("Message-Id: <%s>\r\nSubject: %s\r\nDate: %s\r\n\r\nbody of %s\r\n", id, subject, date, id))
}

func TestSMTPSourceBuffer(t *testing.T) {
	src := NewSMTPSource(nil, "127.0.0.1:0", "", 2)
	src.now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }

	dates := []string{
		"Mon, 01 Jan 2024 09:00:00 +0000",
		"Tue, 02 Jan 2024 09:00:00 +0000",
		"Wed, 03 Jan 2024 09:00:00 +0000",
	}
	for i, d := range dates {
		if err := src.Deliver(rawMessage(fmt.Sprintf("m%d", i), "hello", d), "a@example.com"); err != nil {
			t.Fatalf("Deliver failed: %v", err)
		}
	}

	got, err := src.FetchEmails(context.Background(), time.Time{}, 10)
	if err != nil {
		t.Fatalf("FetchEmails failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Fatalf("expected the two newest messages, got %+v", got)
	}
	if got[0].Sender != "a@example.com" {
		t.Fatalf("expected envelope sender fallback, got %q", got[0].Sender)
	}
}

func TestSMTPSessionData(t *testing.T) {
	src := NewSMTPSource(nil, "127.0.0.1:0", "", 10)
	src.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }

	sess := &smtpSession{source: src}
	if err := sess.Mail("b@example.com", nil); err != nil {
		t.Fatalf("Mail failed: %v", err)
	}
	if err := sess.Data(bytes.NewReader([]byte("Subject: no date\r\n\r\nhello\r\n"))); err != nil {
		t.Fatalf("Data failed: %v", err)
	}

	got, _ := src.FetchEmails(context.Background(), time.Time{}, 10)
	if len(got) != 1 {
		t.Fatalf("expected one buffered message, got %d", len(got))
	}
	if got[0].ID == "" || got[0].Timestamp != "2024-01-10T12:00:00Z" {
		t.Fatalf("expected generated id and receive time, got %+v", got[0])
	}
}
