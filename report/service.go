package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/store"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

// Sender delivers an email with a single CSV attachment.
type Sender interface {
	Send(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error
}

// Service assembles monthly work-session reports.
type Service struct {
	sessions worklog.Store
	users    store.UserStore
	sender   Sender
}

func NewService(sessions worklog.Store, users store.UserStore, sender Sender) *Service {
	return &Service{sessions: sessions, users: users, sender: sender}
}

// AttachmentName is the canonical file name for an employee's monthly report.
func AttachmentName(employeeID int64, year int, month time.Month) string {
	return fmt.Sprintf("User-%d-%d-%d.csv", employeeID, year, int(month))
}

// Download returns the CSV report for the employee's sessions in the given
// month. Returns NotFoundError when the employee logged no sessions.
func (s *Service) Download(ctx context.Context, employeeID int64, year int, month time.Month) ([]byte, error) {
	sessions, err := s.monthSessions(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sessions); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	return buf.Bytes(), nil
}

// Email builds the monthly report and sends it to the employee's email
// address as a CSV attachment.
func (s *Service) Email(ctx context.Context, employeeID int64, year int, month time.Month) error {
	u, err := s.users.User(ctx, employeeID)
	if err != nil {
		return err
	}

	csvData, err := s.Download(ctx, employeeID, year, month)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Work report for %s %d", month, year)
	body := fmt.Sprintf("Attached is your work session report for %s %d.", month, year)
	return s.sender.Send(ctx, u.Email, subject, body, AttachmentName(employeeID, year, month), csvData)
}

func (s *Service) monthSessions(ctx context.Context, employeeID int64, year int, month time.Month) ([]worklog.Session, error) {
	from, to := worklog.MonthRange(year, month)
	sessions, err := s.sessions.SessionsInRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, &leave.NotFoundError{Kind: "work sessions", ID: employeeID}
	}
	return sessions, nil
}

// =============================================================================
// SMTP SENDER
// =============================================================================

// SMTPSender sends report emails through a plain SMTP relay.
type SMTPSender struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
	Host     string // auth host, defaults from Addr
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error {
	msg, err := buildMessage(s.From, to, subject, body, attachmentName, attachment)
	if err != nil {
		return fmt.Errorf("failed to build report email: %w", err)
	}

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	if err := smtp.SendMail(s.Addr, auth, s.From, []string{to}, msg); err != nil {
		return &leave.TransportError{Op: "send report email", Err: err}
	}
	return nil
}

func buildMessage(from, to, subject, body, attachmentName string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprint(textPart, body)

	attachPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/csv"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachmentName)},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(attachment)
	fmt.Fprint(attachPart, encoded)

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
