// Package notify delivers a ranked list of scored postings to the user.
// It is a thin collaborator of the pipeline: it consumes results and an
// address, nothing more.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gomail "gopkg.in/mail.v2"

	"github.com/svensoldin/job-searcher/internal/model"
)

// Sink consumes a ranked list of scored postings.
type Sink interface {
	Notify(ctx context.Context, postings []model.Posting) error
}

// EmailConfig holds SMTP delivery settings.
type EmailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string
}

// Enabled reports whether the config is complete enough to send mail.
func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Pass != "" && c.To != ""
}

// EmailSink sends the ranked list as a plain-text email.
type EmailSink struct {
	cfg EmailConfig
}

// NewEmailSink returns a Sink delivering over SMTP.
func NewEmailSink(cfg EmailConfig) *EmailSink {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &EmailSink{cfg: cfg}
}

func (s *EmailSink) Notify(_ context.Context, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Subject", fmt.Sprintf("job-searcher: %d matching postings", len(postings)))
	m.SetBody("text/plain", renderDigest(postings))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send digest email: %w", err)
	}
	return nil
}

func renderDigest(postings []model.Posting) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d postings matched your criteria:\n\n", len(postings)))
	for i, p := range postings {
		score := "-"
		if p.Score != nil {
			score = fmt.Sprintf("%d", *p.Score)
		}
		sb.WriteString(fmt.Sprintf("%d. [%s] %s — %s\n   %s\n\n", i+1, score, p.Title, p.Company, p.URL))
	}
	return sb.String()
}

// LogSink logs the digest instead of delivering it. Used when SMTP is not
// configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(_ context.Context, postings []model.Posting) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range postings {
		sc := 0
		if p.Score != nil {
			sc = *p.Score
		}
		logger.Info("matched posting", "score", sc, "title", p.Title, "company", p.Company, "url", p.URL)
	}
	return nil
}
