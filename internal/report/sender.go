// internal/report/sender.go
package report

import (
	"context"
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"

	"datagen-service/internal/config"
)

type Sender struct {
	cfg *config.Config
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) Send(ctx context.Context, to []string, subject, body string) error {
	log.Printf("📧 [REPORT] To: %v | Subject: %s", to, subject)

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom))
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	dialer := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)

	// Exponential backoff: 1s, 2s, 4s → max 3 retries
	for attempt := 0; attempt < 3; attempt++ {
		if err := dialer.DialAndSend(m); err != nil {
			delay := time.Duration(1<<attempt) * time.Second
			log.Printf("❌ [ATTEMPT %d] Failed to send report to %v: %v → retrying in %v", attempt+1, to, err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("report send cancelled: %w", ctx.Err())
			}
			continue
		}
		log.Printf("✅ [SUCCESS] Report sent to %v (Subject: %s)", to, subject)
		return nil
	}

	log.Printf("💥 [FAILED] All retries exhausted for %v", to)
	return fmt.Errorf("failed to send report to %v after 3 attempts", to)
}
