package service

import (
	"fmt"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/pkg/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Notifier delivers learner-facing notifications. Implementations are
// best-effort: callers never fail an operation because a notification could
// not be sent.
type Notifier interface {
	SendGradingResult(toEmail, toName string, attempt *model.Attempt, evaluationTitle string) error
}

type sendgridNotifier struct {
	cfg *config.EmailConfig
}

type consoleNotifier struct{}

// NewNotifier returns the sendgrid-backed notifier, or a console fallback
// when no API key is configured (local development).
func NewNotifier(cfg *config.EmailConfig) Notifier {
	if cfg.SendgridAPIKey == "" {
		return &consoleNotifier{}
	}
	return &sendgridNotifier{cfg: cfg}
}

func (n *sendgridNotifier) SendGradingResult(toEmail, toName string, attempt *model.Attempt, evaluationTitle string) error {
	subject := fmt.Sprintf("Sua avaliação \"%s\" foi corrigida", evaluationTitle)
	body := gradingResultBody(attempt, evaluationTitle)

	from := mail.NewEmail(n.cfg.FromName, n.cfg.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(n.cfg.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *consoleNotifier) SendGradingResult(toEmail, toName string, attempt *model.Attempt, evaluationTitle string) error {
	logger.Log.Info("grading result notification (console)",
		zap.String("to", toEmail),
		zap.String("evaluation", evaluationTitle),
		zap.Float64("totalScore", attempt.TotalScore),
		zap.Float64("percentage", attempt.Percentage),
	)
	return nil
}

func gradingResultBody(attempt *model.Attempt, evaluationTitle string) string {
	outcome := "reprovado"
	if attempt.Passed != nil && *attempt.Passed {
		outcome = "aprovado"
	}
	return fmt.Sprintf(
		"Sua avaliação \"%s\" foi corrigida.\n\nNota: %.1f de %.1f (%.1f%%)\nResultado: %s\n",
		evaluationTitle, attempt.TotalScore, attempt.MaxScore, attempt.Percentage, outcome,
	)
}
