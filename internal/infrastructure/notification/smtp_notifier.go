package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/infrastructure/config"
)

// SMTPNotifier delivers alerts as plain-text email over SMTP
type SMTPNotifier struct {
	cfg    config.NotificationConfig
	logger *zap.Logger

	// send is swappable for testing
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a new SMTPNotifier
func NewSMTPNotifier(cfg config.NotificationConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// NotifyLowStock emails a low-stock alert to the given recipients
func (n *SMTPNotifier) NotifyLowStock(ctx context.Context, recipients []string, alert notification.LowStockAlert) error {
	subject := fmt.Sprintf("Low stock: %s at %s", alert.ProductName, alert.StoreName)
	body := fmt.Sprintf(
		"Product %q at store %q has dropped to %d units (reorder level %d).\r\n"+
			"Please restock or request a transfer.\r\n",
		alert.ProductName, alert.StoreName, alert.Quantity, alert.ReorderLevel,
	)
	return n.sendMail(ctx, recipients, subject, body)
}

// NotifyTransferRequested emails a transfer-requested alert to the given recipients
func (n *SMTPNotifier) NotifyTransferRequested(ctx context.Context, recipients []string, alert notification.TransferAlert) error {
	subject := fmt.Sprintf("Transfer requested: %s", alert.ProductName)
	body := fmt.Sprintf(
		"%s requested a transfer of %d x %q from %q to %q.\r\n"+
			"Transfer %s is awaiting approval.\r\n",
		alert.RequestedBy, alert.Quantity, alert.ProductName,
		alert.FromStoreName, alert.ToStoreName, alert.TransferID,
	)
	return n.sendMail(ctx, recipients, subject, body)
}

func (n *SMTPNotifier) sendMail(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		n.logger.Debug("no recipients for notification", zap.String("subject", subject))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)
	}

	if err := n.send(addr, auth, n.cfg.From, recipients, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}

	n.logger.Info("notification email sent",
		zap.String("subject", subject),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}

// Ensure SMTPNotifier implements Notifier
var _ notification.Notifier = (*SMTPNotifier)(nil)
