package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

var ErrNoRecipient = errors.New("event has no owner email")

// EmailNotifier delivers SLA escalations and reminder mail through
// SendGrid. Items without a denormalized owner email are skipped, not
// failed: mail is an optional channel per owner.
type EmailNotifier struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (n *EmailNotifier) Channel() domain.Channel {
	return domain.ChannelEmail
}

func (n *EmailNotifier) Send(ctx context.Context, event *domain.NotificationEvent) error {
	if event.OwnerEmail == "" {
		slog.DebugContext(ctx, "skipping email channel, owner has no address",
			slog.String("item_id", event.ItemID),
			slog.String("owner_id", event.OwnerID),
		)
		return nil
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail("", event.OwnerEmail)
	subject := event.Title
	body := event.Body
	if body == "" {
		body = event.Title
	}

	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}

	slog.DebugContext(ctx, "email notification sent",
		slog.String("item_id", event.ItemID),
		slog.String("owner_id", event.OwnerID),
	)
	return nil
}
