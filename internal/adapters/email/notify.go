package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"campusbooking/internal/domain/account"
	"campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/timeslot"
)

// AccountResolver resolves the requester's address for notifications.
type AccountResolver interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// DecisionMailer notifies requesters of reservation decisions. Bodies are
// written in Markdown and rendered to HTML with goldmark before sending.
type DecisionMailer struct {
	sender   Sender
	accounts AccountResolver
	from     string
	markdown goldmark.Markdown
}

// NewDecisionMailer creates a DecisionMailer.
func NewDecisionMailer(sender Sender, accounts AccountResolver, from string) *DecisionMailer {
	return &DecisionMailer{
		sender:   sender,
		accounts: accounts,
		from:     from,
		markdown: goldmark.New(),
	}
}

// NotifyDecision sends the decision email to the requester.
// PRE: r has been decided (approved or rejected)
// POST: Email queued for delivery, or an error the caller may ignore
func (m *DecisionMailer) NotifyDecision(ctx context.Context, r booking.Reservation, decision, reason string) error {
	requester, err := m.accounts.GetByID(ctx, r.RequesterID)
	if err != nil {
		return fmt.Errorf("resolve requester %s: %w", r.RequesterID, err)
	}

	subject := fmt.Sprintf("Reserva %s: %s", r.ID, decision)
	body := m.composeDecision(requester.Name, r, decision, reason)

	html, err := m.render(body)
	if err != nil {
		return fmt.Errorf("render decision email: %w", err)
	}

	result, err := m.sender.Send(ctx, SendRequest{
		To:      []string{requester.Email},
		From:    m.from,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}
	slog.Info("decision_email_sent", "reservation_id", r.ID, "decision", decision, "message_id", result.MessageID)
	return nil
}

func (m *DecisionMailer) composeDecision(name string, r booking.Reservation, decision, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tu reserva fue %s\n\n", decision)
	if name != "" {
		fmt.Fprintf(&b, "Hola %s,\n\n", name)
	}
	fmt.Fprintf(&b, "La reserva **%s** para el %s fue **%s**.\n\n", r.ID, timeslot.FormatDate(r.Date), decision)
	if reason != "" {
		fmt.Fprintf(&b, "Motivo:\n\n> %s\n", reason)
	}
	return b.String()
}

func (m *DecisionMailer) render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := m.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
