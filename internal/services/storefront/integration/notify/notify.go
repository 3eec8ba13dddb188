// Package notify delivers customer notifications such as order
// confirmations. Delivery is single shot; callers decide what a failure means.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/storefront/internal/platform/i18n"
	i18ncatalog "github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"github.com/louisbranch/storefront/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// KindOrderConfirmation tags order confirmation messages.
const KindOrderConfirmation = "order_confirmation"

// Message is an outbound email notification.
type Message struct {
	Kind        string    `json:"kind"`
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Locale      string    `json:"locale"`
	OrderNumber string    `json:"orderNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs msg.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		zap.String("kind", msg.Kind),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("order_number", msg.OrderNumber),
	)
	return nil
}

// OrderSummary is what an order confirmation needs to know.
type OrderSummary struct {
	OrderNumber string
	Email       string
	Name        string
	Total       int64
	Carrier     string
	Locale      string
}

// Notifier renders localized notifications and hands them to a Sender.
type Notifier struct {
	sender Sender
	bundle *i18ncatalog.Bundle
	clock  func() time.Time
}

// NewNotifier binds sender and the message catalog.
func NewNotifier(sender Sender, bundle *i18ncatalog.Bundle) *Notifier {
	if bundle == nil {
		bundle = i18ncatalog.Default()
	}
	return &Notifier{sender: sender, bundle: bundle, clock: time.Now}
}

// OrderConfirmation sends the confirmation for one order.
func (n *Notifier) OrderConfirmation(ctx context.Context, summary OrderSummary) error {
	ctx, span := otel.Tracer("storefront/notify").Start(ctx, "notify.order_confirmation")
	defer span.End()
	span.SetAttributes(attribute.String("order.number", summary.OrderNumber))

	if n == nil || n.sender == nil {
		return fmt.Errorf("notifier is not configured")
	}
	to := strings.TrimSpace(summary.Email)
	if to == "" {
		return fmt.Errorf("order %s has no email", summary.OrderNumber)
	}
	tag, _ := i18n.ParseTag(summary.Locale)
	locale := i18n.LocaleString(tag)

	subject, err := n.bundle.Render(locale, "shop.notify.order_subject", map[string]string{
		"OrderNumber": summary.OrderNumber,
	})
	if err != nil {
		return err
	}
	carrier, ok := n.bundle.Message(locale, "shop.shipping.carrier."+summary.Carrier)
	if !ok {
		carrier = summary.Carrier
	}
	body, err := n.bundle.Render(locale, "shop.notify.order_body", map[string]string{
		"Name":    summary.Name,
		"Total":   i18n.FormatYen(tag, summary.Total),
		"Carrier": carrier,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Notify)
	defer cancel()
	err = n.sender.Send(ctx, Message{
		Kind:        KindOrderConfirmation,
		To:          to,
		Subject:     subject,
		Body:        body,
		Locale:      locale,
		OrderNumber: summary.OrderNumber,
		CreatedAt:   n.clock().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("send order confirmation: %w", err)
	}
	return nil
}

func encode(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return body, nil
}
