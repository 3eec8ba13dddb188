// Package payment settles orders through a mock wallet gateway. No money
// moves: every valid request succeeds with identifiers derived from the
// order number.
package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// StatusCompleted is the only status the mock reports.
const StatusCompleted = "COMPLETED"

// Customer identifies the payer.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Request asks the gateway to charge an order.
type Request struct {
	OrderNumber string   `json:"orderNumber"`
	Amount      int64    `json:"amount"`
	Description string   `json:"description"`
	Customer    Customer `json:"customer"`
}

// Result is a completed payment.
type Result struct {
	PaymentID         string    `json:"paymentId"`
	MerchantPaymentID string    `json:"merchantPaymentId"`
	Status            string    `json:"status"`
	Amount            int64     `json:"amount"`
	RedirectURL       string    `json:"redirectUrl"`
	CompletedAt       time.Time `json:"completedAt"`
}

// Gateway charges orders.
type Gateway interface {
	Charge(ctx context.Context, req Request) (Result, error)
}

// Mock is a Gateway that always succeeds.
type Mock struct {
	redirectBase string
	clock        func() time.Time
}

// NewMock builds a mock gateway whose redirect URLs live under redirectBase.
func NewMock(redirectBase string) *Mock {
	redirectBase = strings.TrimRight(strings.TrimSpace(redirectBase), "/")
	if redirectBase == "" {
		redirectBase = "https://pay.example.invalid"
	}
	return &Mock{redirectBase: redirectBase, clock: time.Now}
}

// Charge validates req and returns a synthetic completed payment.
func (m *Mock) Charge(ctx context.Context, req Request) (Result, error) {
	_, span := otel.Tracer("storefront/payment").Start(ctx, "payment.charge")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.order_number", req.OrderNumber),
		attribute.Int64("payment.amount", req.Amount),
	)

	if err := ctx.Err(); err != nil {
		return Result{}, errors.Wrap(errors.CodePaymentFailed, "payment canceled", err)
	}
	orderNumber := strings.TrimSpace(req.OrderNumber)
	if orderNumber == "" {
		return Result{}, errors.New(errors.CodePaymentInvalid, "order number is required")
	}
	if req.Amount <= 0 {
		return Result{}, errors.WithMetadata(errors.CodePaymentInvalid, "amount must be positive", map[string]string{
			"Amount": strconv.FormatInt(req.Amount, 10),
		})
	}

	paymentID := PaymentID(orderNumber)
	return Result{
		PaymentID:         paymentID,
		MerchantPaymentID: MerchantPaymentID(orderNumber),
		Status:            StatusCompleted,
		Amount:            req.Amount,
		RedirectURL:       m.redirectBase + "/payments/" + url.PathEscape(paymentID),
		CompletedAt:       m.clock().UTC(),
	}, nil
}

// PaymentID derives the payment id for an order number.
func PaymentID(orderNumber string) string {
	return "PAYPAY-" + strings.TrimSpace(orderNumber)
}

// MerchantPaymentID derives a stable merchant reference for an order number.
func MerchantPaymentID(orderNumber string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(orderNumber)))
	return "MP" + strings.ToUpper(hex.EncodeToString(sum[:8]))
}
