// Package checkout turns a session cart into a paid order.
package checkout

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/requestctx"
	"github.com/louisbranch/storefront/internal/services/storefront/cart"
	"github.com/louisbranch/storefront/internal/services/storefront/coupons"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/notify"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/payment"
	"github.com/louisbranch/storefront/internal/services/storefront/orders"
	"github.com/louisbranch/storefront/internal/services/storefront/shipping"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Request is everything needed to place an order.
type Request struct {
	SessionID  string
	CustomerID string
	Prefecture string
	Carrier    string
	CouponCode string
	Customer   orders.Contact
	Address    orders.Address
	Locale     string
}

// Result is a placed order with its shipping and payment details.
type Result struct {
	Order   orders.Order   `json:"order"`
	Quote   shipping.Quote `json:"quote"`
	Payment payment.Result `json:"payment"`
}

// Deps wires the services checkout coordinates.
type Deps struct {
	Sessions *cart.Sessions
	Shipping *shipping.Calculator
	Coupons  *coupons.Service
	Orders   *orders.Service
	Payments payment.Gateway
	Notifier *notify.Notifier
	Logger   *zap.Logger
	Clock    func() time.Time
}

// Service places orders.
type Service struct {
	deps Deps
}

// NewService builds a checkout service.
func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{deps: deps}
}

// Checkout prices the session cart, records the order, settles payment,
// redeems the coupon, removes the ordered lines from the cart and sends a
// confirmation. Validation failures abort before anything is written.
// Coupon redemption and confirmation failures after payment are logged,
// not returned.
func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	ctx, span := otel.Tracer("storefront/checkout").Start(ctx, "checkout")
	defer span.End()

	result, err := s.checkout(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errors.CodeOf(err)))
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("order.number", result.Order.OrderNumber),
		attribute.Int64("order.total", result.Order.Total),
	)
	return result, nil
}

func (s *Service) checkout(ctx context.Context, req Request) (Result, error) {
	if err := validateContact(req.Customer); err != nil {
		return Result{}, err
	}
	sessionCart := s.deps.Sessions.Get(req.SessionID)
	snap := sessionCart.Snapshot()
	if len(snap.Items) == 0 {
		return Result{}, errors.New(errors.CodeCartEmpty, "cart is empty")
	}

	pref, err := s.deps.Shipping.Zone(req.Prefecture)
	if err != nil {
		return Result{}, err
	}
	quote, err := s.deps.Shipping.Quote(ctx, req.Carrier, snap.Space.TotalSmallEquivalent, pref.Name, req.Locale)
	if err != nil {
		return Result{}, err
	}

	subtotal := snap.Totals.Price
	var discount int64
	couponCode := coupons.NormalizeCode(req.CouponCode)
	if couponCode != "" {
		applied, err := s.deps.Coupons.Apply(ctx, couponCode, subtotal, s.deps.Clock())
		if err != nil {
			return Result{}, err
		}
		discount = applied.Discount
	}

	address := req.Address
	address.Prefecture = pref.Name
	order, err := s.deps.Orders.Add(ctx, orders.Order{
		CustomerID: strings.TrimSpace(req.CustomerID),
		SessionID:  req.SessionID,
		Items:      orderItems(snap.Items),
		Subtotal:   subtotal,
		Discount:   discount,
		Shipping:   quote.Price,
		Total:      subtotal - discount + quote.Price,
		CouponCode: couponCode,
		Carrier:    quote.Carrier,
		Prefecture: pref.Name,
		Status:     orders.StatusPending,
		Customer:   req.Customer,
		Address:    address,
	})
	if err != nil {
		return Result{}, err
	}

	paid, err := s.deps.Payments.Charge(ctx, payment.Request{
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Description: "Kura Miso " + order.OrderNumber,
		Customer: payment.Customer{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
	})
	if err != nil {
		if code := errors.CodeOf(err); code != errors.CodePaymentInvalid && code != errors.CodePaymentFailed {
			err = errors.Wrap(errors.CodePaymentFailed, "charge order", err)
		}
		return Result{}, err
	}
	order, _, err = s.deps.Orders.SetPayment(ctx, order.ID, paid.PaymentID)
	if err != nil {
		return Result{}, err
	}

	if couponCode != "" {
		if _, err := s.deps.Coupons.Redeem(ctx, couponCode); err != nil {
			s.deps.Logger.Warn("coupon redemption failed",
				zap.String("request_id", requestctx.RequestIDFromContext(ctx)),
				zap.String("order_number", order.OrderNumber),
				zap.String("coupon", couponCode),
				zap.Error(err),
			)
		}
	}
	sessionCart.Subtract(snap.Items)

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.OrderConfirmation(ctx, notify.OrderSummary{
			OrderNumber: order.OrderNumber,
			Email:       req.Customer.Email,
			Name:        req.Customer.Name,
			Total:       order.Total,
			Carrier:     order.Carrier,
			Locale:      req.Locale,
		}); err != nil {
			s.deps.Logger.Warn("order confirmation not delivered",
				zap.String("request_id", requestctx.RequestIDFromContext(ctx)),
				zap.String("customer_id", requestctx.CustomerIDFromContext(ctx)),
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
	}

	return Result{Order: order, Quote: quote, Payment: paid}, nil
}

func validateContact(contact orders.Contact) error {
	if strings.TrimSpace(contact.Name) == "" {
		return errors.WithMetadata(errors.CodeOrderInvalid, "customer name is required", map[string]string{"Field": "name"})
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(contact.Email)); err != nil {
		return errors.WrapWithMetadata(errors.CodeOrderInvalid, "customer email is invalid", map[string]string{"Field": "email"}, err)
	}
	return nil
}

func orderItems(items []cart.Item) []orders.Item {
	out := make([]orders.Item, 0, len(items))
	for _, item := range items {
		out = append(out, orders.Item{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Size:      string(item.Size),
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price(item.Size),
		})
	}
	return out
}
