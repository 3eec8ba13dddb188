// Package orders records placed orders and derives sales statistics.
package orders

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/id"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
)

// CollectionKey is the storage key for orders.
const CollectionKey = records.KeyPrefix + "orders"

// Status is an order's fulfilment state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

// ParseStatus validates a status name.
func ParseStatus(value string) (Status, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, s := range Statuses {
		if string(s) == value {
			return s, true
		}
	}
	return "", false
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Item is one purchased line.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// Contact is how to reach the customer.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Address is a Japanese delivery address.
type Address struct {
	PostalCode string `json:"postalCode"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Town       string `json:"town"`
	Line       string `json:"line"`
}

// Order is a placed order.
type Order struct {
	records.Meta
	OrderNumber string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId,omitempty"`
	SessionID   string    `json:"sessionId,omitempty"`
	Items       []Item    `json:"items"`
	Subtotal    int64     `json:"subtotal"`
	Discount    int64     `json:"discount"`
	Shipping    int64     `json:"shipping"`
	Total       int64     `json:"total"`
	CouponCode  string    `json:"couponCode,omitempty"`
	Carrier     string    `json:"carrier"`
	Prefecture  string    `json:"prefecture"`
	Status      Status    `json:"status"`
	Customer    Contact   `json:"customer"`
	Address     Address   `json:"address"`
	PaymentID   string    `json:"paymentId,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the order's shape and arithmetic.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New(errors.CodeOrderInvalid, "order id is required")
	}
	if strings.TrimSpace(o.OrderNumber) == "" {
		return errors.New(errors.CodeOrderInvalid, "order number is required")
	}
	if len(o.Items) == 0 {
		return errors.New(errors.CodeOrderInvalid, "order has no items")
	}
	var subtotal int64
	for _, item := range o.Items {
		if item.Quantity <= 0 || item.UnitPrice <= 0 {
			return errors.New(errors.CodeOrderInvalid, "order item quantity and price must be positive")
		}
		subtotal += int64(item.Quantity) * item.UnitPrice
	}
	if subtotal != o.Subtotal {
		return errors.New(errors.CodeOrderInvalid, "order subtotal does not match items")
	}
	if o.Discount < 0 || o.Discount > o.Subtotal || o.Shipping < 0 {
		return errors.New(errors.CodeOrderInvalid, "order discount or shipping out of range")
	}
	if o.Total != o.Subtotal-o.Discount+o.Shipping {
		return errors.New(errors.CodeOrderInvalid, "order total does not match")
	}
	if _, ok := ParseStatus(string(o.Status)); !ok {
		return errors.New(errors.CodeOrderInvalidStatus, "unknown order status")
	}
	return nil
}

// Service manages the order collection.
type Service struct {
	orders *records.Collection[Order, *Order]
	clock  func() time.Time
}

// NewService binds the service to store.
func NewService(store storage.CollectionStore, opts records.Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		orders: records.NewCollection[Order, *Order](store, CollectionKey, opts),
		clock:  clock,
	}
}

// List returns every order, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	all, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(all)
	return all, nil
}

// Get returns one order by id.
func (s *Service) Get(ctx context.Context, orderID string) (Order, bool, error) {
	return s.orders.Get(ctx, orderID)
}

// Add records a new order, assigning an order number and a pending status
// when absent.
func (s *Service) Add(ctx context.Context, o Order) (Order, error) {
	now := s.clock().UTC()
	if strings.TrimSpace(o.OrderNumber) == "" {
		number, err := id.OrderNumber(now)
		if err != nil {
			return Order{}, err
		}
		o.OrderNumber = number
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	o.UpdatedAt = now
	return s.orders.Add(ctx, o)
}

// Remove deletes an order by id.
func (s *Service) Remove(ctx context.Context, orderID string) (bool, error) {
	return s.orders.Remove(ctx, orderID)
}

// UpdateStatus moves an order to status when the lifecycle allows it.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) (Order, bool, error) {
	return s.orders.Update(ctx, orderID, func(o *Order) error {
		if o.Status == status {
			return nil
		}
		if !CanTransition(o.Status, status) {
			return errors.WithMetadata(errors.CodeOrderInvalidStatus, "status transition not allowed", map[string]string{
				"From": string(o.Status),
				"To":   string(status),
			})
		}
		o.Status = status
		o.UpdatedAt = s.clock().UTC()
		return nil
	})
}

// SetPayment records the payment id and marks the order paid.
func (s *Service) SetPayment(ctx context.Context, orderID string, paymentID string) (Order, bool, error) {
	return s.orders.Update(ctx, orderID, func(o *Order) error {
		if !CanTransition(o.Status, StatusPaid) {
			return errors.WithMetadata(errors.CodeOrderInvalidStatus, "order cannot be paid", map[string]string{
				"From": string(o.Status),
				"To":   string(StatusPaid),
			})
		}
		o.PaymentID = paymentID
		o.Status = StatusPaid
		o.UpdatedAt = s.clock().UTC()
		return nil
	})
}

// ForCustomer returns a customer's orders, newest first. Customer ids are
// not authenticated, so only orders placed from sessionID are returned.
func (s *Service) ForCustomer(ctx context.Context, customerID, sessionID string) ([]Order, error) {
	customerID = strings.TrimSpace(customerID)
	sessionID = strings.TrimSpace(sessionID)
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []Order{}
	if customerID == "" || sessionID == "" {
		return out, nil
	}
	for _, o := range all {
		if o.CustomerID == customerID && o.SessionID == sessionID {
			out = append(out, o)
		}
	}
	return out, nil
}

// Statistics summarizes every order relative to now.
func (s *Service) Statistics(ctx context.Context, now time.Time) (Statistics, error) {
	all, err := s.orders.All(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(all, now), nil
}

func sortNewestFirst(all []Order) {
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
}
