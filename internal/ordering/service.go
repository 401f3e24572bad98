// Package ordering turns a customer's cart and pickup choice into a
// persisted order.
package ordering

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodtruck-order-service/internal/cart"
	"foodtruck-order-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// orderNumberConstraint is the unique index on orders.order_number.
const orderNumberConstraint = "orders_order_number_key"

type StopReader interface {
	GetStop(ctx context.Context, id string) (domain.Stop, error)
}

type SlotValidator interface {
	Validate(ctx context.Context, stop domain.Stop, date, clock string) error
}

// OrderWriter persists an order header and its lines as two writes.
type OrderWriter interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	InsertLines(ctx context.Context, lines []domain.OrderLine) error
	DeleteOrder(ctx context.Context, id string) error
}

// Transactor is implemented by writers able to run both writes atomically.
type Transactor interface {
	InTx(ctx context.Context, fn func(w OrderWriter) error) error
}

type SubmitRequest struct {
	SessionKey string
	Cart       *cart.Cart
	StopID     string
	PickupDate string
	PickupTime string
	Customer   domain.Customer
}

type Receipt struct {
	OrderID     string       `json:"orderId"`
	OrderNumber string       `json:"orderNumber"`
	Total       domain.Money `json:"totalCents"`
	Order       domain.Order `json:"order"`
	Stop        domain.Stop  `json:"stop"`
}

type Service struct {
	Stops   StopReader
	Orders  OrderWriter
	Slots   SlotValidator
	Guard   Guard
	Timeout time.Duration
	Logger  *zap.Logger
	NewID   func() string
	Now     func() time.Time
}

func NewService(stops StopReader, orders OrderWriter, slots SlotValidator, guard Guard, timeout time.Duration, logger *zap.Logger) *Service {
	if guard == nil {
		guard = NewLocalGuard()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Stops:   stops,
		Orders:  orders,
		Slots:   slots,
		Guard:   guard,
		Timeout: timeout,
		Logger:  logger,
		NewID:   uuid.NewString,
		Now:     time.Now,
	}
}

// Submit validates the request, writes the order header then its lines, and
// clears the cart on success. Notification is left to the change feed.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Receipt, error) {
	release, ok := s.Guard.Acquire(ctx, submissionKey(req))
	if !ok {
		return Receipt{}, domain.ErrSubmissionInProgress
	}
	defer release()

	if req.Cart == nil || req.Cart.IsEmpty() {
		return Receipt{}, domain.Invalid("items", "cart is empty")
	}
	total, ok := req.Cart.CheckedTotal()
	if !ok || total <= 0 {
		return Receipt{}, domain.Invalid("items", "order total is out of range")
	}
	customer, err := normalizeCustomer(req.Customer)
	if err != nil {
		return Receipt{}, err
	}

	stop, err := s.loadStop(ctx, req.StopID)
	if err != nil {
		return Receipt{}, err
	}
	if !stop.Active {
		return Receipt{}, domain.Invalid("stopId", "stop is not active")
	}
	if err := s.Slots.Validate(ctx, stop, req.PickupDate, req.PickupTime); err != nil {
		return Receipt{}, err
	}

	order, lines := s.buildOrder(req, stop, customer, total)
	err = s.persist(ctx, &order, lines)
	if domain.IsUniqueViolation(err, orderNumberConstraint) {
		s.Logger.Warn("order number already taken, retrying with a new id",
			zap.String("orderNumber", order.OrderNumber),
		)
		order, lines = s.buildOrder(req, stop, customer, total)
		err = s.persist(ctx, &order, lines)
	}
	if err != nil {
		return Receipt{}, err
	}

	order.Lines = lines
	req.Cart.Clear()

	s.Logger.Info("order submitted",
		zap.String("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("stopId", stop.ID),
		zap.Int64("totalCents", int64(order.Total)),
	)

	return Receipt{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Order:       order,
		Stop:        stop,
	}, nil
}

func (s *Service) loadStop(ctx context.Context, stopID string) (domain.Stop, error) {
	stopID = strings.TrimSpace(stopID)
	if stopID == "" {
		return domain.Stop{}, domain.Invalid("stopId", "is required")
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	stop, err := s.Stops.GetStop(callCtx, stopID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Stop{}, domain.Invalid("stopId", "unknown stop")
		}
		return domain.Stop{}, domain.Persist("get", "stops", err)
	}
	return stop, nil
}

func (s *Service) buildOrder(req SubmitRequest, stop domain.Stop, customer domain.Customer, total domain.Money) (domain.Order, []domain.OrderLine) {
	id := s.NewID()
	now := s.Now()
	order := domain.Order{
		ID:          id,
		OrderNumber: domain.OrderNumberFromID(id),
		StopID:      stop.ID,
		StopName:    stop.Name,
		Customer:    customer,
		PickupDate:  req.PickupDate,
		PickupTime:  req.PickupTime,
		Status:      domain.StatusPending,
		Total:       total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	entries := req.Cart.Lines()
	lines := make([]domain.OrderLine, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, domain.OrderLine{
			ID:         s.NewID(),
			OrderID:    id,
			MenuItemID: entry.Item.ID,
			ItemName:   entry.Item.Name,
			Quantity:   entry.Quantity,
			UnitPrice:  entry.Item.Price,
		})
	}
	return order, lines
}

func (s *Service) persist(ctx context.Context, order *domain.Order, lines []domain.OrderLine) error {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	if tx, ok := s.Orders.(Transactor); ok {
		err := tx.InTx(callCtx, func(w OrderWriter) error {
			if err := w.InsertOrder(callCtx, order); err != nil {
				return domain.Persist("insert", "orders", err)
			}
			if err := w.InsertLines(callCtx, lines); err != nil {
				return domain.Persist("insert", "order_lines", err)
			}
			return nil
		})
		return domain.Persist("commit", "orders", err)
	}

	if err := s.Orders.InsertOrder(callCtx, order); err != nil {
		return domain.Persist("insert", "orders", err)
	}

	linesCtx, cancelLines := s.callContext(ctx)
	defer cancelLines()
	if err := s.Orders.InsertLines(linesCtx, lines); err != nil {
		s.compensate(ctx, order.ID, err)
		return domain.Persist("insert", "order_lines", err)
	}
	return nil
}

// compensate removes a header whose lines could not be written.
func (s *Service) compensate(ctx context.Context, orderID string, cause error) {
	cleanupCtx, cancel := s.callContext(context.WithoutCancel(ctx))
	defer cancel()
	if err := s.Orders.DeleteOrder(cleanupCtx, orderID); err != nil {
		s.Logger.Error("orphaned order header left behind",
			zap.String("orderId", orderID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.Logger.Warn("order header rolled back after line failure",
		zap.String("orderId", orderID),
		zap.Error(cause),
	)
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func normalizeCustomer(c domain.Customer) (domain.Customer, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)

	switch {
	case c.FirstName == "":
		return c, domain.Invalid("firstName", "is required")
	case c.LastName == "":
		return c, domain.Invalid("lastName", "is required")
	case c.Phone == "":
		return c, domain.Invalid("phone", "is required")
	case len(digitsOnly(c.Phone)) < 6:
		return c, domain.Invalid("phone", "invalid phone number")
	case c.Email != "" && !domain.ValidEmail(c.Email):
		return c, domain.Invalid("email", "invalid address")
	}
	return c, nil
}

func submissionKey(req SubmitRequest) string {
	if key := strings.TrimSpace(req.SessionKey); key != "" {
		return "session:" + key
	}
	return "phone:" + digitsOnly(req.Customer.Phone)
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
