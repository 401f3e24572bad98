package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCollected OrderStatus = "collected"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCollected, StatusCancelled}

// ActiveStatuses are the statuses still on the kitchen board.
var ActiveStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCollected, StatusCancelled},
	StatusCollected: {},
	StatusCancelled: {},
}

func ParseOrderStatus(value string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := orderTransitions[status]
	return status, ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsActive() bool {
	return s == StatusPending || s == StatusPreparing || s == StatusReady
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	StopID      string      `json:"stopId"`
	StopName    string      `json:"stopName,omitempty"`
	Customer    Customer    `json:"customer"`
	PickupDate  string      `json:"pickupDate"`
	PickupTime  string      `json:"pickupTime"`
	Status      OrderStatus `json:"status"`
	Total       Money       `json:"totalCents"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Lines       []OrderLine `json:"lines,omitempty"`
}

type OrderLine struct {
	ID         string `json:"id"`
	OrderID    string `json:"orderId"`
	MenuItemID string `json:"menuItemId,omitempty"`
	ItemName   string `json:"itemName"`
	Quantity   int    `json:"quantity"`
	UnitPrice  Money  `json:"unitPriceCents"`
}

func (l OrderLine) Subtotal() Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// OrderNumberFromID derives the customer-facing number: the first eight
// characters of the identity, upper-cased.
func OrderNumberFromID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
