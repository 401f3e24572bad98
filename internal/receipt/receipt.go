// Package receipt renders an order recap as text, printable HTML, or a
// paginated PDF document.
package receipt

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"
)

type Line struct {
	Name      string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type Summary struct {
	OrderNumber   string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	StopName      string
	StopAddress   string
	Weekday       string
	PickupDate    string
	PickupTime    string
	Status        string
	Lines         []Line
	Total         string
	PlacedAt      string
}

func FromOrder(order domain.Order, stop domain.Stop, currency string) Summary {
	stopName := stop.Name
	if stopName == "" {
		stopName = order.StopName
	}
	s := Summary{
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.Customer.FullName(),
		CustomerPhone: order.Customer.Phone,
		CustomerEmail: order.Customer.Email,
		StopName:      stopName,
		StopAddress:   stop.Address,
		PickupDate:    order.PickupDate,
		PickupTime:    order.PickupTime,
		Status:        string(order.Status),
		Total:         order.Total.Format(currency),
	}
	if d, err := time.Parse("2006-01-02", order.PickupDate); err == nil {
		s.Weekday = domain.WeekdayLabel(d.Weekday())
	}
	if !order.CreatedAt.IsZero() {
		s.PlacedAt = order.CreatedAt.Format("2006-01-02 15:04")
	}
	for _, line := range order.Lines {
		s.Lines = append(s.Lines, Line{
			Name:      line.ItemName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.Format(currency),
			Subtotal:  line.Subtotal().Format(currency),
		})
	}
	return s
}

// Text is the plain recap shown after submission and sent by email.
func Text(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%s\n", s.OrderNumber)
	fmt.Fprintf(&b, "Customer: %s\n", s.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", s.CustomerPhone)
	if s.CustomerEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", s.CustomerEmail)
	}
	fmt.Fprintf(&b, "Pickup: %s", s.StopName)
	if s.StopAddress != "" {
		fmt.Fprintf(&b, ", %s", s.StopAddress)
	}
	b.WriteString("\n")
	if s.Weekday != "" {
		fmt.Fprintf(&b, "When: %s %s at %s\n", s.Weekday, s.PickupDate, s.PickupTime)
	} else {
		fmt.Fprintf(&b, "When: %s at %s\n", s.PickupDate, s.PickupTime)
	}
	b.WriteString("\nItems:\n")
	for _, line := range s.Lines {
		fmt.Fprintf(&b, "  %d x %s @ %s = %s\n", line.Quantity, line.Name, line.UnitPrice, line.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", s.Total)
	return b.String()
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func Filename(s Summary, ext string) string {
	clean := strings.Trim(unsafeFilename.ReplaceAllString(s.OrderNumber, "_"), "_")
	if clean == "" {
		clean = "order"
	}
	return "order_" + clean + "." + strings.TrimPrefix(ext, ".")
}
