// Package reports computes the admin financial dashboard from orders.
package reports

import (
	"time"

	"foodtruck-order-service/internal/domain"
)

const (
	dailyBuckets   = 7
	monthlyBuckets = 6
)

type Bucket struct {
	Label   string       `json:"label"`
	Revenue domain.Money `json:"revenueCents"`
	Orders  int          `json:"orders"`
}

type Financial struct {
	Revenue       domain.Money               `json:"revenueCents"`
	OrderCount    int                        `json:"orderCount"`
	AverageBasket domain.Money               `json:"averageBasketCents"`
	ByStatus      map[domain.OrderStatus]int `json:"byStatus"`
	Daily         []Bucket                   `json:"daily"`
	Monthly       []Bucket                   `json:"monthly"`
	Collected     domain.Money               `json:"collectedCents"`
	InProgress    domain.Money               `json:"inProgressCents"`
	Cancelled     domain.Money               `json:"cancelledCents"`
	Today         domain.Money               `json:"todayCents"`
	ThisWeek      domain.Money               `json:"thisWeekCents"`
	ThisMonth     domain.Money               `json:"thisMonthCents"`
}

// Summarize buckets orders by their creation time in loc. Cancelled orders
// count in ByStatus and Cancelled only.
func Summarize(orders []domain.Order, now time.Time, loc *time.Location) Financial {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -mondayOffset(today.Weekday()))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)

	f := Financial{
		ByStatus: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		Daily:    make([]Bucket, dailyBuckets),
		Monthly:  make([]Bucket, monthlyBuckets),
	}
	for _, s := range domain.OrderStatuses {
		f.ByStatus[s] = 0
	}

	dayIndex := make(map[string]int, dailyBuckets)
	for i := 0; i < dailyBuckets; i++ {
		day := today.AddDate(0, 0, i-(dailyBuckets-1))
		key := day.Format("2006-01-02")
		f.Daily[i].Label = key
		dayIndex[key] = i
	}
	monthIndex := make(map[string]int, monthlyBuckets)
	for i := 0; i < monthlyBuckets; i++ {
		month := monthStart.AddDate(0, i-(monthlyBuckets-1), 0)
		key := month.Format("2006-01")
		f.Monthly[i].Label = key
		monthIndex[key] = i
	}

	for _, o := range orders {
		f.ByStatus[o.Status]++

		switch o.Status {
		case domain.StatusCollected:
			f.Collected += o.Total
		case domain.StatusCancelled:
			f.Cancelled += o.Total
			continue
		default:
			if o.Status.IsActive() {
				f.InProgress += o.Total
			}
		}

		f.Revenue += o.Total
		f.OrderCount++

		created := o.CreatedAt.In(loc)
		if i, ok := dayIndex[created.Format("2006-01-02")]; ok {
			f.Daily[i].Revenue += o.Total
			f.Daily[i].Orders++
		}
		if i, ok := monthIndex[created.Format("2006-01")]; ok {
			f.Monthly[i].Revenue += o.Total
			f.Monthly[i].Orders++
		}
		if !created.Before(today) {
			f.Today += o.Total
		}
		if !created.Before(weekStart) {
			f.ThisWeek += o.Total
		}
		if !created.Before(monthStart) {
			f.ThisMonth += o.Total
		}
	}

	if f.OrderCount > 0 {
		f.AverageBasket = domain.Money((int64(f.Revenue) + int64(f.OrderCount)/2) / int64(f.OrderCount))
	}
	return f
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mondayOffset(day time.Weekday) int {
	return (int(day) + 6) % 7
}
