// Package slots turns a stop's weekday and opening window into the pickup
// dates and times a customer may choose.
package slots

import (
	"context"
	"time"

	"foodtruck-order-service/internal/config"
	"foodtruck-order-service/internal/domain"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Window struct {
	Open  domain.ClockTime
	Close domain.ClockTime
}

type WindowSource string

const (
	SourceStop     WindowSource = "stop"
	SourceSchedule WindowSource = "schedule"
	SourceDefault  WindowSource = "default"
)

// ScheduleSource returns the weekly opening hours for a weekday.
type ScheduleSource interface {
	ScheduleFor(ctx context.Context, day time.Weekday) (domain.ScheduleEntry, bool, error)
}

type Availability struct {
	StopID       string       `json:"stopId"`
	Weekday      string       `json:"weekday"`
	Dates        []string     `json:"dates"`
	Times        []string     `json:"times"`
	OpensAt      string       `json:"opensAt"`
	ClosesAt     string       `json:"closesAt"`
	WindowSource WindowSource `json:"windowSource"`
}

type Resolver struct {
	Step        time.Duration
	DateCount   int
	HorizonDays int
	Default     Window
	Location    *time.Location
	Now         func() time.Time
	Schedule    ScheduleSource
	Logger      *zap.Logger
}

func New(cfg config.Config, schedule ScheduleSource, logger *zap.Logger) *Resolver {
	def := Window{Open: 18 * 60, Close: 22 * 60}
	if open, ok := domain.ParseClock(cfg.SlotDefaultOpen); ok {
		if closes, ok := domain.ParseClock(cfg.SlotDefaultClose); ok && closes > open {
			def = Window{Open: open, Close: closes}
		}
	}
	return &Resolver{
		Step:        cfg.SlotStep,
		DateCount:   cfg.SlotDateCount,
		HorizonDays: cfg.SlotHorizonDays,
		Default:     def,
		Location:    cfg.Location(),
		Now:         time.Now,
		Schedule:    schedule,
		Logger:      logger,
	}
}

// Dates lists upcoming dates falling on the stop's weekday, today included.
func (r *Resolver) Dates(stop domain.Stop) ([]string, error) {
	day, ok := stop.Day()
	if !ok {
		return nil, domain.Invalid("stopId", "stop weekday is not recognised")
	}

	today := r.today()
	count := r.DateCount
	if count < 8 {
		count = 8
	}
	horizon := r.HorizonDays
	if horizon <= 0 {
		horizon = 60
	}

	dates := make([]string, 0, count)
	for i := 0; i < horizon && len(dates) < count; i++ {
		d := today.AddDate(0, 0, i)
		if d.Weekday() == day {
			dates = append(dates, d.Format(dateLayout))
		}
	}
	return dates, nil
}

// Window resolves the serving window: the stop's own hours, then the weekly
// schedule, then the configured default.
func (r *Resolver) Window(ctx context.Context, stop domain.Stop) (Window, WindowSource) {
	if open, ok := domain.ParseClock(stop.OpensAt); ok {
		if closes, ok := domain.ParseClock(stop.ClosesAt); ok && closes > open {
			return Window{Open: open, Close: closes}, SourceStop
		}
	}

	day, dayOK := stop.Day()
	if dayOK && r.Schedule != nil {
		entry, found, err := r.Schedule.ScheduleFor(ctx, day)
		if err != nil {
			r.logger().Warn("schedule lookup failed", zap.String("stopId", stop.ID), zap.Error(err))
		} else if found && entry.Active {
			open, okOpen := domain.ParseClock(entry.OpensAt)
			closes, okClose := domain.ParseClock(entry.ClosesAt)
			if okOpen && okClose && closes > open {
				return Window{Open: open, Close: closes}, SourceSchedule
			}
		}
	}

	r.logger().Warn("slot window fallback",
		zap.String("stopId", stop.ID),
		zap.String("weekday", stop.Weekday),
		zap.String("opensAt", r.Default.Open.String()),
		zap.String("closesAt", r.Default.Close.String()),
	)
	return r.Default, SourceDefault
}

// Times lists options from open to close inclusive. The last option may sit
// closer than one step to close.
func (r *Resolver) Times(w Window) []string {
	step := int(r.Step / time.Minute)
	if step <= 0 {
		step = 15
	}
	out := make([]string, 0, (int(w.Close-w.Open)/step)+1)
	for t := w.Open; t <= w.Close; t += domain.ClockTime(step) {
		out = append(out, t.String())
	}
	return out
}

func (r *Resolver) Slots(ctx context.Context, stop domain.Stop) (Availability, error) {
	dates, err := r.Dates(stop)
	if err != nil {
		return Availability{}, err
	}
	window, source := r.Window(ctx, stop)
	day, _ := stop.Day()
	return Availability{
		StopID:       stop.ID,
		Weekday:      domain.WeekdayLabel(day),
		Dates:        dates,
		Times:        r.Times(window),
		OpensAt:      window.Open.String(),
		ClosesAt:     window.Close.String(),
		WindowSource: source,
	}, nil
}

// Validate accepts a pickup only when the date is one of the offered dates
// and the time is one of the generated options.
func (r *Resolver) Validate(ctx context.Context, stop domain.Stop, date, clock string) error {
	day, ok := stop.Day()
	if !ok {
		return domain.Invalid("stopId", "stop weekday is not recognised")
	}
	picked, err := time.ParseInLocation(dateLayout, date, r.location())
	if err != nil {
		return domain.Invalid("pickupDate", "expected YYYY-MM-DD")
	}
	if picked.Weekday() != day {
		return domain.Invalid("pickupDate", "stop is not served on that day")
	}
	today := r.today()
	if picked.Before(today) {
		return domain.Invalid("pickupDate", "date is in the past")
	}
	offered, err := r.Dates(stop)
	if err != nil {
		return err
	}
	if !contains(offered, date) {
		return domain.Invalid("pickupDate", "date is beyond the booking horizon")
	}

	window, _ := r.Window(ctx, stop)
	if !contains(r.Times(window), clock) {
		return domain.Invalid("pickupTime", "not an available pickup time")
	}

	if picked.Equal(today) {
		requested, _ := domain.ParseClock(clock)
		now := r.now()
		current := domain.ClockTime(now.Hour()*60 + now.Minute())
		if requested < current {
			return domain.Invalid("pickupTime", "time has already passed")
		}
	}
	return nil
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

func (r *Resolver) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().In(r.location())
}

func (r *Resolver) today() time.Time {
	now := r.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.location())
}

func (r *Resolver) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
