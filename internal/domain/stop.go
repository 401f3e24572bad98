package domain

import "time"

// Stop is a recurring weekly location where the truck serves orders.
type Stop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Weekday   string    `json:"weekday"`
	OpensAt   string    `json:"opensAt,omitempty"`
	ClosesAt  string    `json:"closesAt,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s Stop) Day() (time.Weekday, bool) {
	return ParseWeekday(s.Weekday)
}

func (s Stop) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

func (s Stop) Validate() error {
	if s.Name == "" {
		return Invalid("name", "is required")
	}
	if _, ok := s.Day(); !ok {
		return Invalid("weekday", "unknown weekday label")
	}
	if err := validateWindow(s.OpensAt, s.ClosesAt, true); err != nil {
		return err
	}
	if (s.Latitude == nil) != (s.Longitude == nil) {
		return Invalid("latitude", "latitude and longitude go together")
	}
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return Invalid("latitude", "out of range")
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return Invalid("longitude", "out of range")
	}
	return nil
}

// ScheduleEntry is the weekly opening window used when a stop has none.
type ScheduleEntry struct {
	ID        string       `json:"id"`
	Weekday   time.Weekday `json:"weekday"`
	OpensAt   string       `json:"opensAt"`
	ClosesAt  string       `json:"closesAt"`
	Active    bool         `json:"active"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (e ScheduleEntry) Validate() error {
	if e.Weekday < time.Sunday || e.Weekday > time.Saturday {
		return Invalid("weekday", "must be between 0 and 6")
	}
	return validateWindow(e.OpensAt, e.ClosesAt, false)
}

func validateWindow(opensAt, closesAt string, optional bool) error {
	if optional && opensAt == "" && closesAt == "" {
		return nil
	}
	open, ok := ParseClock(opensAt)
	if !ok {
		return Invalid("opensAt", "expected HH:MM")
	}
	closes, ok := ParseClock(closesAt)
	if !ok {
		return Invalid("closesAt", "expected HH:MM")
	}
	if closes <= open {
		return Invalid("closesAt", "must be after opensAt")
	}
	return nil
}
