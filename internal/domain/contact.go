package domain

import (
	"net/mail"
	"strings"
	"time"
)

type ContactStatus string

const (
	ContactNew        ContactStatus = "new"
	ContactInProgress ContactStatus = "in_progress"
	ContactHandled    ContactStatus = "handled"
	ContactCancelled  ContactStatus = "cancelled"
)

var contactTransitions = map[ContactStatus][]ContactStatus{
	ContactNew:        {ContactInProgress, ContactHandled, ContactCancelled},
	ContactInProgress: {ContactHandled, ContactCancelled},
	ContactHandled:    {},
	ContactCancelled:  {},
}

func ParseContactStatus(value string) (ContactStatus, bool) {
	status := ContactStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := contactTransitions[status]
	return status, ok
}

func (s ContactStatus) CanTransitionTo(next ContactStatus) bool {
	for _, allowed := range contactTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var EventTypes = []string{
	"Anniversaire",
	"Mariage",
	"Événement d'entreprise",
	"Festival",
	"Marché",
	"Événement sportif",
	"Autre",
}

// ContactRequest is an event or catering inquiry left on the public site.
type ContactRequest struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	EventType string        `json:"eventType"`
	EventDate string        `json:"eventDate,omitempty"`
	Headcount *int          `json:"headcount,omitempty"`
	Venue     string        `json:"venue,omitempty"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (c ContactRequest) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", "is required")
	}
	if strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Phone) == "" {
		return Invalid("email", "email or phone is required")
	}
	if c.Email != "" && !ValidEmail(c.Email) {
		return Invalid("email", "invalid address")
	}
	if strings.TrimSpace(c.EventType) == "" {
		return Invalid("eventType", "is required")
	}
	if c.EventDate != "" {
		if _, err := time.Parse("2006-01-02", c.EventDate); err != nil {
			return Invalid("eventDate", "expected YYYY-MM-DD")
		}
	}
	if c.Headcount != nil && *c.Headcount < 1 {
		return Invalid("headcount", "must be at least 1")
	}
	return nil
}

func ValidEmail(value string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	return err == nil && addr.Name == "" && strings.Contains(addr.Address, ".")
}
