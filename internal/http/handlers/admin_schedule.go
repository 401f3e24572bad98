package handlers

import (
	"net/http"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/pkg/response"
)

type scheduleEntryPayload struct {
	// Weekday accepts 0-6 (Sunday first) or a label.
	Weekday  any    `json:"weekday"`
	OpensAt  string `json:"opensAt"`
	ClosesAt string `json:"closesAt"`
	Active   *bool  `json:"active"`
}

func parseScheduleWeekday(raw any) (time.Weekday, bool) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v > 6 || v != float64(int(v)) {
			return 0, false
		}
		return time.Weekday(int(v)), true
	case string:
		return domain.ParseWeekday(v)
	}
	return 0, false
}

func (h *Handler) AdminScheduleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Schedule.List(r.Context())
	if err != nil {
		h.writeError(w, err, "admin schedule list", "Failed to load schedule")
		return
	}
	response.Success(w, entries)
}

// AdminScheduleUpdate replaces the windows of the weekdays present in the
// body. Every entry is validated before anything is written.
func (h *Handler) AdminScheduleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload []scheduleEntryPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if len(payload) == 0 {
		validationError(w, "schedule", "At least one entry is required")
		return
	}

	entries := make([]domain.ScheduleEntry, 0, len(payload))
	seen := make(map[time.Weekday]bool, len(payload))
	for _, p := range payload {
		day, ok := parseScheduleWeekday(p.Weekday)
		if !ok {
			validationError(w, "weekday", "Unknown weekday")
			return
		}
		if seen[day] {
			validationError(w, "weekday", "Weekday listed twice: "+domain.WeekdayLabel(day))
			return
		}
		seen[day] = true
		entry := domain.ScheduleEntry{
			Weekday:  day,
			OpensAt:  strings.TrimSpace(p.OpensAt),
			ClosesAt: strings.TrimSpace(p.ClosesAt),
			Active:   true,
		}
		if p.Active != nil {
			entry.Active = *p.Active
		}
		if err := entry.Validate(); err != nil {
			h.writeError(w, err, "admin schedule update", "Invalid schedule")
			return
		}
		entries = append(entries, entry)
	}

	for i := range entries {
		if err := h.Schedule.Upsert(ctx, &entries[i]); err != nil {
			h.writeError(w, err, "admin schedule update", "Failed to save schedule")
			return
		}
	}
	response.Success(w, entries)
}
