package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/geo"
	"foodtruck-order-service/pkg/response"
)

type location struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type weekdayOption struct {
	StopID   string `json:"stopId"`
	Weekday  string `json:"weekday"`
	OpensAt  string `json:"opensAt,omitempty"`
	ClosesAt string `json:"closesAt,omitempty"`
}

func (h *Handler) PublicStops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.Stops.List(r.Context(), true)
	if err != nil {
		h.writeError(w, err, "public stops", "Failed to load stops")
		return
	}
	response.Success(w, stops)
}

func (h *Handler) PublicStopsMap(w http.ResponseWriter, r *http.Request) {
	stops, err := h.Stops.List(r.Context(), true)
	if err != nil {
		h.writeError(w, err, "public stops map", "Failed to load stops")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	response.JSON(w, http.StatusOK, geo.FeatureCollection(stops))
}

func (h *Handler) PublicStopsNearest(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("lat")), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("lng")), 64)
	if latErr != nil || lngErr != nil || !geo.ValidCoordinate(lat, lng) {
		validationError(w, "lat", "lat and lng must be valid coordinates")
		return
	}

	stops, err := h.Stops.List(r.Context(), true)
	if err != nil {
		h.writeError(w, err, "nearest stop", "Failed to load stops")
		return
	}
	nearest, ok := geo.Nearest(stops, lat, lng)
	if !ok {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "No stop with coordinates")
		return
	}
	response.Success(w, nearest)
}

// distinctLocations lists each stop name once, keeping the first address
// seen, sorted by name.
func distinctLocations(stops []domain.Stop) []location {
	seen := make(map[string]bool, len(stops))
	out := make([]location, 0, len(stops))
	for _, s := range stops {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, location{Name: s.Name, Address: s.Address})
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

// weekdayOptions lists the stops at one location in week order.
func weekdayOptions(stops []domain.Stop, name string) []weekdayOption {
	name = strings.ToLower(strings.TrimSpace(name))
	type ranked struct {
		day int
		opt weekdayOption
	}
	matches := make([]ranked, 0)
	for _, s := range stops {
		if strings.ToLower(strings.TrimSpace(s.Name)) != name {
			continue
		}
		day, ok := s.Day()
		rank := 7
		if ok {
			rank = (int(day) + 6) % 7
		}
		matches = append(matches, ranked{day: rank, opt: weekdayOption{
			StopID:   s.ID,
			Weekday:  s.Weekday,
			OpensAt:  s.OpensAt,
			ClosesAt: s.ClosesAt,
		}})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].day < matches[j].day })

	out := make([]weekdayOption, len(matches))
	for i, m := range matches {
		out[i] = m.opt
	}
	return out
}

func (h *Handler) PublicLocations(w http.ResponseWriter, r *http.Request) {
	stops, err := h.Stops.List(r.Context(), true)
	if err != nil {
		h.writeError(w, err, "public locations", "Failed to load locations")
		return
	}
	response.Success(w, distinctLocations(stops))
}

func (h *Handler) PublicLocationDays(w http.ResponseWriter, r *http.Request) {
	name := readPathString(r, "name")
	if name == "" {
		validationError(w, "name", "Location name is required")
		return
	}
	stops, err := h.Stops.List(r.Context(), true)
	if err != nil {
		h.writeError(w, err, "public location days", "Failed to load locations")
		return
	}
	options := weekdayOptions(stops, name)
	if len(options) == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Unknown location")
		return
	}
	response.Success(w, options)
}

func (h *Handler) PublicStopSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stop, err := h.Stops.GetStop(ctx, readPathString(r, "id"))
	if err != nil {
		h.writeError(w, err, "stop slots", "Failed to load stop")
		return
	}
	if !stop.Active {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Stop is not active")
		return
	}
	availability, err := h.Slots.Slots(ctx, stop)
	if err != nil {
		h.writeError(w, err, "stop slots", "Failed to compute pickup slots")
		return
	}
	response.Success(w, availability)
}
