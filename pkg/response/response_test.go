package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnvelopes(t *testing.T) {
	cases := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		want   map[string]any
	}{
		{"created", func(w http.ResponseWriter) { Created(w, "x") }, http.StatusCreated,
			map[string]any{"success": true, "data": "x"}},
		{"validation", func(w http.ResponseWriter) { Validation(w, "pickupTime", "not an available pickup time") }, http.StatusBadRequest,
			map[string]any{"success": false, "error": "VALIDATION_ERROR", "field": "pickupTime", "message": "not an available pickup time"}},
		{"extras cannot override the envelope", func(w http.ResponseWriter) {
			ErrorWith(w, http.StatusConflict, "PERMISSION_ANSWERED", "already answered", map[string]any{"state": "granted", "success": true})
		}, http.StatusConflict,
			map[string]any{"success": false, "error": "PERMISSION_ANSWERED", "message": "already answered", "state": "granted"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("unexpected content type %q", ct)
			}
			var got map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Fatalf("expected %s=%v, got %v", k, v, got[k])
				}
			}
		})
	}
}
