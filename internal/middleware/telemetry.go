package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const latencySamples = 200

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(data)
	r.bytes += n
	return n, err
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// ring keeps the last latencySamples durations of one route.
type ring struct {
	samples []int64
	next    int
}

func (r *ring) add(ms int64) {
	if len(r.samples) < latencySamples {
		r.samples = append(r.samples, ms)
		return
	}
	r.samples[r.next] = ms
	r.next = (r.next + 1) % latencySamples
}

type latencyTracker struct {
	mu     sync.Mutex
	routes map[string]*ring
}

func newLatencyTracker() *latencyTracker {
	return &latencyTracker{routes: make(map[string]*ring)}
}

// record adds a sample and returns the route's p50 and p95.
func (t *latencyTracker) record(route string, ms int64) (int64, int64) {
	t.mu.Lock()
	r, ok := t.routes[route]
	if !ok {
		r = &ring{}
		t.routes[route] = r
	}
	r.add(ms)
	sorted := append([]int64(nil), r.samples...)
	t.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return percentile(sorted, 0.5), percentile(sorted, 0.95)
}

func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p*float64(len(sorted)+1)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Telemetry writes one access log entry per request. Server errors and
// requests slower than slowAfter are logged at warn level.
func Telemetry(logger *zap.Logger, slowAfter time.Duration) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := newLatencyTracker()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			p50, p95 := tracker.record(r.Method+" "+route, duration.Milliseconds())

			level := zapcore.InfoLevel
			slow := slowAfter > 0 && duration > slowAfter
			if status >= 500 || slow {
				level = zapcore.WarnLevel
			}
			logger.Check(level, "http_request").Write(
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.String("requestId", readRequestID(r)),
				zap.Int("status", status),
				zap.Int("bytes", rec.bytes),
				zap.Int64("duration_ms", duration.Milliseconds()),
				zap.Int64("p50_ms", p50),
				zap.Int64("p95_ms", p95),
				zap.Bool("slow", slow),
			)
		})
	}
}
