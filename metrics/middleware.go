package metrics

import (
	"net/http"
	"time"
)

// Instrument counts the requests next answers, by status code, and records
// how long the last one took.
func Instrument(collector *Collector, endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			// Nothing was written, net/http answers 200.
			status = http.StatusOK
		}
		collector.UpdateAPIMetrics(endpoint, status, time.Since(start).Seconds())
	})
}

// statusRecorder keeps the first status code sent.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
