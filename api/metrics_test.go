package api

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hijackRecorder stands in for a real connection-backed response writer
type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestPrometheusMiddleware_InstrumentKeepsHijacker(t *testing.T) {
	m := NewPrometheusMiddleware()

	var sawHijacker bool
	handler := m.Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		sawHijacker = ok
		if ok {
			_, _, err := hj.Hijack()
			assert.NoError(t, err)
		}
	}))

	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest("GET", "/api/v1/users/watch", nil)

	handler.ServeHTTP(rec, req)

	// Websocket upgrades need the hijacker to survive the instrumented writer
	assert.True(t, sawHijacker)
	assert.True(t, rec.hijacked)
}

func TestStatusResponseWriter_HijackWithoutSupport(t *testing.T) {
	sw := &statusResponseWriter{ResponseWriter: httptest.NewRecorder()}

	_, _, err := sw.Hijack()
	assert.Error(t, err)
}
