package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/music-roulette/internal/model"
)

type fixedCounter int

func (c fixedCounter) Count(context.Context) (int, error) { return int(c), nil }

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestObserveOpLabelsByCode(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil, nil)

	m.ObserveOp("join", nil)
	m.ObserveOp("join", model.ErrNameTaken)
	m.ObserveOp("join", model.ErrNameTaken)
	m.ObserveOp("join", assert.AnError)

	body := scrape(t, m)
	assert.Contains(t, body, `roulette_room_operations_total{op="join",outcome="ok"} 1`)
	assert.Contains(t, body, `roulette_room_operations_total{op="join",outcome="NAME_TAKEN"} 2`)
	assert.Contains(t, body, `roulette_room_operations_total{op="join",outcome="error"} 1`)
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil, nil)

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/rooms/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, code := range []string{"AAAAAA", "BBBBBB"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rooms/"+code, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `roulette_http_requests_total{method="GET",route="/rooms/{code}",status="404"} 2`)
	assert.NotContains(t, body, "AAAAAA")
}

func TestHandlerExposesGauges(t *testing.T) {
	m := New(prometheus.NewRegistry(), fixedCounter(3), func() int { return 7 })

	body := scrape(t, m)
	assert.Contains(t, body, "roulette_rooms_active 3")
	assert.Contains(t, body, "roulette_subscribers_connected 7")
}
