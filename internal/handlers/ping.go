package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PingResponse is the response for the health endpoint
type PingResponse struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
}

// UserCounter reports how many users hold a balance
type UserCounter interface {
	Len() int
}

// NewRouter registers the health and metrics endpoints
func NewRouter(users UserCounter, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/", IndexHandler)
	r.Get("/healthz", PingHandler(users))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// IndexHandler answers the plain liveness probe on /
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("YurCoin bot is running"))
}

// PingHandler handles the /healthz endpoint
func PingHandler(users UserCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := PingResponse{
			Status: "ok",
		}
		if users != nil {
			response.Users = users.Len()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
