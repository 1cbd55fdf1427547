package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "winelabel/internal/log"
)

type healthResponse struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Time    time.Time `json:"time"`
}

// Health answers infrastructure health checks for the admin web app. It does not contact the
// backend.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Service: "winelabel-admin",
		Time:    time.Now().UTC(),
	})
	if err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
	}
}
