package api

import "net/http"

// ─── GET / ────────────────────────────────────────────────────────────────────

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"message": "Welcome to the StrideShop receipts API",
	})
}

// ─── GET /health ──────────────────────────────────────────────────────────────

type healthResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Notifications string `json:"notifications"`
}

// handleHealth always answers 200 while the process is up. Notification
// delivery being down is reported, not treated as unhealthy: receipts are
// still stored.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, healthResponse{
		Status:        "OK",
		Message:       "Payment Service is healthy",
		Notifications: s.status.Notifications(),
	})
}
