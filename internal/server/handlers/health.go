package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/information-sharing-networks/license-server/internal/crypto"
)

// HandleHealth godoc
//
//	@Summary		Health (liveness) Check
//	@Description	Check if the HTTP service is alive and responding.
//	@Tags			Common
//	@Produce		plain
//
//	@Success		200	{string}	string	"OK"
//
//	@Router			/health/live [get]
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ReadinessResponse reports whether the server can sign licenses
type ReadinessResponse struct {
	Status    string `json:"status" example:"ready"`
	Reason    string `json:"reason,omitempty" example:"signing key not loaded"`
	Algorithm string `json:"algorithm,omitempty" example:"RS256"`
	KeyID     string `json:"kid,omitempty" example:"kYx1s0Qm3sTq9G0YbqkJ5w2x9T4o3vN1c8q8m8mH1dM"`
}

// HandleReadiness godoc
//
//	@Summary		Readiness Check
//	@Description	Checks if the service is ready to accept traffic (the license signing key is loaded)
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	ReadinessResponse	"status ready"
//	@Failure		503	{object}	ReadinessResponse	"status not ready"
//	@Router			/health/ready [get]
func HandleReadiness(signer *crypto.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if signer == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(ReadinessResponse{Status: "not ready", Reason: "signing key not loaded"})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ReadinessResponse{
			Status:    "ready",
			Algorithm: string(signer.Algorithm()),
			KeyID:     signer.KeyID(),
		})
	}
}
