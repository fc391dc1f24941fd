package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	jmerrors "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	goVerify "github.com/MrEthical07/goVerify"
)

type handlers struct {
	pipeline Pipeline
	log      zerolog.Logger
}

type verifyRequest struct {
	AccountID string `json:"account_id"`
	Password  string `json:"password"`
	OTP       string `json:"otp"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

type failureResponse struct {
	AccountID   string `json:"account_id"`
	FailedCount int    `json:"failed_count"`
	Locked      bool   `json:"locked"`
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, jmerrors.Wrap(err, jmerrors.CodeInvalidInput, "malformed request body"))
		return
	}

	valid, err := h.pipeline.Verify(r.Context(), req.AccountID, req.Password, req.OTP)
	if err != nil {
		h.writePipelineError(w, r, req.AccountID, err)
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, jmerrors.New(jmerrors.CodeUnauthorized, "credentials rejected"))
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Valid: true})
}

func (h *handlers) failures(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	count, locked, err := h.pipeline.FailureState(r.Context(), id)
	if err != nil {
		h.writePipelineError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, failureResponse{AccountID: id, FailedCount: count, Locked: locked})
}

func (h *handlers) unlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.pipeline.Unlock(r.Context(), id); err != nil {
		h.writePipelineError(w, r, id, err)
		return
	}
	h.log.Info().
		Str("request_id", chimid.GetReqID(r.Context())).
		Str("account_id", id).
		Msg("account unlocked by operator")
	writeJSON(w, http.StatusOK, failureResponse{AccountID: id})
}

// writePipelineError maps pipeline errors onto HTTP statuses: locked is 423,
// an expired request deadline is 504 even when a collaborator reported it,
// any other collaborator outage is 503.
func (h *handlers) writePipelineError(w http.ResponseWriter, r *http.Request, accountID string, err error) {
	switch {
	case errors.Is(err, goVerify.ErrAccountLocked):
		perr := jmerrors.WithContext(
			jmerrors.Wrap(err, jmerrors.CodeForbidden, "account locked"),
			"reason", "account_locked",
		)
		writeError(w, http.StatusLocked, perr)
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warn().
			Err(err).
			Str("request_id", chimid.GetReqID(r.Context())).
			Str("account_id", accountID).
			Msg("verification deadline exceeded")
		writeError(w, http.StatusGatewayTimeout, jmerrors.Wrap(err, jmerrors.CodeTimeout, "verification timed out"))
	case errors.Is(err, goVerify.ErrCollaboratorUnavailable):
		h.log.Error().
			Err(err).
			Str("request_id", chimid.GetReqID(r.Context())).
			Str("account_id", accountID).
			Msg("verification collaborator unavailable")
		writeError(w, http.StatusServiceUnavailable, jmerrors.Wrap(err, jmerrors.CodeUnavailable, "verification temporarily unavailable"))
	default:
		h.log.Error().
			Err(err).
			Str("request_id", chimid.GetReqID(r.Context())).
			Msg("unexpected verification error")
		writeError(w, http.StatusInternalServerError, jmerrors.Wrap(err, jmerrors.CodeInternal, "internal error"))
	}
}

func unauthorized(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, jmerrors.New(jmerrors.CodeUnauthorized, "operator token required"))
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = "down: " + err.Error()
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		writeJSON(w, status, resp)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, jmerrors.ToJSON(err))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
