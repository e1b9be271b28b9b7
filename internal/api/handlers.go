// Package api exposes HTTP handlers for the posture service.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/hmzi67/cervical-posture-detection/internal/auth"
	"github.com/hmzi67/cervical-posture-detection/internal/domain"
	"github.com/hmzi67/cervical-posture-detection/internal/exercise"
	"github.com/hmzi67/cervical-posture-detection/internal/pose"
	"github.com/hmzi67/cervical-posture-detection/internal/report"
)

// Handler handles HTTP interactions.
type Handler struct {
	service       *domain.Service
	validate      *validator.Validate
	log           logrus.FieldLogger
	minVisibility float64
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Handler) { h.log = l }
}

// WithMinVisibility sets the landmark visibility floor applied to incoming keypoints.
func WithMinVisibility(v float64) Option {
	return func(h *Handler) { h.minVisibility = v }
}

// NewHandler constructs Handler.
func NewHandler(service *domain.Service, opts ...Option) *Handler {
	h := &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes sets up routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET /v1/exercises", h.listExercises)
	mux.HandleFunc("POST /v1/classify", h.classify)
	mux.HandleFunc("POST /v1/sessions", h.startSession)
	mux.HandleFunc("GET /v1/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.endSession)
	mux.HandleFunc("POST /v1/sessions/{id}/restart", h.restartSession)
	mux.HandleFunc("POST /v1/sessions/{id}/exercise", h.startExercise)
	mux.HandleFunc("POST /v1/sessions/{id}/frames", h.processFrame)
	mux.HandleFunc("POST /v1/sessions/{id}/measurements", h.logMeasurement)
	mux.HandleFunc("GET /v1/sessions/{id}/stats", h.sessionStats)
	mux.HandleFunc("GET /v1/sessions/{id}/progress", h.sessionProgress)
}

// healthz returns an OK response for readiness probes.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listExercises(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, false); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": exercise.Catalogue()})
}

func (h *Handler) classify(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, false); !ok {
		return
	}

	var req ClassifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	kind, ok := exercise.ParseKind(req.Exercise)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_exercise", fmt.Sprintf("unsupported exercise %q", req.Exercise))
		return
	}

	set := pose.FromKeypoints(req.Landmarks, h.minVisibility)
	writeJSON(w, http.StatusOK, map[string]any{"result": h.service.Classify(kind, set)})
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, true)
	if !ok {
		return
	}

	var req StartSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	var kind exercise.Kind
	if req.Exercise != "" {
		if kind, ok = exercise.ParseKind(req.Exercise); !ok {
			writeError(w, http.StatusBadRequest, "unknown_exercise", fmt.Sprintf("unsupported exercise %q", req.Exercise))
			return
		}
	}

	sess, err := h.service.StartSession(r.Context(), domain.StartSessionInput{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Exercise: kind,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.log.WithFields(logrus.Fields{"session_id": sess.ID, "tenant_id": sess.TenantID, "exercise": kind}).Info("session started")
	writeJSON(w, http.StatusCreated, map[string]any{"session": sess.Summary()})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess.Summary()})
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, true)
	if !ok {
		return
	}
	if err := h.service.EndSession(r.Context(), sess.ID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restartSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, true)
	if !ok {
		return
	}
	if _, err := h.service.RestartSession(r.Context(), sess.ID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess.Summary()})
}

func (h *Handler) startExercise(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, true)
	if !ok {
		return
	}

	var req StartExerciseRequest
	if !h.decode(w, r, &req) {
		return
	}
	kind, ok := exercise.ParseKind(req.Exercise)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_exercise", fmt.Sprintf("unsupported exercise %q", req.Exercise))
		return
	}
	if _, err := h.service.StartExercise(r.Context(), sess.ID, kind); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess.Summary()})
}

func (h *Handler) processFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, true)
	if !ok {
		return
	}

	var req FrameRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.service.ProcessFrame(r.Context(), sess.ID, pose.FromKeypoints(req.Landmarks, h.minVisibility))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"frame_id": req.FrameID, "result": res})
}

func (h *Handler) logMeasurement(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, true)
	if !ok {
		return
	}

	var req MeasurementRequest
	if !h.decode(w, r, &req) {
		return
	}
	status, ok := exercise.ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", fmt.Sprintf("unknown status %q", req.Status))
		return
	}
	name := req.Exercise
	if kind, known := exercise.ParseKind(req.Exercise); known {
		name = kind.Name()
	}

	rec, err := h.service.LogMeasurement(r.Context(), sess.ID, name, *req.Measurement, status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"record": rec})
}

func (h *Handler) sessionStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, false)
	if !ok {
		return
	}
	stats, err := h.service.SessionStats(r.Context(), sess.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (h *Handler) sessionProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ownedSession(w, r, false)
	if !ok {
		return
	}
	progress, ok, err := h.service.SessionProgress(r.Context(), sess.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.URL.Query().Get("format") != "html" {
		writeJSON(w, http.StatusOK, map[string]any{"progress": progress})
		return
	}

	var buf bytes.Buffer
	if err := report.RenderProgress(&buf, "Session "+sess.ID, progress); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// requireScope checks the caller's token. Reads accept either session scope.
func requireScope(w http.ResponseWriter, r *http.Request, write bool) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if write && !claims.HasScope(auth.ScopeSessionsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope sessions:write required")
		return nil, false
	}
	if !write && !claims.HasScope(auth.ScopeSessionsRead) && !claims.HasScope(auth.ScopeSessionsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope sessions:read required")
		return nil, false
	}
	return claims, true
}

// ownedSession resolves {id} and hides sessions the caller does not own.
func (h *Handler) ownedSession(w http.ResponseWriter, r *http.Request, write bool) (*domain.Session, bool) {
	claims, ok := requireScope(w, r, write)
	if !ok {
		return nil, false
	}
	sess, err := h.service.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return nil, false
	}
	if !claims.Owns(sess.TenantID, sess.UserID) {
		writeError(w, http.StatusNotFound, "not_found", domain.ErrSessionNotFound.Error())
		return nil, false
	}
	return sess, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.log.WithFields(logrus.Fields{"path": r.URL.Path, "error": err.Error()}).Warn("validation failed")
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnknownExercise):
		writeError(w, http.StatusBadRequest, "unknown_exercise", err.Error())
	case errors.Is(err, domain.ErrNoActiveExercise):
		writeError(w, http.StatusConflict, "no_active_exercise", err.Error())
	default:
		h.log.WithFields(logrus.Fields{"path": r.URL.Path, "error": err.Error()}).Error("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"type": code, "detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
