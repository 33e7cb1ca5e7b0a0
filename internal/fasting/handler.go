package fasting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fastwell/backend/internal/auth"
	"github.com/fastwell/backend/internal/telemetry/tracing"
	"github.com/fastwell/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=fasting_test

type fastingManager interface {
	StartFast(ctx context.Context, userID, planType string, durationSeconds int) (*Session, error)
	PauseFast(ctx context.Context, userID string) (bool, error)
	StopFast(ctx context.Context, userID string, params StopParams) (*Session, error)
	CurrentSession(ctx context.Context, userID string) (*SessionSnapshot, error)
	HistoryPage(ctx context.Context, userID string, page, size int) ([]Session, int, error)
	Stats(ctx context.Context, userID string) (*Stats, error)
}

type StartFastRequest struct {
	PlanType        string `json:"planType"`
	DurationSeconds int    `json:"durationSeconds"`
}

type PauseFastResponse struct {
	Paused bool `json:"paused"`
}

type HistoryResponse struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

type Handler struct {
	manager fastingManager
}

func NewHandler(manager fastingManager) *Handler {
	return &Handler{
		manager: manager,
	}
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.start")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var startReq StartFastRequest
	if err := json.NewDecoder(r.Body).Decode(&startReq); err != nil {
		log.Tracef("start fast, unmarshal json params: %s", err)
		http.Error(w, "start fast failed", http.StatusBadRequest)
		return
	}

	if startReq.PlanType == "" {
		http.Error(w, "error, plan type empty", http.StatusBadRequest)
		return
	}

	session, err := handler.manager.StartFast(ctx, userID, startReq.PlanType, startReq.DurationSeconds)
	if err != nil {
		if errors.Is(err, ErrInvalidDuration) {
			http.Error(w, "error, invalid duration", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to start fast for user %s: %s", userID, err)
		http.Error(w, "error, failed to start fast", http.StatusInternalServerError)
		return
	}

	writeJSON(w, session, http.StatusCreated)
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.pause")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	paused, err := handler.manager.PauseFast(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			http.Error(w, "error, no active fast", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to pause fast for user %s: %s", userID, err)
		http.Error(w, "error, failed to pause fast", http.StatusInternalServerError)
		return
	}

	writeJSON(w, PauseFastResponse{Paused: paused}, http.StatusOK)
}

func (handler *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.stop")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	// mood and notes are optional, an empty body is fine
	var stopParams StopParams
	if err := json.NewDecoder(r.Body).Decode(&stopParams); err != nil {
		log.Tracef("stop fast, unmarshal json params: %s", err)
	}

	session, err := handler.manager.StopFast(ctx, userID, stopParams)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			http.Error(w, "error, no active fast", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to stop fast for user %s: %s", userID, err)
		http.Error(w, "error, failed to stop fast", http.StatusInternalServerError)
		return
	}

	writeJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.current")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	snapshot, err := handler.manager.CurrentSession(ctx, userID)
	if err != nil {
		log.Errorf("failed to get current session for user %s: %s", userID, err)
		http.Error(w, "error, failed to get current session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, snapshot, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.history")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)

	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		http.Error(w, "error, invalid page", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		http.Error(w, "error, invalid size", http.StatusBadRequest)
		return
	}

	sessions, total, err := handler.manager.HistoryPage(ctx, userID, page, size)
	if err != nil {
		log.Errorf("failed to get history for user %s: %s", userID, err)
		http.Error(w, "error, failed to get history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, HistoryResponse{Sessions: sessions, Total: total}, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.stats")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	stats, err := handler.manager.Stats(ctx, userID)
	if err != nil {
		log.Errorf("failed to get stats for user %s: %s", userID, err)
		http.Error(w, "error, failed to get stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, payload any, statusCode int) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payloadBytes, statusCode)
}
