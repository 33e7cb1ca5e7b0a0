package weights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fastwell/backend/internal/auth"
	"github.com/fastwell/backend/internal/telemetry/metrics"
	"github.com/fastwell/backend/internal/telemetry/tracing"
	"github.com/fastwell/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=weights_mocks_test.go -package=weights_test

type weightsRepo interface {
	Add(ctx context.Context, entry WeightEntry) (*WeightEntry, error)
	List(ctx context.Context, userID string, page, size int) (_ []WeightEntry, total int, err error)
	Latest(ctx context.Context, userID string) (*WeightEntry, error)
	Delete(ctx context.Context, userID string, id int) error
}

type ListResponse struct {
	Entries []WeightEntry `json:"entries"`
	Total   int           `json:"total"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

type GoalProgressRequest struct {
	StartKilos float64 `json:"startKilos"`
	GoalKilos  float64 `json:"goalKilos"`
}

type GoalProgressResponse struct {
	CurrentKilos float64 `json:"currentKilos"`
	Progress     float64 `json:"progress"`
}

type Handler struct {
	repo    weightsRepo
	metrics *metrics.Manager
}

func NewHandler(repo weightsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.add")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var entry WeightEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Tracef("add weight entry, unmarshal json params: %s", err)
		http.Error(w, "add weight entry failed", http.StatusBadRequest)
		return
	}

	if entry.Kilos <= 0 {
		http.Error(w, "error, invalid weight", http.StatusBadRequest)
		return
	}

	entry.UserID = userID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	addedEntry, err := handler.repo.Add(ctx, entry)
	if err != nil {
		log.Errorf("failed to add weight entry for user %s: %s", userID, err)
		http.Error(w, "error, failed to add weight entry", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWeightEntries.Inc()

	writeJSON(w, addedEntry, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.list")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)

	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		http.Error(w, "error, invalid page", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil || size < 1 {
		http.Error(w, "error, invalid size", http.StatusBadRequest)
		return
	}

	entries, total, err := handler.repo.List(ctx, userID, page, size)
	if err != nil {
		log.Errorf("failed to list weight entries for user %s: %s", userID, err)
		http.Error(w, "error, failed to list weight entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []WeightEntry{}
	}

	writeJSON(w, ListResponse{Entries: entries, Total: total}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.delete")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, invalid id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "error, entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete weight entry %d for user %s: %s", id, userID, err)
		http.Error(w, "error, failed to delete weight entry", http.StatusInternalServerError)
		return
	}

	writeJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

// HandleGoalProgress reports how close the latest weigh-in is to the
// goal the client sends. The goal itself lives on the client.
func (handler *Handler) HandleGoalProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.goalProgress")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var goalReq GoalProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&goalReq); err != nil {
		log.Tracef("goal progress, unmarshal json params: %s", err)
		http.Error(w, "goal progress failed", http.StatusBadRequest)
		return
	}

	if goalReq.StartKilos <= 0 || goalReq.GoalKilos <= 0 {
		http.Error(w, "error, invalid goal params", http.StatusBadRequest)
		return
	}

	latest, err := handler.repo.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "error, no weight entries yet", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get latest weight entry for user %s: %s", userID, err)
		http.Error(w, "error, failed to get goal progress", http.StatusInternalServerError)
		return
	}

	writeJSON(w, GoalProgressResponse{
		CurrentKilos: latest.Kilos,
		Progress:     GoalProgress(goalReq.StartKilos, latest.Kilos, goalReq.GoalKilos),
	}, http.StatusOK)
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
