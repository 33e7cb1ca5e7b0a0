package achievements

import (
	"encoding/json"
	"net/http"

	"github.com/fastwell/backend/internal/auth"
	"github.com/fastwell/backend/internal/telemetry/tracing"
	"github.com/fastwell/backend/pkg"

	log "github.com/sirupsen/logrus"
)

type ListResponse struct {
	Achievements []Achievement `json:"achievements"`
}

type Handler struct {
	repo achievementsRepo
}

func NewHandler(repo achievementsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

// HandleList returns the user's unlocked achievements, in definition
// order.
func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.achievements.list")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	unlocked, err := handler.repo.Unlocked(ctx, userID)
	if err != nil {
		log.Errorf("failed to get achievements for user %s: %s", userID, err)
		http.Error(w, "error, failed to get achievements", http.StatusInternalServerError)
		return
	}

	listResp := ListResponse{Achievements: []Achievement{}}
	for _, def := range Definitions {
		unlockedAt, ok := unlocked[def.ID]
		if !ok {
			continue
		}
		listResp.Achievements = append(listResp.Achievements, Achievement{
			Definition: def,
			UnlockedAt: unlockedAt,
		})
	}

	respBytes, err := json.Marshal(listResp)
	if err != nil {
		log.Errorf("marshal achievements response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}
