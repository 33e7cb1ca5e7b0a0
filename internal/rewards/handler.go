package rewards

import (
	"encoding/json"
	"net/http"

	"github.com/fastwell/backend/internal/auth"
	"github.com/fastwell/backend/internal/telemetry/tracing"
	"github.com/fastwell/backend/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.rewards.get")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	userRewards, err := handler.service.UserRewards(ctx, userID)
	if err != nil {
		log.Errorf("failed to get rewards for user %s: %s", userID, err)
		http.Error(w, "error, failed to get rewards", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(userRewards)
	if err != nil {
		log.Errorf("marshal rewards response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}
