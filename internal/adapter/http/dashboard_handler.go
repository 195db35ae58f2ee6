package http

import (
	"net/http"

	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/logger"
	"github.com/developerKhusanjon/ChocoSlot/internal/interfaces"
)

// DashboardHandler отдает данные экрана дашборда: дневную статистику.
type DashboardHandler struct {
	store  interfaces.Store
	logger logger.Logger
}

func NewDashboardHandler(store interfaces.Store, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		store:  store,
		logger: logger,
	}
}

func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}
	respondJSON(w, http.StatusOK, h.store.Stats())
}
