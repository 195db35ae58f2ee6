package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/logger"
	"github.com/developerKhusanjon/ChocoSlot/internal/domain"
	"github.com/developerKhusanjon/ChocoSlot/internal/interfaces"
)

type CakeHandler struct {
	store  interfaces.Store
	logger logger.Logger
}

func NewCakeHandler(store interfaces.Store, logger logger.Logger) *CakeHandler {
	return &CakeHandler{
		store:  store,
		logger: logger,
	}
}

type CakeRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Image       string   `json:"image"`
	Available   *bool    `json:"available"`
	Category    string   `json:"category"`
	Status      string   `json:"status,omitempty"`
}

type CakePatchRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Available   *bool    `json:"available"`
	Category    *string  `json:"category"`
	Status      *string  `json:"status"`
}

func (h *CakeHandler) HandleCakes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCakes(w, r)
	case http.MethodPost:
		h.createCake(w, r)
	default:
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
	}
}

// listCakes отдает меню; ?q= фильтрует по названию, описанию и
// категории без учета регистра (поиск экрана меню).
func (h *CakeHandler) listCakes(w http.ResponseWriter, r *http.Request) {
	cakes := h.store.Cakes()

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		q = strings.ToLower(q)
		filtered := make([]domain.Cake, 0, len(cakes))
		for _, c := range cakes {
			if strings.Contains(strings.ToLower(c.Name), q) ||
				strings.Contains(strings.ToLower(c.Description), q) ||
				strings.Contains(strings.ToLower(c.Category), q) {
				filtered = append(filtered, c)
			}
		}
		cakes = filtered
	}

	respondJSON(w, http.StatusOK, cakes)
}

func (h *CakeHandler) createCake(w http.ResponseWriter, r *http.Request) {
	var req CakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := validateCakeRequest(req); len(validationErrors) > 0 {
		h.logger.Error("validation_failed", "Cake validation failed", "", map[string]interface{}{
			"errors": validationErrors,
		}, fmt.Errorf("validation failed"))
		respondError(w, "Validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	cake := h.store.AddCake(interfaces.AddCakeCommand{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		Available:   available,
		Category:    req.Category,
		Status:      domain.CakeStatus(req.Status),
	})

	respondJSON(w, http.StatusCreated, cake)
}

func (h *CakeHandler) HandleCakeByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/cakes/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, "Invalid path", http.StatusBadRequest, nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getCake(w, id)
	case http.MethodPatch:
		h.updateCake(w, r, id)
	case http.MethodDelete:
		h.deleteCake(w, id)
	default:
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
	}
}

func (h *CakeHandler) getCake(w http.ResponseWriter, id string) {
	for _, c := range h.store.Cakes() {
		if c.ID == id {
			respondJSON(w, http.StatusOK, c)
			return
		}
	}
	respondError(w, "Cake not found", http.StatusNotFound, nil)
}

func (h *CakeHandler) updateCake(w http.ResponseWriter, r *http.Request, id string) {
	var req CakePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := validateCakePatch(req); len(validationErrors) > 0 {
		respondError(w, "Validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	patch := interfaces.CakePatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Available:   req.Available,
		Category:    req.Category,
	}
	if req.Status != nil {
		status := domain.CakeStatus(*req.Status)
		patch.Status = &status
	}

	if err := h.store.UpdateCake(id, patch); err != nil {
		if errors.Is(err, domain.ErrCakeHasActiveReservations) {
			respondError(w, "Cake still has active reservations; complete or cancel them first", http.StatusConflict, nil)
			return
		}
		h.logger.Error("cake_update_failed", "Failed to update cake", "", map[string]interface{}{"id": id}, err)
		respondError(w, "Failed to update cake", http.StatusInternalServerError, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteCake повторяет охранную проверку экрана меню: торт с любыми
// резервациями не удаляется. Сам стор удаляет без проверок.
func (h *CakeHandler) deleteCake(w http.ResponseWriter, id string) {
	count := 0
	for _, r := range h.store.Reservations() {
		if r.CakeID == id {
			count++
		}
	}
	if count > 0 {
		respondError(w, fmt.Sprintf("This cake has %d reservation(s) and cannot be deleted. Please complete or cancel all reservations first.", count), http.StatusConflict, nil)
		return
	}

	h.store.DeleteCake(id)
	w.WriteHeader(http.StatusNoContent)
}

func validateCakeRequest(req CakeRequest) []ValidationError {
	var errs []ValidationError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	} else if utf8.RuneCountInString(name) > 100 {
		errs = append(errs, ValidationError{Field: "name", Message: "name must not exceed 100 characters"})
	}

	if req.Price == nil {
		errs = append(errs, ValidationError{Field: "price", Message: "price is required"})
	} else if *req.Price < 0 {
		errs = append(errs, ValidationError{Field: "price", Message: "price must not be negative"})
	}

	if req.Status != "" && !domain.CakeStatus(req.Status).Valid() {
		errs = append(errs, ValidationError{Field: "status", Message: "status must be one of: available, out-of-stock, removing-from-stock"})
	}

	return errs
}

func validateCakePatch(req CakePatchRequest) []ValidationError {
	var errs []ValidationError

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name must not be empty"})
	}
	if req.Price != nil && *req.Price < 0 {
		errs = append(errs, ValidationError{Field: "price", Message: "price must not be negative"})
	}
	if req.Status != nil && !domain.CakeStatus(*req.Status).Valid() {
		errs = append(errs, ValidationError{Field: "status", Message: "status must be one of: available, out-of-stock, removing-from-stock"})
	}

	return errs
}
