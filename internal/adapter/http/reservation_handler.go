package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/logger"
	"github.com/developerKhusanjon/ChocoSlot/internal/domain"
	"github.com/developerKhusanjon/ChocoSlot/internal/interfaces"
)

type ReservationHandler struct {
	store  interfaces.Store
	logger logger.Logger
}

func NewReservationHandler(store interfaces.Store, logger logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		store:  store,
		logger: logger,
	}
}

type ReservationRequest struct {
	CustomerName string `json:"customerName"`
	Contact      string `json:"contact"`
	CakeID       string `json:"cakeId"`
	PickupDate   string `json:"pickupDate"`
	PickupTime   string `json:"pickupTime"`
	Quantity     *int   `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
	Status       string `json:"status,omitempty"`
}

type ReservationPatchRequest struct {
	CustomerName *string `json:"customerName"`
	Contact      *string `json:"contact"`
	CakeID       *string `json:"cakeId"`
	PickupDate   *string `json:"pickupDate"`
	PickupTime   *string `json:"pickupTime"`
	Quantity     *int    `json:"quantity"`
	Notes        *string `json:"notes"`
	Status       *string `json:"status"`
}

// Элемент ответа /reservations/today: резервация вместе с тортом.
type ReservationWithCakeResponse struct {
	Reservation domain.Reservation `json:"reservation"`
	Cake        *domain.Cake       `json:"cake,omitempty"`
}

func (h *ReservationHandler) HandleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, h.store.Reservations())
	case http.MethodPost:
		h.createReservation(w, r)
	default:
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
	}
}

func (h *ReservationHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
		return
	}

	today := h.store.TodayReservations()
	out := make([]ReservationWithCakeResponse, 0, len(today))
	for _, res := range today {
		pair := h.store.ReservationWithCake(res)
		out = append(out, ReservationWithCakeResponse{Reservation: pair.Reservation, Cake: pair.Cake})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *ReservationHandler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := h.validateReservationRequest(req); len(validationErrors) > 0 {
		h.logger.Error("validation_failed", "Reservation validation failed", "", map[string]interface{}{
			"errors": validationErrors,
		}, fmt.Errorf("validation failed"))
		respondError(w, "Validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	reservation := h.store.AddReservation(interfaces.AddReservationCommand{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Contact:      strings.TrimSpace(req.Contact),
		CakeID:       req.CakeID,
		PickupDate:   req.PickupDate,
		PickupTime:   req.PickupTime,
		Quantity:     *req.Quantity,
		Notes:        req.Notes,
		Status:       domain.ReservationStatus(req.Status),
	})

	respondJSON(w, http.StatusCreated, reservation)
}

func (h *ReservationHandler) HandleReservationByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/reservations/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, "Invalid path", http.StatusBadRequest, nil)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.updateReservation(w, r, id)
	case http.MethodDelete:
		h.store.DeleteReservation(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
	}
}

func (h *ReservationHandler) updateReservation(w http.ResponseWriter, r *http.Request, id string) {
	var req ReservationPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := h.validateReservationPatch(req); len(validationErrors) > 0 {
		respondError(w, "Validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	patch := interfaces.ReservationPatch{
		CustomerName: req.CustomerName,
		Contact:      req.Contact,
		CakeID:       req.CakeID,
		PickupDate:   req.PickupDate,
		PickupTime:   req.PickupTime,
		Quantity:     req.Quantity,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		status := domain.ReservationStatus(*req.Status)
		patch.Status = &status
	}

	if err := h.store.UpdateReservation(id, patch); err != nil {
		h.logger.Error("reservation_update_failed", "Failed to update reservation", "", map[string]interface{}{"id": id}, err)
		respondError(w, "Failed to update reservation", http.StatusInternalServerError, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationHandler) validateReservationRequest(req ReservationRequest) []ValidationError {
	var errs []ValidationError

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		errs = append(errs, ValidationError{Field: "customerName", Message: "customer name is required"})
	} else if utf8.RuneCountInString(customerName) > 100 {
		errs = append(errs, ValidationError{Field: "customerName", Message: "customer name must not exceed 100 characters"})
	}

	if strings.TrimSpace(req.Contact) == "" {
		errs = append(errs, ValidationError{Field: "contact", Message: "contact is required"})
	}

	if req.CakeID == "" {
		errs = append(errs, ValidationError{Field: "cakeId", Message: "cake id is required"})
	} else if !h.cakeExists(req.CakeID) {
		errs = append(errs, ValidationError{Field: "cakeId", Message: "cake does not exist"})
	}

	errs = append(errs, validatePickup(req.PickupDate, req.PickupTime)...)

	if req.Quantity == nil {
		errs = append(errs, ValidationError{Field: "quantity", Message: "quantity is required"})
	} else if *req.Quantity < 1 {
		errs = append(errs, ValidationError{Field: "quantity", Message: "quantity must be positive"})
	}

	if req.Status != "" && !domain.ReservationStatus(req.Status).Valid() {
		errs = append(errs, ValidationError{Field: "status", Message: "status must be one of: pending, confirmed, completed, canceled, delivered"})
	}

	return errs
}

func (h *ReservationHandler) validateReservationPatch(req ReservationPatchRequest) []ValidationError {
	var errs []ValidationError

	if req.CustomerName != nil && strings.TrimSpace(*req.CustomerName) == "" {
		errs = append(errs, ValidationError{Field: "customerName", Message: "customer name must not be empty"})
	}
	if req.CakeID != nil && !h.cakeExists(*req.CakeID) {
		errs = append(errs, ValidationError{Field: "cakeId", Message: "cake does not exist"})
	}
	if req.PickupDate != nil {
		if _, err := time.Parse(domain.DateLayout, *req.PickupDate); err != nil {
			errs = append(errs, ValidationError{Field: "pickupDate", Message: "pickup date must be formatted YYYY-MM-DD"})
		}
	}
	if req.PickupTime != nil {
		if _, err := time.Parse(domain.TimeLayout, *req.PickupTime); err != nil {
			errs = append(errs, ValidationError{Field: "pickupTime", Message: "pickup time must be formatted HH:MM"})
		}
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		errs = append(errs, ValidationError{Field: "quantity", Message: "quantity must be positive"})
	}
	if req.Status != nil && !domain.ReservationStatus(*req.Status).Valid() {
		errs = append(errs, ValidationError{Field: "status", Message: "status must be one of: pending, confirmed, completed, canceled, delivered"})
	}

	return errs
}

func validatePickup(date, pickupTime string) []ValidationError {
	var errs []ValidationError
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		errs = append(errs, ValidationError{Field: "pickupDate", Message: "pickup date must be formatted YYYY-MM-DD"})
	}
	if _, err := time.Parse(domain.TimeLayout, pickupTime); err != nil {
		errs = append(errs, ValidationError{Field: "pickupTime", Message: "pickup time must be formatted HH:MM"})
	}
	return errs
}

func (h *ReservationHandler) cakeExists(id string) bool {
	for _, c := range h.store.Cakes() {
		if c.ID == id {
			return true
		}
	}
	return false
}
