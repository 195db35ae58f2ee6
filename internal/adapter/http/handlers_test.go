package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/logger"
	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/memory"
	"github.com/developerKhusanjon/ChocoSlot/internal/app/store"
	"github.com/developerKhusanjon/ChocoSlot/internal/domain"
)

func newTestMux(t *testing.T) (*store.Service, *http.ServeMux) {
	t.Helper()
	lgr := logger.NewWithWriter("test", io.Discard)
	svc := store.New(memory.New(), lgr)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cakes := NewCakeHandler(svc, lgr)
	reservations := NewReservationHandler(svc, lgr)
	dashboard := NewDashboardHandler(svc, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/cakes", cakes.HandleCakes)
	mux.HandleFunc("/cakes/", cakes.HandleCakeByID)
	mux.HandleFunc("/reservations", reservations.HandleReservations)
	mux.HandleFunc("/reservations/today", reservations.HandleToday)
	mux.HandleFunc("/reservations/", reservations.HandleReservationByID)
	mux.HandleFunc("/stats", dashboard.HandleStats)
	return svc, mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(method, path, reader))
	return rr
}

func createCake(t *testing.T, mux *http.ServeMux, name string) domain.Cake {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"description":"test cake","price":19.99,"category":"Test"}`, name)
	rr := doRequest(t, mux, http.MethodPost, "/cakes", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create cake: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var cake domain.Cake
	if err := json.Unmarshal(rr.Body.Bytes(), &cake); err != nil {
		t.Fatalf("decode cake: %v", err)
	}
	return cake
}

func createReservation(t *testing.T, mux *http.ServeMux, cakeID, date string) domain.Reservation {
	t.Helper()
	body := fmt.Sprintf(`{"customerName":"Alice","contact":"+1 555 0100","cakeId":%q,"pickupDate":%q,"pickupTime":"14:30","quantity":1}`, cakeID, date)
	rr := doRequest(t, mux, http.MethodPost, "/reservations", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create reservation: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var r domain.Reservation
	if err := json.Unmarshal(rr.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode reservation: %v", err)
	}
	return r
}

func validationFields(t *testing.T, rr *httptest.ResponseRecorder) map[string]bool {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	fields := make(map[string]bool)
	for _, e := range resp.Errors {
		fields[e.Field] = true
	}
	return fields
}

func TestCreateCakeDefaultsAndList(t *testing.T) {
	_, mux := newTestMux(t)

	cake := createCake(t, mux, "Tiramisu")
	if cake.ID == "" {
		t.Fatal("expected generated id")
	}
	if !cake.Available {
		t.Error("omitted available must default to true")
	}

	rr := doRequest(t, mux, http.MethodGet, "/cakes", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list cakes: expected 200, got %d", rr.Code)
	}
	var cakes []domain.Cake
	if err := json.Unmarshal(rr.Body.Bytes(), &cakes); err != nil {
		t.Fatalf("decode cakes: %v", err)
	}
	if len(cakes) != 1 || cakes[0].ID != cake.ID {
		t.Errorf("unexpected list: %+v", cakes)
	}
}

func TestListCakesSearch(t *testing.T) {
	_, mux := newTestMux(t)

	createCake(t, mux, "Tiramisu")
	createCake(t, mux, "Red Velvet")

	rr := doRequest(t, mux, http.MethodGet, "/cakes?q=TIRA", "")
	var cakes []domain.Cake
	if err := json.Unmarshal(rr.Body.Bytes(), &cakes); err != nil {
		t.Fatalf("decode cakes: %v", err)
	}
	if len(cakes) != 1 || cakes[0].Name != "Tiramisu" {
		t.Errorf("case-insensitive search failed: %+v", cakes)
	}

	rr = doRequest(t, mux, http.MethodGet, "/cakes?q=nomatch", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &cakes); err != nil {
		t.Fatalf("decode cakes: %v", err)
	}
	if len(cakes) != 0 {
		t.Errorf("expected empty result, got %+v", cakes)
	}
}

func TestCreateCakeValidation(t *testing.T) {
	_, mux := newTestMux(t)

	rr := doRequest(t, mux, http.MethodPost, "/cakes", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	fields := validationFields(t, rr)
	for _, f := range []string{"name", "price"} {
		if !fields[f] {
			t.Errorf("missing validation error for %s", f)
		}
	}

	rr = doRequest(t, mux, http.MethodPost, "/cakes", `{"name":"X","price":-1,"status":"melted"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	fields = validationFields(t, rr)
	if !fields["price"] || !fields["status"] {
		t.Errorf("missing validation errors: %v", fields)
	}
}

func TestNameCapsCountCharactersNotBytes(t *testing.T) {
	_, mux := newTestMux(t)

	// 100 символов, 200 байт
	name := strings.Repeat("é", 100)
	rr := doRequest(t, mux, http.MethodPost, "/cakes", fmt.Sprintf(`{"name":%q,"price":9.99}`, name))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a 100-character name, got %d: %s", rr.Code, rr.Body.String())
	}
	var cake domain.Cake
	if err := json.Unmarshal(rr.Body.Bytes(), &cake); err != nil {
		t.Fatalf("decode cake: %v", err)
	}

	rr = doRequest(t, mux, http.MethodPost, "/cakes", fmt.Sprintf(`{"name":%q,"price":9.99}`, name+"é"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a 101-character name, got %d", rr.Code)
	}
	if fields := validationFields(t, rr); !fields["name"] {
		t.Errorf("missing name validation error: %v", fields)
	}

	customer := strings.Repeat("й", 100)
	body := fmt.Sprintf(`{"customerName":%q,"contact":"x","cakeId":%q,"pickupDate":"2024-06-01","pickupTime":"14:30","quantity":1}`, customer, cake.ID)
	rr = doRequest(t, mux, http.MethodPost, "/reservations", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a 100-character customer name, got %d: %s", rr.Code, rr.Body.String())
	}

	body = fmt.Sprintf(`{"customerName":%q,"contact":"x","cakeId":%q,"pickupDate":"2024-06-01","pickupTime":"14:30","quantity":1}`, customer+"й", cake.ID)
	rr = doRequest(t, mux, http.MethodPost, "/reservations", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a 101-character customer name, got %d", rr.Code)
	}
	if fields := validationFields(t, rr); !fields["customerName"] {
		t.Errorf("missing customerName validation error: %v", fields)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	_, mux := newTestMux(t)

	rr := doRequest(t, mux, http.MethodPost, "/reservations", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	fields := validationFields(t, rr)
	for _, f := range []string{"customerName", "contact", "cakeId", "pickupDate", "pickupTime", "quantity"} {
		if !fields[f] {
			t.Errorf("missing validation error for %s", f)
		}
	}
}

func TestCreateReservationUnknownCake(t *testing.T) {
	_, mux := newTestMux(t)

	body := `{"customerName":"Alice","contact":"x","cakeId":"no-such","pickupDate":"2024-06-01","pickupTime":"14:30","quantity":1}`
	rr := doRequest(t, mux, http.MethodPost, "/reservations", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if fields := validationFields(t, rr); !fields["cakeId"] {
		t.Errorf("missing cakeId validation error: %v", fields)
	}
}

func TestCreateReservationDefaultsToPending(t *testing.T) {
	_, mux := newTestMux(t)

	cake := createCake(t, mux, "Tiramisu")
	r := createReservation(t, mux, cake.ID, time.Now().Format(domain.DateLayout))
	if r.Status != domain.StatusPending {
		t.Errorf("expected pending, got %q", r.Status)
	}
	if r.ID == "" {
		t.Error("expected generated id")
	}
}

func TestDeleteCakeGuardedByReservations(t *testing.T) {
	_, mux := newTestMux(t)

	cake := createCake(t, mux, "Tiramisu")
	r := createReservation(t, mux, cake.ID, time.Now().Format(domain.DateLayout))

	rr := doRequest(t, mux, http.MethodDelete, "/cakes/"+cake.ID, "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 while reservation exists, got %d", rr.Code)
	}

	rr = doRequest(t, mux, http.MethodDelete, "/reservations/"+r.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete reservation: expected 204, got %d", rr.Code)
	}

	rr = doRequest(t, mux, http.MethodDelete, "/cakes/"+cake.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 after reservations are gone, got %d", rr.Code)
	}
	rr = doRequest(t, mux, http.MethodGet, "/cakes/"+cake.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for deleted cake, got %d", rr.Code)
	}
}

func TestUpdateCakeRemovalConflict(t *testing.T) {
	_, mux := newTestMux(t)

	cake := createCake(t, mux, "Tiramisu")
	createReservation(t, mux, cake.ID, time.Now().Format(domain.DateLayout))

	rr := doRequest(t, mux, http.MethodPatch, "/cakes/"+cake.ID, `{"status":"removing-from-stock"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, mux, http.MethodPatch, "/cakes/"+cake.ID, `{"status":"out-of-stock"}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for allowed transition, got %d", rr.Code)
	}
}

func TestGetCakeNotFound(t *testing.T) {
	_, mux := newTestMux(t)

	rr := doRequest(t, mux, http.MethodGet, "/cakes/12345", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, mux := newTestMux(t)

	cake := createCake(t, mux, "Tiramisu")
	createReservation(t, mux, cake.ID, time.Now().Format(domain.DateLayout))

	rr := doRequest(t, mux, http.MethodGet, "/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var stats domain.DailyStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Date != time.Now().Format(domain.DateLayout) {
		t.Errorf("unexpected stats date: %s", stats.Date)
	}
	if stats.Today != 1 || stats.Pending != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTodayEndpointJoinsCakes(t *testing.T) {
	_, mux := newTestMux(t)

	cake := createCake(t, mux, "Tiramisu")
	createReservation(t, mux, cake.ID, time.Now().Format(domain.DateLayout))
	// Завтрашняя резервация в выдачу не попадает
	createReservation(t, mux, cake.ID, time.Now().AddDate(0, 0, 1).Format(domain.DateLayout))

	rr := doRequest(t, mux, http.MethodGet, "/reservations/today", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out []ReservationWithCakeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(out))
	}
	if out[0].Cake == nil || out[0].Cake.ID != cake.ID {
		t.Errorf("cake not joined: %+v", out[0])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, mux := newTestMux(t)

	rr := doRequest(t, mux, http.MethodPut, "/cakes", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
	rr = doRequest(t, mux, http.MethodPost, "/stats", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}
