package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/agentbook/libs/bookingapi"
	"github.com/md-rashed-zaman/agentbook/libs/widget"
)

func fakeAPI(t *testing.T, slots []string, reserved *bookingapi.ReserveRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ai/services", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"company":{"name":"Test Dental Clinic","slug":"test-dental"},
			"services":[{"id":"svc-clean","name":"Dental Cleaning","duration":30},{"id":"svc-white","name":"Teeth Whitening","duration":60}]}`))
	})
	mux.HandleFunc("GET /ai/availability", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("days") != "14" {
			t.Errorf("expected days=14, got %q", r.URL.Query().Get("days"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"serviceId": r.URL.Query().Get("serviceId"), "slots": slots})
	})
	mux.HandleFunc("POST /ai/reservations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(reserved)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"booking":{"id":"b-1","confirmationNumber":"B-1ABCDE"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBookDrivesWidget(t *testing.T) {
	var reserved bookingapi.ReserveRequest
	srv := fakeAPI(t, []string{"2030-03-04T14:00:00Z", "2030-03-04T14:30:00Z"}, &reserved)

	var out bytes.Buffer
	st, err := book(context.Background(), bookingapi.New(srv.URL), bookOptions{
		company: "test-dental",
		service: "teeth whitening",
		name:    "Ada",
		email:   "ada@example.com",
	}, &out)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if st.Step != widget.StepConfirmed || st.ConfirmationNumber != "B-1ABCDE" {
		t.Fatalf("unexpected state: %+v", st)
	}
	if reserved.ServiceID != "svc-white" || reserved.Slot != "2030-03-04T14:00:00Z" || reserved.AgentName != widget.AgentName {
		t.Fatalf("unexpected reservation: %+v", reserved)
	}
	if !strings.Contains(out.String(), "Teeth Whitening (60 min)") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestBookWithoutSlots(t *testing.T) {
	var reserved bookingapi.ReserveRequest
	srv := fakeAPI(t, nil, &reserved)

	st, err := book(context.Background(), bookingapi.New(srv.URL), bookOptions{
		company: "test-dental", name: "Ada", email: "ada@example.com",
	}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no available slots") {
		t.Fatalf("expected no-slots error, got %v", err)
	}
	if st.Step != widget.StepTime {
		t.Fatalf("expected time step, got %s", st.Step)
	}
	if reserved.ServiceID != "" {
		t.Fatal("reservation should not have been attempted")
	}
}

func TestPickService(t *testing.T) {
	services := []bookingapi.Service{{ID: "a", Name: "Cut"}, {ID: "b", Name: "Color"}}
	if s, _ := pickService(services, ""); s.ID != "a" {
		t.Fatalf("expected first service, got %s", s.ID)
	}
	if s, _ := pickService(services, "b"); s.ID != "b" {
		t.Fatalf("expected id match, got %s", s.ID)
	}
	if s, _ := pickService(services, "COLOR"); s.ID != "b" {
		t.Fatalf("expected name match, got %s", s.ID)
	}
	if _, err := pickService(services, "perm"); err == nil {
		t.Fatal("expected error for unknown service")
	}
	if _, err := pickService(nil, ""); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestRunDispatch(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), nil, &out); err != nil {
		t.Fatalf("usage: %v", err)
	}
	for _, name := range []string{"seed", "book", "health", "events"} {
		if !strings.Contains(out.String(), name) {
			t.Fatalf("usage missing %s: %q", name, out.String())
		}
	}
	if err := run(context.Background(), []string{"frobnicate"}, &out); err == nil {
		t.Fatal("expected unknown command error")
	}
	if err := run(context.Background(), []string{"book", "--company", "x"}, &out); err == nil {
		t.Fatal("expected missing customer error")
	}
}
